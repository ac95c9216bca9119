// Package query turns raw list parameters into a normalized plan over issues.
//
// Normalization never fails. Unknown filter values mean "no constraint",
// unknown sort fields fall back to createdAt and bad paging input falls back
// to the defaults, because list views rely on that fallback.
package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/yukikurage/issue-tracker-api/internal/constants"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/utils"
)

// Params are the raw, untrusted list parameters. Empty means absent.
type Params struct {
	Status    string
	IssueType string
	UserID    string
	ProjectID string
	SortBy    string
	SortOrder string
	Page      string
	PageSize  string
}

// Filter is a conjunction of optional constraints. Nil fields do not constrain.
type Filter struct {
	Status           *models.IssueStatus
	IssueType        *models.IssueType
	AssignedToUserID *string
	ProjectID        *uint64
}

// Matches reports whether issue satisfies every present constraint.
func (f Filter) Matches(issue models.Issue) bool {
	if f.Status != nil && issue.Status != *f.Status {
		return false
	}
	if f.IssueType != nil && issue.IssueType != *f.IssueType {
		return false
	}
	if f.AssignedToUserID != nil {
		if issue.AssignedToUserID == nil || *issue.AssignedToUserID != *f.AssignedToUserID {
			return false
		}
	}
	if f.ProjectID != nil {
		if issue.ProjectID == nil || *issue.ProjectID != *f.ProjectID {
			return false
		}
	}
	return true
}

type SortField string

const (
	SortByTitle     SortField = "title"
	SortByStatus    SortField = "status"
	SortByIssueType SortField = "issueType"
	SortByCreatedAt SortField = "createdAt"
)

// Column returns the database column backing the field.
func (f SortField) Column() string {
	switch f {
	case SortByTitle:
		return "title"
	case SortByStatus:
		return "status"
	case SortByIssueType:
		return "issue_type"
	default:
		return "created_at"
	}
}

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Sort orders by Field in Order. Equal keys are always ordered by id ascending,
// in both directions.
type Sort struct {
	Field SortField
	Order SortOrder
}

// Less reports whether a sorts before b.
func (s Sort) Less(a, b models.Issue) bool {
	c := compare(s.Field, a, b)
	if c == 0 {
		return a.ID < b.ID
	}
	if s.Order == Asc {
		return c < 0
	}
	return c > 0
}

func compare(field SortField, a, b models.Issue) int {
	switch field {
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case SortByIssueType:
		return strings.Compare(string(a.IssueType), string(b.IssueType))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Plan is a fully normalized list request.
type Plan struct {
	Filter   Filter
	Sort     Sort
	Page     int
	PageSize int
}

// Offset is the index of the first item on the page.
func (p Plan) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one slice of the filtered and sorted result set.
type Page struct {
	Items      []models.Issue
	TotalCount int64
}

// Normalize maps raw parameters to a plan. It never returns an error.
func Normalize(p Params) Plan {
	pagination := utils.GetPaginationParams(p.Page, p.PageSize)
	return Plan{
		Filter: Filter{
			Status:           parseStatus(p.Status),
			IssueType:        parseIssueType(p.IssueType),
			AssignedToUserID: parseUserID(p.UserID),
			ProjectID:        parseProjectID(p.ProjectID),
		},
		Sort: Sort{
			Field: parseSortField(p.SortBy),
			Order: parseSortOrder(p.SortOrder),
		},
		Page:     pagination.Page,
		PageSize: pagination.Limit,
	}
}

// Apply evaluates plan against an in-memory collection. The input slice is
// not modified.
func Apply(plan Plan, issues []models.Issue) Page {
	matched := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if plan.Filter.Matches(issue) {
			matched = append(matched, issue)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return plan.Sort.Less(matched[i], matched[j])
	})

	total := int64(len(matched))
	offset := plan.Offset()
	if offset < 0 || offset >= len(matched) {
		return Page{Items: []models.Issue{}, TotalCount: total}
	}
	end := offset + plan.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	return Page{Items: matched[offset:end], TotalCount: total}
}

func parseStatus(raw string) *models.IssueStatus {
	status := models.IssueStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return nil
	}
	return &status
}

func parseIssueType(raw string) *models.IssueType {
	issueType := models.IssueType(strings.TrimSpace(raw))
	if !issueType.Valid() {
		return nil
	}
	return &issueType
}

func parseUserID(raw string) *string {
	id := strings.TrimSpace(raw)
	if id == "" || id == constants.AllUsersSentinel {
		return nil
	}
	return &id
}

func parseProjectID(raw string) *uint64 {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func parseSortField(raw string) SortField {
	switch field := SortField(strings.TrimSpace(raw)); field {
	case SortByTitle, SortByStatus, SortByIssueType, SortByCreatedAt:
		return field
	default:
		return SortByCreatedAt
	}
}

func parseSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), string(Asc)) {
		return Asc
	}
	return Desc
}
