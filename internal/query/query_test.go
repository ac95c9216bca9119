package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker-api/internal/models"
)

func strPtr(s string) *string { return &s }
func u64Ptr(v uint64) *uint64  { return &v }

func fixtureIssues() []models.Issue {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return []models.Issue{
		{ID: 1, Title: "Crash on save", Status: models.IssueStatusOpen, IssueType: models.IssueTypeBug, ProjectID: u64Ptr(1), AssignedToUserID: strPtr("u1"), CreatedAt: base},
		{ID: 2, Title: "Add export", Status: models.IssueStatusClosed, IssueType: models.IssueTypeTask, ProjectID: u64Ptr(1), CreatedAt: base.Add(time.Hour)},
		{ID: 3, Title: "Investigate caching", Status: models.IssueStatusInProgress, IssueType: models.IssueTypeSpike, ProjectID: u64Ptr(2), AssignedToUserID: strPtr("u2"), CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, Title: "Broken link", Status: models.IssueStatusOpen, IssueType: models.IssueTypeBug, ProjectID: u64Ptr(2), AssignedToUserID: strPtr("u1"), CreatedAt: base.Add(3 * time.Hour)},
		{ID: 5, Title: "Docs", Status: models.IssueStatusClosed, IssueType: models.IssueTypeGeneral, CreatedAt: base.Add(4 * time.Hour)},
		{ID: 6, Title: "Refactor", Status: models.IssueStatusOpen, IssueType: models.IssueTypeSubtask, ProjectID: u64Ptr(1), CreatedAt: base.Add(5 * time.Hour)},
		{ID: 7, Title: "Same time", Status: models.IssueStatusInProgress, IssueType: models.IssueTypeTask, CreatedAt: base.Add(5 * time.Hour)},
	}
}

func ids(issues []models.Issue) []uint64 {
	out := make([]uint64, len(issues))
	for i, issue := range issues {
		out[i] = issue.ID
	}
	return out
}

func TestNormalize_Defaults(t *testing.T) {
	plan := Normalize(Params{})

	assert.Nil(t, plan.Filter.Status)
	assert.Nil(t, plan.Filter.IssueType)
	assert.Nil(t, plan.Filter.AssignedToUserID)
	assert.Nil(t, plan.Filter.ProjectID)
	assert.Equal(t, Sort{Field: SortByCreatedAt, Order: Desc}, plan.Sort)
	assert.Equal(t, 1, plan.Page)
	assert.Equal(t, 10, plan.PageSize)
	assert.Equal(t, 0, plan.Offset())
}

func TestNormalize_ValidParams(t *testing.T) {
	plan := Normalize(Params{
		Status:    "CLOSED",
		IssueType: "BUG",
		UserID:    "u1",
		ProjectID: "7",
		SortBy:    "title",
		SortOrder: "asc",
		Page:      "3",
		PageSize:  "25",
	})

	require.NotNil(t, plan.Filter.Status)
	assert.Equal(t, models.IssueStatusClosed, *plan.Filter.Status)
	require.NotNil(t, plan.Filter.IssueType)
	assert.Equal(t, models.IssueTypeBug, *plan.Filter.IssueType)
	require.NotNil(t, plan.Filter.AssignedToUserID)
	assert.Equal(t, "u1", *plan.Filter.AssignedToUserID)
	require.NotNil(t, plan.Filter.ProjectID)
	assert.Equal(t, uint64(7), *plan.Filter.ProjectID)
	assert.Equal(t, Sort{Field: SortByTitle, Order: Asc}, plan.Sort)
	assert.Equal(t, 50, plan.Offset())
}

func TestNormalize_PermissiveFallbacks(t *testing.T) {
	plan := Normalize(Params{
		Status:    "all",
		IssueType: "EPIC",
		UserID:    "-1",
		ProjectID: "abc",
		SortBy:    "priority",
		SortOrder: "sideways",
		Page:      "-2",
		PageSize:  "1000",
	})

	assert.Nil(t, plan.Filter.Status)
	assert.Nil(t, plan.Filter.IssueType)
	assert.Nil(t, plan.Filter.AssignedToUserID)
	assert.Nil(t, plan.Filter.ProjectID)
	assert.Equal(t, Sort{Field: SortByCreatedAt, Order: Desc}, plan.Sort)
	assert.Equal(t, 1, plan.Page)
	assert.Equal(t, 100, plan.PageSize)
}

func TestNormalize_StatusIsCaseSensitive(t *testing.T) {
	plan := Normalize(Params{Status: "closed"})
	assert.Nil(t, plan.Filter.Status)
}

func TestApply_FilterByStatus(t *testing.T) {
	page := Apply(Normalize(Params{Status: "CLOSED"}), fixtureIssues())

	assert.Equal(t, int64(2), page.TotalCount)
	for _, issue := range page.Items {
		assert.Equal(t, models.IssueStatusClosed, issue.Status)
	}
}

func TestApply_UnrecognizedStatusReturnsEverything(t *testing.T) {
	issues := fixtureIssues()
	page := Apply(Normalize(Params{Status: "DONE", PageSize: "100"}), issues)

	assert.Equal(t, int64(len(issues)), page.TotalCount)
	assert.Len(t, page.Items, len(issues))
}

func TestApply_FiltersAreConjunctive(t *testing.T) {
	page := Apply(Normalize(Params{Status: "OPEN", IssueType: "BUG", UserID: "u1", ProjectID: "2"}), fixtureIssues())

	assert.Equal(t, int64(1), page.TotalCount)
	assert.Equal(t, []uint64{4}, ids(page.Items))
}

func TestApply_DefaultSortNewestFirstWithIDTieBreak(t *testing.T) {
	page := Apply(Normalize(Params{}), fixtureIssues())

	// 6 and 7 share createdAt; the lower id comes first.
	assert.Equal(t, []uint64{6, 7, 5, 4, 3, 2, 1}, ids(page.Items))
}

func TestApply_OppositeOrdersKeepIDAscendingWithinGroups(t *testing.T) {
	issues := fixtureIssues()

	asc := Apply(Normalize(Params{SortBy: "status", SortOrder: "asc", PageSize: "100"}), issues)
	desc := Apply(Normalize(Params{SortBy: "status", SortOrder: "desc", PageSize: "100"}), issues)

	assert.Equal(t, []uint64{2, 5, 3, 7, 1, 4, 6}, ids(asc.Items))
	assert.Equal(t, []uint64{1, 4, 6, 3, 7, 2, 5}, ids(desc.Items))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	issues := fixtureIssues()
	before := ids(issues)

	Apply(Normalize(Params{SortBy: "title", SortOrder: "asc"}), issues)

	assert.Equal(t, before, ids(issues))
}

func TestApply_PageLengthProperty(t *testing.T) {
	issues := fixtureIssues()
	total := len(issues)

	for pageSize := 1; pageSize <= total+1; pageSize++ {
		for page := 1; page <= total+2; page++ {
			plan := Plan{Sort: Sort{Field: SortByCreatedAt, Order: Desc}, Page: page, PageSize: pageSize}
			got := Apply(plan, issues)

			want := total - (page-1)*pageSize
			if want < 0 {
				want = 0
			}
			if want > pageSize {
				want = pageSize
			}
			assert.Len(t, got.Items, want, "page=%d pageSize=%d", page, pageSize)
			assert.Equal(t, int64(total), got.TotalCount)
		}
	}
}

func TestApply_OffsetPastEnd(t *testing.T) {
	page := Apply(Normalize(Params{Page: "50"}), fixtureIssues())

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(7), page.TotalCount)
}

func TestApply_HugePageIsEmpty(t *testing.T) {
	plan := Normalize(Params{Page: "100000000000000000", PageSize: "100"})
	assert.GreaterOrEqual(t, plan.Offset(), 0)

	page := Apply(plan, fixtureIssues())

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(7), page.TotalCount)
}

func TestApply_NegativeOffsetIsEmpty(t *testing.T) {
	page := Apply(Plan{Sort: Sort{Field: SortByCreatedAt, Order: Desc}, Page: -5, PageSize: 10}, fixtureIssues())

	assert.Empty(t, page.Items)
	assert.Equal(t, int64(7), page.TotalCount)
}

func TestSortField_Column(t *testing.T) {
	assert.Equal(t, "title", SortByTitle.Column())
	assert.Equal(t, "status", SortByStatus.Column())
	assert.Equal(t, "issue_type", SortByIssueType.Column())
	assert.Equal(t, "created_at", SortByCreatedAt.Column())
}
