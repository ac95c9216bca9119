package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/query"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
	"github.com/yukikurage/issue-tracker-api/internal/utils"
)

// IssueService handles issue related business logic.
type IssueService struct {
	issueRepo   repository.IssueRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	logger      *slog.Logger
}

// NewIssueService creates a new IssueService. A nil notifier logs assignments instead.
func NewIssueService(
	issueRepo repository.IssueRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) *IssueService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &IssueService{
		issueRepo:   issueRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// IssueList is one page of issues plus the size of the whole filtered set.
type IssueList struct {
	Issues     []models.Issue
	Page       int
	PageSize   int
	TotalCount int64
	TotalPages int
}

// ListIssues resolves raw list parameters into a page of issues. Malformed
// parameters never fail; they fall back to their defaults.
func (s *IssueService) ListIssues(params query.Params) (*IssueList, error) {
	plan := query.Normalize(params)

	total, err := s.issueRepo.Count(plan.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count issues: %w", err)
	}

	issues := []models.Issue{}
	if offset := plan.Offset(); offset >= 0 && int64(offset) < total {
		issues, err = s.issueRepo.FindMany(plan.Filter, plan.Sort, plan.Offset(), plan.PageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues: %w", err)
		}
	}

	return &IssueList{
		Issues:     issues,
		Page:       plan.Page,
		PageSize:   plan.PageSize,
		TotalCount: total,
		TotalPages: utils.TotalPages(total, plan.PageSize),
	}, nil
}

// IssueSummary counts issues per status.
type IssueSummary struct {
	Open       int64 `json:"open"`
	InProgress int64 `json:"inProgress"`
	Closed     int64 `json:"closed"`
}

// Summary returns issue counts for every status.
func (s *IssueService) Summary() (*IssueSummary, error) {
	counts := make(map[models.IssueStatus]int64, len(models.IssueStatuses))
	for _, status := range models.IssueStatuses {
		status := status
		n, err := s.issueRepo.Count(query.Filter{Status: &status})
		if err != nil {
			return nil, fmt.Errorf("failed to count %s issues: %w", status, err)
		}
		counts[status] = n
	}

	return &IssueSummary{
		Open:       counts[models.IssueStatusOpen],
		InProgress: counts[models.IssueStatusInProgress],
		Closed:     counts[models.IssueStatusClosed],
	}, nil
}

// GetIssue retrieves an issue with its assignee and project.
func (s *IssueService) GetIssue(id uint64) (*models.Issue, error) {
	issue, err := s.issueRepo.FindByID(id, "AssignedToUser", "Project")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}
	return issue, nil
}

// CreateIssueInput represents the information needed to create an issue.
type CreateIssueInput struct {
	Title       string           `json:"title" validate:"required,max=255"`
	Description string           `json:"description" validate:"required,max=65536"`
	IssueType   models.IssueType `json:"issueType" validate:"omitempty,issue_type"`
	ProjectID   *uint64          `json:"projectId"`
}

// CreateIssue validates input and creates an OPEN issue. Without a projectId
// the issue joins the project with the smallest id, or no project when none exist.
func (s *IssueService) CreateIssue(input CreateIssueInput) (*models.Issue, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	projectID, err := s.resolveProject(input.ProjectID)
	if err != nil {
		return nil, err
	}

	issueType := input.IssueType
	if issueType == "" {
		issueType = models.IssueTypeGeneral
	}

	issue := &models.Issue{
		Title:       input.Title,
		Description: input.Description,
		Status:      models.IssueStatusOpen,
		IssueType:   issueType,
		ProjectID:   projectID,
	}
	if err := s.issueRepo.Create(issue); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	issuesCreatedTotal.WithLabelValues(strconv.FormatBool(input.ProjectID == nil && projectID != nil)).Inc()

	return s.GetIssue(issue.ID)
}

func (s *IssueService) resolveProject(requested *uint64) (*uint64, error) {
	if requested != nil {
		if _, err := s.projectRepo.FindByID(*requested); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidProject
			}
			return nil, fmt.Errorf("failed to find project: %w", err)
		}
		return requested, nil
	}

	first, err := s.projectRepo.FindFirst(repository.ProjectFilter{})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find default project: %w", err)
	}
	return &first.ID, nil
}

// UpdateIssueInput holds a partial issue update. Nil fields are left unchanged.
// An empty AssignedToUserID or ClearAssignee unassigns the issue; ClearProject
// detaches it from its project.
type UpdateIssueInput struct {
	Title            *string             `json:"title" validate:"omitnil,min=1,max=255"`
	Description      *string             `json:"description" validate:"omitnil,min=1,max=65536"`
	Status           *models.IssueStatus `json:"status" validate:"omitnil,issue_status"`
	IssueType        *models.IssueType   `json:"issueType" validate:"omitnil,issue_type"`
	AssignedToUserID *string             `json:"assignedToUserId"`
	ClearAssignee    bool                `json:"-"`
	ProjectID        *uint64             `json:"projectId"`
	ClearProject     bool                `json:"-"`
}

// UpdateIssue applies the supplied fields to an existing issue.
func (s *IssueService) UpdateIssue(id uint64, input UpdateIssueInput) (*models.Issue, error) {
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	issue, err := s.issueRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}

	previousAssignee := issue.AssignedToUserID

	if input.Title != nil {
		issue.Title = *input.Title
	}
	if input.Description != nil {
		issue.Description = *input.Description
	}
	if input.Status != nil {
		issue.Status = *input.Status
	}
	if input.IssueType != nil {
		issue.IssueType = *input.IssueType
	}

	var assignee *models.User
	switch {
	case input.ClearAssignee, input.AssignedToUserID != nil && *input.AssignedToUserID == "":
		issue.AssignedToUserID = nil
	case input.AssignedToUserID != nil:
		assignee, err = s.userRepo.FindByID(*input.AssignedToUserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidUser
			}
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		issue.AssignedToUserID = &assignee.ID
	}

	switch {
	case input.ClearProject:
		issue.ProjectID = nil
	case input.ProjectID != nil:
		if _, err := s.projectRepo.FindByID(*input.ProjectID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidProject
			}
			return nil, fmt.Errorf("failed to find project: %w", err)
		}
		issue.ProjectID = input.ProjectID
	}

	issue.AssignedToUser = nil
	issue.Project = nil
	if err := s.issueRepo.Update(issue); err != nil {
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}

	issueUpdatesTotal.WithLabelValues(string(issue.Status)).Inc()

	if assignee != nil && !sameAssignee(previousAssignee, &assignee.ID) {
		if err := s.notifier.IssueAssigned(*issue, *assignee); err != nil {
			notificationFailuresTotal.Inc()
			s.logger.Warn("failed to notify assignee", "issue_id", issue.ID, "user_id", assignee.ID, "error", err)
		}
	}

	return s.GetIssue(issue.ID)
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
