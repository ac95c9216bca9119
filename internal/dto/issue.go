package dto

import (
	"time"

	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/services"
)

// IssueDTO represents an issue in API responses
type IssueDTO struct {
	ID               uint64             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Status           models.IssueStatus `json:"status"`
	IssueType        models.IssueType   `json:"issueType"`
	AssignedToUserID *string            `json:"assignedToUserId"`
	ProjectID        *uint64            `json:"projectId"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	AssignedToUser   *UserDTO           `json:"assignedToUser,omitempty"`
	Project          *ProjectRefDTO     `json:"project,omitempty"`
}

// IssueListResponse represents a paginated list of issues
type IssueListResponse struct {
	Issues     []IssueDTO `json:"issues"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalCount int64      `json:"totalCount"`
	TotalPages int        `json:"totalPages"`
}

// IssueDraftsResponse wraps generated drafts
type IssueDraftsResponse struct {
	Drafts []services.IssueDraft `json:"drafts"`
}

// ToIssueDTO converts an issue model to DTO, including loaded relations
func ToIssueDTO(issue models.Issue) IssueDTO {
	out := IssueDTO{
		ID:               issue.ID,
		Title:            issue.Title,
		Description:      issue.Description,
		Status:           issue.Status,
		IssueType:        issue.IssueType,
		AssignedToUserID: issue.AssignedToUserID,
		ProjectID:        issue.ProjectID,
		CreatedAt:        issue.CreatedAt,
		UpdatedAt:        issue.UpdatedAt,
	}
	if issue.AssignedToUser != nil {
		user := ToUserDTO(*issue.AssignedToUser)
		out.AssignedToUser = &user
	}
	if issue.Project != nil {
		out.Project = &ProjectRefDTO{ID: issue.Project.ID, Name: issue.Project.Name}
	}
	return out
}

// ToIssueListResponse converts a service list result
func ToIssueListResponse(list services.IssueList) IssueListResponse {
	issues := make([]IssueDTO, len(list.Issues))
	for i, issue := range list.Issues {
		issues[i] = ToIssueDTO(issue)
	}
	return IssueListResponse{
		Issues:     issues,
		Page:       list.Page,
		PageSize:   list.PageSize,
		TotalCount: list.TotalCount,
		TotalPages: list.TotalPages,
	}
}
