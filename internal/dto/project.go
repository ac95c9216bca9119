package dto

import (
	"time"

	"github.com/yukikurage/issue-tracker-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectRefDTO is the short form embedded in issues
type ProjectRefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ProjectListResponse represents the list of projects
type ProjectListResponse struct {
	Projects []ProjectDTO `json:"projects"`
}

// DeletedResponse carries the id of a deleted record
type DeletedResponse struct {
	ID uint64 `json:"id"`
}

func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func ToProjectListResponse(projects []models.Project) ProjectListResponse {
	out := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectDTO(p)
	}
	return ProjectListResponse{Projects: out}
}
