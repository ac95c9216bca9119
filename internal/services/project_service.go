package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/query"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
)

// ProjectService handles project related business logic.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	issueRepo   repository.IssueRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, issueRepo repository.IssueRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		issueRepo:   issueRepo,
	}
}

// CreateProjectInput represents the information needed to create a project.
type CreateProjectInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

// CreateProject creates a project whose trimmed name is not yet taken.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if err := s.ensureNameAvailable(input.Name, nil); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.projectRepo.Create(project); err != nil {
		projectWritesTotal.WithLabelValues("create", "error").Inc()
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateProjectName
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	projectWritesTotal.WithLabelValues("create", "ok").Inc()
	return project, nil
}

// ListProjects returns every project ordered by id.
func (s *ProjectService) ListProjects() ([]models.Project, error) {
	projects, err := s.projectRepo.FindMany(repository.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject retrieves a project by ID.
func (s *ProjectService) GetProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// UpdateProjectInput holds a project update. Nil or blank fields keep their
// previous value.
type UpdateProjectInput struct {
	Name        *string `json:"name" validate:"omitnil,max=255"`
	Description *string `json:"description"`
}

// UpdateProject renames or re-describes a project. A rename must not collide
// with any other project's name.
func (s *ProjectService) UpdateProject(id uint64, input UpdateProjectInput) (*models.Project, error) {
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		input.Name = &trimmed
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != "" && *input.Name != project.Name {
		if err := s.ensureNameAvailable(*input.Name, &project.ID); err != nil {
			return nil, err
		}
		project.Name = *input.Name
	}
	if input.Description != nil && *input.Description != "" {
		project.Description = input.Description
	}

	if err := s.projectRepo.Update(project); err != nil {
		projectWritesTotal.WithLabelValues("update", "error").Inc()
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateProjectName
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	projectWritesTotal.WithLabelValues("update", "ok").Inc()
	return project, nil
}

// DeleteProject removes a project that no issue references and returns its id.
func (s *ProjectService) DeleteProject(id uint64) (uint64, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return 0, err
	}

	count, err := s.issueRepo.Count(query.Filter{ProjectID: &project.ID})
	if err != nil {
		return 0, fmt.Errorf("failed to count project issues: %w", err)
	}
	if count > 0 {
		projectWritesTotal.WithLabelValues("delete", "conflict").Inc()
		return 0, &ProjectHasIssuesError{ProjectName: project.Name, IssueCount: count}
	}

	if err := s.projectRepo.Delete(project.ID); err != nil {
		projectWritesTotal.WithLabelValues("delete", "error").Inc()
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrProjectNotFound
		}
		return 0, fmt.Errorf("failed to delete project: %w", err)
	}

	projectWritesTotal.WithLabelValues("delete", "ok").Inc()
	return project.ID, nil
}

func (s *ProjectService) ensureNameAvailable(name string, excludeID *uint64) error {
	_, err := s.projectRepo.FindFirst(repository.ProjectFilter{Name: &name, ExcludeID: excludeID})
	switch {
	case err == nil:
		return ErrDuplicateProjectName
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check project name: %w", err)
	}
}
