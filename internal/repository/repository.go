package repository

import (
	"gorm.io/gorm"

	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/query"
)

var (
	// ErrNotFound is returned by every repository when a lookup matches nothing.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicateKey is returned when a write violates a unique constraint.
	ErrDuplicateKey = gorm.ErrDuplicatedKey
)

// IssueRepository defines the interface for issue data access
type IssueRepository interface {
	// Create creates a new issue
	Create(issue *models.Issue) error

	// FindByID finds an issue by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Issue, error)

	// FindMany returns issues matching filter, ordered by sort, starting at
	// offset. A non-positive limit returns every remaining match.
	FindMany(filter query.Filter, sort query.Sort, offset, limit int) ([]models.Issue, error)

	// Count counts issues matching filter
	Count(filter query.Filter) (int64, error)

	// Update saves every field of issue
	Update(issue *models.Issue) error
}

// ProjectFilter holds filtering options for project lookups
type ProjectFilter struct {
	Name      *string
	ExcludeID *uint64
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// FindFirst returns the matching project with the smallest ID
	FindFirst(filter ProjectFilter) (*models.Project, error)

	// FindMany returns matching projects ordered by ID
	FindMany(filter ProjectFilter) ([]models.Project, error)

	// Update saves every field of project
	Update(project *models.Project) error

	// Delete deletes a project by ID
	Delete(id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List returns every user ordered by name
	List() ([]models.User, error)
}
