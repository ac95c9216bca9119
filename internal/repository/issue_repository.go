package repository

import (
	"github.com/yukikurage/issue-tracker-api/internal/database"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/query"
	"gorm.io/gorm"
)

// GormIssueRepository is a GORM implementation of IssueRepository
type GormIssueRepository struct {
	db *gorm.DB
}

// NewIssueRepository creates a new IssueRepository
func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &GormIssueRepository{db: db}
}

// Create creates a new issue
func (r *GormIssueRepository) Create(issue *models.Issue) error {
	return r.db.Create(issue).Error
}

// FindByID finds an issue by ID with optional preloading
func (r *GormIssueRepository) FindByID(id uint64, preload ...string) (*models.Issue, error) {
	var issue models.Issue
	q := r.db

	for _, p := range preload {
		q = q.Preload(p)
	}

	if err := q.First(&issue, id).Error; err != nil {
		return nil, err
	}

	return &issue, nil
}

// FindMany retrieves filtered, sorted and paginated issues
func (r *GormIssueRepository) FindMany(filter query.Filter, sort query.Sort, offset, limit int) ([]models.Issue, error) {
	issues := []models.Issue{}

	err := r.db.Model(&models.Issue{}).
		Scopes(
			database.FilterIssues(filter),
			database.SortIssues(sort),
			database.Paginate(offset, limit),
		).
		Preload("AssignedToUser").
		Preload("Project").
		Find(&issues).Error
	if err != nil {
		return nil, err
	}

	return issues, nil
}

// Count counts issues matching filter
func (r *GormIssueRepository) Count(filter query.Filter) (int64, error) {
	var total int64
	err := r.db.Model(&models.Issue{}).
		Scopes(database.FilterIssues(filter)).
		Count(&total).Error
	return total, err
}

// Update updates an issue
func (r *GormIssueRepository) Update(issue *models.Issue) error {
	return r.db.Omit("AssignedToUser", "Project").Save(issue).Error
}
