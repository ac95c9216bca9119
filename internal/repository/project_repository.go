package repository

import (
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) scoped(filter ProjectFilter) *gorm.DB {
	q := r.db.Model(&models.Project{})
	if filter.Name != nil {
		q = q.Where("projects.name = ?", *filter.Name)
	}
	if filter.ExcludeID != nil {
		q = q.Where("projects.id <> ?", *filter.ExcludeID)
	}
	return q
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindFirst returns the matching project with the smallest ID
func (r *GormProjectRepository) FindFirst(filter ProjectFilter) (*models.Project, error) {
	var project models.Project
	if err := r.scoped(filter).Order("projects.id ASC").First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindMany returns matching projects ordered by ID
func (r *GormProjectRepository) FindMany(filter ProjectFilter) ([]models.Project, error) {
	projects := []models.Project{}
	if err := r.scoped(filter).Order("projects.id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit("Issues").Save(project).Error
}

// Delete deletes a project
func (r *GormProjectRepository) Delete(id uint64) error {
	result := r.db.Delete(&models.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
