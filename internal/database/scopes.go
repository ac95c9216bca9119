package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/issue-tracker-api/internal/query"
)

// Paginate applies offset and limit to a GORM query. A non-positive limit leaves the query unbounded.
func Paginate(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Offset(offset).Limit(limit)
	}
}

// FilterIssues restricts an issues query to the constraints present in f.
func FilterIssues(f query.Filter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != nil {
			db = db.Where("issues.status = ?", *f.Status)
		}
		if f.IssueType != nil {
			db = db.Where("issues.issue_type = ?", *f.IssueType)
		}
		if f.AssignedToUserID != nil {
			db = db.Where("issues.assigned_to_user_id = ?", *f.AssignedToUserID)
		}
		if f.ProjectID != nil {
			db = db.Where("issues.project_id = ?", *f.ProjectID)
		}
		return db
	}
}

// SortIssues orders an issues query by s, breaking ties by id ascending.
func SortIssues(s query.Sort) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{
			Column: clause.Column{Table: "issues", Name: s.Field.Column()},
			Desc:   s.Order != query.Asc,
		}).Order(clause.OrderByColumn{
			Column: clause.Column{Table: "issues", Name: "id"},
		})
	}
}
