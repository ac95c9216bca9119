package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/issue-tracker-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes used by issue filtering and sorting.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model any
		name  string
	}{
		{&models.Issue{}, "Status"},
		{&models.Issue{}, "IssueType"},
		{&models.Issue{}, "AssignedToUserID"},
		{&models.Issue{}, "ProjectID"},
		{&models.Issue{}, "CreatedAt"},
		{&models.Project{}, "Name"},
		{&models.User{}, "Email"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			slog.Debug("index already exists, skipping", "field", idx.name)
			continue
		}

		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.name, err)
		}

		slog.Info("created index", "field", idx.name)
	}

	return nil
}

// MigrateDatabase runs all database migrations
func MigrateDatabase(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return err
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
