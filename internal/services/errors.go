package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIssueNotFound        = errors.New("issue not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrInvalidProject       = errors.New("invalid project")
	ErrInvalidUser          = errors.New("invalid user")
	ErrDuplicateProjectName = errors.New("a project with this name already exists")
	ErrProjectHasIssues     = errors.New("project has dependent issues")
)

// FieldError describes one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation, not just the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "validation failed: " + strings.Join(names, ", ")
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ProjectHasIssuesError blocks deletion of a project that still has issues.
type ProjectHasIssuesError struct {
	ProjectName string
	IssueCount  int64
}

func (e *ProjectHasIssuesError) Error() string {
	return fmt.Sprintf("cannot delete project %q: it has %d dependent issues", e.ProjectName, e.IssueCount)
}

func (e *ProjectHasIssuesError) Is(target error) bool {
	return target == ErrProjectHasIssues
}
