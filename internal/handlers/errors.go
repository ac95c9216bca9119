package handlers

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/issue-tracker-api/internal/errors"
	"github.com/yukikurage/issue-tracker-api/internal/services"
)

// respondError maps a service error to its HTTP response.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		apierrors.BadRequestWithDetails(c, verr.Error(), verr.Fields)
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidProject),
		errors.Is(err, services.ErrInvalidUser):
		apierrors.InvalidReference(c, err.Error())
	case errors.Is(err, services.ErrIssueNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrDuplicateProjectName),
		errors.Is(err, services.ErrProjectHasIssues),
		errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service not configured")
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		apierrors.InternalError(c, "")
	}
}
