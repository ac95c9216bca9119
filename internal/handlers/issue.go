package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/issue-tracker-api/internal/errors"
	"github.com/yukikurage/issue-tracker-api/internal/middleware"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/query"
	"github.com/yukikurage/issue-tracker-api/internal/services"
)

type IssueHandler struct {
	issueService *services.IssueService
	aiService    *services.AIService
}

func NewIssueHandler(issueService *services.IssueService, aiService *services.AIService) *IssueHandler {
	return &IssueHandler{
		issueService: issueService,
		aiService:    aiService,
	}
}

// ListIssues returns one page of issues. Unrecognized parameters fall back
// to their defaults instead of failing the request.
func (h *IssueHandler) ListIssues(c *gin.Context) {
	list, err := h.issueService.ListIssues(query.Params{
		Status:    c.Query("status"),
		IssueType: c.Query("issueType"),
		UserID:    c.Query("userId"),
		ProjectID: c.Query("projectId"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      c.Query("page"),
		PageSize:  c.Query("pageSize"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToIssueListResponse(*list))
}

// Summary returns issue counts per status
func (h *IssueHandler) Summary(c *gin.Context) {
	summary, err := h.issueService.Summary()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetIssue returns a specific issue by ID
func (h *IssueHandler) GetIssue(c *gin.Context) {
	issue, err := h.issueService.GetIssue(middleware.GetID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToIssueDTO(*issue))
}

// CreateIssue creates a new issue
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	type CreateIssueRequest struct {
		Title       string           `json:"title"`
		Description string           `json:"description"`
		IssueType   models.IssueType `json:"issueType"`
		ProjectID   *uint64          `json:"projectId"`
	}

	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	issue, err := h.issueService.CreateIssue(services.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		IssueType:   req.IssueType,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToIssueDTO(*issue))
}

// UpdateIssue updates an existing issue. Only the fields present in the body
// change; an explicit null for assignedToUserId or projectId clears it.
func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	type UpdateIssueRequest struct {
		Title            *string             `json:"title"`
		Description      *string             `json:"description"`
		Status           *models.IssueStatus `json:"status"`
		IssueType        *models.IssueType   `json:"issueType"`
		AssignedToUserID *string             `json:"assignedToUserId"`
		ProjectID        *uint64             `json:"projectId"`
	}

	body, err := c.GetRawData()
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var req UpdateIssueRequest
	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if err := json.Unmarshal(body, &present); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	issue, err := h.issueService.UpdateIssue(middleware.GetID(c), services.UpdateIssueInput{
		Title:            req.Title,
		Description:      req.Description,
		Status:           req.Status,
		IssueType:        req.IssueType,
		AssignedToUserID: req.AssignedToUserID,
		ClearAssignee:    isNull(present, "assignedToUserId"),
		ProjectID:        req.ProjectID,
		ClearProject:     isNull(present, "projectId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToIssueDTO(*issue))
}

// GenerateIssues drafts issues from free text. Nothing is persisted.
func (h *IssueHandler) GenerateIssues(c *gin.Context) {
	type GenerateRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.aiService.GenerateIssueDrafts(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.IssueDraftsResponse{Drafts: drafts})
}

func isNull(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	return ok && string(raw) == "null"
}
