package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/issue-tracker-api/internal/database"
	"github.com/yukikurage/issue-tracker-api/internal/dto"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
	"github.com/yukikurage/issue-tracker-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// APITestSuite drives the full route table against an in-memory SQLite database
type APITestSuite struct {
	suite.Suite
	db      *gorm.DB
	router  *gin.Engine
	auth    *services.AuthService
	cookies []*http.Cookie
	user    *models.User
}

// SetupTest runs before each test
func (suite *APITestSuite) SetupTest() {
	var err error
	gin.SetMode(gin.TestMode)

	suite.db, err = database.Open(sqlite.Open(":memory:"), logger.Default.LogMode(logger.Silent))
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(database.MigrateDatabase(suite.db))

	issueRepo := repository.NewIssueRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	suite.auth = services.NewAuthService(userRepo)
	issueService := services.NewIssueService(issueRepo, projectRepo, userRepo, services.NewLogNotifier(quiet), quiet)
	projectService := services.NewProjectService(projectRepo, issueRepo)

	suite.router = newSessionRouter()
	RegisterRoutes(suite.router,
		NewAuthHandler(suite.auth),
		NewIssueHandler(issueService, services.NewAIService("")),
		NewProjectHandler(projectService),
	)

	suite.user, err = suite.auth.Signup(services.SignupInput{Name: "Ada", Email: "ada@example.com", Password: "supersecret"})
	suite.Require().NoError(err)

	w := postJSON(suite.T(), suite.router, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "supersecret",
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.cookies = w.Result().Cookies()
}

// TearDownTest runs after each test
func (suite *APITestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *APITestSuite) request(method, path string, body string, authed bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		for _, c := range suite.cookies {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) decode(w *httptest.ResponseRecorder, v any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (suite *APITestSuite) createProject(name string) dto.ProjectDTO {
	w := suite.request(http.MethodPost, "/api/projects", `{"name":"`+name+`"}`, true)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var project dto.ProjectDTO
	suite.decode(w, &project)
	return project
}

func (suite *APITestSuite) createIssue(body string) dto.IssueDTO {
	w := suite.request(http.MethodPost, "/api/issues", body, true)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var issue dto.IssueDTO
	suite.decode(w, &issue)
	return issue
}

func (suite *APITestSuite) TestEndToEnd_DefaultProjectAndList() {
	p1 := suite.createProject("P1")
	suite.createIssue(`{"title":"T1","description":"D1"}`)

	w := suite.request(http.MethodGet, "/api/issues", "", false)
	suite.Require().Equal(http.StatusOK, w.Code)

	var list dto.IssueListResponse
	suite.decode(w, &list)
	suite.Require().Len(list.Issues, 1)
	assert.Equal(suite.T(), int64(1), list.TotalCount)
	suite.Require().NotNil(list.Issues[0].ProjectID)
	assert.Equal(suite.T(), p1.ID, *list.Issues[0].ProjectID)
	assert.Equal(suite.T(), models.IssueStatusOpen, list.Issues[0].Status)
	suite.Require().NotNil(list.Issues[0].Project)
	assert.Equal(suite.T(), "P1", list.Issues[0].Project.Name)
}

func (suite *APITestSuite) TestListIssues_MalformedParamsFallBack() {
	suite.createIssue(`{"title":"T1","description":"D1"}`)
	suite.createIssue(`{"title":"T2","description":"D2"}`)

	w := suite.request(http.MethodGet, "/api/issues?status=nope&sortBy=priority&sortOrder=up&page=-4&pageSize=abc&projectId=x&userId=-1", "", false)
	suite.Require().Equal(http.StatusOK, w.Code)

	var list dto.IssueListResponse
	suite.decode(w, &list)
	assert.Equal(suite.T(), int64(2), list.TotalCount)
	assert.Equal(suite.T(), 1, list.Page)
	assert.Equal(suite.T(), 10, list.PageSize)
	assert.Len(suite.T(), list.Issues, 2)
}

func (suite *APITestSuite) TestListIssues_PageBeyondEnd() {
	suite.createIssue(`{"title":"T1","description":"D1"}`)

	w := suite.request(http.MethodGet, "/api/issues?page=5", "", false)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"issues":[]`)
	assert.Contains(suite.T(), w.Body.String(), `"totalCount":1`)
}

func (suite *APITestSuite) TestCreateIssue_RequiresAuth() {
	w := suite.request(http.MethodPost, "/api/issues", `{"title":"T1","description":"D1"}`, false)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *APITestSuite) TestCreateIssue_ValidationDetails() {
	w := suite.request(http.MethodPost, "/api/issues", `{"title":"","description":""}`, true)
	suite.Require().Equal(http.StatusBadRequest, w.Code)

	var body struct {
		Code    string                `json:"code"`
		Details []services.FieldError `json:"details"`
	}
	suite.decode(w, &body)
	assert.Equal(suite.T(), "INVALID_INPUT", body.Code)
	fields := make([]string, len(body.Details))
	for i, d := range body.Details {
		fields[i] = d.Field
	}
	assert.ElementsMatch(suite.T(), []string{"title", "description"}, fields)
}

func (suite *APITestSuite) TestCreateIssue_InvalidProject() {
	w := suite.request(http.MethodPost, "/api/issues", `{"title":"T1","description":"D1","projectId":99}`, true)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "INVALID_REFERENCE")
}

func (suite *APITestSuite) TestUpdateIssue_AssignAndClear() {
	project := suite.createProject("P1")
	issue := suite.createIssue(`{"title":"T1","description":"D1"}`)
	path := "/api/issues/" + itoa(issue.ID)

	w := suite.request(http.MethodPatch, path, `{"assignedToUserId":"`+suite.user.ID+`","status":"IN_PROGRESS"}`, true)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.IssueDTO
	suite.decode(w, &updated)
	suite.Require().NotNil(updated.AssignedToUser)
	assert.Equal(suite.T(), "Ada", updated.AssignedToUser.Name)
	assert.Equal(suite.T(), models.IssueStatusInProgress, updated.Status)

	w = suite.request(http.MethodPatch, path, `{"assignedToUserId":null,"projectId":null}`, true)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	updated = dto.IssueDTO{}
	suite.decode(w, &updated)
	assert.Nil(suite.T(), updated.AssignedToUserID)
	assert.Nil(suite.T(), updated.ProjectID)
	assert.Equal(suite.T(), models.IssueStatusInProgress, updated.Status)

	w = suite.request(http.MethodPatch, path, `{"projectId":`+itoa(project.ID)+`}`, true)
	suite.Require().Equal(http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestUpdateIssue_Errors() {
	issue := suite.createIssue(`{"title":"T1","description":"D1"}`)
	path := "/api/issues/" + itoa(issue.ID)

	w := suite.request(http.MethodPatch, path, `{"title":""}`, true)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"field":"title"`)

	w = suite.request(http.MethodPatch, path, `{"assignedToUserId":"ghost"}`, true)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPatch, "/api/issues/999", `{"title":"x"}`, true)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPatch, "/api/issues/abc", `{"title":"x"}`, true)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPatch, path, `not json`, true)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *APITestSuite) TestGetIssueAndSummary() {
	issue := suite.createIssue(`{"title":"T1","description":"D1","issueType":"BUG"}`)

	w := suite.request(http.MethodGet, "/api/issues/"+itoa(issue.ID), "", false)
	suite.Require().Equal(http.StatusOK, w.Code)
	var got dto.IssueDTO
	suite.decode(w, &got)
	assert.Equal(suite.T(), models.IssueTypeBug, got.IssueType)

	w = suite.request(http.MethodGet, "/api/issues/404", "", false)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/issues/summary", "", false)
	suite.Require().Equal(http.StatusOK, w.Code)
	var summary services.IssueSummary
	suite.decode(w, &summary)
	assert.Equal(suite.T(), services.IssueSummary{Open: 1}, summary)
}

func (suite *APITestSuite) TestGenerateIssues_NotConfigured() {
	w := suite.request(http.MethodPost, "/api/issues/generate", `{"text":"fix login"}`, true)
	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

func (suite *APITestSuite) TestProjects_DuplicateAndDelete() {
	alpha := suite.createProject("Alpha")

	w := suite.request(http.MethodPost, "/api/projects", `{"name":"  Alpha  "}`, true)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	for i := 0; i < 3; i++ {
		suite.createIssue(`{"title":"T","description":"D"}`)
	}

	w = suite.request(http.MethodDelete, "/api/projects/"+itoa(alpha.ID), "", true)
	suite.Require().Equal(http.StatusConflict, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "3")
	assert.Contains(suite.T(), w.Body.String(), "Alpha")

	empty := suite.createProject("Empty")
	w = suite.request(http.MethodDelete, "/api/projects/"+itoa(empty.ID), "", true)
	suite.Require().Equal(http.StatusOK, w.Code)
	var deleted dto.DeletedResponse
	suite.decode(w, &deleted)
	assert.Equal(suite.T(), empty.ID, deleted.ID)

	w = suite.request(http.MethodGet, "/api/projects/"+itoa(empty.ID), "", false)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestProjects_UpdateAndList() {
	alpha := suite.createProject("Alpha")
	suite.createProject("Beta")

	w := suite.request(http.MethodPatch, "/api/projects/"+itoa(alpha.ID), `{"name":"Beta"}`, true)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	w = suite.request(http.MethodPatch, "/api/projects/"+itoa(alpha.ID), `{"name":"","description":"docs"}`, true)
	suite.Require().Equal(http.StatusOK, w.Code)
	var updated dto.ProjectDTO
	suite.decode(w, &updated)
	assert.Equal(suite.T(), "Alpha", updated.Name)
	suite.Require().NotNil(updated.Description)
	assert.Equal(suite.T(), "docs", *updated.Description)

	w = suite.request(http.MethodGet, "/api/projects", "", false)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ProjectListResponse
	suite.decode(w, &list)
	suite.Require().Len(list.Projects, 2)
	assert.Equal(suite.T(), "Alpha", list.Projects[0].Name)
}

func (suite *APITestSuite) TestListUsers() {
	w := suite.request(http.MethodGet, "/api/users", "", false)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "ada@example.com")
	assert.NotContains(suite.T(), w.Body.String(), "password")
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
