// Package memory implements the repository interfaces with in-memory maps.
// It backs DB_DRIVER=memory and shares filtering and ordering with the
// query package, so it orders results exactly like the SQL repositories.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/query"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
)

// Store holds every collection. The repositories it hands out share its lock.
type Store struct {
	mu sync.RWMutex

	issues   map[uint64]models.Issue
	projects map[uint64]models.Project
	users    map[string]models.User

	lastIssueID   uint64
	lastProjectID uint64

	now func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		issues:   make(map[uint64]models.Issue),
		projects: make(map[uint64]models.Project),
		users:    make(map[string]models.User),
		now:      time.Now,
	}
}

// Issues returns an IssueRepository backed by s.
func (s *Store) Issues() repository.IssueRepository { return &issueRepo{s} }

// Projects returns a ProjectRepository backed by s.
func (s *Store) Projects() repository.ProjectRepository { return &projectRepo{s} }

// Users returns a UserRepository backed by s.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

type issueRepo struct{ s *Store }

func (r *issueRepo) Create(issue *models.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.lastIssueID++
	now := r.s.now()
	issue.ID = r.s.lastIssueID
	if issue.Status == "" {
		issue.Status = models.IssueStatusOpen
	}
	if issue.IssueType == "" {
		issue.IssueType = models.IssueTypeGeneral
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now

	r.s.issues[issue.ID] = stripIssue(*issue)
	return nil
}

func (r *issueRepo) FindByID(id uint64, preload ...string) (*models.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	issue, ok := r.s.issues[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.s.hydrate(&issue)
	return &issue, nil
}

func (r *issueRepo) FindMany(filter query.Filter, sort query.Sort, offset, limit int) ([]models.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.issueSlice()
	sorted := query.Apply(query.Plan{Filter: filter, Sort: sort, Page: 1, PageSize: len(all) + 1}, all).Items

	if offset < 0 {
		offset = 0
	}
	if offset >= len(sorted) {
		return []models.Issue{}, nil
	}
	end := len(sorted)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return r.s.hydrateAll(sorted[offset:end]), nil
}

func (r *issueRepo) Count(filter query.Filter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total int64
	for _, issue := range r.s.issues {
		if filter.Matches(issue) {
			total++
		}
	}
	return total, nil
}

func (r *issueRepo) Update(issue *models.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.issues[issue.ID]
	if !ok {
		return repository.ErrNotFound
	}
	issue.CreatedAt = existing.CreatedAt
	issue.UpdatedAt = r.s.now()
	r.s.issues[issue.ID] = stripIssue(*issue)
	return nil
}

type projectRepo struct{ s *Store }

func (r *projectRepo) Create(project *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.projects {
		if p.Name == project.Name {
			return repository.ErrDuplicateKey
		}
	}

	r.s.lastProjectID++
	now := r.s.now()
	project.ID = r.s.lastProjectID
	project.CreatedAt = now
	project.UpdatedAt = now

	stored := *project
	stored.Issues = nil
	r.s.projects[project.ID] = stored
	return nil
}

func (r *projectRepo) FindByID(id uint64) (*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	project, ok := r.s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &project, nil
}

func (r *projectRepo) FindFirst(filter repository.ProjectFilter) (*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := r.s.matchProjects(filter)
	if len(matches) == 0 {
		return nil, repository.ErrNotFound
	}
	return &matches[0], nil
}

func (r *projectRepo) FindMany(filter repository.ProjectFilter) ([]models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.matchProjects(filter), nil
}

func (r *projectRepo) Update(project *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.projects[project.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, p := range r.s.projects {
		if id != project.ID && p.Name == project.Name {
			return repository.ErrDuplicateKey
		}
	}

	project.CreatedAt = existing.CreatedAt
	project.UpdatedAt = r.s.now()
	stored := *project
	stored.Issues = nil
	r.s.projects[project.ID] = stored
	return nil
}

func (r *projectRepo) Delete(id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.projects, id)
	return nil
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, exists := r.s.users[user.ID]; exists {
		return repository.ErrDuplicateKey
	}

	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	stored.AssignedIssues = nil
	r.s.users[user.ID] = stored
	return nil
}

func (r *userRepo) FindByID(id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) FindByEmail(email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) List() ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]models.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// issueSlice must be called with mu held.
func (s *Store) issueSlice() []models.Issue {
	out := make([]models.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		out = append(out, issue)
	}
	return out
}

// matchProjects must be called with mu held.
func (s *Store) matchProjects(filter repository.ProjectFilter) []models.Project {
	out := []models.Project{}
	for _, p := range s.projects {
		if filter.Name != nil && p.Name != *filter.Name {
			continue
		}
		if filter.ExcludeID != nil && p.ID == *filter.ExcludeID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// hydrate fills relations the way gorm Preload would. Must be called with mu held.
func (s *Store) hydrate(issue *models.Issue) {
	if issue.AssignedToUserID != nil {
		if user, ok := s.users[*issue.AssignedToUserID]; ok {
			issue.AssignedToUser = &user
		}
	}
	if issue.ProjectID != nil {
		if project, ok := s.projects[*issue.ProjectID]; ok {
			issue.Project = &project
		}
	}
}

func (s *Store) hydrateAll(issues []models.Issue) []models.Issue {
	out := make([]models.Issue, len(issues))
	for i, issue := range issues {
		s.hydrate(&issue)
		out[i] = issue
	}
	return out
}

func stripIssue(issue models.Issue) models.Issue {
	issue.AssignedToUser = nil
	issue.Project = nil
	return issue
}
