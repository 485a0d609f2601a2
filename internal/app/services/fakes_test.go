package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/pkg/apperrors"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
	err    error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[int64]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) List(_ context.Context, filter dto.UserFilter) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if filter.Role == "" || string(u.Role) == filter.Role {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), r.err
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id int64, role models.RoleType) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u.Role = role
	return u, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id int64, changes map[string]interface{}) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if v, ok := changes["first_name"].(string); ok {
		u.FirstName = v
	}
	if v, ok := changes["last_name"].(string); ok {
		u.LastName = v
	}
	if v, ok := changes["phone"]; ok {
		u.Phone, _ = v.(*string)
	}
	return u, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = passwordHash
	return nil
}

func (r *fakeUserRepo) ToggleActive(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u.IsActive = !u.IsActive
	return u, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) ListEmails(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var emails []string
	for id := int64(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			emails = append(emails, u.Email)
		}
	}
	return emails, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type fakeCourseRepo struct {
	mu              sync.Mutex
	nextID          int64
	courses         map[int64]*models.Course
	withApplication map[int64]bool
}

func newFakeCourseRepo(courses ...*models.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{courses: map[int64]*models.Course{}, withApplication: map[int64]bool{}}
	for _, c := range courses {
		r.courses[c.ID] = c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Code == course.Code {
			return apperrors.ErrCourseCodeExists
		}
	}
	r.nextID++
	course.ID = r.nextID
	r.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id int64) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return c, nil
}

func (r *fakeCourseRepo) FindActiveByName(_ context.Context, name string) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := int64(1); id <= r.nextID; id++ {
		c, ok := r.courses[id]
		if ok && c.IsActive && strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return nil, apperrors.ErrCourseNotFound
}

func (r *fakeCourseRepo) List(_ context.Context, filter dto.CourseFilter) ([]*models.Course, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Course
	for id := int64(1); id <= r.nextID; id++ {
		c, ok := r.courses[id]
		if ok && (!filter.ActiveOnly || c.IsActive) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCourseRepo) Update(_ context.Context, id int64, changes map[string]interface{}) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	if v, ok := changes["name"].(string); ok {
		c.Name = v
	}
	if v, ok := changes["code"].(string); ok {
		c.Code = v
	}
	return c, nil
}

func (r *fakeCourseRepo) CodeExists(_ context.Context, code string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Code == code && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCourseRepo) HasApplications(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.withApplication[id], nil
}

func (r *fakeCourseRepo) ToggleActive(_ context.Context, id int64) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	c.IsActive = !c.IsActive
	return c, nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *fakeCourseRepo) Statistics(_ context.Context, _ int64) (*models.CourseStatistics, error) {
	return &models.CourseStatistics{TotalApplications: 3, Pending: 1, Approved: 1, Rejected: 1}, nil
}

func (r *fakeCourseRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.courses)), nil
}

// fakeApplicationRepo mirrors the conditional updates of the SQL repository
type fakeApplicationRepo struct {
	mu     sync.Mutex
	nextID int64
	apps   map[int64]*models.Application
}

func newFakeApplicationRepo(apps ...*models.Application) *fakeApplicationRepo {
	r := &fakeApplicationRepo{apps: map[int64]*models.Application{}}
	for _, a := range apps {
		copied := *a
		r.apps[a.ID] = &copied
		if a.ID > r.nextID {
			r.nextID = a.ID
		}
	}
	return r
}

func (r *fakeApplicationRepo) Create(_ context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if strings.EqualFold(a.Email, app.Email) {
			return apperrors.ErrApplicationAlreadyExists
		}
	}
	r.nextID++
	app.ID = r.nextID
	app.Status = models.StatusPending
	app.Version = 1
	app.ApplicationDate = time.Now()
	copied := *app
	r.apps[app.ID] = &copied
	return nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, id int64) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeApplicationRepo) List(_ context.Context, filter dto.ApplicationFilter) ([]*models.Application, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Application
	for id := r.nextID; id >= 1; id-- {
		a, ok := r.apps[id]
		if ok && (filter.Status == "" || a.Status == filter.Status) {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeApplicationRepo) ListByEmail(_ context.Context, email string) ([]*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Application{}
	for _, a := range r.apps {
		if strings.EqualFold(a.Email, email) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) UpdateStatus(_ context.Context, id int64, status models.ApplicationStatus, notes *string, expectedVersion *int) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	if a.Status != models.StatusPending {
		return nil, apperrors.ErrApplicationDecided
	}
	if expectedVersion != nil && *expectedVersion != a.Version {
		return nil, apperrors.ErrApplicationStale
	}
	now := time.Now()
	a.Status = status
	a.ReviewDate = &now
	if notes != nil {
		a.AdminNotes = notes
	}
	a.Version++
	copied := *a
	return &copied, nil
}

func (r *fakeApplicationRepo) SetDocuments(_ context.Context, id int64, submitted bool, onlyPending bool) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	if onlyPending && a.Status != models.StatusPending {
		return nil, apperrors.ErrApplicationNotPending
	}
	now := time.Now()
	a.DocumentsSubmitted = submitted
	a.DocumentsUpdatedAt = &now
	a.Version++
	copied := *a
	return &copied, nil
}

func (r *fakeApplicationRepo) Delete(_ context.Context, id int64, onlyPending bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return apperrors.ErrApplicationNotFound
	}
	if onlyPending && a.Status != models.StatusPending {
		return apperrors.ErrApplicationNotPending
	}
	delete(r.apps, id)
	return nil
}

func (r *fakeApplicationRepo) CountByStatus(_ context.Context) (models.ApplicationStatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var counts models.ApplicationStatusCounts
	for _, a := range r.apps {
		counts.Add(a.Status, 1)
	}
	return counts, nil
}

func (r *fakeApplicationRepo) Recent(ctx context.Context, limit uint64) ([]*models.Application, error) {
	apps, _, err := r.List(ctx, dto.ApplicationFilter{})
	if uint64(len(apps)) > limit {
		apps = apps[:limit]
	}
	return apps, err
}

type notification struct {
	kind string
	app  *models.Application
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) record(kind string, app *models.Application) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{kind: kind, app: app})
}

func (n *recordingNotifier) ApplicationSubmitted(_ context.Context, app *models.Application) {
	n.record("submitted", app)
}

func (n *recordingNotifier) ApplicationChanged(eventType string, app *models.Application) {
	n.record(eventType, app)
}

func (n *recordingNotifier) ApplicationDeleted(app *models.Application) {
	n.record("deleted", app)
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var kinds []string
	for _, e := range n.events {
		kinds = append(kinds, e.kind)
	}
	return kinds
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func int64Ptr(i int64) *int64 { return &i }
