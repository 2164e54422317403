package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"

	"github.com/stretchr/testify/mock"
)

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Resumes = append([]domain.Resume(nil), u.Resumes...)
	c.SavedJobs = append([]string(nil), u.SavedJobs...)
	c.NotInterestedJobCategories = append([]domain.NotInterestedCategory(nil), u.NotInterestedJobCategories...)
	c.AppliedJobs = append([]domain.AppliedJob(nil), u.AppliedJobs...)
	return &c
}

// memUsers is an in-memory domain.UserRepository with the same version guard
// as the postgres implementation.
type memUsers struct {
	mu   sync.Mutex
	rows map[string]*domain.User

	failUpdateProfile error
	resetAttempts     map[string]int
}

func newMemUsers(users ...*domain.User) *memUsers {
	m := &memUsers{rows: map[string]*domain.User{}, resetAttempts: map[string]int{}}
	for _, u := range users {
		if u.Version == 0 {
			u.Version = 1
		}
		m.rows[u.ID] = cloneUser(u)
	}
	return m
}

func (m *memUsers) get(id string) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.rows[id]; ok {
		return cloneUser(u)
	}
	return nil
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == user.Email {
			return apperror.DuplicateKey("Email is already registered")
		}
	}
	m.rows[user.ID] = cloneUser(user)
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u := m.get(id); u != nil {
		return u, nil
	}
	return nil, apperror.NotFound("User not found")
}

func (m *memUsers) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return m.GetByID(ctx, id)
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

func (m *memUsers) guarded(user *domain.User, apply func(row *domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[user.ID]
	if !ok {
		return apperror.NotFound("User not found")
	}
	if row.Version != user.Version {
		return apperror.Conflict("Profile was modified concurrently, reload and retry")
	}
	apply(row)
	row.Version++
	user.Version = row.Version
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, user *domain.User) error {
	if m.failUpdateProfile != nil {
		return m.failUpdateProfile
	}
	m.mu.Lock()
	for id, u := range m.rows {
		if id != user.ID && u.Email == user.Email {
			m.mu.Unlock()
			return apperror.DuplicateKey("An account with this email already exists")
		}
	}
	m.mu.Unlock()
	return m.guarded(user, func(row *domain.User) {
		row.Email = user.Email
		row.Profile = user.Profile
	})
}

func (m *memUsers) UpdateResumes(_ context.Context, user *domain.User) error {
	return m.guarded(user, func(row *domain.User) {
		row.Resumes = append([]domain.Resume(nil), user.Resumes...)
		row.ResumeURL = user.ResumeURL
		row.ResumeStorageID = user.ResumeStorageID
		row.ResumeDownloadable = user.ResumeDownloadable
	})
}

func (m *memUsers) set(userID string, apply func(row *domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[userID]
	if !ok {
		return apperror.NotFound("User not found")
	}
	apply(row)
	return nil
}

func (m *memUsers) SetWorkDomain(_ context.Context, user *domain.User, d string) error {
	if err := m.guarded(user, func(row *domain.User) { row.WorkDomain = d }); err != nil {
		return err
	}
	user.WorkDomain = d
	return nil
}

func (m *memUsers) SetPassword(_ context.Context, userID, hash string) error {
	return m.set(userID, func(row *domain.User) { row.PasswordHash = hash })
}

func (m *memUsers) SetResetCode(_ context.Context, userID, hash string, expiresAt time.Time) error {
	return m.set(userID, func(row *domain.User) {
		row.ResetCodeHash = hash
		row.ResetCodeExpiresAt = &expiresAt
		m.resetAttempts[userID] = 0
	})
}

func (m *memUsers) ClearResetCode(_ context.Context, userID string) error {
	return m.set(userID, func(row *domain.User) {
		row.ResetCodeHash = ""
		row.ResetCodeExpiresAt = nil
		m.resetAttempts[userID] = 0
	})
}

func (m *memUsers) RecordResetFailure(_ context.Context, userID string, maxAttempts int) (bool, error) {
	var exhausted bool
	err := m.set(userID, func(row *domain.User) {
		m.resetAttempts[userID]++
		if m.resetAttempts[userID] >= maxAttempts {
			row.ResetCodeHash = ""
			row.ResetCodeExpiresAt = nil
		}
		exhausted = row.ResetCodeHash == ""
	})
	return exhausted, err
}

func (m *memUsers) ListDomainMemberships(context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for _, u := range m.rows {
		if u.WorkDomain != "" {
			out[u.Email] = u.WorkDomain
		}
	}
	return out, nil
}

func (m *memUsers) mutate(userID string, apply func(row *domain.User)) (*domain.User, error) {
	if err := m.set(userID, apply); err != nil {
		return nil, err
	}
	return m.get(userID), nil
}

func (m *memUsers) AddSavedJob(_ context.Context, userID, jobID string) (*domain.User, error) {
	return m.mutate(userID, func(row *domain.User) {
		for _, j := range row.SavedJobs {
			if j == jobID {
				return
			}
		}
		row.SavedJobs = append(row.SavedJobs, jobID)
	})
}

func (m *memUsers) RemoveSavedJob(_ context.Context, userID, jobID string) (*domain.User, error) {
	return m.mutate(userID, func(row *domain.User) {
		out := row.SavedJobs[:0]
		for _, j := range row.SavedJobs {
			if j != jobID {
				out = append(out, j)
			}
		}
		row.SavedJobs = out
	})
}

func (m *memUsers) AddNotInterested(_ context.Context, userID string, c domain.NotInterestedCategory) (*domain.User, error) {
	return m.mutate(userID, func(row *domain.User) {
		for _, e := range row.NotInterestedJobCategories {
			if e == c {
				return
			}
		}
		row.NotInterestedJobCategories = append(row.NotInterestedJobCategories, c)
	})
}

func (m *memUsers) RemoveNotInterested(_ context.Context, userID string, c domain.NotInterestedCategory) (*domain.User, error) {
	return m.mutate(userID, func(row *domain.User) {
		out := row.NotInterestedJobCategories[:0]
		for _, e := range row.NotInterestedJobCategories {
			if e != c {
				out = append(out, e)
			}
		}
		row.NotInterestedJobCategories = out
	})
}

func (m *memUsers) AddAppliedJob(_ context.Context, userID string, job domain.AppliedJob) (*domain.User, error) {
	return m.mutate(userID, func(row *domain.User) {
		for _, e := range row.AppliedJobs {
			if e.JobID == job.JobID {
				return
			}
		}
		row.AppliedJobs = append(row.AppliedJobs, job)
	})
}

// memDomains is an in-memory domain.WorkDomainRepository.
type memDomains struct {
	mu      sync.Mutex
	entries map[domain.WorkDomain][]string
}

func newMemDomains() *memDomains {
	return &memDomains{entries: map[domain.WorkDomain][]string{}}
}

func (m *memDomains) members(name domain.WorkDomain) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string{}, m.entries[name]...)
	sort.Strings(out)
	return out
}

func (m *memDomains) Upsert(_ context.Context, name domain.WorkDomain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[name]; !ok {
		m.entries[name] = []string{}
	}
	return nil
}

func (m *memDomains) AddMember(_ context.Context, name domain.WorkDomain, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries[name] {
		if e == email {
			return nil
		}
	}
	m.entries[name] = append(m.entries[name], email)
	return nil
}

func (m *memDomains) RemoveMember(_ context.Context, name domain.WorkDomain, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, ok := m.entries[name]
	if !ok {
		return nil
	}
	out := []string{}
	for _, e := range list {
		if e != email {
			out = append(out, e)
		}
	}
	m.entries[name] = out
	return nil
}

func (m *memDomains) Get(_ context.Context, name domain.WorkDomain) (*domain.DomainEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, ok := m.entries[name]
	if !ok {
		return nil, apperror.NotFound("Domain not found")
	}
	return &domain.DomainEntry{Name: name, UserEmails: append([]string{}, list...)}, nil
}

func (m *memDomains) List(context.Context) ([]domain.DomainEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DomainEntry
	for name, list := range m.entries {
		out = append(out, domain.DomainEntry{Name: name, UserEmails: append([]string{}, list...)})
	}
	return out, nil
}

func (m *memDomains) ReplaceMembers(_ context.Context, name domain.WorkDomain, emails []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[name] = append([]string{}, emails...)
	return nil
}

// passthroughTx runs fn directly; the in-memory fakes have no rollback.
type passthroughTx struct{ calls int }

func (t *passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

// memBlobs records uploads and deletes.
type memBlobs struct {
	mu        sync.Mutex
	seq       int
	objects   map[string][]byte
	deleted   []string
	uploadErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (b *memBlobs) Upload(_ context.Context, data []byte, filename, kind string) (*domain.StoredObject, error) {
	if b.uploadErr != nil {
		return nil, b.uploadErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	id := fmt.Sprintf("%s/%d-%s", kind, b.seq, filename)
	b.objects[id] = data
	return &domain.StoredObject{StorageID: id, URL: "https://cdn.test/" + id}, nil
}

func (b *memBlobs) Delete(_ context.Context, storageID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, storageID)
	b.deleted = append(b.deleted, storageID)
	return nil
}

func (b *memBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendResetCode(ctx context.Context, to, code string, ttl time.Duration, resetURL string) error {
	return m.Called(ctx, to, code, ttl, resetURL).Error(0)
}

type MockLoginGuard struct {
	mock.Mock
}

func (m *MockLoginGuard) IsBlocked(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoginGuard) RecordFailedAttempt(ctx context.Context, email, ip string) (bool, error) {
	args := m.Called(ctx, email, ip)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoginGuard) ClearAttempts(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type MockUploadGuard struct {
	mock.Mock
}

func (m *MockUploadGuard) AllowUpload(ctx context.Context, ip, userID string) (bool, int, error) {
	args := m.Called(ctx, ip, userID)
	return args.Bool(0), args.Int(1), args.Error(2)
}
