package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users  map[int64]*domain.User
	nextID int64

	findEmailErr error // if set, FindByEmail returns this error
	createErr    error // if set, Create returns this error
	updateErr    error // if set, Update returns this error
	createCalls  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.createCalls++
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailExists
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = r.nextID
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findEmailErr != nil {
		return nil, r.findEmailErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id int64, up domain.UserUpdate) (*domain.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Email != nil {
		u.Email = *up.Email
	}
	if up.Role != nil {
		u.Role = *up.Role
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	delete(r.users, id)
	return cloneUser(u), nil
}

func (r *stubUserRepo) seed(name, email string, role domain.Role) *domain.User {
	r.nextID++
	u := &domain.User{ID: r.nextID, Name: name, Email: email, Role: role, PasswordHash: "hashed:secret123"}
	r.users[u.ID] = u
	return cloneUser(u)
}

// ---------------------------------------------------------------------------
// Hasher / token stubs
// ---------------------------------------------------------------------------

type stubHasher struct {
	hashErr error
}

func (h *stubHasher) Hash(_ context.Context, password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + password, nil
}

func (h *stubHasher) Compare(_ context.Context, hash, password string) (bool, error) {
	if !strings.HasPrefix(hash, "hashed:") {
		return false, errors.New("malformed hash")
	}
	return hash == "hashed:"+password, nil
}

type stubIssuer struct {
	issued []ports.TokenSubject
}

func (i *stubIssuer) Issue(sub ports.TokenSubject) (string, time.Time, error) {
	i.issued = append(i.issued, sub)
	return "token-for-" + sub.Email, time.Now().Add(24 * time.Hour), nil
}

// ---------------------------------------------------------------------------
// Protection engine stub
// ---------------------------------------------------------------------------

type stubEngine struct {
	result    ports.ProtectResult
	err       error
	lastReq   ports.ProtectRequest
	lastQuota domain.QuotaRule
}

func (e *stubEngine) Protect(_ context.Context, req ports.ProtectRequest, quota domain.QuotaRule) (ports.ProtectResult, error) {
	e.lastReq = req
	e.lastQuota = quota
	return e.result, e.err
}
