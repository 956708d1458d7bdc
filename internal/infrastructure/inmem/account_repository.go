// Package inmem provides a mutex-guarded in-memory AccountRepository with
// the same uniqueness and not-found semantics as the Postgres one. It backs
// unit tests and local experimentation without a database.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/dwisetyawan/account-service/internal/domain/entity"
	"github.com/dwisetyawan/account-service/internal/domain/repository"
)

type AccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*entity.Account)}
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		return clone(a), nil
	}
	return nil, &entity.NotFoundError{Key: "id", Value: id}
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, &entity.NotFoundError{Key: "email", Value: email}
}

func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			return clone(a), nil
		}
	}
	return nil, &entity.NotFoundError{Key: "username", Value: username}
}

func (r *AccountRepository) List(_ context.Context) ([]*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, clone(a))
	}
	return out, nil
}

func (r *AccountRepository) Insert(_ context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return &entity.ConflictError{Field: "username", Value: a.Username}
		}
		if existing.Email == a.Email {
			return &entity.ConflictError{Field: "email", Value: a.Email}
		}
	}
	now := time.Now().UTC()
	a.Created = now
	a.Modified = now
	r.accounts[a.ID] = clone(a)
	return nil
}

func (r *AccountRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return &entity.NotFoundError{Key: "id", Value: id}
	}
	a.PasswordHash = passwordHash
	a.Modified = time.Now().UTC()
	return nil
}

func (r *AccountRepository) UpdateUsername(_ context.Context, id, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return &entity.NotFoundError{Key: "id", Value: id}
	}
	for otherID, other := range r.accounts {
		if otherID != id && other.Username == username {
			return &entity.ConflictError{Field: "username", Value: username}
		}
	}
	a.Username = username
	a.Modified = time.Now().UTC()
	return nil
}

func (r *AccountRepository) UpdateImagePath(_ context.Context, id, imagePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return &entity.NotFoundError{Key: "id", Value: id}
	}
	a.ImagePath = imagePath
	a.Modified = time.Now().UTC()
	return nil
}

func (r *AccountRepository) UpdateLastLogin(_ context.Context, id string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return time.Time{}, &entity.NotFoundError{Key: "id", Value: id}
	}
	now := time.Now().UTC()
	a.LastLogin = &now
	a.Modified = now
	return now, nil
}

func clone(a *entity.Account) *entity.Account {
	c := *a
	if a.BirthDate != nil {
		t := *a.BirthDate
		c.BirthDate = &t
	}
	if a.LastLogin != nil {
		t := *a.LastLogin
		c.LastLogin = &t
	}
	return &c
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
