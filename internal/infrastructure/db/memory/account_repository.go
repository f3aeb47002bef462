package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

type AccountRepository struct {
	s *Store
}

func NewAccountRepository(s *Store) *AccountRepository {
	return &AccountRepository{s: s}
}

func (r *AccountRepository) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.accounts {
		if existing.Email == a.Email {
			return nil, domain.ErrEmailTaken
		}
		if existing.Username == a.Username {
			return nil, domain.ErrUsernameTaken
		}
	}

	c := cloneAccount(a)
	c.ID = r.s.next("accounts")
	r.s.accounts[c.ID] = c
	return cloneAccount(c), nil
}

func (r *AccountRepository) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Username, username) {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *AccountRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *AccountRepository) List(_ context.Context) ([]*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Account, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AccountRepository) Update(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[a.ID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	for id, existing := range r.s.accounts {
		if id != a.ID && existing.Username == a.Username {
			return nil, domain.ErrUsernameTaken
		}
	}

	r.s.accounts[a.ID] = cloneAccount(a)
	return cloneAccount(a), nil
}

// Delete removes an account. Books and comments keep their dangling owner IDs.
func (r *AccountRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.s.accounts, id)
	return nil
}

func (r *AccountRepository) Usernames(_ context.Context, ids []int64) (map[int64]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		if a, ok := r.s.accounts[id]; ok {
			out[id] = a.Username
		}
	}
	return out, nil
}
