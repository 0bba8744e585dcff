package service

import (
	"context"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/domain"
)

// fakeAccountRepo is an in-memory AccountRepository. It hands out the stored
// pointers directly, so mutations made by the service are visible to the test
// without a round trip.
type fakeAccountRepo struct {
	accounts map[string]*domain.Account
	saves    int
	creates  int
	err      error
}

func newFakeAccountRepo(accounts ...*domain.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
	for _, acc := range accounts {
		r.accounts[acc.ID] = acc
	}
	return r
}

func (r *fakeAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, acc := range r.accounts {
		if acc.Username == username {
			return acc, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.accounts[id], nil
}

func (r *fakeAccountRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, acc := range r.accounts {
		if acc.Username == username || acc.Email == email {
			return acc, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) Create(_ context.Context, acc *domain.Account) error {
	if r.err != nil {
		return r.err
	}
	r.creates++
	r.accounts[acc.ID] = acc
	return nil
}

func (r *fakeAccountRepo) Save(_ context.Context, acc *domain.Account) error {
	if r.err != nil {
		return r.err
	}
	r.saves++
	r.accounts[acc.ID] = acc
	return nil
}

type auditEntry struct {
	Event     string
	Desc      string
	AccountID string
}

type fakeAuditor struct {
	entries []auditEntry
}

func (a *fakeAuditor) Record(_ context.Context, event, desc, accountID string) {
	a.entries = append(a.entries, auditEntry{Event: event, Desc: desc, AccountID: accountID})
}

func (a *fakeAuditor) events() []string {
	names := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		names = append(names, e.Event)
	}
	return names
}
