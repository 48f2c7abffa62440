package credit

import (
	"context"
	"sync"

	"scribe/internal/domain"
)

// MemoryLedger is an in-process CreditLedger with the same conditional
// decrement semantics as the SQL ledger. It backs local runs and tests.
type MemoryLedger struct {
	mu       sync.Mutex
	accounts map[string]*domain.CreditAccount
	charged  map[string]bool
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		accounts: make(map[string]*domain.CreditAccount),
		charged:  make(map[string]bool),
	}
}

// Upsert sets an account's status and balance.
func (m *MemoryLedger) Upsert(account domain.CreditAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := account
	m.accounts[account.UserID] = &acc
}

// Account returns a copy of the stored account.
func (m *MemoryLedger) Account(userID string) (domain.CreditAccount, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[userID]
	if !ok {
		return domain.CreditAccount{}, false
	}
	return *acc, true
}

func (m *MemoryLedger) Debit(_ context.Context, userID, jobID string) (domain.CreditDebit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[userID]
	if !ok {
		return domain.CreditDebit{}, nil
	}
	out := domain.CreditDebit{Found: true, Status: acc.SubscriptionStatus, Remaining: acc.RemainingCredits}
	if m.charged[jobID] {
		out.AlreadyCharged = true
		return out, nil
	}
	if acc.SubscriptionStatus != domain.SubscriptionActive {
		return out, nil
	}
	if acc.RemainingCredits <= 0 {
		return out, nil
	}
	acc.RemainingCredits--
	m.charged[jobID] = true
	out.Remaining = acc.RemainingCredits
	out.Debited = true
	return out, nil
}

var _ domain.CreditLedger = (*MemoryLedger)(nil)
