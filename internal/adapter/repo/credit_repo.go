package repo

import (
	"context"
	"errors"
	"fmt"

	"scribe/internal/domain"
	"scribe/internal/infra"
	"scribe/internal/sqlinline"
)

// CreditRepositoryPG implements domain.CreditLedger and the account
// maintenance used by the credits CLI.
type CreditRepositoryPG struct {
	sql infra.TxExecutor
}

func NewCreditRepository(sql infra.TxExecutor) *CreditRepositoryPG {
	return &CreditRepositoryPG{sql: sql}
}

// errNotDebited rolls back the charge row when the account cannot pay.
var errNotDebited = errors.New("credit not debited")

// Debit consumes one credit for jobID. The charge row and the decrement
// commit together, and a job that already has a charge row is reported as
// AlreadyCharged whatever the account state is now.
func (r *CreditRepositoryPG) Debit(ctx context.Context, userID, jobID string) (domain.CreditDebit, error) {
	var d domain.CreditDebit
	err := r.sql.InTx(ctx, func(tx infra.SQLExecutor) error {
		d = domain.CreditDebit{}
		err := tx.QueryRow(ctx, sqlinline.QLockCreditAccount, userID).Scan(&d.Status, &d.Remaining)
		if infra.IsNoRows(err) {
			return nil
		}
		if err != nil {
			return err
		}
		d.Found = true

		var charged string
		err = tx.QueryRow(ctx, sqlinline.QInsertCreditCharge, userID, jobID).Scan(&charged)
		if infra.IsNoRows(err) {
			d.AlreadyCharged = true
			return nil
		}
		if err != nil {
			return err
		}

		var remaining int
		err = tx.QueryRow(ctx, sqlinline.QConsumeCredit, userID).Scan(&remaining)
		if infra.IsNoRows(err) {
			return errNotDebited
		}
		if err != nil {
			return err
		}
		d.Remaining = remaining
		d.Debited = true
		return nil
	})
	if err != nil && !errors.Is(err, errNotDebited) {
		return domain.CreditDebit{}, fmt.Errorf("debit credit for %s: %w", userID, err)
	}
	return d, nil
}

// Account returns the credit account for userID.
func (r *CreditRepositoryPG) Account(ctx context.Context, userID string) (*domain.CreditAccount, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectCreditAccount, userID)
	return scanAccount(row)
}

// Upsert sets the subscription status and balance. With add set, credits is
// added to the current balance instead of replacing it.
func (r *CreditRepositoryPG) Upsert(ctx context.Context, userID, status string, credits int, add bool) (*domain.CreditAccount, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertCreditAccount, userID, status, credits, add)
	return scanAccount(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*domain.CreditAccount, error) {
	var acct domain.CreditAccount
	if err := row.Scan(&acct.UserID, &acct.SubscriptionStatus, &acct.RemainingCredits, &acct.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &acct, nil
}

var _ domain.CreditLedger = (*CreditRepositoryPG)(nil)
