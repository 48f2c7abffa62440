// Package credit meters billable generations against a user's subscription.
package credit

import (
	"context"
	"errors"
	"fmt"

	"scribe/internal/domain"
	"scribe/internal/infra"
)

// Reason names why a consumption was refused.
type Reason string

const (
	ReasonNoSubscription Reason = "no_subscription"
	ReasonInactive       Reason = "inactive"
	ReasonExhausted      Reason = "exhausted"
)

var denialMessages = map[Reason]string{
	ReasonNoSubscription: "Aucun abonnement trouvé. Veuillez vous abonner sur thorpodcast.link",
	ReasonInactive:       "Votre abonnement n'est pas actif. Veuillez renouveler sur thorpodcast.link",
	ReasonExhausted:      "Crédits insuffisants. Veuillez recharger sur thorpodcast.link",
}

// Denial is a permanent business-rule refusal. Message is shown to the user.
type Denial struct {
	Reason  Reason
	Message string
}

func (d *Denial) Error() string { return d.Message }

func deny(reason Reason) *Denial {
	return &Denial{Reason: reason, Message: denialMessages[reason]}
}

// AsDenial extracts a *Denial from err.
func AsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// Gate consumes one credit per job.
type Gate struct {
	ledger domain.CreditLedger
	logger *infra.Logger
}

func NewGate(ledger domain.CreditLedger, logger *infra.Logger) *Gate {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Gate{ledger: ledger, logger: logger}
}

// TryConsume debits one credit for jobID and returns the remaining balance.
// A job that was already charged is not charged again. Refusals are returned
// as *Denial; ledger failures are wrapped and are not denials.
func (g *Gate) TryConsume(ctx context.Context, userID, jobID string) (int, error) {
	debit, err := g.ledger.Debit(ctx, userID, jobID)
	if err != nil {
		return 0, fmt.Errorf("credit: debit: %w", err)
	}
	log := g.logger.With().Str("user_id", userID).Str("job_id", jobID).Logger()
	switch {
	case !debit.Found:
		log.Warn().Msg("credit: no subscription")
		return 0, deny(ReasonNoSubscription)
	case debit.AlreadyCharged:
		log.Info().Int("remaining", debit.Remaining).Msg("credit: job already charged")
		return debit.Remaining, nil
	case debit.Status != domain.SubscriptionActive:
		log.Warn().Str("status", debit.Status).Msg("credit: subscription not active")
		return 0, deny(ReasonInactive)
	case debit.Debited:
		log.Info().Int("remaining", debit.Remaining).Msg("credit: consumed")
		return debit.Remaining, nil
	default:
		log.Warn().Msg("credit: exhausted")
		return 0, deny(ReasonExhausted)
	}
}
