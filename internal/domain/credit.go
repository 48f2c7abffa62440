package domain

import "time"

const SubscriptionActive = "active"

// CreditAccount is a user's metered quota for billable generations.
type CreditAccount struct {
	UserID             string
	SubscriptionStatus string
	RemainingCredits   int
	UpdatedAt          time.Time
}

// CreditDebit reports the outcome of one conditional decrement.
type CreditDebit struct {
	Found          bool
	Status         string
	Remaining      int
	Debited        bool
	AlreadyCharged bool
}
