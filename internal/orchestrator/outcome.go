package orchestrator

// Outcome tells the transport what to do with a delivery.
type Outcome int

const (
	// Completed: artifact stored and job COMPLETED.
	Completed Outcome = iota
	// Failed: job marked FAILED; redelivery would not help.
	Failed
	// Denied: credit gate refused; job marked FAILED with the denial message.
	Denied
	// Dropped: the message itself is unusable and is discarded.
	Dropped
	// Retry: the transport should redeliver the message.
	Retry
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Denied:
		return "denied"
	case Dropped:
		return "dropped"
	case Retry:
		return "retry"
	default:
		return "unknown"
	}
}

// Redeliver reports whether the message should be handed out again.
func (o Outcome) Redeliver() bool { return o == Retry }

// Delivery is one queue message as received by a transport.
type Delivery struct {
	MessageID string
	Body      []byte
}

// Result is the per-message processing record.
type Result struct {
	MessageID string
	JobID     string
	Outcome   Outcome
	Err       error
}

// BatchResult lists the per-message results and the ids to redeliver.
type BatchResult struct {
	Results  []Result
	Failures []string
}
