package exchange

import "time"

// Outcome is how a single question/answer round trip ended.
type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeFailed   Outcome = "failed"
)

// Failure kinds stored in Exchange.Detail.
const (
	DetailStatus        = "status"
	DetailTransport     = "transport"
	DetailTimeout       = "timeout"
	DetailCanceled      = "canceled"
	DetailDecode        = "decode"
	DetailMissingAnswer = "missing answer"
	DetailNoQuestion    = "no question"
)

// Exchange records the result of one request to the answer endpoint.
// The question and answer themselves are never stored.
type Exchange struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Outcome     Outcome   `json:"outcome"`
	Status      int       `json:"status,omitempty"`
	Detail      string    `json:"detail,omitempty"` // failure kind, never upstream text
	HasLocation bool      `json:"has_location"`
	DurationMS  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
}
