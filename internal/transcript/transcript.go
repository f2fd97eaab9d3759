package transcript

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// DefaultPlaceholder is the text shown in a pending bot message.
const DefaultPlaceholder = "..."

// Message is a single entry in a chat transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Pending   bool      `json:"pending,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangeKind describes which mutation produced a Change.
type ChangeKind string

const (
	ChangeAppended ChangeKind = "appended"
	ChangeResolved ChangeKind = "resolved"
	ChangeFailed   ChangeKind = "failed"
)

// Change is delivered to subscribers after every mutation. Message is the
// entry that was appended or rewritten; Entries is the full transcript
// as it stood right after the mutation.
type Change struct {
	Kind    ChangeKind
	Message Message
	Entries []Message
}

// Pair is the result of appending a user message with its placeholder.
type Pair struct {
	User        Message
	Placeholder Message
	Snapshot    []Message
}
