package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds the ordered messages of one chat session in memory.
//
// Placeholders are addressed by the ID returned from AppendPair, so any
// number of requests may be in flight at once without one response
// landing in another request's bubble.
type Store struct {
	// emitMu serializes mutate+notify so subscribers observe changes in
	// the order they were applied.
	emitMu sync.Mutex

	mu          sync.RWMutex
	messages    []Message
	placeholder string
	subscribers map[int]func(Change)
	nextSub     int
	now         func() time.Time
}

// NewStore creates an empty transcript. An empty placeholder falls back
// to DefaultPlaceholder.
func NewStore(placeholder string) *Store {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Store{
		messages:    make([]Message, 0, 16),
		placeholder: placeholder,
		subscribers: make(map[int]func(Change)),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Placeholder returns the sentinel text used for pending bot messages.
func (s *Store) Placeholder() string { return s.placeholder }

// Append adds a message to the end of the transcript.
func (s *Store) Append(role Role, text string) Message {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	msg := s.newMessage(role, text)
	s.messages = append(s.messages, msg)
	change := Change{Kind: ChangeAppended, Message: msg, Entries: s.copyLocked()}
	s.mu.Unlock()

	s.notify(change)
	return msg
}

// AppendPair appends the user's message followed by a pending bot
// placeholder as one unit. Subscribers see a single change holding both.
// The returned Pair carries the transcript exactly as it stood after the
// append, unaffected by later or concurrent mutations.
func (s *Store) AppendPair(userText string) Pair {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	user := s.newMessage(RoleUser, userText)
	placeholder := s.newMessage(RoleBot, s.placeholder)
	placeholder.Pending = true
	s.messages = append(s.messages, user, placeholder)
	entries := s.copyLocked()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeAppended, Message: placeholder, Entries: entries})

	snapshot := make([]Message, len(entries))
	copy(snapshot, entries)
	return Pair{User: user, Placeholder: placeholder, Snapshot: snapshot}
}

// ResolvePlaceholder replaces the text of the pending message with the
// given ID. It reports false, and changes nothing, when no such pending
// message exists.
func (s *Store) ResolvePlaceholder(id, answer string) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	idx := s.pendingIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.messages[idx].Text = answer
	s.messages[idx].Pending = false
	change := Change{Kind: ChangeResolved, Message: s.messages[idx], Entries: s.copyLocked()}
	s.mu.Unlock()

	s.notify(change)
	return true
}

// FailPlaceholder removes the pending message with the given ID and
// appends a bot message carrying errText. If the placeholder was already
// resolved nothing happens and false is returned.
func (s *Store) FailPlaceholder(id, errText string) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	idx := s.pendingIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.messages = append(s.messages[:idx], s.messages[idx+1:]...)
	msg := s.newMessage(RoleBot, errText)
	s.messages = append(s.messages, msg)
	change := Change{Kind: ChangeFailed, Message: msg, Entries: s.copyLocked()}
	s.mu.Unlock()

	s.notify(change)
	return true
}

// Snapshot returns a copy of the transcript.
func (s *Store) Snapshot() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Subscribe registers fn to receive every subsequent change. fn runs on
// the mutating goroutine and must not call back into the Store's
// mutating methods. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// LastOf returns the most recent message with the given role.
func LastOf(messages []Message, role Role) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == role {
			return messages[i], true
		}
	}
	return Message{}, false
}

func (s *Store) newMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: s.now(),
	}
}

func (s *Store) pendingIndexLocked(id string) int {
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.ID == id {
			if m.Role == RoleBot && m.Pending {
				return i
			}
			return -1
		}
	}
	return -1
}

func (s *Store) copyLocked() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) notify(change Change) {
	s.mu.RLock()
	subs := make([]func(Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(change)
	}
}
