package transcript

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPairInsertsUserThenPlaceholder(t *testing.T) {
	s := NewStore("")

	pair := s.AppendPair("hi")
	user, ph := pair.User, pair.Placeholder

	entries := s.Snapshot()
	assert.Equal(t, entries, pair.Snapshot)
	require.Len(t, entries, 2)
	assert.Equal(t, user.ID, entries[0].ID)
	assert.Equal(t, RoleUser, entries[0].Role)
	assert.Equal(t, "hi", entries[0].Text)
	assert.False(t, entries[0].Pending)

	assert.Equal(t, ph.ID, entries[1].ID)
	assert.Equal(t, RoleBot, entries[1].Role)
	assert.Equal(t, DefaultPlaceholder, entries[1].Text)
	assert.True(t, entries[1].Pending)
	assert.NotEqual(t, user.ID, ph.ID)
}

func TestCustomPlaceholder(t *testing.T) {
	s := NewStore("typing")
	ph := s.AppendPair("hi").Placeholder
	assert.Equal(t, "typing", ph.Text)
	assert.Equal(t, "typing", s.Placeholder())
}

func TestResolvePlaceholderChangesOnlyTarget(t *testing.T) {
	s := NewStore("")
	s.Append(RoleBot, "greeting")
	ph := s.AppendPair("hi").Placeholder
	before := s.Snapshot()

	require.True(t, s.ResolvePlaceholder(ph.ID, "hello!"))

	after := s.Snapshot()
	require.Len(t, after, len(before))
	changed := 0
	for i := range after {
		if after[i] != before[i] {
			changed++
			assert.Equal(t, ph.ID, after[i].ID)
			assert.Equal(t, "hello!", after[i].Text)
			assert.False(t, after[i].Pending)
		}
	}
	assert.Equal(t, 1, changed)
}

func TestResolvePlaceholderOnlyOnce(t *testing.T) {
	s := NewStore("")
	ph := s.AppendPair("hi").Placeholder

	require.True(t, s.ResolvePlaceholder(ph.ID, "first"))
	assert.False(t, s.ResolvePlaceholder(ph.ID, "second"))
	assert.False(t, s.FailPlaceholder(ph.ID, "oops"))

	entries := s.Snapshot()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[1].Text)
}

func TestResolveUnknownIDIsNoop(t *testing.T) {
	s := NewStore("")
	s.AppendPair("hi")
	before := s.Snapshot()

	assert.False(t, s.ResolvePlaceholder("missing", "answer"))
	assert.Equal(t, before, s.Snapshot())
}

func TestFailUnknownIDAppendsNothing(t *testing.T) {
	s := NewStore("")
	s.AppendPair("hi")
	before := s.Snapshot()

	var changes int
	cancel := s.Subscribe(func(Change) { changes++ })
	defer cancel()

	assert.False(t, s.FailPlaceholder("missing", "Oops! An error has occurred."))
	assert.Equal(t, before, s.Snapshot())
	assert.Zero(t, changes)
}

func TestResolveDoesNotTouchNonPendingMessageWithPlaceholderText(t *testing.T) {
	s := NewStore("")
	literal := s.Append(RoleBot, DefaultPlaceholder)

	assert.False(t, s.ResolvePlaceholder(literal.ID, "answer"))
	assert.Equal(t, DefaultPlaceholder, s.Snapshot()[0].Text)
}

func TestFailPlaceholderReplacesWithError(t *testing.T) {
	s := NewStore("")
	ph := s.AppendPair("bye").Placeholder
	before := s.Len()

	require.True(t, s.FailPlaceholder(ph.ID, "Oops! An error has occurred."))

	entries := s.Snapshot()
	require.Len(t, entries, before)
	assert.Equal(t, RoleUser, entries[0].Role)
	last := entries[len(entries)-1]
	assert.Equal(t, RoleBot, last.Role)
	assert.Equal(t, "Oops! An error has occurred.", last.Text)
	assert.False(t, last.Pending)
	assert.NotEqual(t, ph.ID, last.ID)
	for _, m := range entries {
		assert.False(t, m.Pending)
	}
}

func TestFailPlaceholderMovesErrorToEnd(t *testing.T) {
	s := NewStore("")
	first := s.AppendPair("one").Placeholder
	second := s.AppendPair("two").Placeholder

	require.True(t, s.FailPlaceholder(first.ID, "err"))

	entries := s.Snapshot()
	require.Len(t, entries, 4)
	assert.Equal(t, "one", entries[0].Text)
	assert.Equal(t, "two", entries[1].Text)
	assert.Equal(t, second.ID, entries[2].ID)
	assert.True(t, entries[2].Pending)
	assert.Equal(t, "err", entries[3].Text)
}

func TestConcurrentPlaceholdersResolveIndependently(t *testing.T) {
	s := NewStore("")
	first := s.AppendPair("one").Placeholder
	second := s.AppendPair("two").Placeholder

	require.True(t, s.ResolvePlaceholder(second.ID, "answer two"))
	require.True(t, s.ResolvePlaceholder(first.ID, "answer one"))

	entries := s.Snapshot()
	require.Len(t, entries, 4)
	assert.Equal(t, "answer one", entries[1].Text)
	assert.Equal(t, "answer two", entries[3].Text)
}

func TestEveryUserMessageFollowedByBot(t *testing.T) {
	s := NewStore("")
	for _, q := range []string{"a", "b", "c", "d"} {
		ph := s.AppendPair(q).Placeholder
		if q == "c" {
			s.FailPlaceholder(ph.ID, "err")
			continue
		}
		s.ResolvePlaceholder(ph.ID, "re: "+q)
	}

	entries := s.Snapshot()
	for i, m := range entries {
		if m.Role != RoleUser {
			continue
		}
		require.Less(t, i+1, len(entries), "user message %q has no reply", m.Text)
		assert.Equal(t, RoleBot, entries[i+1].Role)
		assert.False(t, entries[i+1].Pending)
	}
}

func TestSubscribeReceivesEveryMutation(t *testing.T) {
	s := NewStore("")
	var kinds []ChangeKind
	var lens []int
	cancel := s.Subscribe(func(c Change) {
		kinds = append(kinds, c.Kind)
		lens = append(lens, len(c.Entries))
	})

	s.Append(RoleBot, "hello")
	a := s.AppendPair("q1").Placeholder
	s.ResolvePlaceholder(a.ID, "a1")
	b := s.AppendPair("q2").Placeholder
	s.FailPlaceholder(b.ID, "err")

	assert.Equal(t, []ChangeKind{ChangeAppended, ChangeAppended, ChangeResolved, ChangeAppended, ChangeFailed}, kinds)
	assert.Equal(t, []int{1, 3, 3, 5, 5}, lens)

	cancel()
	cancel()
	s.Append(RoleBot, "after cancel")
	assert.Len(t, kinds, 5)
}

func TestSubscriberMayReadStore(t *testing.T) {
	s := NewStore("")
	var seen int
	s.Subscribe(func(c Change) {
		seen = s.Len()
	})
	s.AppendPair("hi")
	assert.Equal(t, 2, seen)
}

func TestChangeEntriesAreCopies(t *testing.T) {
	s := NewStore("")
	var got []Message
	s.Subscribe(func(c Change) { got = c.Entries })

	ph := s.AppendPair("hi").Placeholder
	held := got
	s.ResolvePlaceholder(ph.ID, "answer")

	assert.Equal(t, DefaultPlaceholder, held[1].Text)
	assert.Equal(t, "answer", got[1].Text)
}

func TestConcurrentMutationsAreSafe(t *testing.T) {
	s := NewStore("")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ph := s.AppendPair("q").Placeholder
			s.ResolvePlaceholder(ph.ID, "a")
		}()
	}
	wg.Wait()

	entries := s.Snapshot()
	require.Len(t, entries, 100)
	for _, m := range entries {
		assert.False(t, m.Pending)
	}
}

func TestLastOf(t *testing.T) {
	s := NewStore("")
	s.Append(RoleBot, "greeting")
	s.AppendPair("first")
	s.AppendPair("second")

	m, ok := LastOf(s.Snapshot(), RoleUser)
	require.True(t, ok)
	assert.Equal(t, "second", m.Text)

	_, ok = LastOf(nil, RoleUser)
	assert.False(t, ok)
}
