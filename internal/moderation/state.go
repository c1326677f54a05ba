package moderation

import (
	"sync"
	"time"
)

type WindowEntry struct {
	AuthorID  string
	Timestamp time.Time
}

type flagKey struct {
	userID   string
	category Category
}

// OffenderState holds the filter's process-lifetime mutable state: a bounded
// per-channel window of recent message authors and the per-(user,category)
// first-offense flags. Flags survive until consumed by a second offense or
// the process restarts; there is no expiry.
//
// Flag operations are atomic per key and never block across users. Window
// appends serialize per channel only.
type OffenderState struct {
	windowSize int
	windows    sync.Map // channelID -> *channelWindow
	flags      sync.Map // flagKey -> struct{}
}

type channelWindow struct {
	mu      sync.Mutex
	entries []WindowEntry
}

func NewOffenderState(windowSize int) *OffenderState {
	return &OffenderState{windowSize: windowSize}
}

// RecordMessage appends to the channel's window in arrival order, evicting
// the oldest entry beyond capacity, and returns a snapshot that includes the
// new entry.
func (s *OffenderState) RecordMessage(channelID, authorID string, ts time.Time) []WindowEntry {
	w := s.window(channelID)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, WindowEntry{AuthorID: authorID, Timestamp: ts})
	if len(w.entries) > s.windowSize {
		w.entries = w.entries[len(w.entries)-s.windowSize:]
	}
	snapshot := make([]WindowEntry, len(w.entries))
	copy(snapshot, w.entries)
	return snapshot
}

func (s *OffenderState) window(channelID string) *channelWindow {
	if v, ok := s.windows.Load(channelID); ok {
		return v.(*channelWindow)
	}
	v, _ := s.windows.LoadOrStore(channelID, &channelWindow{})
	return v.(*channelWindow)
}

func (s *OffenderState) HasFlag(userID string, category Category) bool {
	_, ok := s.flags.Load(flagKey{userID: userID, category: category})
	return ok
}

// SetFlag marks the first offense and reports whether the flag was already
// present. LoadOrStore makes the check-and-set a single atomic step.
func (s *OffenderState) SetFlag(userID string, category Category) (already bool) {
	_, already = s.flags.LoadOrStore(flagKey{userID: userID, category: category}, struct{}{})
	return already
}

// ClearFlag consumes the flag and reports whether it was set.
func (s *OffenderState) ClearFlag(userID string, category Category) (was bool) {
	_, was = s.flags.LoadAndDelete(flagKey{userID: userID, category: category})
	return was
}

func (s *OffenderState) Apply(userID string, category Category, op FlagOp) {
	switch op {
	case FlagOpSet:
		s.SetFlag(userID, category)
	case FlagOpClear:
		s.ClearFlag(userID, category)
	}
}
