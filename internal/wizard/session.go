package wizard

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/askimage/internal/images"
	"github.com/lehigh-university-libraries/askimage/internal/qa"
)

// Session holds one user's wizard state. Derived data is memoized until the
// input it was derived from changes.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen atomic.Int64 // unix nanos, readable without mu

	// upload stage, keyed by the digest of the upload bytes
	filename  string
	digest    string
	bitmap    *images.Bitmap
	preview   []byte
	uploadErr error

	// extraction stage
	extracted bool
	text      string
	ocrErr    error

	// answer stage, keyed by digest + question
	question  string
	answerKey string
	answer    *qa.Answer
	answerErr error
}

// NewSession creates an empty session with a random id
func NewSession() *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// LastSeen reports when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// clearUpload drops every stage derived from the current upload. Must be called with s.mu held.
func (s *Session) clearUpload() {
	s.filename = ""
	s.digest = ""
	s.bitmap = nil
	s.preview = nil
	s.uploadErr = nil
	s.extracted = false
	s.text = ""
	s.ocrErr = nil
	s.clearAnswer()
}

// clearAnswer must be called with s.mu held.
func (s *Session) clearAnswer() {
	s.answerKey = ""
	s.answer = nil
	s.answerErr = nil
}
