package session

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// ErrNoSession is returned by Token when no usable credential is stored.
var ErrNoSession = errors.New("no session")

// Event describes a session change delivered to subscribers.
type Event struct {
	Active     bool
	Credential Credential
}

// Session is the process-wide view of the stored credential. It reads the
// store on every call, so a change made by another process is picked up on
// the next read; changes made through Start/End are also pushed to subscribers.
type Session struct {
	store *CredentialStore
	log   zerolog.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]func(Event)
}

// New creates a Session over store.
func New(store *CredentialStore, logger zerolog.Logger) *Session {
	return &Session{
		store: store,
		log:   logger,
		subs:  make(map[uint64]func(Event)),
	}
}

// Current returns the stored credential, if any.
func (s *Session) Current() (Credential, bool) {
	return s.store.Get()
}

// Start stores c as the active credential and notifies subscribers. A
// credential without an access token ends the session instead.
func (s *Session) Start(c Credential) {
	if !c.Valid() {
		s.End()
		return
	}
	s.store.Set(&c)
	s.log.Debug().Msg("session started")
	s.notify(Event{Active: true, Credential: c})
}

// End clears the stored credential and notifies subscribers.
func (s *Session) End() {
	s.store.Clear()
	s.log.Debug().Msg("session ended")
	s.notify(Event{})
}

// Subscribe registers fn for session changes. The returned func removes it.
func (s *Session) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Token implements oauth2.TokenSource over the stored credential.
func (s *Session) Token() (*oauth2.Token, error) {
	c, ok := s.store.Get()
	if !ok {
		return nil, ErrNoSession
	}
	return c.Token(), nil
}

var _ oauth2.TokenSource = (*Session)(nil)
