package session

import (
	"errors"
	"sync"
	"sync/atomic"
)

// State is the session check state of a mounted protected command.
type State int

const (
	StateChecking State = iota
	StateAuthorized
	StateUnauthorized
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthorized:
		return "authorized"
	case StateUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Guard decides whether protected content may run. Every protected command
// composes the same guard, parameterized only by its redirect target.
type Guard struct {
	session    *Session
	redirectTo string
}

// NewGuard returns a guard over sess that redirects to redirectTo when there
// is no session.
func NewGuard(sess *Session, redirectTo string) *Guard {
	return &Guard{session: sess, redirectTo: redirectTo}
}

// RedirectTo is the login entry point unauthorized mounts are sent to.
func (g *Guard) RedirectTo() string {
	return g.redirectTo
}

// Mount starts a check in StateChecking. Call Resolve before issuing any
// protected request.
func (g *Guard) Mount() *Mount {
	m := &Mount{guard: g}
	m.alive.Store(true)
	return m
}

// unauthorizer is implemented by backend errors that mean the credential
// was rejected.
type unauthorizer interface {
	Unauthorized() bool
}

// Revoke ends the session when err says the backend rejected the credential,
// so the next mount resolves to StateUnauthorized. It reports whether it did.
func (g *Guard) Revoke(err error) bool {
	var u unauthorizer
	if err == nil || !errors.As(err, &u) || !u.Unauthorized() {
		return false
	}
	g.session.End()
	return true
}

// Mount is one run of a protected command. States only move forward:
// Checking resolves once; there is no way back to Checking without a new mount.
type Mount struct {
	guard *Guard

	once       sync.Once
	state      atomic.Int32
	credential Credential

	alive atomic.Bool
}

// Resolve reads the session and settles the mount's state.
func (m *Mount) Resolve() State {
	m.once.Do(func() {
		c, ok := m.guard.session.Current()
		if !ok {
			m.state.Store(int32(StateUnauthorized))
			return
		}
		m.credential = c
		m.state.Store(int32(StateAuthorized))
	})
	return m.State()
}

// State returns the current state without resolving.
func (m *Mount) State() State {
	return State(m.state.Load())
}

// Credential returns the credential the mount was authorized with.
func (m *Mount) Credential() Credential {
	return m.credential
}

// RedirectTo is the guard's login entry point.
func (m *Mount) RedirectTo() string {
	return m.guard.redirectTo
}

// Unmount marks the mount dead; later Apply calls are dropped.
func (m *Mount) Unmount() {
	m.alive.Store(false)
}

// Alive reports whether results may still be applied.
func (m *Mount) Alive() bool {
	return m.alive.Load()
}

// Apply runs fn only while the mount is alive and reports whether it ran.
// In-flight requests are not cancelled on unmount; their results are
// dropped here instead.
func (m *Mount) Apply(fn func()) bool {
	if !m.Alive() {
		return false
	}
	fn()
	return true
}
