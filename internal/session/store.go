package session

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/semmy-space/bazaar/internal/secrets"
)

// CredentialKey is the fixed record key of the stored credential.
const CredentialKey = "bazaar.authTokens"

// CredentialStore persists exactly one Credential. Backend failures never
// escape it: they are logged and reported as "no session" or a no-op, so
// callers fall back to the logged-out state.
type CredentialStore struct {
	store secrets.Store
	log   zerolog.Logger
}

// NewCredentialStore wraps a secrets backend.
func NewCredentialStore(store secrets.Store, logger zerolog.Logger) *CredentialStore {
	return &CredentialStore{
		store: store,
		log:   logger.With().Str("component", "credential_store").Logger(),
	}
}

// Set persists c, replacing any previous credential. A nil credential or one
// without an access token deletes the record instead of storing it.
func (s *CredentialStore) Set(c *Credential) {
	if c == nil || !c.Valid() {
		s.Clear()
		return
	}

	data, err := json.Marshal(c)
	if err != nil {
		s.log.Error().Err(err).Msg("encode credential")
		return
	}

	if err := s.store.Set(CredentialKey, string(data)); err != nil {
		s.log.Error().Err(err).Msg("store credential")
	}
}

// Get returns the stored credential. Absent, unreadable or corrupt records
// all report false.
func (s *CredentialStore) Get() (Credential, bool) {
	raw, err := s.store.Get(CredentialKey)
	if err != nil {
		if !errors.Is(err, secrets.ErrNotFound) {
			s.log.Warn().Err(err).Msg("read credential")
		}
		return Credential{}, false
	}
	if raw == "" {
		return Credential{}, false
	}

	var c Credential
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		s.log.Warn().Err(err).Msg("stored credential is corrupt; treating as no session")
		return Credential{}, false
	}
	if !c.Valid() {
		return Credential{}, false
	}
	return c, true
}

// Clear removes the stored credential. Clearing an absent record is a no-op.
func (s *CredentialStore) Clear() {
	if err := s.store.Delete(CredentialKey); err != nil && !errors.Is(err, secrets.ErrNotFound) {
		s.log.Error().Err(err).Msg("delete credential")
	}
}
