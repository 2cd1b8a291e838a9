package session

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/bazaar/internal/secrets"
)

// brokenStore fails every operation, like device storage that is unavailable.
type brokenStore struct{}

var errUnavailable = errors.New("storage unavailable")

func (brokenStore) Get(string) (string, error) { return "", errUnavailable }
func (brokenStore) Set(string, string) error   { return errUnavailable }
func (brokenStore) Delete(string) error        { return errUnavailable }
func (brokenStore) List() ([]string, error)    { return nil, errUnavailable }

func newTestStore(t *testing.T) (*CredentialStore, *secrets.MemoryStore) {
	t.Helper()
	backend := secrets.NewMemoryStore()
	return NewCredentialStore(backend, zerolog.Nop()), backend
}

func TestCredentialStoreRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cred Credential
	}{
		{name: "access only", cred: Credential{Access: "abc"}},
		{name: "access and refresh", cred: Credential{Access: "abc", Refresh: "def"}},
		{name: "jwt shaped", cred: Credential{Access: "aaa.bbb.ccc", Refresh: "ddd.eee.fff"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore(t)
			c := tt.cred
			store.Set(&c)

			got, ok := store.Get()
			require.True(t, ok)
			assert.Equal(t, tt.cred, got)
		})
	}
}

func TestCredentialStoreSetWithoutAccessDeletes(t *testing.T) {
	tests := []struct {
		name string
		cred *Credential
	}{
		{name: "nil credential", cred: nil},
		{name: "empty access", cred: &Credential{Access: ""}},
		{name: "refresh only", cred: &Credential{Refresh: "def"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, backend := newTestStore(t)
			store.Set(&Credential{Access: "old"})

			store.Set(tt.cred)

			_, ok := store.Get()
			assert.False(t, ok)
			_, err := backend.Get(CredentialKey)
			assert.ErrorIs(t, err, secrets.ErrNotFound, "record must be deleted, not stored partially")
		})
	}

	t.Run("already absent is a no-op", func(t *testing.T) {
		store, _ := newTestStore(t)
		store.Set(nil)
		_, ok := store.Get()
		assert.False(t, ok)
	})
}

func TestCredentialStoreClear(t *testing.T) {
	store, _ := newTestStore(t)
	store.Set(&Credential{Access: "abc"})

	store.Clear()
	_, ok := store.Get()
	assert.False(t, ok)

	// idempotent
	store.Clear()
	_, ok = store.Get()
	assert.False(t, ok)
}

func TestCredentialStoreCorruptRecord(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{not json"},
		{name: "wrong type", raw: `["abc"]`},
		{name: "empty string", raw: ""},
		{name: "json without access", raw: `{"refresh":"def"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, backend := newTestStore(t)
			require.NoError(t, backend.Set(CredentialKey, tt.raw))

			assert.NotPanics(t, func() {
				_, ok := store.Get()
				assert.False(t, ok)
			})
		})
	}
}

func TestCredentialStoreStorageUnavailable(t *testing.T) {
	var logs bytes.Buffer
	store := NewCredentialStore(brokenStore{}, zerolog.New(&logs))

	assert.NotPanics(t, func() {
		store.Set(&Credential{Access: "abc"})
		store.Clear()
	})
	_, ok := store.Get()
	assert.False(t, ok)

	assert.Contains(t, logs.String(), "storage unavailable")
}

func TestCredentialStoreOnFileBackend(t *testing.T) {
	backend, err := secrets.NewFileStore(t.TempDir(), "pw")
	require.NoError(t, err)
	store := NewCredentialStore(backend, zerolog.Nop())

	store.Set(&Credential{Access: "abc", Refresh: "r"})
	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, Credential{Access: "abc", Refresh: "r"}, got)
}

func TestSessionStartOverUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	backend, err := secrets.NewFileStore(dir, "pw")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(backend.Path(), []byte("garbage garbage garbage"), 0600))

	sess := New(NewCredentialStore(backend, zerolog.Nop()), zerolog.Nop())
	_, ok := sess.Current()
	require.False(t, ok)

	sess.Start(Credential{Access: "abc"})
	got, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, "abc", got.Access)

	sess.End()
	_, ok = sess.Current()
	assert.False(t, ok)
}
