package secrets

import "errors"

// Store is the interface for durable credential storage.
// Implementations replace a value atomically: a reader sees either the old
// or the new value, never a partial write.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	List() ([]string, error)
}

// ErrNotFound is returned when a key is not found in the store
var ErrNotFound = errors.New("key not found")

// ServiceName is the service identifier for keyring storage
const ServiceName = "bazaar"

// Backend names accepted by NewStore.
const (
	BackendAuto    = "auto"
	BackendKeyring = "keyring"
	BackendFile    = "file"
	BackendSQLite  = "sqlite"
	BackendMemory  = "memory"
)

// Backends lists the selectable backend names in display order.
var Backends = []string{BackendAuto, BackendKeyring, BackendFile, BackendSQLite, BackendMemory}
