package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/crypto/scrypt"
)

const (
	credentialsFile = "credentials.enc"
	corruptSuffix   = ".corrupt"

	// scrypt parameters for deriving the file key; tuned for an interactive CLI.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// FileStore implements the Store interface using an AES-256-GCM encrypted file.
// This is a fallback for environments where OS keyring is unavailable (WSL, headless, Docker).
type FileStore struct {
	path     string
	lockPath string
	key      []byte
}

// NewFileStore creates a file-backed credential store in dir.
// If password is empty, a machine-specific secret is used instead.
func NewFileStore(dir, password string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create credentials directory: %w", err)
	}

	path := filepath.Join(dir, credentialsFile)
	if password == "" {
		password = machineSecret()
	}

	key, err := deriveKey(password, path)
	if err != nil {
		return nil, err
	}

	return &FileStore{
		path:     path,
		lockPath: path + ".lock",
		key:      key,
	}, nil
}

// machineSecret is a stable per-user, per-host value. It only keeps the file
// unreadable to other users of a shared backup, not to the local account.
func machineSecret() string {
	hostname, _ := os.Hostname()
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME") // Windows fallback
	}
	return fmt.Sprintf("%s@%s", username, hostname)
}

// deriveKey stretches the password with scrypt. The salt is bound to the
// file location so copies of the file under another path don't share a key.
func deriveKey(password, path string) ([]byte, error) {
	salt := sha256.Sum256([]byte(ServiceName + ":" + path))
	key, err := scrypt.Key([]byte(password), salt[:16], scryptN, scryptR, scryptP, 32)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// Path returns the location of the encrypted file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}

// encrypt seals plaintext with a random nonce prepended to the ciphertext.
func (s *FileStore) encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *FileStore) decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

// lock takes the cross-process lock guarding read-modify-write cycles.
func (s *FileStore) lock() (*flock.Flock, error) {
	lock := flock.New(s.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, errors.New("acquire lock: timeout")
	}
	return lock, nil
}

// errUnreadable marks a credential file that exists but cannot be decrypted
// or parsed, e.g. after the host name behind the machine secret changed.
var errUnreadable = errors.New("credentials file unreadable")

// readStore decrypts and parses the credential file.
// A missing or empty file is an empty store.
func (s *FileStore) readStore() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	if len(data) == 0 {
		return make(map[string]string), nil
	}

	plaintext, err := s.decrypt(data)
	if err != nil {
		return nil, fmt.Errorf("decrypt credentials: %w: %w", errUnreadable, err)
	}

	var store map[string]string
	if err := json.Unmarshal(plaintext, &store); err != nil {
		return nil, fmt.Errorf("parse credentials: %w: %w", errUnreadable, err)
	}
	if store == nil {
		store = make(map[string]string)
	}

	return store, nil
}

// writeStore encrypts the map into a temp file and renames it over the
// credential file, so readers never observe a half-written file.
func (s *FileStore) writeStore(store map[string]string) error {
	plaintext, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("serialize credentials: %w", err)
	}

	ciphertext, err := s.encrypt(plaintext)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), credentialsFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(ciphertext); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credentials file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace credentials file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(key string) (string, error) {
	store, err := s.readStore()
	if err != nil {
		return "", err
	}

	value, ok := store[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// readForWrite is readStore for callers holding the lock. An unreadable file
// is moved aside to credentials.enc.corrupt and the store starts over empty,
// so a new login can still be saved.
func (s *FileStore) readForWrite() (map[string]string, error) {
	store, err := s.readStore()
	if err == nil || !errors.Is(err, errUnreadable) {
		return store, err
	}
	if rerr := os.Rename(s.path, s.path+corruptSuffix); rerr != nil {
		return nil, fmt.Errorf("move aside unreadable credentials: %w", rerr)
	}
	return make(map[string]string), nil
}

func (s *FileStore) Set(key, value string) error {
	lock, err := s.lock()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	store, err := s.readForWrite()
	if err != nil {
		return err
	}

	store[key] = value
	return s.writeStore(store)
}

func (s *FileStore) Delete(key string) error {
	lock, err := s.lock()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	store, err := s.readForWrite()
	if err != nil {
		return err
	}

	if _, ok := store[key]; !ok {
		return ErrNotFound
	}

	delete(store, key)
	return s.writeStore(store)
}

func (s *FileStore) List() ([]string, error) {
	store, err := s.readStore()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(store))
	for k := range store {
		keys = append(keys, k)
	}
	return keys, nil
}
