package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

const sqliteFile = "store.db"

// Options selects and configures a Store backend.
type Options struct {
	Backend  string // one of Backends; empty means auto
	DataDir  string // directory for file, sqlite and keyring-file data
	Password string // file backend password; empty uses a machine secret
	Logger   zerolog.Logger
}

// warningShown reports whether the fallback notice has already been logged
// once for this data directory.
func warningShown(dataDir string) bool {
	_, err := os.Stat(warningMarkerPath(dataDir))
	return err == nil
}

func markWarningShown(dataDir string) {
	_ = os.MkdirAll(dataDir, 0700)
	_ = os.WriteFile(warningMarkerPath(dataDir), []byte("1"), 0600)
}

func warningMarkerPath(dataDir string) string {
	return filepath.Join(dataDir, ".file-store-warning-shown")
}

// warnOnce logs msg at warn level the first time only; later runs log it at debug.
func warnOnce(opts Options, msg string) {
	if warningShown(opts.DataDir) {
		opts.Logger.Debug().Msg(msg)
		return
	}
	opts.Logger.Warn().Msg(msg)
	markWarningShown(opts.DataDir)
}

// NewStore creates the Store named by opts.Backend and reports the backend
// actually in use. Auto tries the OS keyring first and falls back to the
// encrypted file on WSL, headless hosts, or when the keyring can't be opened.
func NewStore(opts Options) (Store, string, error) {
	switch opts.Backend {
	case BackendKeyring:
		store, err := NewKeyringStore(opts.DataDir)
		if err != nil {
			return nil, "", err
		}
		return store, BackendKeyring, nil
	case BackendFile:
		store, err := NewFileStore(opts.DataDir, opts.Password)
		if err != nil {
			return nil, "", err
		}
		return store, BackendFile, nil
	case BackendSQLite:
		store, err := NewSQLiteStore(filepath.Join(opts.DataDir, sqliteFile))
		if err != nil {
			return nil, "", err
		}
		return store, BackendSQLite, nil
	case BackendMemory:
		return NewMemoryStore(), BackendMemory, nil
	case BackendAuto, "":
		return autoStore(opts)
	default:
		return nil, "", fmt.Errorf("unknown store backend: %s (valid: %s)", opts.Backend, strings.Join(Backends, ", "))
	}
}

func autoStore(opts Options) (Store, string, error) {
	if IsWSL() || IsHeadless() {
		warnOnce(opts, "detected WSL/headless environment, using encrypted file storage")
		store, err := NewFileStore(opts.DataDir, opts.Password)
		if err != nil {
			return nil, "", err
		}
		return store, BackendFile, nil
	}

	store, err := NewKeyringStore(opts.DataDir)
	if err != nil {
		warnOnce(opts, fmt.Sprintf("keyring unavailable (%v), falling back to encrypted file", err))
		fstore, ferr := NewFileStore(opts.DataDir, opts.Password)
		if ferr != nil {
			return nil, "", ferr
		}
		return fstore, BackendFile, nil
	}
	return store, BackendKeyring, nil
}

// IsWSL returns true if running under Windows Subsystem for Linux.
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// IsHeadless returns true if running on Linux without a display server.
func IsHeadless() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
