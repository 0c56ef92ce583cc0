// Package devicebind owns the local device identity: one encrypted binding
// file tying a generated device ID to this machine's hardware fingerprint.
// The binding never leaves the device; only hashes derived from it do.
package devicebind

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/aussiebroadwan/tether/pkg/cryptox"
	"github.com/aussiebroadwan/tether/pkg/hwid"
)

const (
	bindingFile = "binding.dat"
	backupFile  = "binding.bak"

	// MaxBindingAge forces a re-bind after a year regardless of fingerprint
	// match, as a defence-in-depth re-authentication trigger.
	MaxBindingAge = 365 * 24 * time.Hour
)

// Reason classifies why a binding failed validation.
type Reason string

const (
	ReasonMissing  Reason = "missing-binding"
	ReasonMismatch Reason = "fingerprint-mismatch"
	ReasonExpired  Reason = "binding-expired"
)

// ValidationError reports an unusable local binding. No device hash can be
// generated until the binding is re-established.
type ValidationError struct {
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("devicebind: binding invalid: %s", e.Reason)
}

// Binding is the persisted local device identity.
type Binding struct {
	DeviceID      string    `json:"device_id"`
	Fingerprint   string    `json:"fingerprint"`
	BoundAt       time.Time `json:"bound_at"`
	LowConfidence bool      `json:"low_confidence"`
}

// Store persists exactly one Binding under dir, encrypted with a key derived
// from hardware attributes. Moving the files to different hardware makes
// them unreadable. The hosting process is the single writer; no cross
// process locking is needed.
type Store struct {
	dir       string
	collector *hwid.Collector
	logger    *slog.Logger

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewStore creates a binding store rooted at dir. The directory is created
// on first use.
func NewStore(dir string, collector *hwid.Collector, logger *slog.Logger) *Store {
	if collector == nil {
		collector = hwid.NewCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:       dir,
		collector: collector,
		logger:    logger,
		now:       time.Now,
	}
}

// InitializeIfNeeded returns the current binding, creating a fresh one when
// none exists or the existing one no longer validates.
func (s *Store) InitializeIfNeeded() (Binding, error) {
	if err := s.Validate(); err == nil {
		return s.load()
	}

	fingerprint, complete := s.collector.Fingerprint()
	binding := Binding{
		DeviceID:      uuid.NewString(),
		Fingerprint:   fingerprint,
		BoundAt:       s.now().UTC(),
		LowConfidence: !complete,
	}

	if binding.LowConfidence {
		s.logger.Warn("device binding created with degraded hardware reads")
	}

	if err := s.persist(binding); err != nil {
		return Binding{}, err
	}
	return binding, nil
}

// Validate recomputes the hardware fingerprint and compares it to the
// stored binding. A nil return means a device hash can be generated.
func (s *Store) Validate() error {
	binding, err := s.load()
	if err != nil {
		return &ValidationError{Reason: ReasonMissing}
	}

	if s.now().UTC().Sub(binding.BoundAt) > MaxBindingAge {
		return &ValidationError{Reason: ReasonExpired}
	}

	current, _ := s.collector.Fingerprint()
	if current != binding.Fingerprint {
		return &ValidationError{Reason: ReasonMismatch}
	}

	return nil
}

// Reset destroys the binding and its backup. The next InitializeIfNeeded
// produces a new, unrelated device ID.
func (s *Store) Reset() error {
	if err := os.Remove(s.path(bindingFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("devicebind: remove binding: %w", err)
	}
	if err := os.Remove(s.path(backupFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("devicebind: remove backup: %w", err)
	}
	return nil
}

// load reads the primary binding file, falling back to the backup when the
// primary is missing or won't decrypt. A restored backup is written back as
// the new primary.
func (s *Store) load() (Binding, error) {
	key := s.storeKey()

	binding, err := s.read(s.path(bindingFile), key)
	if err == nil {
		return binding, nil
	}

	binding, backupErr := s.read(s.path(backupFile), key)
	if backupErr != nil {
		return Binding{}, err
	}

	s.logger.Warn("restored device binding from backup", "err", err)
	if writeErr := s.write(s.path(bindingFile), key, binding); writeErr != nil {
		// Backup is still readable, so carry on with the in-memory copy.
		s.logger.Error("failed to rewrite primary binding file", "err", writeErr)
	}
	return binding, nil
}

func (s *Store) persist(binding Binding) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("devicebind: create dir: %w", err)
	}

	key := s.storeKey()
	if err := s.write(s.path(bindingFile), key, binding); err != nil {
		return err
	}

	// The backup is best-effort; the primary store is authoritative.
	if err := s.write(s.path(backupFile), key, binding); err != nil {
		s.logger.Warn("failed to write binding backup", "err", err)
	}
	return nil
}

func (s *Store) read(path string, key []byte) (Binding, error) {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return Binding{}, err
	}

	plaintext, err := cryptox.Open(key, sealed)
	if err != nil {
		return Binding{}, fmt.Errorf("devicebind: decrypt %s: %w", filepath.Base(path), err)
	}

	var binding Binding
	if err := json.Unmarshal(plaintext, &binding); err != nil {
		return Binding{}, fmt.Errorf("devicebind: decode binding: %w", err)
	}
	if binding.DeviceID == "" || binding.Fingerprint == "" {
		return Binding{}, errors.New("devicebind: incomplete binding record")
	}
	return binding, nil
}

func (s *Store) write(path string, key []byte, binding Binding) error {
	plaintext, err := json.Marshal(binding)
	if err != nil {
		return fmt.Errorf("devicebind: encode binding: %w", err)
	}

	sealed, err := cryptox.Seal(key, plaintext)
	if err != nil {
		return fmt.Errorf("devicebind: encrypt binding: %w", err)
	}

	if err := os.WriteFile(path, sealed, 0600); err != nil {
		return fmt.Errorf("devicebind: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// storeKey derives the AES key from hardware attributes via HKDF. The input
// set differs from the fingerprint's, so a leaked fingerprint does not
// unlock the store.
func (s *Store) storeKey() []byte {
	kdf := hkdf.New(sha256.New, s.collector.StoreKeyMaterial(), []byte("tether-binding-store"), []byte("binding-file-key-v1"))
	key := make([]byte, cryptox.SealKeySize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		// HKDF over sha256 cannot fail for a 32-byte read.
		panic(fmt.Sprintf("devicebind: derive store key: %v", err))
	}
	return key
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}
