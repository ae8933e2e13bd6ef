package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Per-user model API key file (0600), sealed with AES-GCM under a key derived
// from the OS user. It keeps keys out of config.toml; it is not a keychain.

const fileName = "keys.json"

// ErrNoKey is returned when no key is stored for a provider.
var ErrNoKey = errors.New("secrets: no key stored")

type keyFile struct {
	Keys map[string]string `json:"keys"` // provider -> base64(nonce|ciphertext)
}

// Store reads and writes provider keys in Dir.
type Store struct {
	Dir  string
	seed string
}

// Default returns the store under the user config dir.
func Default() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return New(filepath.Join(dir, "kanbanai")), nil
}

// New returns a store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir, seed: fmt.Sprintf("kanbanai-%s-%s", runtime.GOOS, os.Getenv("USER"))}
}

// Put stores key for provider, replacing any previous key.
func (s *Store) Put(provider, key string) error {
	provider = norm(provider)
	if provider == "" {
		return errors.New("secrets: provider required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("secrets: empty key")
	}
	kf, err := s.load()
	if err != nil {
		return err
	}
	sealed, err := s.seal([]byte(key))
	if err != nil {
		return err
	}
	kf.Keys[provider] = base64.StdEncoding.EncodeToString(sealed)
	return s.save(kf)
}

// Get returns the key stored for provider, or ErrNoKey.
func (s *Store) Get(provider string) (string, error) {
	kf, err := s.load()
	if err != nil {
		return "", err
	}
	enc, ok := kf.Keys[norm(provider)]
	if !ok {
		return "", ErrNoKey
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("secrets: decode %s: %w", provider, err)
	}
	plain, err := s.open(raw)
	if err != nil {
		return "", fmt.Errorf("secrets: open %s: %w", provider, err)
	}
	return string(plain), nil
}

// Delete removes the key for provider. Deleting a missing key is not an error.
func (s *Store) Delete(provider string) error {
	kf, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := kf.Keys[norm(provider)]; !ok {
		return nil
	}
	delete(kf.Keys, norm(provider))
	return s.save(kf)
}

func (s *Store) path() string { return filepath.Join(s.Dir, fileName) }

func (s *Store) load() (keyFile, error) {
	kf := keyFile{Keys: map[string]string{}}
	data, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return kf, nil
	}
	if err != nil {
		return kf, err
	}
	if err := json.Unmarshal(data, &kf); err != nil {
		return kf, fmt.Errorf("secrets: parse %s: %w", s.path(), err)
	}
	if kf.Keys == nil {
		kf.Keys = map[string]string{}
	}
	return kf, nil
}

func (s *Store) save(kf keyFile) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func (s *Store) aead() (cipher.AEAD, error) {
	sum := sha256.Sum256([]byte(s.seed))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	return gcm.Open(nil, sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():], nil)
}
