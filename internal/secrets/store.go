// Package secrets keeps Plane API tokens in a per-user file (0600) with AES-GCM
// obfuscation. Not a replacement for OS keychains but avoids plain-text config.
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
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

const fileName = "tokens.json"

// ErrNotFound is returned when no token is stored for a workspace.
var ErrNotFound = errors.New("token not found")

type tokenFile struct {
	Tokens map[string]string `json:"tokens"` // workspace -> base64(nonce|ciphertext)
}

// Store is a token file on a filesystem.
type Store struct {
	Fs   afero.Fs
	Path string
}

// Default returns the store under the user's config directory.
func Default() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{Fs: afero.NewOsFs(), Path: filepath.Join(dir, "planeboard", fileName)}, nil
}

// Put stores the token for a workspace, replacing any previous one.
func (s *Store) Put(workspace, token string) error {
	if workspace = norm(workspace); workspace == "" {
		return fmt.Errorf("workspace required")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token required")
	}
	tf, err := s.load()
	if err != nil {
		return err
	}
	ct, err := encrypt([]byte(strings.TrimSpace(token)))
	if err != nil {
		return err
	}
	tf.Tokens[workspace] = base64.StdEncoding.EncodeToString(ct)
	return s.save(tf)
}

// Get returns the token for a workspace, or ErrNotFound.
func (s *Store) Get(workspace string) (string, error) {
	if workspace = norm(workspace); workspace == "" {
		return "", fmt.Errorf("workspace required")
	}
	tf, err := s.load()
	if err != nil {
		return "", err
	}
	enc, ok := tf.Tokens[workspace]
	if !ok {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("decrypt token: %w", err)
	}
	return string(pt), nil
}

// Delete removes the token for a workspace. Deleting a missing token is not an error.
func (s *Store) Delete(workspace string) error {
	if workspace = norm(workspace); workspace == "" {
		return fmt.Errorf("workspace required")
	}
	tf, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := tf.Tokens[workspace]; !ok {
		return nil
	}
	delete(tf.Tokens, workspace)
	return s.save(tf)
}

func (s *Store) load() (tokenFile, error) {
	tf := tokenFile{Tokens: map[string]string{}}
	data, err := afero.ReadFile(s.Fs, s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return tf, nil
		}
		return tf, err
	}
	if err := json.Unmarshal(data, &tf); err != nil {
		return tf, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	if tf.Tokens == nil {
		tf.Tokens = map[string]string{}
	}
	return tf, nil
}

func (s *Store) save(tf tokenFile) error {
	if err := s.Fs.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := afero.WriteFile(s.Fs, tmp, data, 0o600); err != nil {
		return err
	}
	return s.Fs.Rename(tmp, s.Path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func masterKey() []byte {
	base := fmt.Sprintf("planeboard-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
