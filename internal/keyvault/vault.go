// Package keyvault stores provider API keys encrypted at rest. The vault is
// a single JSON file holding a random salt and one AES-256-GCM blob per
// provider key; the encryption key is derived from a passphrase with
// Argon2id, so the file is safe to sync or back up.
package keyvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/crypto/argon2"
)

var (
	ErrKeyNotFound = errors.New("key not found in vault")
	// ErrWrongPassphrase covers GCM authentication failures: almost always
	// a mistyped passphrase.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted vault")
)

// Argon2id parameters per the OWASP recommendation: 1 iteration, 64 MiB,
// 4 threads, 256-bit key.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32

	saltLen = 16
)

type vaultFile struct {
	Salt    string            `json:"salt"`
	Entries map[string]string `json:"entries"`
}

// Vault is an open key vault bound to one derived encryption key.
type Vault struct {
	path    string
	key     []byte
	salt    []byte
	entries map[string]string
}

// Open loads the vault at path, deriving the encryption key from passphrase.
// A missing file yields a fresh empty vault with a new random salt; it is
// written on the first Set.
func Open(path, passphrase string) (*Vault, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read vault file: %w", err)
		}
		salt := make([]byte, saltLen)
		if _, err = io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("generate vault salt: %w", err)
		}
		return &Vault{
			path:    path,
			salt:    salt,
			key:     deriveKey(passphrase, salt),
			entries: make(map[string]string),
		}, nil
	}

	var vf vaultFile
	if err = json.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("decode vault file: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(vf.Salt)
	if err != nil {
		return nil, fmt.Errorf("decode vault salt: %w", err)
	}
	if vf.Entries == nil {
		vf.Entries = make(map[string]string)
	}

	return &Vault{
		path:    path,
		salt:    salt,
		key:     deriveKey(passphrase, salt),
		entries: vf.Entries,
	}, nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// Set encrypts secret under name and persists the vault.
func (v *Vault) Set(name, secret string) error {
	blob, err := v.seal([]byte(secret))
	if err != nil {
		return err
	}
	v.entries[name] = blob
	return v.save()
}

// Get decrypts the secret stored under name.
func (v *Vault) Get(name string) (string, error) {
	blob, ok := v.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	secret, err := v.open(blob)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// List returns the stored key names, sorted. Secrets are not decrypted.
func (v *Vault) List() []string {
	names := make([]string, 0, len(v.entries))
	for name := range v.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Delete removes the secret stored under name and persists the vault.
func (v *Vault) Delete(name string) error {
	if _, ok := v.entries[name]; !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	delete(v.entries, name)
	return v.save()
}

// seal encrypts plaintext with the vault key. The output is Base64 of
// nonce (12 bytes) followed by the ciphertext.
func (v *Vault) seal(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

func (v *Vault) open(blobB64 string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(blobB64)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrongPassphrase, err)
	}
	return plaintext, nil
}

func (v *Vault) save() error {
	dir := filepath.Dir(v.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create vault dir: %w", err)
		}
	}

	payload, err := json.MarshalIndent(vaultFile{
		Salt:    base64.StdEncoding.EncodeToString(v.salt),
		Entries: v.entries,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}

	if err = os.WriteFile(v.path, payload, 0o600); err != nil {
		return fmt.Errorf("write vault file: %w", err)
	}
	return nil
}
