package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	tokenFileName = "api_token"
	tokenPrefix   = "kor_"
)

// ResolveToken returns configured when set, otherwise the token persisted in
// dir (created on first use).
func ResolveToken(configured, dir string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured, nil
	}
	return LoadOrCreateToken(dir)
}

// TokenPath is the file the generated token is kept in.
func TokenPath(dir string) string {
	return filepath.Join(dir, tokenFileName)
}

// LoadOrCreateToken reads the API token from dir/api_token, or generates and
// persists a new one if the file is missing or empty.
func LoadOrCreateToken(dir string) (string, error) {
	data, err := os.ReadFile(TokenPath(dir)) //nolint:gosec // dir comes from configuration
	if err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, nil
		}
	}

	return RotateToken(dir)
}

// RotateToken generates a new API token, replacing the existing one.
// Clients holding the old token are rejected from then on.
func RotateToken(dir string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(TokenPath(dir), []byte(token+"\n"), 0600); err != nil {
		return "", fmt.Errorf("write token: %w", err)
	}

	return token, nil
}

// TokenEqual compares two tokens in constant time.
func TokenEqual(expected, got string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

func generateToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return tokenPrefix + hex.EncodeToString(b), nil
}
