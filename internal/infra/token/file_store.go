package token

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fidelity/internal/domain/service"

	"github.com/pkg/errors"
)

// payloadSeparator joins the payload lines: store, email and, for profile
// tokens, the identity code.
const payloadSeparator = "\r\n"

// DefaultRetention is how long an unread token stays redeemable.
const DefaultRetention = 15 * time.Minute

// fileStore keeps one blob per token, named by the token string, under a
// dedicated directory. One file per token means concurrent issue, read
// and sweep never contend on shared state.
type fileStore struct {
	dir       string
	retention time.Duration
	logger    *slog.Logger
}

// NewFileStore creates a token store rooted at dir, creating the
// directory when missing.
func NewFileStore(dir string, retention time.Duration, logger *slog.Logger) (service.TokenStore, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "failed to create token directory %s", dir)
	}

	return &fileStore{dir: dir, retention: retention, logger: logger}, nil
}

func (s *fileStore) Issue(store, email string) (string, error) {
	return s.persist(store + payloadSeparator + email)
}

func (s *fileStore) IssueProfile(store, email, identityCode string) (string, error) {
	return s.persist(store + payloadSeparator + email + payloadSeparator + identityCode)
}

func (s *fileStore) persist(payload string) (string, error) {
	tok, err := Generate()
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, tok)
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		return "", errors.Wrapf(err, "failed to persist token %s", tok)
	}

	s.logger.Debug("Token issued", slog.String("path", path))

	return tok, nil
}

func (s *fileStore) Read(token string) string {
	if !validToken(token) {
		return ""
	}

	// Reads double as the lazy eviction trigger, sparing the token
	// currently being resolved.
	s.sweep(s.retention, token)

	content, err := os.ReadFile(filepath.Join(s.dir, token))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read token", slog.Any("error", err))
		}

		return ""
	}

	return string(content)
}

func (s *fileStore) SweepExpired(maxAge time.Duration) {
	s.sweep(maxAge, "")
}

func (s *fileStore) sweep(maxAge time.Duration, exclude string) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("Failed to scan token directory", slog.Any("error", err))

		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == exclude {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			// Non-fatal: the next sweep gets another chance.
			s.logger.Debug("Failed to delete expired token", slog.Any("error", err))
		}
	}
}
