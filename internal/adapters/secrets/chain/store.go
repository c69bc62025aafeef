package chain

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	filestore "github.com/bnema/bluesky-mcp/internal/adapters/secrets/file"
	passstore "github.com/bnema/bluesky-mcp/internal/adapters/secrets/pass"
	"github.com/bnema/bluesky-mcp/internal/ports"
)

// Store reads and writes through primary and falls back to fallback when the
// primary backend fails. Deletes go to both, since a secret may live in either.
type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
	log      logrus.FieldLogger
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

func NewStore(primary ports.SecretStore, fallback ports.SecretStore, log logrus.FieldLogger) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	return &Store{primary: primary, fallback: fallback, log: log}, nil
}

func NewPassFirstWithFileFallback(fileRoot string, log logrus.FieldLogger) (*Store, error) {
	return NewStore(passstore.NewStore(), filestore.NewStore(fileRoot), log)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}
	s.log.WithError(err).Debug("primary secret store put failed, using fallback")

	if fallbackErr := s.fallback.Put(ctx, key, value); fallbackErr != nil {
		return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}
	s.log.WithError(err).Debug("primary secret store get failed, using fallback")

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr != nil {
		return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
	}
	return fallbackValue, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if shouldSkipFallback(err) {
		return err
	}
	if errors.Is(err, passstore.ErrUnavailable) {
		err = nil
	}

	if fallbackErr := s.fallback.Delete(ctx, key); fallbackErr != nil {
		return errors.Join(err, fmt.Errorf("fallback backend delete failed: %w", fallbackErr))
	}
	if err != nil {
		return fmt.Errorf("primary backend delete failed: %w", err)
	}
	return nil
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
