package credentials

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/bnema/bluesky-mcp/internal/domain"
	"github.com/bnema/bluesky-mcp/internal/ports"
)

// SecretKey is where the app password for identifier is kept in the secret store.
func SecretKey(identifier string) string {
	return "bsky-mcp/" + strings.ToLower(strings.TrimSpace(identifier)) + "/app_password"
}

// Source reads credentials from the environment. When the app password variable
// is unset and a Store is configured, the stored password for the identifier is used.
type Source struct {
	Getenv func(string) string
	Store  ports.SecretStore
}

var _ ports.CredentialSource = Source{}

func NewSource(store ports.SecretStore) Source {
	return Source{Getenv: os.Getenv, Store: store}
}

func (s Source) Resolve(ctx context.Context) (domain.Credentials, error) {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	creds := domain.Credentials{
		Identifier: strings.TrimSpace(getenv(domain.IdentifierEnv)),
		Password:   strings.TrimSpace(getenv(domain.AppPasswordEnv)),
	}

	if creds.Password == "" && creds.Identifier != "" && s.Store != nil {
		password, err := s.Store.Get(ctx, SecretKey(creds.Identifier))
		switch {
		case err == nil:
			creds.Password = strings.TrimSpace(password)
		case errors.Is(err, domain.ErrSecretNotFound):
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.Credentials{}, err
		default:
			return domain.Credentials{}, &domain.Failure{
				Kind:   domain.KindConfiguration,
				Detail: "read stored app password: " + err.Error(),
				Err:    err,
			}
		}
	}

	if err := creds.Validate(); err != nil {
		return domain.Credentials{}, err
	}
	return creds, nil
}
