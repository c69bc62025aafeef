package ports

import (
	"context"

	"github.com/bnema/bluesky-mcp/internal/domain"
)

type CredentialSource interface {
	Resolve(ctx context.Context) (domain.Credentials, error)
}
