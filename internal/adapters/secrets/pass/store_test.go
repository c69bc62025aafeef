package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/bluesky-mcp/internal/domain"
)

const testKey = "bsky-mcp/alice.bsky.social/app_password"

func TestStorePutInsertsMultilineEntry(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		run: func(ctx context.Context, stdin string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, []string{"insert", "--multiline", "--force", testKey}, args)
			assert.Equal(t, "abcd-efgh-ijkl-mnop\n", stdin)
			return "", "", nil
		},
	}

	require.NoError(t, store.Put(context.Background(), testKey, "abcd-efgh-ijkl-mnop"))
	assert.True(t, called)
}

func TestStoreGetReturnsFirstLine(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, stdin string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", testKey}, args)
			assert.Empty(t, stdin)
			return "abcd-efgh-ijkl-mnop\r\nurl: https://bsky.app\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, "abcd-efgh-ijkl-mnop", value)
}

func TestStoreGetMapsMissingEntryToNotFound(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, stdin string, args ...string) (string, string, error) {
			return "", "Error: " + testKey + " is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), testKey)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreGetKeepsOtherFailures(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, stdin string, args ...string) (string, string, error) {
			return "", "gpg: decryption failed: No secret key", errors.New("exit status 2")
		},
	}

	_, err := store.Get(context.Background(), testKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorContains(t, err, "pass show")
	assert.ErrorContains(t, err, "decryption failed")
}

func TestStoreDeleteIgnoresMissingEntry(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, stdin string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"rm", "--force", testKey}, args)
			return "", "Error: " + testKey + " is not in the password store.", errors.New("exit status 1")
		},
	}

	assert.NoError(t, store.Delete(context.Background(), testKey))
}

func TestStoreHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(context.Context, string, ...string) (string, string, error) {
			t.Fatal("pass must not run with a canceled context")
			return "", "", nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, testKey)
	assert.ErrorIs(t, err, context.Canceled)
}
