package application

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/bnema/bluesky-mcp/internal/domain"
)

const MaxLimit = 100

// normalizeLimit returns fallback for absent, non-numeric or non-positive values
// and clamps anything above MaxLimit. Strings are read as base-10 integers.
func normalizeLimit(raw any, fallback int) int {
	switch value := raw.(type) {
	case nil, bool:
		return fallback
	case string:
		return limitFromString(strings.TrimSpace(value), fallback)
	case float64:
		return limitFromFloat(value, fallback)
	case float32:
		return limitFromFloat(float64(value), fallback)
	}

	limit, err := cast.ToInt64E(raw)
	if err != nil {
		return fallback
	}
	return clampLimit(limit, fallback)
}

func limitFromString(s string, fallback int) int {
	limit, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return clampLimit(limit, fallback)
	}
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(s, "-") {
		return MaxLimit
	}
	return fallback
}

func limitFromFloat(f float64, fallback int) int {
	switch {
	case math.IsNaN(f):
		return fallback
	case f > MaxLimit:
		return MaxLimit
	}
	return clampLimit(int64(f), fallback)
}

func clampLimit(limit int64, fallback int) int {
	switch {
	case limit < 1:
		return fallback
	case limit > MaxLimit:
		return MaxLimit
	}
	return int(limit)
}

func requiredString(args map[string]any, name string) (string, *domain.Failure) {
	value := optionalString(args, name)
	if value == "" {
		return "", &domain.Failure{Kind: domain.KindMissingArgument, Detail: name}
	}
	return value, nil
}

func optionalString(args map[string]any, name string) string {
	raw, ok := args[name]
	if !ok || raw == nil {
		return ""
	}

	value, err := cast.ToStringE(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
