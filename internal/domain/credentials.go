package domain

import "strings"

const (
	IdentifierEnv  = "BLUESKY_IDENTIFIER"
	AppPasswordEnv = "BLUESKY_APP_PASSWORD"
)

type Credentials struct {
	Identifier string
	Password   string
}

func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Identifier) == "" {
		missing = append(missing, IdentifierEnv)
	}
	if strings.TrimSpace(c.Password) == "" {
		missing = append(missing, AppPasswordEnv)
	}
	if len(missing) == 0 {
		return nil
	}

	return NewFailure(KindConfiguration, "missing required environment variables: %s", strings.Join(missing, ", "))
}

// String keeps the app password out of logs and error messages.
func (c Credentials) String() string {
	if c.Identifier == "" {
		return "<no identifier>"
	}
	return c.Identifier
}
