package domain

import "time"

type Session struct {
	AccessToken  string
	RefreshToken string
	// AccountID is the account DID returned by createSession.
	AccountID string
	Handle    string
	IssuedAt  time.Time
}

// Valid is true only when both the access token and the account id are present.
func (s Session) Valid() bool {
	return s.AccessToken != "" && s.AccountID != ""
}

func (s Session) IsStale(now time.Time, maxAge time.Duration) bool {
	if s.IssuedAt.IsZero() {
		return true
	}

	if maxAge <= 0 {
		return false
	}

	return now.Sub(s.IssuedAt) > maxAge
}
