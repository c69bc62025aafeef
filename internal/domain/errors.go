package domain

import "errors"

var (
	ErrConfiguration   = &Failure{Kind: KindConfiguration}
	ErrAuthentication  = &Failure{Kind: KindAuthentication}
	ErrTokenRejected   = &Failure{Kind: KindTokenRejected}
	ErrRateLimited     = &Failure{Kind: KindRateLimited}
	ErrTimeout         = &Failure{Kind: KindTimeout}
	ErrUnreachable     = &Failure{Kind: KindUnreachable}
	ErrRemote          = &Failure{Kind: KindRemote}
	ErrInternal        = &Failure{Kind: KindInternal}
	ErrUnknownTool     = &Failure{Kind: KindUnknownTool}
	ErrMissingArgument = &Failure{Kind: KindMissingArgument}
)

var ErrSecretNotFound = errors.New("secret not found")
