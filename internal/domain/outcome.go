package domain

import "encoding/json"

// Outcome is either a Success carrying the raw JSON payload or a Failure.
type Outcome struct {
	Payload json.RawMessage
	Failure *Failure
}

func Success(payload json.RawMessage) Outcome {
	return Outcome{Payload: payload}
}

func Fail(failure *Failure) Outcome {
	if failure == nil {
		failure = NewFailure(KindInternal, "failure without details")
	}
	return Outcome{Failure: failure}
}

func (o Outcome) OK() bool {
	return o.Failure == nil
}

// Kind returns the failure kind, or an empty kind for a success.
func (o Outcome) Kind() ErrorKind {
	if o.Failure == nil {
		return ""
	}
	return o.Failure.Kind
}
