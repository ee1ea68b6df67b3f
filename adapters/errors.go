package adapters

import (
	"errors"
	"fmt"
)

// FetchErrorKind categorizes why a post fetch failed.
type FetchErrorKind int

const (
	// KindNoCredentials means the adapter has no usable credentials configured.
	KindNoCredentials FetchErrorKind = iota
	// KindNetwork covers transport failures and timeouts.
	KindNetwork
	// KindUpstream covers non-2xx responses and undecodable bodies.
	KindUpstream
	// KindDeprecated means the upstream endpoint reported itself deprecated.
	KindDeprecated
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindNoCredentials:
		return "no_credentials"
	case KindNetwork:
		return "network"
	case KindUpstream:
		return "upstream"
	case KindDeprecated:
		return "deprecated"
	default:
		return "unknown"
	}
}

// FetchError is a recoverable post-fetch failure. Callers fall back to
// synthetic posts on any FetchError instead of aborting the batch.
type FetchError struct {
	Platform string
	Kind     FetchErrorKind
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s fetch failed (%s): %v", e.Platform, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s fetch failed (%s)", e.Platform, e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFallbackEligible reports whether err is a recoverable fetch failure.
func IsFallbackEligible(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
