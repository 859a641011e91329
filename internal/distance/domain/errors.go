package domain

import (
	"errors"
	"fmt"
)

var ErrNoProvider = errors.New("no_distance_provider")

// ProviderError means every strategy in the chain failed. In practice that
// only happens with malformed coordinates; the engine degrades to the
// system-default fee instead of failing the request.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("distance provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
