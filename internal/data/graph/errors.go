package graph

import (
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrTransientStore marks a fault as retryable independently of the driver's
// own classification. Write funcs backed by fakes wrap it in tests.
var ErrTransientStore = errors.New("transient store fault")

// LoadError is the terminal failure of a whole load invocation. Counters
// accumulated before the failing chunk are logged but never returned as a
// success value.
type LoadError struct {
	Chunk    int
	Attempts int
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load failed at chunk %d after %d attempt(s): %v", e.Chunk, e.Attempts, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsTransient reports whether a write fault belongs to the retryable class
// (service unavailable, session expired, or an explicit transient marker).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTransientStore) || neo4j.IsRetryable(err)
}
