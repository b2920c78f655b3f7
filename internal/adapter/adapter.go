// Package adapter defines the contract every source-specific parser
// ("adapter") satisfies, plus a registry that dispatches raw input to the
// right one.
package adapter

import (
	"fmt"
	"time"

	"github.com/moolen/depgraph/internal/claim"
)

// Adapter parses raw observational data from one kind of source into typed
// Claims. Implementations must be side-effect free and deterministic on
// identical input; timestamps default to now only when the data carries
// none of its own.
type Adapter interface {
	// Name returns the adapter's source label, used to tag every Claim it
	// produces and for explicit-hint/registry lookup.
	Name() string

	// CanProcess reports whether this adapter's grammar matches raw. Used
	// for content-probe detection when no stronger hint is available.
	CanProcess(raw string) bool

	// Process parses raw into Claims. now is used as the observation
	// timestamp for any line that carries no timestamp of its own.
	Process(raw string, now time.Time) ([]claim.Claim, error)

	// DefaultConfidence is the confidence this adapter assigns when nothing
	// about the specific line justifies a different value.
	DefaultConfidence() float64
}

// Error wraps a structural adapter failure (I/O, unexpected binary, a
// parser that cannot make any sense of its input) with the adapter name
// that produced it. Per-line malformed input is never reported this way;
// that's skipped and counted, not surfaced as an error.
type Error struct {
	AdapterName string
	Cause       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("adapter %q: %v", e.AdapterName, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap builds an *Error for adapterName wrapping cause. Returns nil if
// cause is nil.
func Wrap(adapterName string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{AdapterName: adapterName, Cause: cause}
}
