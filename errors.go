package glossa

import (
	"errors"
	"fmt"
	"strings"
)

// Query-time negative results. These are expected outcomes returned to the
// caller, never panics: a missing code is data absence, not a fault.
var (
	// ErrNotFound means a code is absent from both the live and deprecated
	// tables of the requested standard.
	ErrNotFound = errors.New("glossa: not found")

	// ErrNoMapping means the entity exists but carries no code for the
	// requested target standard.
	ErrNoMapping = errors.New("glossa: no mapping for target standard")

	// ErrIncompatibleFormat means the artifact's format version does not
	// match the running engine. The load is refused outright rather than
	// partially interpreted.
	ErrIncompatibleFormat = errors.New("glossa: incompatible artifact format")
)

// CollisionError is the build's single fatal-by-default data condition: a
// merged group's identifiers would violate the global uniqueness invariant.
// The build aborts rather than silently guessing which entity wins.
type CollisionError struct {
	Standard Standard
	Codes    []string // distinct codes claimed within one merged entity, or
	Entities []string // canonical IDs both claiming one code
}

func (e *CollisionError) Error() string {
	if len(e.Entities) > 0 {
		return fmt.Sprintf("glossa: identifier collision: %s=%s claimed by %s",
			e.Standard, e.Codes[0], strings.Join(e.Entities, " and "))
	}
	return fmt.Sprintf("glossa: identifier collision: one merged entity carries %s codes [%s]",
		e.Standard, strings.Join(e.Codes, " "))
}

// CycleError reports a cycle in the parent hierarchy, naming the entities on
// the cycle. Fatal at build time.
type CycleError struct {
	Kind Kind
	Path []string // canonical IDs along the cycle, first == last
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("glossa: cyclic %s hierarchy: %s", e.Kind, strings.Join(e.Path, " -> "))
}

// malformedError marks a single skipped record. Per-record, never fatal:
// the record is counted and the build continues.
type malformedError struct {
	source string
	seq    int
	reason string
}

func (e *malformedError) Error() string {
	return fmt.Sprintf("malformed record %s[%d]: %s", e.source, e.seq, e.reason)
}
