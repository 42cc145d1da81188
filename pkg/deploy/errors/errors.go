// Package errors defines the classified error type shared by the deploy
// pipeline. Every failure surfaced by the pipeline carries an explicit Kind so
// callers can branch on the class of failure without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Kind enumerates the failure classes of a deployment.
type Kind int

const (
	// Internal is any unclassified failure. It always wraps a cause.
	Internal Kind = iota
	// InvalidArgument covers malformed model references and database URIs.
	InvalidArgument
	// UnsupportedFlavor means the requested or detected flavor is not in
	// the supported set.
	UnsupportedFlavor
	// FlavorNotPresent means the manifest does not declare the requested
	// flavor.
	FlavorNotPresent
	// ManifestNotFound means the resolved artifact has no manifest file at
	// its root.
	ManifestNotFound
	// MissingArtifactData means the manifest declares a data file that does
	// not exist on the resolved artifact.
	MissingArtifactData
	// MalformedFlavorConfig means the manifest is internally inconsistent,
	// e.g. a flavor without its version key.
	MalformedFlavorConfig
	// SchemaCreation means table creation failed for a reason other than
	// the table already existing.
	SchemaCreation
	// Commit means the store rejected the transaction commit.
	Commit
)

var kindNames = map[Kind]string{
	Internal:              "internal error",
	InvalidArgument:       "invalid argument",
	UnsupportedFlavor:     "unsupported flavor",
	FlavorNotPresent:      "flavor not present",
	ManifestNotFound:      "manifest not found",
	MissingArtifactData:   "missing artifact data",
	MalformedFlavorConfig: "malformed flavor config",
	SchemaCreation:        "schema creation failed",
	Commit:                "commit failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified deployment error. Kind is always meaningful; Cause is
// set when the error wraps an underlying failure.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Cause != nil:
		return e.Msg + ": " + e.Cause.Error()
	case e.Msg != "":
		return e.Msg
	case e.Cause != nil:
		return e.Kind.String() + ": " + e.Cause.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns a classified error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a classified error wrapping cause. The cause remains reachable
// through errors.Unwrap.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf reports the Kind of err if err (or anything it wraps) is classified.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return Internal, false
}

// Classified reports whether err already carries a Kind.
func Classified(err error) bool {
	_, ok := KindOf(err)
	return ok
}
