// Package repoclient defines the boundary to the remote repository node:
// existence checks, object create/update, identifier minting and session
// validation. Orchestrators depend only on the Client interface; the HTTP
// adapter and the caching decorator are interchangeable implementations.
package repoclient

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/arkivo/depositor/common/models"
)

// FailureKind enumerates why a remote call failed.
type FailureKind string

// Failure kinds surfaced by repository clients.
const (
	KindNotFound    FailureKind = "not_found"
	KindConflict    FailureKind = "conflict"
	KindTransient   FailureKind = "transient"
	KindAuthExpired FailureKind = "auth_expired"
)

// Error is a remote-call failure with an enumerated kind.
type Error struct {
	Kind FailureKind
	Op   string
	PID  string
	Err  error
}

func (e *Error) Error() string {
	if e.PID != "" {
		return fmt.Sprintf("repository %s %s: %s: %v", e.Op, e.PID, e.Kind, e.Err)
	}
	return fmt.Sprintf("repository %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, or KindTransient for
// errors that did not come from a repository client.
func KindOf(err error) FailureKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindTransient
}

// IsAuthExpired reports whether err is a session/authentication failure.
func IsAuthExpired(err error) bool {
	return KindOf(err) == KindAuthExpired
}

// Client is the repository node boundary. All calls are synchronous and
// blocking; timeouts and retries live behind the implementation.
type Client interface {
	// Ping validates the session. An auth_expired error means the whole
	// deposit call must be skipped.
	Ping(ctx context.Context) error

	// ObjectExists reports whether an object is stored under pid.
	ObjectExists(ctx context.Context, pid string) (bool, error)

	// CreateObject stores body under pid with the given descriptor and
	// returns the identifier confirmed by the node. Creating a pid twice
	// fails with a conflict error.
	CreateObject(ctx context.Context, pid string, desc *models.Descriptor, body io.Reader) (string, error)

	// UpdateObject stores body under newPID, superseding oldPID in the
	// node's version chain.
	UpdateObject(ctx context.Context, oldPID, newPID string, desc *models.Descriptor, body io.Reader) (string, error)

	// MintIdentifier requests a fresh identifier under the given scheme.
	MintIdentifier(ctx context.Context, scheme string) (string, error)
}
