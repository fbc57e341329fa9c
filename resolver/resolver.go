// Package resolver assigns persistent identifiers to inventory records.
package resolver

import (
	"context"

	"github.com/arkivo/depositor/common/logger"
	"github.com/arkivo/depositor/common/models"
	"github.com/arkivo/depositor/repoclient"
	"github.com/google/uuid"
)

// SchemeUUID mints identifiers locally; any other scheme is requested from
// the repository node.
const SchemeUUID = "uuid"

// Resolver returns an existing identifier for a record or mints a new one
// under the configured scheme.
type Resolver struct {
	client repoclient.Client
	scheme string
	log    *logger.Logger
}

// New creates a resolver
func New(client repoclient.Client, scheme string, log *logger.Logger) *Resolver {
	return &Resolver{
		client: client,
		scheme: scheme,
		log:    log,
	}
}

// Resolve returns the record's identifier, minting one if the record does
// not carry one yet. Idempotent: a record with a non-empty PID is returned
// unchanged and no minting call is made. An empty return value means
// resolution failed and the record must be retried later; it is never a
// valid identifier.
func (r *Resolver) Resolve(ctx context.Context, rec *models.InventoryRecord) string {
	if rec.PID != "" {
		return rec.PID
	}

	if r.scheme == SchemeUUID {
		return "urn:uuid:" + uuid.NewString()
	}

	pid, err := r.client.MintIdentifier(ctx, r.scheme)
	if err != nil {
		r.log.Warn("identifier minting failed", "file", rec.File, "scheme", r.scheme, "error", err)
		return ""
	}
	return pid
}
