package deposit

import (
	"fmt"

	"github.com/arkivo/depositor/common/models"
)

// State is how far a package has progressed through insertion. Halting in
// a non-terminal state is the expected "resume later" outcome, not an
// error: re-invoking the orchestrator on the persisted inventory picks up
// where processing stopped.
type State string

// Insertion states, in order.
const (
	StateNoMetadataID        State = "no_metadata_id"
	StateMetadataDescribed   State = "metadata_described"
	StateMetadataUploaded    State = "metadata_uploaded"
	StateDataUploading       State = "data_uploading"
	StateDataComplete        State = "data_complete"
	StateResourceMapBuilt    State = "resource_map_built"
	StateResourceMapUploaded State = "resource_map_uploaded"
)

// Terminal reports whether the state is the successful end state.
func (s State) Terminal() bool {
	return s == StateResourceMapUploaded
}

// Result is the outcome of one orchestrator invocation: the mutated
// inventory subset and how far processing got.
type Result struct {
	PackageID string                    `json:"package_id"`
	State     State                     `json:"state"`
	Records   []*models.InventoryRecord `json:"records"`
}

// PreconditionError marks a fatal inventory violation: malformed package,
// ambiguous metadata, or an unmet child dependency. The call aborts before
// any remote work or inventory mutation.
type PreconditionError struct {
	PackageID string
	Reason    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("package %s: precondition violated: %s", e.PackageID, e.Reason)
}
