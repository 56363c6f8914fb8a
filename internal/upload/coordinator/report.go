package coordinator

import (
	"github.com/dmitrijs2005/shopkeeper/internal/upload/gallery"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/policy"
)

// Reasons for non-clean outcomes produced by the coordinator itself.
// Validation reasons come from the policy package.
const (
	ReasonAuthorityUnavailable policy.Reason = "AuthorityUnavailable"
	ReasonTransferFailed       policy.Reason = "TransferFailed"
	ReasonInvalidDestination   policy.Reason = "InvalidDestination"
	ReasonFallbackUnavailable  policy.Reason = "FallbackUnavailable"
)

// State is the per-candidate pipeline state.
type State int

const (
	StatePending State = iota
	StateRejected
	StateTransferring
	StatePersisted
	StateFallback
	// StateExcluded is terminal for a file whose upload failed and for which
	// no local placeholder could be created either.
	StateExcluded
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRejected:
		return "rejected"
	case StateTransferring:
		return "transferring"
	case StatePersisted:
		return "persisted"
	case StateFallback:
		return "fallback"
	case StateExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// Warning describes one file that did not end up cleanly persisted.
// Fallback is set when the file is present in the list as a local preview.
type Warning struct {
	Filename string
	Reason   policy.Reason
	Detail   string
	Fallback bool
}

// Outcome is the final state of one candidate, indexed by input position.
type Outcome struct {
	Index     int
	Filename  string
	State     State
	Reference gallery.Reference
	Reason    policy.Reason
	Detail    string
}

// InList reports whether the outcome contributes an entry to the updated list.
func (o Outcome) InList() bool {
	return o.State == StatePersisted || o.State == StateFallback
}

// BatchReport summarizes one SubmitBatch call.
// AcceptedCount counts files stored durably.
type BatchReport struct {
	AcceptedCount int
	FallbackCount int
	Warnings      []Warning
	Outcomes      []Outcome
}

// RejectedCount is the number of files that were left out of the list.
func (r BatchReport) RejectedCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.InList() {
			n++
		}
	}
	return n
}
