package orchestrator

import (
	"fmt"

	"tokengate/internal/models"
)

// Stage names the saga step an operation reached before failing.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageEncode  Stage = "encode"
	StageSubmit  Stage = "submit"
	StagePersist Stage = "persist"
	StageSign    Stage = "sign_and_push"
)

// ValidationError reports a malformed operation request, caught before
// any encoding or external call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: field %q %s", e.Field, e.Reason)
}

// PersistenceError reports a ledger write failure after the custody
// service already accepted the submission. The custody transaction id
// and payload context are preserved so operators can reconcile the
// pending custody work manually.
type PersistenceError struct {
	CustodyTxID string
	Err         error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger write failed for custody transaction %s: %v", e.CustodyTxID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SigningError reports a sign-and-push confirmation that failed or
// returned no status. Like PersistenceError, it leaves custody-side
// state the local ledger cannot fully account for.
type SigningError struct {
	CustodyTxID string
	RecordID    string
	Reason      string
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("sign-and-push failed for custody transaction %s (record %s): %s", e.CustodyTxID, e.RecordID, e.Reason)
}

// OperationError is the single operation-level failure surfaced to
// callers: the stage-local cause enriched with the operation kind,
// amount, and counterparty.
type OperationError struct {
	Operation    models.Operation
	Stage        Stage
	Amount       string
	Counterparty string
	Err          error
}

func (e *OperationError) Error() string {
	if e.Counterparty != "" {
		return fmt.Sprintf("%s of %s for %s failed at stage %s: %v",
			e.Operation, e.Amount, e.Counterparty, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s of %s failed at stage %s: %v", e.Operation, e.Amount, e.Stage, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
