package models

import "time"

// Operation identifies the kind of token operation a record accounts for.
type Operation string

const (
	OperationMint     Operation = "MINT"
	OperationBurn     Operation = "BURN"
	OperationBurnFrom Operation = "BURN_FROM"
	OperationTransfer Operation = "TRANSFER"
	OperationApprove  Operation = "APPROVE"
)

// AssetType tags which asset a transaction record is denominated in.
type AssetType string

const (
	AssetToken      AssetType = "TOKEN"
	AssetUnderlying AssetType = "UNDERLYING"
)

// Status is the lifecycle state of a transaction record.
// Transitions are strictly forward; a status never regresses.
type Status string

const (
	// StatusSubmitted: the custody service accepted the write call and
	// returned a transaction id, local persistence in progress.
	StatusSubmitted Status = "SUBMITTED"

	// StatusPersisted: the ledger write succeeded.
	StatusPersisted Status = "PERSISTED"

	// StatusSignedAndPushed: custody confirmed signing and broadcast.
	StatusSignedAndPushed Status = "SIGNED_AND_PUSHED"

	// StatusFailed: terminal failure, with the failing stage recorded.
	StatusFailed Status = "FAILED"
)

var statusRank = map[Status]int{
	StatusSubmitted:       0,
	StatusPersisted:       1,
	StatusSignedAndPushed: 2,
	StatusFailed:          3,
}

// CanTransition reports whether moving a record from one status to another
// respects the forward-only lifecycle. FAILED is reachable from any
// non-terminal status but can never be left.
func CanTransition(from, to Status) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	if from == StatusFailed || from == StatusSignedAndPushed {
		return false
	}
	if to == StatusFailed {
		return true
	}
	return toRank == fromRank+1
}

// TransactionRecord is the durable unit of account for one requested
// on-chain operation. Records are created only after the custody service
// has accepted a submission, are append-only, and are never deleted.
type TransactionRecord struct {
	// Identification
	ID          string `json:"id"`
	CustodyTxID string `json:"custody_tx_id"`

	// Operation metadata
	Operation   Operation `json:"operation"`
	Asset       AssetType `json:"asset"`
	Description string    `json:"description,omitempty"`

	// Source and destination are both always present in the record shape;
	// either may be empty depending on the operation kind.
	SourceAssetID      string `json:"source_asset_id,omitempty"`
	DestinationAssetID string `json:"destination_asset_id,omitempty"`
	Counterparty       string `json:"counterparty,omitempty"`

	// Call payload
	Amount          string `json:"amount"`
	ContractAddress string `json:"contract_address"`
	EncodedData     string `json:"encoded_data"`

	// Lifecycle
	Status       Status `json:"status"`
	FailureStage string `json:"failure_stage,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
