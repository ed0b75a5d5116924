package custody

import (
	"context"
	"fmt"
)

// Gateway abstracts the external custody service that holds the
// signing keys. Every on-chain state change goes through it: the
// service receives encoded contract calls, signs them, and broadcasts
// them. The local system never touches a private key.
type Gateway interface {
	// SubmitWriteCall hands an encoded state-changing call to the
	// custody service for signing. On success the service returns a
	// tracking transaction id; the call is NOT yet signed or broadcast.
	SubmitWriteCall(ctx context.Context, req SubmitRequest) (*SubmitResponse, error)

	// ExecuteReadCall runs a read-only contract call through the
	// custody service and returns the raw return data.
	ExecuteReadCall(ctx context.Context, req ReadRequest) (*ReadResponse, error)

	// ConfirmSignAndPush asks the custody service to sign and
	// broadcast a previously submitted transaction, tagging it with
	// the local ledger record id for cross-referencing.
	ConfirmSignAndPush(ctx context.Context, custodyTxID, recordID string) (*ConfirmResponse, error)
}

// SubmitRequest carries one encoded write call to the custody service.
type SubmitRequest struct {
	EncodedData     string `json:"data"`
	ContractAddress string `json:"contractAddress"`
	SourceAssetID   string `json:"sourceAssetId"`
	Description     string `json:"description,omitempty"`
}

// SubmitResponse is the custody service's acknowledgement of a write
// submission.
type SubmitResponse struct {
	TransactionID string `json:"id"`
}

// ReadRequest carries one encoded read-only call.
type ReadRequest struct {
	EncodedData     string `json:"data"`
	ContractAddress string `json:"contractAddress"`
}

// ReadResponse holds the raw hex return data of a read-only call.
type ReadResponse struct {
	Data string `json:"data"`
}

// ConfirmResponse reports the signing/broadcast outcome.
type ConfirmResponse struct {
	Status            string `json:"status"`
	StatusDescription string `json:"statusDescription"`
}

// SubmissionError reports a custody service rejection. It is distinct
// from transport errors so the retry strategy never replays a call the
// service has already seen and refused.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("custody service rejected request (status %d): %s", e.StatusCode, e.Message)
}
