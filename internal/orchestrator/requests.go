package orchestrator

import (
	"encoding/hex"
	"math/big"
	"strings"
)

// Request types are immutable caller intent: validated once, then
// consumed into a transaction record. Validation is explicit and runs
// before any encoding or external call.

// MintRequest asks for new tokens to be issued to a wallet.
type MintRequest struct {
	Description string `json:"description,omitempty"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
}

// Validate checks the request before the saga starts.
func (r MintRequest) Validate() error {
	if err := validAddress("to", r.To); err != nil {
		return err
	}
	return validAmount(r.Amount)
}

// BurnRequest asks for tokens held by the institution to be redeemed.
type BurnRequest struct {
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
}

// Validate checks the request before the saga starts.
func (r BurnRequest) Validate() error {
	return validAmount(r.Amount)
}

// BurnFromRequest redeems tokens from a specific account that has
// approved the institution to spend them.
type BurnFromRequest struct {
	Description string `json:"description,omitempty"`
	Account     string `json:"account"`
	Amount      string `json:"amount"`
}

// Validate checks the request before the saga starts.
func (r BurnFromRequest) Validate() error {
	if err := validAddress("account", r.Account); err != nil {
		return err
	}
	return validAmount(r.Amount)
}

// TransferRequest moves tokens to a counterparty identified by an
// off-chain routing key; the on-chain address is resolved through the
// directory contract.
type TransferRequest struct {
	Description string `json:"description,omitempty"`
	Key         string `json:"key"`
	Amount      string `json:"amount"`
}

// Validate checks the request before the saga starts.
func (r TransferRequest) Validate() error {
	if err := validKey(r.Key); err != nil {
		return err
	}
	return validAmount(r.Amount)
}

// ApproveRequest grants a spender an allowance scoped to a specific
// custody asset.
type ApproveRequest struct {
	Description string `json:"description,omitempty"`
	Spender     string `json:"spender"`
	AssetID     string `json:"assetId"`
	Amount      string `json:"amount"`
}

// Validate checks the request before the saga starts.
func (r ApproveRequest) Validate() error {
	if err := validAddress("spender", r.Spender); err != nil {
		return err
	}
	if strings.TrimSpace(r.AssetID) == "" {
		return &ValidationError{Field: "assetId", Reason: "is required"}
	}
	return validAmount(r.Amount)
}

func validAddress(field, value string) error {
	s := strings.TrimPrefix(strings.ToLower(value), "0x")
	if len(s) != 40 {
		return &ValidationError{Field: field, Reason: "must be a 20-byte hex address"}
	}
	if _, err := hex.DecodeString(s); err != nil {
		return &ValidationError{Field: field, Reason: "must be a valid hex address"}
	}
	return nil
}

func validKey(value string) error {
	s := strings.TrimPrefix(strings.ToLower(value), "0x")
	if len(s) != 64 {
		return &ValidationError{Field: "key", Reason: "must be a 32-byte hex routing key"}
	}
	if _, err := hex.DecodeString(s); err != nil {
		return &ValidationError{Field: "key", Reason: "must be a valid hex routing key"}
	}
	return nil
}

func validAmount(value string) error {
	n, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return &ValidationError{Field: "amount", Reason: "must be a decimal integer"}
	}
	if n.Sign() <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}
