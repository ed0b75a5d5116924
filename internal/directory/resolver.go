package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tokengate/internal/abi"
	"tokengate/internal/custody"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// ResolutionError reports a routing key the on-chain directory could
// not map to a wallet address.
type ResolutionError struct {
	Key    string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve key %s: %s", e.Key, e.Reason)
}

// Resolver translates an off-chain routing key (a hashed customer
// identifier) into an on-chain wallet address by querying the
// directory contract through the custody service's read-call path.
// Read-only; it never mutates ledger or custody state.
type Resolver struct {
	contract *abi.Contract
	address  string
	gateway  custody.Gateway
}

// NewResolver creates a Resolver for the directory contract deployed
// at the given address.
func NewResolver(contract *abi.Contract, address string, gateway custody.Gateway) *Resolver {
	return &Resolver{
		contract: contract,
		address:  address,
		gateway:  gateway,
	}
}

// Resolve returns the wallet address registered for key. The key is a
// 32-byte hex-encoded hash.
func (r *Resolver) Resolve(ctx context.Context, key string) (string, error) {
	walletOf, err := r.contract.Method("walletOf")
	if err != nil {
		return "", fmt.Errorf("directory contract misconfigured: %w", err)
	}

	encoded, err := walletOf.Encode(key)
	if err != nil {
		return "", &ResolutionError{Key: key, Reason: err.Error()}
	}

	resp, err := r.gateway.ExecuteReadCall(ctx, custody.ReadRequest{
		EncodedData:     encoded,
		ContractAddress: r.address,
	})
	if err != nil {
		return "", &ResolutionError{Key: key, Reason: fmt.Sprintf("directory read call failed: %v", err)}
	}

	values, err := walletOf.Decode(resp.Data)
	if err != nil {
		return "", &ResolutionError{Key: key, Reason: fmt.Sprintf("directory returned malformed data: %v", err)}
	}

	address, ok := values[0].(string)
	if !ok || strings.EqualFold(address, zeroAddress) {
		return "", &ResolutionError{Key: key, Reason: "directory holds no mapping for this key"}
	}

	slog.Debug("Resolved routing key", "key", key, "address", address)
	return address, nil
}
