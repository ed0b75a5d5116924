package directory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tokengate/internal/abi"
	"tokengate/internal/custody"
)

const testKey = "0x2222222222222222222222222222222222222222222222222222222222222222"

type fakeGateway struct {
	readResp *custody.ReadResponse
	readErr  error
	lastRead custody.ReadRequest
}

func (g *fakeGateway) SubmitWriteCall(ctx context.Context, req custody.SubmitRequest) (*custody.SubmitResponse, error) {
	return nil, errors.New("resolver must never submit write calls")
}

func (g *fakeGateway) ExecuteReadCall(ctx context.Context, req custody.ReadRequest) (*custody.ReadResponse, error) {
	g.lastRead = req
	if g.readErr != nil {
		return nil, g.readErr
	}
	return g.readResp, nil
}

func (g *fakeGateway) ConfirmSignAndPush(ctx context.Context, custodyTxID, recordID string) (*custody.ConfirmResponse, error) {
	return nil, errors.New("resolver must never confirm transactions")
}

func newTestResolver(t *testing.T, gateway custody.Gateway) *Resolver {
	t.Helper()
	contract, err := abi.Load("directory")
	if err != nil {
		t.Fatalf("Failed to load directory ABI: %v", err)
	}
	return NewResolver(contract, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", gateway)
}

func TestResolveReturnsWalletAddress(t *testing.T) {
	gateway := &fakeGateway{
		readResp: &custody.ReadResponse{
			Data: "0x000000000000000000000000f2e05efe980110eba4a5521c4d9fcea3eece33f4",
		},
	}
	resolver := newTestResolver(t, gateway)

	address, err := resolver.Resolve(context.Background(), testKey)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if address != "0xf2e05efe980110eba4a5521c4d9fcea3eece33f4" {
		t.Errorf("Expected resolved address, got: %s", address)
	}

	// The read call carried the walletOf(bytes32) selector and the key.
	if !strings.HasPrefix(gateway.lastRead.EncodedData, "0x") {
		t.Fatalf("Expected hex call data, got: %s", gateway.lastRead.EncodedData)
	}
	if !strings.Contains(gateway.lastRead.EncodedData, strings.TrimPrefix(testKey, "0x")) {
		t.Errorf("Expected key in call data, got: %s", gateway.lastRead.EncodedData)
	}
	if gateway.lastRead.ContractAddress != "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb" {
		t.Errorf("Expected directory contract address, got: %s", gateway.lastRead.ContractAddress)
	}
}

func TestResolveZeroAddressIsResolutionError(t *testing.T) {
	gateway := &fakeGateway{
		readResp: &custody.ReadResponse{
			Data: "0x0000000000000000000000000000000000000000000000000000000000000000",
		},
	}
	resolver := newTestResolver(t, gateway)

	_, err := resolver.Resolve(context.Background(), testKey)
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("Expected ResolutionError for unmapped key, got: %v", err)
	}
}

func TestResolveReadFailureIsResolutionError(t *testing.T) {
	gateway := &fakeGateway{readErr: errors.New("custody read call returned empty data")}
	resolver := newTestResolver(t, gateway)

	_, err := resolver.Resolve(context.Background(), testKey)
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("Expected ResolutionError for failed read, got: %v", err)
	}
}

func TestResolveMalformedReturnIsResolutionError(t *testing.T) {
	gateway := &fakeGateway{readResp: &custody.ReadResponse{Data: "0x01"}}
	resolver := newTestResolver(t, gateway)

	_, err := resolver.Resolve(context.Background(), testKey)
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("Expected ResolutionError for malformed return, got: %v", err)
	}
}

func TestResolveRejectsBadKey(t *testing.T) {
	gateway := &fakeGateway{}
	resolver := newTestResolver(t, gateway)

	_, err := resolver.Resolve(context.Background(), "not-a-key")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("Expected ResolutionError for malformed key, got: %v", err)
	}
}
