package abi

import (
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"
)

func loadTokenContract(t *testing.T) *Contract {
	t.Helper()
	contract, err := Load("token")
	if err != nil {
		t.Fatalf("Failed to load token ABI: %v", err)
	}
	return contract
}

func TestApproveEncodingVector(t *testing.T) {
	contract := loadTokenContract(t)

	approve, err := contract.Method("approve")
	if err != nil {
		t.Fatalf("Expected approve method, got: %v", err)
	}

	encoded, err := approve.Encode("0xf2e05Efe980110EBA4a5521C4D9FCEA3eeCE33F4", 1000)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := "0x095ea7b3" +
		"000000000000000000000000f2e05efe980110eba4a5521c4d9fcea3eece33f4" +
		"00000000000000000000000000000000000000000000000000000000000003e8"
	if encoded != want {
		t.Errorf("Encoded call mismatch:\n got:  %s\n want: %s", encoded, want)
	}
}

func TestSelectorDeterminism(t *testing.T) {
	contract := loadTokenContract(t)

	mint, err := contract.Method("mint")
	if err != nil {
		t.Fatalf("Expected mint method, got: %v", err)
	}

	first := mint.Selector()
	for i := 0; i < 10; i++ {
		encoded, err := mint.Encode("0xf2e05Efe980110EBA4a5521C4D9FCEA3eeCE33F4", "500")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if !strings.HasPrefix(encoded, "0x"+hex.EncodeToString(first[:])) {
			t.Errorf("Selector prefix changed between calls: %s", encoded[:10])
		}
	}

	// Same signature parsed independently must yield the same selector.
	again, err := Parse("token-copy", []byte(`[{"type":"function","name":"mint","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}]`))
	if err != nil {
		t.Fatalf("Failed to parse ABI copy: %v", err)
	}
	mintAgain, _ := again.Method("mint")
	if mintAgain.Selector() != first {
		t.Errorf("Selector differs for identical signature: %x vs %x", mintAgain.Selector(), first)
	}
}

func TestEncodeAmountAsDecimalString(t *testing.T) {
	contract := loadTokenContract(t)
	mint, _ := contract.Method("mint")

	fromString, err := mint.Encode("0xf2e05Efe980110EBA4a5521C4D9FCEA3eeCE33F4", "1000")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	fromBig, err := mint.Encode("0xf2e05Efe980110EBA4a5521C4D9FCEA3eeCE33F4", big.NewInt(1000))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if fromString != fromBig {
		t.Errorf("String and big.Int encodings differ:\n %s\n %s", fromString, fromBig)
	}
}

func TestEncodeRejectsBadArguments(t *testing.T) {
	contract := loadTokenContract(t)
	mint, _ := contract.Method("mint")

	tests := []struct {
		name string
		args []any
	}{
		{"wrong arity", []any{"0xf2e05Efe980110EBA4a5521C4D9FCEA3eeCE33F4"}},
		{"non-numeric amount", []any{"0xf2e05Efe980110EBA4a5521C4D9FCEA3eeCE33F4", "one hundred"}},
		{"negative amount", []any{"0xf2e05Efe980110EBA4a5521C4D9FCEA3eeCE33F4", "-5"}},
		{"short address", []any{"0xf2e05", "100"}},
		{"wrong argument type", []any{42, "100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mint.Encode(tt.args...)
			if err == nil {
				t.Fatal("Expected encoding error, got nil")
			}
			var encErr *EncodingError
			if !errors.As(err, &encErr) {
				t.Errorf("Expected *EncodingError, got %T: %v", err, err)
			}
		})
	}
}

func TestEncodeRejectsOverflow(t *testing.T) {
	contract, err := Parse("small", []byte(`[{"type":"function","name":"setRate","inputs":[{"name":"rate","type":"uint8"}],"outputs":[]}]`))
	if err != nil {
		t.Fatalf("Failed to parse ABI: %v", err)
	}
	setRate, _ := contract.Method("setRate")

	if _, err := setRate.Encode(255); err != nil {
		t.Errorf("Expected 255 to fit uint8, got: %v", err)
	}
	if _, err := setRate.Encode(256); err == nil {
		t.Error("Expected overflow error for 256 in uint8")
	}
}

func TestDecodeBool(t *testing.T) {
	contract := loadTokenContract(t)
	approve, _ := contract.Method("approve")

	values, err := approve.Decode("0x0000000000000000000000000000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(values) != 1 || values[0] != true {
		t.Errorf("Expected [true], got: %v", values)
	}

	values, err = approve.Decode("0x0000000000000000000000000000000000000000000000000000000000000000")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(values) != 1 || values[0] != false {
		t.Errorf("Expected [false], got: %v", values)
	}
}

func TestDecodeAddressAndUint(t *testing.T) {
	directory, err := Load("directory")
	if err != nil {
		t.Fatalf("Failed to load directory ABI: %v", err)
	}
	walletOf, _ := directory.Method("walletOf")

	values, err := walletOf.Decode("0x000000000000000000000000f2e05efe980110eba4a5521c4d9fcea3eece33f4")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if values[0] != "0xf2e05efe980110eba4a5521c4d9fcea3eece33f4" {
		t.Errorf("Expected decoded address, got: %v", values[0])
	}

	token := loadTokenContract(t)
	balanceOf, _ := token.Method("balanceOf")
	values, err = balanceOf.Decode("0x00000000000000000000000000000000000000000000000000000000000003e8")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	n, ok := values[0].(*big.Int)
	if !ok || n.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("Expected 1000, got: %v", values[0])
	}
}

func TestDecodeRejectsLengthMismatch(t *testing.T) {
	contract := loadTokenContract(t)
	approve, _ := contract.Method("approve")

	_, err := approve.Decode("0x0001")
	if err == nil {
		t.Fatal("Expected decoding error for truncated payload")
	}
	var decErr *DecodingError
	if !errors.As(err, &decErr) {
		t.Errorf("Expected *DecodingError, got %T: %v", err, err)
	}
}

func TestRoundTrip(t *testing.T) {
	// Encoding a value and replaying the produced slot as a return
	// payload must recover the original value.
	contract := loadTokenContract(t)
	balanceOf, _ := contract.Method("balanceOf")

	encoded, err := balanceOf.Encode("0xf2e05Efe980110EBA4a5521C4D9FCEA3eeCE33F4")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// The argument slot (after the 4-byte selector, 8 hex chars + 0x)
	// decodes back to the same value under an address-typed output.
	directory, _ := Load("directory")
	walletOf, _ := directory.Method("walletOf")
	values, err := walletOf.Decode("0x" + encoded[10:])
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if values[0] != "0xf2e05efe980110eba4a5521c4d9fcea3eece33f4" {
		t.Errorf("Round trip lost value: %v", values[0])
	}
}

func TestParseRejectsDynamicTypes(t *testing.T) {
	_, err := Parse("bad", []byte(`[{"type":"function","name":"setName","inputs":[{"name":"name","type":"string"}],"outputs":[]}]`))
	if err == nil {
		t.Error("Expected error for dynamic string type")
	}
}

func TestMethodLookup(t *testing.T) {
	contract := loadTokenContract(t)
	if _, err := contract.Method("selfDestruct"); err == nil {
		t.Error("Expected error for unknown function")
	}
	if len(contract.MethodNames()) != 6 {
		t.Errorf("Expected 6 functions, got %d", len(contract.MethodNames()))
	}
}
