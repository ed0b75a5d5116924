package abi

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// DecodingError reports a raw return payload that does not match a
// method's declared output types.
type DecodingError struct {
	Method string
	Reason string
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("failed to decode return of %s: %s", e.Method, e.Reason)
}

// Decode splits a raw hex return payload into 32-byte slots per the
// method's declared outputs and converts each slot back to its typed
// value: bools from the low-order byte, addresses from the low 20 bytes
// as 0x-prefixed hex strings, unsigned integers as *big.Int.
func (m *Method) Decode(data string) ([]any, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(data, "0x"))
	if err != nil {
		return nil, &DecodingError{Method: m.Signature(), Reason: fmt.Sprintf("invalid hex payload: %v", err)}
	}

	expected := slotSize * len(m.Outputs)
	if len(raw) != expected {
		return nil, &DecodingError{
			Method: m.Signature(),
			Reason: fmt.Sprintf("payload is %d bytes, expected %d for %d output(s)", len(raw), expected, len(m.Outputs)),
		}
	}

	values := make([]any, len(m.Outputs))
	for i, out := range m.Outputs {
		slot := raw[i*slotSize : (i+1)*slotSize]
		values[i] = decodeSlot(out.Type, slot)
	}
	return values, nil
}

func decodeSlot(abiType string, slot []byte) any {
	switch {
	case abiType == "address":
		return "0x" + hex.EncodeToString(slot[slotSize-20:])
	case abiType == "bool":
		return slot[slotSize-1] != 0
	case abiType == "bytes32":
		return "0x" + hex.EncodeToString(slot)
	case strings.HasPrefix(abiType, "uint"):
		return new(big.Int).SetBytes(slot)
	}
	// Parse rejects unsupported types at load time.
	return nil
}
