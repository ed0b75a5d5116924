package abi

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const slotSize = 32

// EncodingError reports an argument that cannot be serialized against a
// method's declared input types.
type EncodingError struct {
	Method string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to encode call to %s: %s", e.Method, e.Reason)
}

// Encode serializes a concrete argument tuple into wire-format call
// data: the 4-byte selector followed by one 32-byte slot per argument,
// returned as a lowercase hex string prefixed with 0x. Encoding is
// deterministic: identical inputs always yield identical output.
func (m *Method) Encode(args ...any) (string, error) {
	if len(args) != len(m.Inputs) {
		return "", &EncodingError{
			Method: m.Signature(),
			Reason: fmt.Sprintf("expected %d arguments, got %d", len(m.Inputs), len(args)),
		}
	}

	data := make([]byte, 0, 4+slotSize*len(args))
	data = append(data, m.selector[:]...)

	for i, arg := range args {
		slot, err := encodeSlot(m.Inputs[i].Type, arg)
		if err != nil {
			return "", &EncodingError{
				Method: m.Signature(),
				Reason: fmt.Sprintf("argument %d (%s): %v", i, m.Inputs[i].Type, err),
			}
		}
		data = append(data, slot...)
	}

	return "0x" + hex.EncodeToString(data), nil
}

// encodeSlot serializes a single value into a 32-byte slot per the ABI
// convention: addresses right-aligned, unsigned integers big-endian,
// bools as 0 or 1 in the low-order byte.
func encodeSlot(abiType string, value any) ([]byte, error) {
	slot := make([]byte, slotSize)

	switch {
	case abiType == "address":
		addr, err := parseAddress(value)
		if err != nil {
			return nil, err
		}
		copy(slot[slotSize-20:], addr)
		return slot, nil

	case abiType == "bool":
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", value)
		}
		if b {
			slot[slotSize-1] = 1
		}
		return slot, nil

	case abiType == "bytes32":
		raw, err := parseBytes32(value)
		if err != nil {
			return nil, err
		}
		copy(slot, raw)
		return slot, nil

	case strings.HasPrefix(abiType, "uint"):
		n, err := parseUint(value)
		if err != nil {
			return nil, err
		}
		if n.BitLen() > uintBits(abiType) {
			return nil, fmt.Errorf("value %s overflows %s", n.String(), abiType)
		}
		n.FillBytes(slot)
		return slot, nil
	}

	return nil, fmt.Errorf("unsupported type %q", abiType)
}

func parseAddress(value any) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected hex address string, got %T", value)
	}
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) != 40 {
		return nil, fmt.Errorf("address must be 20 bytes, got %d hex chars", len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex address: %w", err)
	}
	return raw, nil
}

func parseBytes32(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		s := strings.TrimPrefix(strings.ToLower(v), "0x")
		if len(s) != 64 {
			return nil, fmt.Errorf("bytes32 must be 32 bytes, got %d hex chars", len(s))
		}
		raw, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex value: %w", err)
		}
		return raw, nil
	case [32]byte:
		return v[:], nil
	case []byte:
		if len(v) != 32 {
			return nil, fmt.Errorf("bytes32 must be 32 bytes, got %d", len(v))
		}
		return v, nil
	}
	return nil, fmt.Errorf("expected bytes32, got %T", value)
}

// parseUint accepts the numeric representations callers actually supply:
// decimal strings from API payloads, big.Int values, and native ints.
func parseUint(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s for unsigned type", v.String())
		}
		return new(big.Int).Set(v), nil
	case string:
		n, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
		if !ok {
			return nil, fmt.Errorf("non-numeric string %q for unsigned type", v)
		}
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %q for unsigned type", v)
		}
		return n, nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int:
		if v < 0 {
			return nil, fmt.Errorf("negative value %d for unsigned type", v)
		}
		return big.NewInt(int64(v)), nil
	case int64:
		if v < 0 {
			return nil, fmt.Errorf("negative value %d for unsigned type", v)
		}
		return big.NewInt(v), nil
	}
	return nil, fmt.Errorf("expected numeric value, got %T", value)
}
