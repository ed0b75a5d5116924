package abi

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"
)

//go:embed contracts/*.json
var contractFS embed.FS

// Param is one typed input or output of a contract function.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Method describes one callable contract function: its name, ordered
// input and output types, and the 4-byte selector derived from the
// canonical signature. Immutable once loaded.
type Method struct {
	Name    string
	Inputs  []Param
	Outputs []Param

	selector [4]byte
}

// Signature returns the canonical signature string, e.g.
// "approve(address,uint256)".
func (m *Method) Signature() string {
	types := make([]string, len(m.Inputs))
	for i, in := range m.Inputs {
		types[i] = in.Type
	}
	return m.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte function selector: the Keccak-256 hash of
// the canonical signature truncated to its first 4 bytes. Pure function
// of the signature, so identical signatures always yield identical
// selectors.
func (m *Method) Selector() [4]byte {
	return m.selector
}

func computeSelector(signature string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	var sel [4]byte
	copy(sel[:], h.Sum(nil)[:4])
	return sel
}

// Contract holds the loaded interface of one contract and resolves
// function names to method descriptors.
type Contract struct {
	Name    string
	methods map[string]*Method
}

// Method looks up a function descriptor by name.
func (c *Contract) Method(name string) (*Method, error) {
	m, ok := c.methods[name]
	if !ok {
		return nil, fmt.Errorf("contract %s has no function %q", c.Name, name)
	}
	return m, nil
}

// MethodNames returns the names of all loaded functions.
func (c *Contract) MethodNames() []string {
	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}
	return names
}

type abiEntry struct {
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	Inputs  []Param `json:"inputs"`
	Outputs []Param `json:"outputs"`
}

// Parse builds a Contract from a JSON ABI document. Only function
// entries are loaded; constructor, event, and fallback entries are
// skipped. Functions using unsupported parameter types are rejected so
// that encoding failures surface at startup rather than per call.
func Parse(name string, data []byte) (*Contract, error) {
	var entries []abiEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse ABI for %s: %w", name, err)
	}

	methods := make(map[string]*Method)
	for _, entry := range entries {
		if entry.Type != "function" {
			continue
		}
		if _, exists := methods[entry.Name]; exists {
			return nil, fmt.Errorf("contract %s declares function %q more than once", name, entry.Name)
		}
		for _, p := range append(append([]Param{}, entry.Inputs...), entry.Outputs...) {
			if !supportedType(p.Type) {
				return nil, fmt.Errorf("contract %s function %q uses unsupported type %q", name, entry.Name, p.Type)
			}
		}
		m := &Method{
			Name:    entry.Name,
			Inputs:  entry.Inputs,
			Outputs: entry.Outputs,
		}
		m.selector = computeSelector(m.Signature())
		methods[entry.Name] = m
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("ABI for %s declares no functions", name)
	}

	return &Contract{Name: name, methods: methods}, nil
}

// Load reads an embedded ABI document by contract name, e.g.
// Load("token") for contracts/token.json.
func Load(name string) (*Contract, error) {
	data, err := contractFS.ReadFile("contracts/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded ABI %q: %w", name, err)
	}
	return Parse(name, data)
}

// supportedType reports whether an ABI type can be encoded into a
// single fixed-width 32-byte slot. Dynamic types (string, bytes,
// arrays) are not supported.
func supportedType(t string) bool {
	switch t {
	case "address", "bool", "bytes32":
		return true
	}
	if strings.HasPrefix(t, "uint") {
		bits, err := strconv.Atoi(t[len("uint"):])
		if err != nil {
			return false
		}
		return bits >= 8 && bits <= 256 && bits%8 == 0
	}
	return false
}

func uintBits(t string) int {
	bits, _ := strconv.Atoi(t[len("uint"):])
	return bits
}
