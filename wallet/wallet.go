// Package wallet turns taproot output keys into the artifacts a watching or
// spending wallet needs: descriptor strings, bech32m addresses, Bitcoin Core
// importdescriptors request bodies and serialized transactions. It consumes
// output keys as fixed-length bytes and never touches secret material.
package wallet

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"taproot.mleku.dev"
)

// Descriptor renders the single-key descriptor for an output key
func Descriptor(key *taproot.OutputKey) string {
	x := key.Serialize()
	return "tr(" + hex.EncodeToString(x[:]) + ")"
}

// ParseDescriptor recovers the output key from a tr(<64 hex>) descriptor
// string. Whitespace and hex case are normalized before parsing.
func ParseDescriptor(desc string) (*taproot.OutputKey, error) {
	s := strings.ToLower(strings.TrimSpace(desc))
	if !strings.HasPrefix(s, "tr(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("not a tr() descriptor: %q", desc)
	}

	inner, err := hex.DecodeString(s[len("tr(") : len(s)-1])
	if err != nil {
		return nil, fmt.Errorf("descriptor key is not hex: %w", err)
	}

	return taproot.ParseOutputKey(inner)
}

// netParams maps a network name to its chain parameters. Network selection
// lives entirely in this layer; the core has no notion of network.
func netParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "", "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	}
	return nil, fmt.Errorf("unknown network %q", network)
}

// Address encodes the output key as a bech32m P2TR address for the named
// network (mainnet, testnet, signet or regtest)
func Address(key *taproot.OutputKey, network string) (string, error) {
	params, err := netParams(network)
	if err != nil {
		return "", err
	}

	x := key.Serialize()
	addr, err := btcutil.NewAddressTaproot(x[:], params)
	if err != nil {
		return "", err
	}

	return addr.EncodeAddress(), nil
}

// PayToTaprootScript builds the P2TR script-pubkey OP_1 <32-byte key> for an
// output key
func PayToTaprootScript(key *taproot.OutputKey) ([]byte, error) {
	x := key.Serialize()
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(x[:]).
		Script()
}

// ImportRequest is one element of a Bitcoin Core importdescriptors request
// body
type ImportRequest struct {
	Desc      string `json:"desc"`
	Timestamp any    `json:"timestamp"` // the string "now" or a unix time
	Active    bool   `json:"active"`
	Range     int    `json:"range"`
	Internal  bool   `json:"internal"`
	Watchonly bool   `json:"watchonly"`
}

// NewImportRequest builds the watch-only import request for an output key,
// scanning from now
func NewImportRequest(key *taproot.OutputKey) ImportRequest {
	return ImportRequest{
		Desc:      Descriptor(key),
		Timestamp: "now",
		Active:    true,
		Range:     0,
		Internal:  false,
		Watchonly: true,
	}
}

// ImportCommand renders the full bitcoin-cli importdescriptors invocation for
// the given requests
func ImportCommand(reqs ...ImportRequest) (string, error) {
	body, err := json.Marshal(reqs)
	if err != nil {
		return "", err
	}
	return "bitcoin-cli importdescriptors '" + string(body) + "'", nil
}
