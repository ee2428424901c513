package wallet

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"taproot.mleku.dev"
)

// ParseTxid converts a transaction id from the display order used by
// bitcoin-cli and block explorers into the wire byte order OutPoint carries
func ParseTxid(s string) ([32]byte, error) {
	var txid [32]byte

	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return txid, fmt.Errorf("bad txid %q: %w", s, err)
	}

	copy(txid[:], h[:])
	return txid, nil
}

// FormatTxid renders a wire-order transaction id in display order
func FormatTxid(txid [32]byte) string {
	h := chainhash.Hash(txid)
	return h.String()
}

// assembleTx converts a transaction skeleton into a wire message. Inputs
// carry no script-sig: key-path spends are witness-only.
func assembleTx(skel *taproot.TransactionSkeleton) (*wire.MsgTx, error) {
	if skel == nil {
		return nil, errors.New("nil transaction skeleton")
	}
	if len(skel.Inputs) == 0 {
		return nil, errors.New("transaction skeleton has no inputs")
	}
	if len(skel.Outputs) == 0 {
		return nil, errors.New("transaction skeleton has no outputs")
	}

	tx := wire.NewMsgTx(skel.Version)
	tx.LockTime = skel.Locktime

	for i := range skel.Inputs {
		in := &skel.Inputs[i]
		tx.AddTxIn(&wire.TxIn{
			PreviousOutPoint: wire.OutPoint{
				Hash:  chainhash.Hash(in.PrevOut.Txid),
				Index: in.PrevOut.Index,
			},
			Sequence: in.Sequence,
		})
	}

	for i := range skel.Outputs {
		out := &skel.Outputs[i]
		tx.AddTxOut(wire.NewTxOut(out.Value, out.ScriptPubKey))
	}

	return tx, nil
}

func serializeTx(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// UnsignedTx returns the network-serialized transaction hex for a skeleton
// without any witness data
func UnsignedTx(skel *taproot.TransactionSkeleton) (string, error) {
	tx, err := assembleTx(skel)
	if err != nil {
		return "", err
	}
	return serializeTx(tx)
}

// SignedTx returns the network-serialized transaction hex with the key-path
// witness attached to the given input. A SIGHASH_DEFAULT signature is a bare
// 64-byte witness element; any other hash type is appended as a 65th byte.
func SignedTx(skel *taproot.TransactionSkeleton, inputIndex int, sig *taproot.Signature, hashType byte) (string, error) {
	if sig == nil {
		return "", errors.New("nil signature")
	}
	if hashType != taproot.SighashDefault && hashType != taproot.SighashAll {
		return "", fmt.Errorf("unsupported sighash type 0x%02x", hashType)
	}

	tx, err := assembleTx(skel)
	if err != nil {
		return "", err
	}
	if inputIndex < 0 || inputIndex >= len(tx.TxIn) {
		return "", fmt.Errorf("input index %d out of range", inputIndex)
	}

	element := make([]byte, 0, 65)
	sigBytes := sig.Serialize()
	element = append(element, sigBytes[:]...)
	if hashType != taproot.SighashDefault {
		element = append(element, hashType)
	}

	tx.TxIn[inputIndex].Witness = wire.TxWitness{element}

	return serializeTx(tx)
}
