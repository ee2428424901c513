package taproot

import (
	"encoding/binary"
	"fmt"
)

// Sighash types the key-path builder accepts. SIGHASH_DEFAULT is the
// taproot-only alias for ALL that signs with the shorter 64-byte witness
// signature; both commit to all inputs and all outputs.
const (
	SighashDefault byte = 0x00
	SighashAll     byte = 0x01
)

// SigHash is a 32-byte BIP-341 signature hash.
type SigHash [32]byte

// ParseSigHash copies a 32-byte slice into a SigHash
func ParseSigHash(digest []byte) (*SigHash, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("sighash length %d: %w", len(digest), ErrMalformedInput)
	}

	var h SigHash
	copy(h[:], digest)
	return &h, nil
}

// Serialize returns the 32-byte digest
func (h *SigHash) Serialize() [32]byte {
	return *h
}

// OutPoint identifies the transaction output an input spends
type OutPoint struct {
	Txid  [32]byte
	Index uint32
}

// TxInput is one input of a transaction skeleton. BIP-341 commits to the
// spent output's amount and scriptPubKey, so both ride along with the
// outpoint.
type TxInput struct {
	PrevOut      OutPoint
	Value        int64
	ScriptPubKey []byte
	Sequence     uint32
}

// TxOutput is one output of a transaction skeleton
type TxOutput struct {
	Value        int64
	ScriptPubKey []byte
}

// TransactionSkeleton carries the transaction fields the key-path sighash
// commits to. Value semantics: the builder never mutates it.
type TransactionSkeleton struct {
	Version  int32
	Inputs   []TxInput
	Outputs  []TxOutput
	Locktime uint32
}

// appendCompactSize appends the Bitcoin variable-length integer encoding of v
func appendCompactSize(b []byte, v uint64) []byte {
	switch {
	case v < 0xfd:
		return append(b, byte(v))
	case v <= 0xffff:
		return append(b, 0xfd, byte(v), byte(v>>8))
	case v <= 0xffffffff:
		return append(b, 0xfe, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	default:
		return append(b, 0xff,
			byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
			byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
	}
}

// skeletonHashes holds the five precomputed digests the sighash message
// embeds: single SHA-256 runs over the concatenated serializations.
type skeletonHashes struct {
	prevouts      [32]byte
	amounts       [32]byte
	scriptPubkeys [32]byte
	sequences     [32]byte
	outputs       [32]byte
}

// computeSkeletonHashes validates the skeleton's prevout data and computes
// the component digests
func computeSkeletonHashes(skel *TransactionSkeleton) (*skeletonHashes, error) {
	prevouts := NewSHA256()
	amounts := NewSHA256()
	scriptPubkeys := NewSHA256()
	sequences := NewSHA256()

	var le4 [4]byte
	var le8 [8]byte

	for i := range skel.Inputs {
		in := &skel.Inputs[i]

		if in.Value < 0 {
			return nil, fmt.Errorf("input %d: missing prevout amount: %w", i, ErrMalformedInput)
		}
		if len(in.ScriptPubKey) == 0 {
			return nil, fmt.Errorf("input %d: missing prevout script: %w", i, ErrMalformedInput)
		}

		prevouts.Write(in.PrevOut.Txid[:])
		binary.LittleEndian.PutUint32(le4[:], in.PrevOut.Index)
		prevouts.Write(le4[:])

		binary.LittleEndian.PutUint64(le8[:], uint64(in.Value))
		amounts.Write(le8[:])

		var spk []byte
		spk = appendCompactSize(spk, uint64(len(in.ScriptPubKey)))
		spk = append(spk, in.ScriptPubKey...)
		scriptPubkeys.Write(spk)

		binary.LittleEndian.PutUint32(le4[:], in.Sequence)
		sequences.Write(le4[:])
	}

	outputs := NewSHA256()
	for i := range skel.Outputs {
		out := &skel.Outputs[i]

		if out.Value < 0 {
			return nil, fmt.Errorf("output %d: negative amount: %w", i, ErrMalformedInput)
		}

		var ser []byte
		binary.LittleEndian.PutUint64(le8[:], uint64(out.Value))
		ser = append(ser, le8[:]...)
		ser = appendCompactSize(ser, uint64(len(out.ScriptPubKey)))
		ser = append(ser, out.ScriptPubKey...)
		outputs.Write(ser)
	}

	h := &skeletonHashes{}
	prevouts.Finalize(h.prevouts[:])
	amounts.Finalize(h.amounts[:])
	scriptPubkeys.Finalize(h.scriptPubkeys[:])
	sequences.Finalize(h.sequences[:])
	outputs.Finalize(h.outputs[:])

	return h, nil
}

// ComputeSighash computes the BIP-341 key-path signature hash for one input
// of the skeleton. Only SIGHASH_DEFAULT and SIGHASH_ALL are accepted; both
// commit to every input and every output. Pure: the same skeleton, index
// and hash type always produce the same digest.
func ComputeSighash(skel *TransactionSkeleton, inputIndex int, hashType byte) (*SigHash, error) {
	if skel == nil {
		return nil, fmt.Errorf("nil skeleton: %w", ErrMalformedInput)
	}
	if inputIndex < 0 || inputIndex >= len(skel.Inputs) {
		return nil, fmt.Errorf("input %d of %d: %w", inputIndex, len(skel.Inputs), ErrIndexOutOfRange)
	}
	if hashType != SighashDefault && hashType != SighashAll {
		return nil, fmt.Errorf("hash type %#02x: %w", hashType, ErrUnsupportedSighashType)
	}

	hashes, err := computeSkeletonHashes(skel)
	if err != nil {
		return nil, err
	}

	// Message layout for the key path without annex:
	// epoch, hash type, version, locktime, the four prevout-set digests,
	// the outputs digest, spend type, input index.
	msg := make([]byte, 0, 175)
	msg = append(msg, 0x00) // epoch
	msg = append(msg, hashType)

	var le4 [4]byte
	binary.LittleEndian.PutUint32(le4[:], uint32(skel.Version))
	msg = append(msg, le4[:]...)
	binary.LittleEndian.PutUint32(le4[:], skel.Locktime)
	msg = append(msg, le4[:]...)

	msg = append(msg, hashes.prevouts[:]...)
	msg = append(msg, hashes.amounts[:]...)
	msg = append(msg, hashes.scriptPubkeys[:]...)
	msg = append(msg, hashes.sequences[:]...)
	msg = append(msg, hashes.outputs[:]...)

	// spend type: ext_flag 0 (key path), no annex
	msg = append(msg, 0x00)

	binary.LittleEndian.PutUint32(le4[:], uint32(inputIndex))
	msg = append(msg, le4[:]...)

	digest := TaggedHash(TagTapSighash, msg)

	h := &SigHash{}
	copy(h[:], digest[:])
	return h, nil
}
