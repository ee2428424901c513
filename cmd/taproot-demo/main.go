// Command taproot-demo derives a taproot key-path output from a secret key,
// prints the wallet-facing artifacts (descriptor, address, importdescriptors
// command) and optionally signs a one-in/one-out spend of the funding output
// named on the command line.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"taproot.mleku.dev"
	"taproot.mleku.dev/wallet"
)

func main() {
	var (
		seckeyHex  = flag.String("seckey", "", "32-byte secret key hex (default: fresh random key)")
		network    = flag.String("network", "regtest", "mainnet, testnet, signet or regtest")
		merkleHex  = flag.String("merkle-root", "", "32-byte merkle root hex to commit to a script tree (default: key-only)")
		auxHex     = flag.String("aux-rand", "", "32-byte auxiliary randomness hex for signing")
		txidStr    = flag.String("txid", "", "funding txid in display order; enables the spend flow")
		vout       = flag.Uint("vout", 0, "funding output index")
		amount     = flag.Int64("amount", 0, "funding output amount in sats")
		fee        = flag.Int64("fee", 200, "fee in sats deducted by the spend")
		locktime   = flag.Uint("locktime", 0, "spend transaction locktime")
		sequence   = flag.Uint("sequence", 0xffffffff, "spend input sequence")
		hashTypeIn = flag.Uint("sighash-type", 0x00, "sighash type: 0x00 (default) or 0x01 (all)")
	)
	flag.Parse()

	secret := loadSecret(*seckeyHex)

	kp, err := taproot.DeriveInternalKeypair(secret)
	if err != nil {
		log.Fatalf("derive internal keypair: %v", err)
	}
	defer kp.Clear()
	for i := range secret {
		secret[i] = 0
	}

	internal, err := kp.XOnlyPubkey()
	if err != nil {
		log.Fatalf("internal pubkey: %v", err)
	}
	internalX := internal.Serialize()
	fmt.Printf("internal key:    %x\n", internalX[:])

	merkleRoot := optionalHex32("merkle-root", *merkleHex)

	outputKey, tweak, err := taproot.Tweak(internal, merkleRoot)
	if err != nil {
		log.Fatalf("taproot tweak: %v", err)
	}
	outputX := outputKey.Serialize()
	tweakBytes := tweak.Serialize()
	fmt.Printf("tweak:           %x\n", tweakBytes[:])
	fmt.Printf("output key:      %x (parity %d)\n", outputX[:], outputKey.Parity())

	internalScalar, err := kp.SeckeyScalar()
	if err != nil {
		log.Fatalf("secret scalar: %v", err)
	}
	defer internalScalar.Clear()

	tweaked, err := taproot.TweakedSeckey(internalScalar, tweak)
	if err != nil {
		log.Fatalf("tweaked seckey: %v", err)
	}
	defer tweaked.Clear()

	spk, err := wallet.PayToTaprootScript(outputKey)
	if err != nil {
		log.Fatalf("script pubkey: %v", err)
	}
	fmt.Printf("script pubkey:   %x\n", spk)
	fmt.Printf("descriptor:      %s\n", wallet.Descriptor(outputKey))

	addr, err := wallet.Address(outputKey, *network)
	if err != nil {
		log.Fatalf("address: %v", err)
	}
	fmt.Printf("address:         %s\n", addr)

	importCmd, err := wallet.ImportCommand(wallet.NewImportRequest(outputKey))
	if err != nil {
		log.Fatalf("import command: %v", err)
	}
	fmt.Printf("import:          %s\n", importCmd)

	if *txidStr == "" {
		return
	}

	// Spend flow: one input from the funding outpoint, one output sending
	// the remainder back to the same key.
	txid, err := wallet.ParseTxid(*txidStr)
	if err != nil {
		log.Fatalf("txid: %v", err)
	}
	if *amount <= *fee {
		log.Fatalf("amount %d does not cover fee %d", *amount, *fee)
	}

	skel := &taproot.TransactionSkeleton{
		Version: 2,
		Inputs: []taproot.TxInput{{
			PrevOut:      taproot.OutPoint{Txid: txid, Index: uint32(*vout)},
			Value:        *amount,
			ScriptPubKey: spk,
			Sequence:     uint32(*sequence),
		}},
		Outputs:  []taproot.TxOutput{{Value: *amount - *fee, ScriptPubKey: spk}},
		Locktime: uint32(*locktime),
	}

	unsignedHex, err := wallet.UnsignedTx(skel)
	if err != nil {
		log.Fatalf("unsigned tx: %v", err)
	}
	fmt.Printf("unsigned tx:     %s\n", unsignedHex)

	hashType := byte(*hashTypeIn)
	digest, err := taproot.ComputeSighash(skel, 0, hashType)
	if err != nil {
		log.Fatalf("sighash: %v", err)
	}
	digestBytes := digest.Serialize()
	fmt.Printf("sighash:         %x\n", digestBytes[:])

	auxRand := optionalHex32("aux-rand", *auxHex)

	sig, err := taproot.Sign(tweaked, digest, auxRand)
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	sigBytes := sig.Serialize()
	fmt.Printf("signature:       %x\n", sigBytes[:])

	if !taproot.Verify(outputKey, digest, sig) {
		log.Fatalf("signature does not verify against the output key")
	}
	fmt.Printf("verified:        true\n")

	signedHex, err := wallet.SignedTx(skel, 0, sig, hashType)
	if err != nil {
		log.Fatalf("signed tx: %v", err)
	}
	fmt.Printf("signed tx:       %s\n", signedHex)
}

// loadSecret parses the -seckey flag or draws a fresh key from system entropy
func loadSecret(s string) [32]byte {
	var secret [32]byte

	if s == "" {
		fresh, err := taproot.ECSeckeyGenerate()
		if err != nil {
			log.Fatalf("generate secret key: %v", err)
		}
		copy(secret[:], fresh)
		for i := range fresh {
			fresh[i] = 0
		}
		return secret
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		log.Fatalf("seckey: bad hex: %v", err)
	}
	if len(raw) != 32 {
		log.Fatalf("seckey: need 32 bytes, got %d", len(raw))
	}
	copy(secret[:], raw)
	return secret
}

// optionalHex32 returns nil for an empty flag value and the decoded 32 bytes
// otherwise
func optionalHex32(name, s string) []byte {
	if s == "" {
		return nil
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		log.Fatalf("%s: bad hex: %v", name, err)
	}
	if len(raw) != 32 {
		log.Fatalf("%s: need 32 bytes, got %d", name, len(raw))
	}
	return raw
}
