package crypto

import (
	"fmt"

	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Signature recovery over secp256k1 compact signatures. Wrapped as a pure
// function so callers never depend on a specific library's native exposure.

const recoverableSigLen = 65

type RecoverError struct {
	Reason string
}

func (e *RecoverError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "recover: " + e.Reason
}

// RecoverAddress recovers the signing address from a 32-byte message digest
// and a 65-byte r||s||v signature (v in {0,1} or {27,28}).
func RecoverAddress(digest [32]byte, sig []byte) ([20]byte, error) {
	var zero [20]byte
	if len(sig) != recoverableSigLen {
		return zero, &RecoverError{Reason: fmt.Sprintf("malformed length %d", len(sig))}
	}

	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return zero, &RecoverError{Reason: fmt.Sprintf("invalid recovery id %d", sig[64])}
	}

	// RecoverCompact wants the recovery code first: 27 + id.
	compact := make([]byte, recoverableSigLen)
	compact[0] = 27 + v
	copy(compact[1:], sig[:64])

	pub, _, err := secpecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return zero, &RecoverError{Reason: "invalid result: " + err.Error()}
	}

	// Ethereum-style address: low 20 bytes of keccak over the uncompressed
	// point without the 0x04 prefix.
	uncompressed := pub.SerializeUncompressed()
	h := NativeProvider{}.Keccak256(uncompressed[1:])
	var addr [20]byte
	copy(addr[:], h[12:])
	return addr, nil
}
