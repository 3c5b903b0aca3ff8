package plasma

import "golang.org/x/crypto/sha3"

func keccak256(chunks ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Keccak256 is the content-hash primitive for all identifier derivation.
func Keccak256(b []byte) [32]byte {
	return keccak256(b)
}
