package crypto

import "golang.org/x/crypto/sha3"

// NativeProvider hashes with the pure-Go legacy keccak. It is the default
// backend; deployments with accelerated hashing swap in their own provider.
type NativeProvider struct{}

func (p NativeProvider) Keccak256(input []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(input)
	var out [32]byte
	h.Sum(out[:0])
	return out
}
