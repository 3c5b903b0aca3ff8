package crypto

// CryptoProvider is the narrow crypto interface used by exit-game code.
// Implementations may provide hardware-backed or native backends.
type CryptoProvider interface {
	Keccak256(input []byte) [32]byte
}
