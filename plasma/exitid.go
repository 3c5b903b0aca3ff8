package plasma

import "encoding/binary"

// ExitID keys one in-flight exit record. It is 192 bits: the low 151 bits of
// the raw transaction's keccak hash, with bit 151 set as the in-flight
// marker so the id space cannot collide with standard (position-derived)
// exit ids.
type ExitID [24]byte

// OutputID names one specific prior output, independent of who computes it.
type OutputID [32]byte

func InFlightExitID(txBytes []byte) ExitID {
	h := keccak256(txBytes)
	var id ExitID
	// Low 151 bits of the hash, big-endian; byte 5 holds bit 151.
	copy(id[5:], h[13:])
	id[5] = 0x80 | (id[5] & 0x7f)
	return id
}

// IncludedOutputID derives the identifier of an output created by a
// merkle-proven transaction.
func IncludedOutputID(txBytes []byte, outputIndex uint32) OutputID {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], outputIndex)
	return OutputID(keccak256(txBytes, idx[:]))
}

// DepositOutputID derives the identifier of an output created by a deposit.
// Deposits are not merkle-proven against a committed block, so the claimed
// position is bound into the derivation as well.
func DepositOutputID(txBytes []byte, outputIndex uint32, utxoPos UtxoPos) OutputID {
	inner := IncludedOutputID(txBytes, outputIndex)
	var pos [8]byte
	binary.BigEndian.PutUint64(pos[:], uint64(utxoPos))
	return OutputID(keccak256(inner[:], pos[:]))
}

// OutputIDAt picks the derivation by where the position lands.
func OutputIDAt(txBytes []byte, outputIndex uint32, utxoPos UtxoPos) OutputID {
	if utxoPos.IsDeposit() {
		return DepositOutputID(txBytes, outputIndex, utxoPos)
	}
	return IncludedOutputID(txBytes, outputIndex)
}
