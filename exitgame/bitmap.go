package exitgame

// ClaimBitmap packs the per-exit claim state into 256 bits: four disjoint
// 4-bit zones (one slot per possible input/output index) plus a terminal
// finalized bit. Bits are only ever set, never cleared.
type ClaimBitmap [4]uint64

// Zone base offsets within the bitmap. Each zone is MAX_SLOTS wide.
const (
	MAX_SLOTS = 4

	zoneInputPiggybacked  = 0
	zoneOutputPiggybacked = 4
	zoneInputExited       = 8
	zoneOutputExited      = 12

	bitFinalized = 255
)

func (m *ClaimBitmap) set(bit uint) {
	m[bit/64] |= 1 << (bit % 64)
}

func (m ClaimBitmap) get(bit uint) bool {
	return m[bit/64]&(1<<(bit%64)) != 0
}

func piggybackBit(index uint, isInput bool) uint {
	if isInput {
		return zoneInputPiggybacked + index
	}
	return zoneOutputPiggybacked + index
}

func exitedBit(index uint, isInput bool) uint {
	if isInput {
		return zoneInputExited + index
	}
	return zoneOutputExited + index
}

// SetPiggybacked marks slot index on the chosen side as claimed. The caller
// must have validated index < MAX_SLOTS.
func (m *ClaimBitmap) SetPiggybacked(index uint, isInput bool) {
	m.set(piggybackBit(index, isInput))
}

func (m ClaimBitmap) IsPiggybacked(index uint, isInput bool) bool {
	return m.get(piggybackBit(index, isInput))
}

// SetExited marks slot index as paid out; consumed by finalize processing.
func (m *ClaimBitmap) SetExited(index uint, isInput bool) {
	m.set(exitedBit(index, isInput))
}

func (m ClaimBitmap) IsExited(index uint, isInput bool) bool {
	return m.get(exitedBit(index, isInput))
}

// SetFinalized sets the terminal bit; the record is immutable afterwards.
func (m *ClaimBitmap) SetFinalized() {
	m.set(bitFinalized)
}

func (m ClaimBitmap) IsFinalized() bool {
	return m.get(bitFinalized)
}
