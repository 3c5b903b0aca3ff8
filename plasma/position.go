package plasma

// UtxoPos is the canonical encoding of an output's location in the
// commitment chain:
//
//	pos = block_num * BLOCK_OFFSET + tx_index * TX_OFFSET + output_index
type UtxoPos uint64

func NewUtxoPos(blockNum, txIndex, outputIndex uint64) UtxoPos {
	return UtxoPos(blockNum*BLOCK_OFFSET + txIndex*TX_OFFSET + outputIndex)
}

func (p UtxoPos) BlockNum() uint64 {
	return uint64(p) / BLOCK_OFFSET
}

func (p UtxoPos) TxIndex() uint64 {
	return (uint64(p) % BLOCK_OFFSET) / TX_OFFSET
}

func (p UtxoPos) OutputIndex() uint64 {
	return uint64(p) % TX_OFFSET
}

// IsDeposit reports whether the position lies in a deposit block. Deposit
// blocks occupy the block numbers between child-chain commitments, which
// land only on multiples of CHILD_BLOCK_INTERVAL.
func (p UtxoPos) IsDeposit() bool {
	return p.BlockNum()%CHILD_BLOCK_INTERVAL != 0
}
