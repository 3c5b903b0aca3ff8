package plasma

const (
	// Transactions are capped at 4 inputs and 4 outputs. The cap is a
	// protocol-level invariant: identifier derivation and the exit claim
	// bitmap layout both assume it.
	MAX_TX_INPUTS  = 4
	MAX_TX_OUTPUTS = 4

	// UTXO position encoding offsets.
	BLOCK_OFFSET uint64 = 1_000_000_000
	TX_OFFSET    uint64 = 10_000

	// Child-chain blocks are committed at multiples of CHILD_BLOCK_INTERVAL;
	// block numbers in between are deposit blocks.
	CHILD_BLOCK_INTERVAL uint64 = 1000

	// Depth of the per-block transaction merkle tree.
	MERKLE_TREE_DEPTH = 16

	// Payment transaction type tag.
	TX_TYPE_PAYMENT uint16 = 1

	// Output type whose guard is the owner address directly.
	OUTPUT_TYPE_PLAIN uint16 = 0
)

const (
	// Fixed bond sizes, in wei. Mismatched attachments are rejected.
	START_IFE_BOND     uint64 = 31415926535
	PIGGYBACK_IFE_BOND uint64 = 31415926535
)
