package store

import (
	"fmt"

	"plasma.dev/node/plasma"
)

// InitChain initializes an empty chain DB: writes the manifest with the
// block-number counters at their protocol starting points. Block 0 is
// reserved; the first child commitment lands at CHILD_BLOCK_INTERVAL.
func (d *DB) InitChain(chainIDHex string) error {
	if d == nil {
		return fmt.Errorf("db: nil")
	}
	if d.manifest != nil {
		return fmt.Errorf("chain already initialized (manifest exists)")
	}
	if chainIDHex == "" {
		return fmt.Errorf("chain_id_hex required")
	}

	m := &Manifest{
		SchemaVersion: SchemaVersionV1,
		ChainIDHex:    chainIDHex,

		NextChildBlock:   plasma.CHILD_BLOCK_INTERVAL,
		NextDepositBlock: 1,
	}
	return d.SetManifest(m)
}
