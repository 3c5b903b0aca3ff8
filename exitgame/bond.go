package exitgame

import (
	"plasma.dev/node/plasma"
)

// BondEscrow tracks bonds posted with start and piggyback calls. Bonds are
// credited only when the posting call succeeds; refunds belong to the
// finalize flow and are not processed here.
type BondEscrow struct {
	balances map[plasma.Address]uint64
}

func NewBondEscrow() *BondEscrow {
	return &BondEscrow{balances: make(map[plasma.Address]uint64)}
}

// RequireExact rejects any attachment that is not exactly the required bond.
func (b *BondEscrow) RequireExact(attached, required uint64) error {
	if attached != required {
		return plasma.Errf(plasma.IFE_ERR_WRONG_BOND, "attached %d, required %d", attached, required)
	}
	return nil
}

func (b *BondEscrow) Credit(owner plasma.Address, amount uint64) {
	b.balances[owner] += amount
}

func (b *BondEscrow) BalanceOf(owner plasma.Address) uint64 {
	return b.balances[owner]
}
