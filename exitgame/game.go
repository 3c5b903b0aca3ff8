package exitgame

import (
	"plasma.dev/node/plasma"
)

// Ledger is the commitment-chain collaborator: block roots and timestamps,
// the protocol exit period, the global clock, and the priority exit queue.
type Ledger interface {
	// BlockInfo returns the commitment root and timestamp for a block, or
	// ok=false for a block the ledger has never committed.
	BlockInfo(blockNum uint64) (root [32]byte, timestamp uint64, ok bool, err error)
	MinimumExitPeriod() uint64
	Now() uint64
	// EnqueueExit admits an exit into the priority queue under token. The
	// ledger computes the exitable-at time from the block timestamp and the
	// deposit flag per its time-window rule.
	EnqueueExit(token plasma.Token, exitID plasma.ExitID, txPos plasma.UtxoPos, blockTimestamp uint64, isDeposit bool) error
}

// ExitStore is the content-addressed record store, exclusively owned by the
// exit game. GetExit returns nil for an unknown id.
type ExitStore interface {
	GetExit(id plasma.ExitID) (*InFlightExit, error)
	PutExit(id plasma.ExitID, e *InFlightExit) error
}

// Game runs the in-flight exit protocol. All mutation of exit records goes
// through its two public operations plus the finalize hooks; callers are
// serialized by the surrounding runtime.
type Game struct {
	store      ExitStore
	ledger     Ledger
	conditions *SpendingConditionRegistry
	parsers    *OutputGuardParserRegistry
	bonds      *BondEscrow
}

func NewGame(store ExitStore, ledger Ledger, conditions *SpendingConditionRegistry, parsers *OutputGuardParserRegistry, bonds *BondEscrow) *Game {
	return &Game{
		store:      store,
		ledger:     ledger,
		conditions: conditions,
		parsers:    parsers,
		bonds:      bonds,
	}
}

// MarkExited flags a claimed slot as paid out. Boundary hook for the
// finalize flow; no payout logic lives here.
func (g *Game) MarkExited(id plasma.ExitID, index uint16, isInput bool) error {
	if index >= MAX_SLOTS {
		return plasma.Errf(plasma.IFE_ERR_SLOT_RANGE, "slot %d", index)
	}
	exit, err := g.store.GetExit(id)
	if err != nil {
		return err
	}
	if !exit.Exists() {
		return plasma.Errf(plasma.IFE_ERR_EXIT_NOT_FOUND, "exit %x", id)
	}
	if exit.Bitmap.IsFinalized() {
		return plasma.Errf(plasma.IFE_ERR_ALREADY_FINALIZED, "exit %x", id)
	}
	exit.Bitmap.SetExited(uint(index), isInput)
	return g.store.PutExit(id, exit)
}

// Finalize sets the terminal bit. The record stays addressable but rejects
// all further mutation.
func (g *Game) Finalize(id plasma.ExitID) error {
	exit, err := g.store.GetExit(id)
	if err != nil {
		return err
	}
	if !exit.Exists() {
		return plasma.Errf(plasma.IFE_ERR_EXIT_NOT_FOUND, "exit %x", id)
	}
	if exit.Bitmap.IsFinalized() {
		return plasma.Errf(plasma.IFE_ERR_ALREADY_FINALIZED, "exit %x", id)
	}
	exit.Bitmap.SetFinalized()
	return g.store.PutExit(id, exit)
}
