package store

import (
	"fmt"
	"time"

	"plasma.dev/node/plasma"
)

// LedgerStore adapts DB into the commitment-chain collaborator the exit game
// consumes: block lookups, the protocol exit period, the ledger clock, and
// queue admission with the exitable-at time-window rule applied.
type LedgerStore struct {
	db            *DB
	minExitPeriod uint64
	now           func() uint64
}

func NewLedgerStore(db *DB, minExitPeriod uint64, now func() uint64) *LedgerStore {
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}
	return &LedgerStore{db: db, minExitPeriod: minExitPeriod, now: now}
}

func (l *LedgerStore) BlockInfo(blockNum uint64) ([32]byte, uint64, bool, error) {
	return l.db.GetBlock(blockNum)
}

func (l *LedgerStore) MinimumExitPeriod() uint64 { return l.minExitPeriod }

func (l *LedgerStore) Now() uint64 { return l.now() }

// ExitableAt computes when an admitted exit becomes eligible for payout.
// Outputs from committed blocks must wait out the full challenge window
// measured from commitment; deposits only wait from admission.
func ExitableAt(now, blockTimestamp, minExitPeriod uint64, isDeposit bool) uint64 {
	if isDeposit {
		return now + minExitPeriod
	}
	fromBlock := blockTimestamp + 2*minExitPeriod
	fromNow := now + minExitPeriod
	if fromBlock > fromNow {
		return fromBlock
	}
	return fromNow
}

func (l *LedgerStore) EnqueueExit(token plasma.Token, exitID plasma.ExitID, txPos plasma.UtxoPos, blockTimestamp uint64, isDeposit bool) error {
	return l.db.EnqueueExit(token, QueueEntry{
		ExitableAt: ExitableAt(l.now(), blockTimestamp, l.minExitPeriod, isDeposit),
		TxPos:      txPos,
		ExitID:     exitID,
	})
}

// SubmitChildBlock records the next child-chain commitment. Child blocks
// land only on interval multiples; deposit blocks fill the gaps.
func (l *LedgerStore) SubmitChildBlock(root [32]byte) (uint64, error) {
	m := l.db.Manifest()
	if m == nil {
		return 0, fmt.Errorf("ledger: chain not initialized")
	}
	blockNum := m.NextChildBlock
	if err := l.db.PutBlock(blockNum, root, l.now()); err != nil {
		return 0, err
	}
	next := *m
	next.NextChildBlock = blockNum + plasma.CHILD_BLOCK_INTERVAL
	next.NextDepositBlock = blockNum + 1
	if err := l.db.SetManifest(&next); err != nil {
		return 0, err
	}
	return blockNum, nil
}

// SubmitDepositBlock records a single-transaction deposit block between
// child commitments.
func (l *LedgerStore) SubmitDepositBlock(root [32]byte) (uint64, error) {
	m := l.db.Manifest()
	if m == nil {
		return 0, fmt.Errorf("ledger: chain not initialized")
	}
	if m.NextDepositBlock >= m.NextChildBlock {
		return 0, fmt.Errorf("ledger: deposit slots exhausted until next child block")
	}
	blockNum := m.NextDepositBlock
	if err := l.db.PutBlock(blockNum, root, l.now()); err != nil {
		return 0, err
	}
	next := *m
	next.NextDepositBlock = blockNum + 1
	if err := l.db.SetManifest(&next); err != nil {
		return 0, err
	}
	return blockNum, nil
}
