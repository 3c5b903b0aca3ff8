package exitgame

import (
	"plasma.dev/node/plasma"
)

// WithdrawData is the resolved payout for one claimed slot.
type WithdrawData struct {
	PayoutTarget plasma.Address
	Token        plasma.Token
	Amount       uint64
}

// InFlightExit is the dispute record for one transaction, keyed by its
// derived exit id. One record per disputed transaction, never deleted;
// a finalized record stays addressable but rejects all further mutation.
type InFlightExit struct {
	// Ledger time the exit began. Zero means the record does not exist.
	StartTimestamp uint64

	Bitmap ClaimBitmap

	// Priority key in the exit queue: the youngest input position among the
	// disputed transaction's inputs. Fixed at start, never recomputed.
	Position plasma.UtxoPos

	Inputs  [MAX_SLOTS]WithdrawData
	Outputs [MAX_SLOTS]WithdrawData

	// BondOwner posted the start bond and is owed its refund.
	BondOwner plasma.Address

	// OldestCompetitorPosition is written by competing-transaction
	// resolution, which lives outside the start/piggyback flows. Settable,
	// never consulted here.
	OldestCompetitorPosition plasma.UtxoPos
}

func (e *InFlightExit) Exists() bool {
	return e != nil && e.StartTimestamp != 0
}

// IsInFirstPhase reports whether the admission half of the exit period is
// still open at ledger time now. The period splits into an admission half
// and a resolution half.
func (e *InFlightExit) IsInFirstPhase(now, minExitPeriod uint64) bool {
	return now-e.StartTimestamp < minExitPeriod/2
}

// IsFirstPiggybackOfToken scans every piggybacked slot on both sides and
// reports whether none of them references token. Gates the one-time queue
// enqueue per (exit, token) pair. O(8) at the fixed slot bound.
func (e *InFlightExit) IsFirstPiggybackOfToken(token plasma.Token) bool {
	for i := uint(0); i < MAX_SLOTS; i++ {
		if e.Bitmap.IsPiggybacked(i, true) && e.Inputs[i].Token == token {
			return false
		}
		if e.Bitmap.IsPiggybacked(i, false) && e.Outputs[i].Token == token {
			return false
		}
	}
	return true
}
