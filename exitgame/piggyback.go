package exitgame

import (
	"plasma.dev/node/plasma"
)

// PiggybackArgs identifies one slot claim on a started exit. OutputType and
// GuardPayload are only meaningful for output claims on non-plain outputs.
type PiggybackArgs struct {
	TxBytes      []byte
	OutputType   uint16
	GuardPayload []byte
	SlotIndex    uint16
	IsInput      bool
}

// PiggybackInFlightExit admits a claim onto slot SlotIndex of the exit for
// TxBytes. Every precondition is enforced before any mutation; the claim bit
// is set only after all external interactions for the call have completed,
// so a misbehaving parser or queue cannot observe a half-updated record.
func (g *Game) PiggybackInFlightExit(caller plasma.Address, args PiggybackArgs, bond uint64) (*Piggybacked, error) {
	if err := g.bonds.RequireExact(bond, plasma.PIGGYBACK_IFE_BOND); err != nil {
		return nil, err
	}
	if args.SlotIndex >= MAX_SLOTS {
		return nil, plasma.Errf(plasma.IFE_ERR_SLOT_RANGE, "slot %d", args.SlotIndex)
	}

	id := plasma.InFlightExitID(args.TxBytes)
	exit, err := g.store.GetExit(id)
	if err != nil {
		return nil, err
	}
	if !exit.Exists() {
		return nil, plasma.Errf(plasma.IFE_ERR_EXIT_NOT_FOUND, "exit %x", id)
	}
	if exit.Bitmap.IsFinalized() {
		return nil, plasma.Errf(plasma.IFE_ERR_ALREADY_FINALIZED, "exit %x", id)
	}

	now := g.ledger.Now()
	if !exit.IsInFirstPhase(now, g.ledger.MinimumExitPeriod()) {
		return nil, plasma.Errf(plasma.IFE_ERR_OUTSIDE_WINDOW,
			"admission closed at %d, now %d", exit.StartTimestamp+g.ledger.MinimumExitPeriod()/2, now)
	}

	index := uint(args.SlotIndex)
	if exit.Bitmap.IsPiggybacked(index, args.IsInput) {
		return nil, plasma.Errf(plasma.IFE_ERR_SLOT_CLAIMED, "slot %d", args.SlotIndex)
	}

	var claim WithdrawData
	if args.IsInput {
		claim = exit.Inputs[index]
		if caller != claim.PayoutTarget {
			return nil, plasma.Errf(plasma.IFE_ERR_NOT_PAYOUT_TARGET,
				"caller %x is not input %d target %x", caller, args.SlotIndex, claim.PayoutTarget)
		}
	} else {
		claim, err = g.resolveOutputClaim(caller, args, now)
		if err != nil {
			return nil, err
		}
		// First write wins; later claims on the same slot never get here.
		if exit.Outputs[index] == (WithdrawData{}) {
			exit.Outputs[index] = claim
		}
	}

	if exit.IsFirstPiggybackOfToken(claim.Token) {
		_, blockTs, ok, err := g.ledger.BlockInfo(exit.Position.BlockNum())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, plasma.Errf(plasma.IFE_ERR_UNKNOWN_BLOCK, "block %d", exit.Position.BlockNum())
		}
		if err := g.ledger.EnqueueExit(claim.Token, id, exit.Position, blockTs, exit.Position.IsDeposit()); err != nil {
			return nil, err
		}
	}

	// External interactions are done; commit the claim.
	exit.Bitmap.SetPiggybacked(index, args.IsInput)
	if err := g.store.PutExit(id, exit); err != nil {
		return nil, err
	}
	g.bonds.Credit(caller, bond)

	return &Piggybacked{
		Claimant:  caller,
		TxHash:    plasma.TxHash(args.TxBytes),
		SlotIndex: args.SlotIndex,
		IsInput:   args.IsInput,
	}, nil
}

// resolveOutputClaim decodes the declared output and resolves who may claim
// it. Plain outputs carry the owner in the guard directly; any other type
// must present a payload that reproduces the stored guard and has a
// registered parser to extract the target.
func (g *Game) resolveOutputClaim(caller plasma.Address, args PiggybackArgs, now uint64) (WithdrawData, error) {
	tx, err := plasma.ParseTxBytes(args.TxBytes)
	if err != nil {
		return WithdrawData{}, err
	}
	if int(args.SlotIndex) >= len(tx.Outputs) {
		return WithdrawData{}, plasma.Errf(plasma.IFE_ERR_SLOT_RANGE,
			"tx declares %d outputs, slot %d", len(tx.Outputs), args.SlotIndex)
	}
	out := tx.Outputs[args.SlotIndex]

	var target plasma.Address
	if out.OutputType == plasma.OUTPUT_TYPE_PLAIN {
		target = out.Guard.OwnerAddress()
	} else {
		if plasma.GuardForType(args.OutputType, args.GuardPayload) != out.Guard {
			return WithdrawData{}, plasma.Errf(plasma.IFE_ERR_GUARD_MISMATCH,
				"payload does not reproduce guard for type %d", args.OutputType)
		}
		parser, err := g.parsers.Lookup(args.OutputType, now)
		if err != nil {
			return WithdrawData{}, err
		}
		if parser == nil {
			return WithdrawData{}, plasma.Errf(plasma.IFE_ERR_PARSER_NOT_REGISTERED,
				"no parser for output type %d", args.OutputType)
		}
		target, err = parser.ParsePayoutTarget(args.GuardPayload)
		if err != nil {
			return WithdrawData{}, plasma.Errf(plasma.IFE_ERR_GUARD_MISMATCH, "parser: %v", err)
		}
	}

	if caller != target {
		return WithdrawData{}, plasma.Errf(plasma.IFE_ERR_NOT_PAYOUT_TARGET,
			"caller %x is not output %d target %x", caller, args.SlotIndex, target)
	}
	return WithdrawData{PayoutTarget: target, Token: out.Token, Amount: out.Amount}, nil
}
