package exitgame

import (
	"plasma.dev/node/plasma"
)

// StartArgs carries everything a start-exit call must prove: the disputed
// transaction, and per input of that transaction the producing transaction,
// its position, its output-type tag, an inclusion proof, and a
// spending-condition witness.
type StartArgs struct {
	TxBytes          []byte
	InputTxBytes     [][]byte
	InputPositions   []plasma.UtxoPos
	InputOutputTypes []uint16
	InclusionProofs  [][][32]byte
	Witnesses        [][]byte
}

func addU64(a, b uint64) (uint64, error) {
	if b > ^uint64(0)-a {
		return 0, plasma.Errf(plasma.IFE_ERR_PARSE, "amount overflow")
	}
	return a + b, nil
}

// StartInFlightExit runs the fixed validation pipeline and, only after every
// stage passes, creates and persists the exit record. Stages run in order;
// later stages assume earlier ones' invariants. Any failure aborts the call
// with no state change.
func (g *Game) StartInFlightExit(caller plasma.Address, args StartArgs, bond uint64) (*ExitStarted, error) {
	if err := g.bonds.RequireExact(bond, plasma.START_IFE_BOND); err != nil {
		return nil, err
	}

	tx, err := plasma.ParseTxBytes(args.TxBytes)
	if err != nil {
		return nil, err
	}
	if len(tx.Inputs) == 0 {
		return nil, plasma.Errf(plasma.IFE_ERR_PARSE, "in-flight tx must have inputs")
	}

	id := plasma.InFlightExitID(args.TxBytes)
	now := g.ledger.Now()

	// Stage 1: not already active.
	existing, err := g.store.GetExit(id)
	if err != nil {
		return nil, err
	}
	if existing.Exists() {
		if existing.Bitmap.IsFinalized() {
			return nil, plasma.Errf(plasma.IFE_ERR_ALREADY_FINALIZED, "exit %x", id)
		}
		return nil, plasma.Errf(plasma.IFE_ERR_DUPLICATE_EXIT, "exit %x", id)
	}

	// Stage 2: argument-shape consistency.
	n := len(tx.Inputs)
	if len(args.InputTxBytes) != n ||
		len(args.InputPositions) != n ||
		len(args.InputOutputTypes) != n ||
		len(args.InclusionProofs) != n ||
		len(args.Witnesses) != n {
		return nil, plasma.Errf(plasma.IFE_ERR_ARG_COUNT_MISMATCH,
			"tx declares %d inputs, got %d txs, %d positions, %d types, %d proofs, %d witnesses",
			n, len(args.InputTxBytes), len(args.InputPositions),
			len(args.InputOutputTypes), len(args.InclusionProofs), len(args.Witnesses))
	}

	// Stage 3: input-uniqueness. Pairwise over at most 4 inputs.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if tx.Inputs[i] == tx.Inputs[j] {
				return nil, plasma.Errf(plasma.IFE_ERR_DUPLICATE_INPUT, "inputs %d and %d", i, j)
			}
		}
	}

	// Stage 4: inclusion of every input transaction.
	inputTxs := make([]*plasma.PaymentTx, n)
	for i := 0; i < n; i++ {
		pos := args.InputPositions[i]
		if pos != tx.Inputs[i] {
			return nil, plasma.Errf(plasma.IFE_ERR_PARSE,
				"input %d: supplied position %d does not match tx input %d", i, pos, tx.Inputs[i])
		}

		inputTx, err := plasma.ParseTxBytes(args.InputTxBytes[i])
		if err != nil {
			return nil, err
		}
		if pos.OutputIndex() >= uint64(len(inputTx.Outputs)) {
			return nil, plasma.Errf(plasma.IFE_ERR_PARSE,
				"input %d: output index %d out of range", i, pos.OutputIndex())
		}
		inputTxs[i] = inputTx

		root, _, ok, err := g.ledger.BlockInfo(pos.BlockNum())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, plasma.Errf(plasma.IFE_ERR_UNKNOWN_BLOCK, "block %d", pos.BlockNum())
		}
		leaf := plasma.TxHash(args.InputTxBytes[i])
		if !plasma.CheckMembership(leaf, pos.TxIndex(), root, args.InclusionProofs[i]) {
			return nil, plasma.Errf(plasma.IFE_ERR_INCLUSION_PROOF, "input %d", i)
		}
	}

	// Stage 5: spending-condition verification.
	for i := 0; i < n; i++ {
		pos := args.InputPositions[i]
		spent := inputTxs[i].Outputs[pos.OutputIndex()]
		if args.InputOutputTypes[i] != spent.OutputType {
			return nil, plasma.Errf(plasma.IFE_ERR_PARSE,
				"input %d: declared output type %d, stored %d", i, args.InputOutputTypes[i], spent.OutputType)
		}

		outputID := plasma.OutputIDAt(args.InputTxBytes[i], uint32(pos.OutputIndex()), pos)
		key := ConditionKey{OutputType: spent.OutputType, TxType: tx.TxType}
		cond, err := g.conditions.Lookup(key, now)
		if err != nil {
			return nil, err
		}
		if cond == nil {
			return nil, plasma.Errf(plasma.IFE_ERR_COND_NOT_REGISTERED,
				"no condition for output type %d spent by tx type %d", spent.OutputType, tx.TxType)
		}
		ok, err := cond.Verify(spent.Guard, pos, outputID, args.TxBytes, uint16(i), args.Witnesses[i])
		if err != nil {
			return nil, plasma.Errf(plasma.IFE_ERR_COND_REJECTED, "input %d: %v", i, err)
		}
		if !ok {
			return nil, plasma.Errf(plasma.IFE_ERR_COND_REJECTED, "input %d", i)
		}
	}

	// Stage 6: per-token conservation. Outputs may not mint.
	inSums := make(map[plasma.Token]uint64, n)
	for i := 0; i < n; i++ {
		spent := inputTxs[i].Outputs[args.InputPositions[i].OutputIndex()]
		sum, err := addU64(inSums[spent.Token], spent.Amount)
		if err != nil {
			return nil, err
		}
		inSums[spent.Token] = sum
	}
	outSums := make(map[plasma.Token]uint64, len(tx.Outputs))
	for _, o := range tx.Outputs {
		sum, err := addU64(outSums[o.Token], o.Amount)
		if err != nil {
			return nil, err
		}
		outSums[o.Token] = sum
	}
	for token, outSum := range outSums {
		if outSum > inSums[token] {
			return nil, plasma.Errf(plasma.IFE_ERR_TOKEN_OVERSPEND,
				"token %x: outputs %d exceed inputs %d", token, outSum, inSums[token])
		}
	}

	// All stages passed: create the record. Outputs stay empty until their
	// first piggyback.
	exit := &InFlightExit{
		StartTimestamp: now,
		Position:       youngestInput(tx.Inputs),
		BondOwner:      caller,
	}
	for i := 0; i < n; i++ {
		spent := inputTxs[i].Outputs[args.InputPositions[i].OutputIndex()]
		exit.Inputs[i] = WithdrawData{
			PayoutTarget: spent.Guard.OwnerAddress(),
			Token:        spent.Token,
			Amount:       spent.Amount,
		}
	}
	if err := g.store.PutExit(id, exit); err != nil {
		return nil, err
	}
	g.bonds.Credit(caller, bond)

	return &ExitStarted{
		Initiator: caller,
		TxHash:    plasma.TxHash(args.TxBytes),
		ExitID:    id,
	}, nil
}

// youngestInput picks the highest-valued input reference. Admission priority
// must be no better than the least-trusted input: an older, settled input
// cannot rescue the exit from contest via a newer, still-disputable one.
func youngestInput(inputs []plasma.UtxoPos) plasma.UtxoPos {
	var max plasma.UtxoPos
	for _, pos := range inputs {
		if pos > max {
			max = pos
		}
	}
	return max
}
