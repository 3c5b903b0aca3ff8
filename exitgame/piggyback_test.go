package exitgame

import (
	"testing"

	"github.com/stretchr/testify/require"

	"plasma.dev/node/plasma"
)

func (h *harness) startedScenario(t *testing.T) *scenario {
	h.registerAcceptAll(plasma.OUTPUT_TYPE_PLAIN, plasma.TX_TYPE_PAYMENT)
	s := h.singleInputScenario(100)
	_, err := h.game.StartInFlightExit(addr(0x33), s.args, plasma.START_IFE_BOND)
	require.NoError(t, err)
	return s
}

func TestPiggybackOutputSuccess(t *testing.T) {
	h := newHarness(t)
	s := h.startedScenario(t)

	ev, err := h.game.PiggybackInFlightExit(s.outOwner, PiggybackArgs{
		TxBytes:   s.txBytes,
		SlotIndex: 0,
		IsInput:   false,
	}, plasma.PIGGYBACK_IFE_BOND)
	require.NoError(t, err)
	require.Equal(t, s.outOwner, ev.Claimant)
	require.Equal(t, plasma.TxHash(s.txBytes), ev.TxHash)
	require.False(t, ev.IsInput)

	id := plasma.InFlightExitID(s.txBytes)
	exit, err := h.store.GetExit(id)
	require.NoError(t, err)
	require.True(t, exit.Bitmap.IsPiggybacked(0, false))
	require.Equal(t, WithdrawData{PayoutTarget: s.outOwner, Token: s.tokenA, Amount: 100}, exit.Outputs[0])

	require.Len(t, h.ledger.enqueued, 1)
	call := h.ledger.enqueued[0]
	require.Equal(t, s.tokenA, call.token)
	require.Equal(t, id, call.exitID)
	require.Equal(t, exit.Position, call.txPos)
	require.False(t, call.isDeposit)
}

func TestPiggybackEnqueuesOncePerToken(t *testing.T) {
	h := newHarness(t)
	h.registerAcceptAll(plasma.OUTPUT_TYPE_PLAIN, plasma.TX_TYPE_PAYMENT)

	// Two outputs carrying the same token: the second claim must not
	// enqueue again.
	s := &scenario{
		inOwner:  addr(0x11),
		outOwner: addr(0x22),
		tokenA:   token(0xa1),
		inputPos: plasma.NewUtxoPos(1000, 0, 0),
	}
	inputTx := &plasma.PaymentTx{TxType: plasma.TX_TYPE_PAYMENT, Outputs: []plasma.PaymentOutput{plainOutput(s.inOwner, s.tokenA, 100)}}
	inputTxBytes := plasma.TxBytes(inputTx)
	proofs := h.includeTxs(1000, inputTxBytes)
	disputed := &plasma.PaymentTx{
		TxType: plasma.TX_TYPE_PAYMENT,
		Inputs: []plasma.UtxoPos{s.inputPos},
		Outputs: []plasma.PaymentOutput{
			plainOutput(s.outOwner, s.tokenA, 60),
			plainOutput(s.outOwner, s.tokenA, 40),
		},
	}
	s.txBytes = plasma.TxBytes(disputed)
	args := StartArgs{
		TxBytes:          s.txBytes,
		InputTxBytes:     [][]byte{inputTxBytes},
		InputPositions:   []plasma.UtxoPos{s.inputPos},
		InputOutputTypes: []uint16{plasma.OUTPUT_TYPE_PLAIN},
		InclusionProofs:  proofs,
		Witnesses:        [][]byte{[]byte("w")},
	}
	_, err := h.game.StartInFlightExit(addr(0x33), args, plasma.START_IFE_BOND)
	require.NoError(t, err)

	for slot := uint16(0); slot < 2; slot++ {
		_, err := h.game.PiggybackInFlightExit(s.outOwner, PiggybackArgs{
			TxBytes:   s.txBytes,
			SlotIndex: slot,
			IsInput:   false,
		}, plasma.PIGGYBACK_IFE_BOND)
		require.NoError(t, err)
	}
	require.Len(t, h.ledger.enqueued, 1, "one enqueue per (exit, token)")
}

func TestPiggybackInputSuccess(t *testing.T) {
	h := newHarness(t)
	s := h.startedScenario(t)

	ev, err := h.game.PiggybackInFlightExit(s.inOwner, PiggybackArgs{
		TxBytes:   s.txBytes,
		SlotIndex: 0,
		IsInput:   true,
	}, plasma.PIGGYBACK_IFE_BOND)
	require.NoError(t, err)
	require.True(t, ev.IsInput)

	exit, err := h.store.GetExit(plasma.InFlightExitID(s.txBytes))
	require.NoError(t, err)
	require.True(t, exit.Bitmap.IsPiggybacked(0, true))
	require.Len(t, h.ledger.enqueued, 1)
}

func TestPiggybackOutsideWindow(t *testing.T) {
	h := newHarness(t)
	s := h.startedScenario(t)

	h.ledger.now = testNow + testExitPeriod/2
	_, err := h.game.PiggybackInFlightExit(s.outOwner, PiggybackArgs{
		TxBytes:   s.txBytes,
		SlotIndex: 0,
		IsInput:   false,
	}, plasma.PIGGYBACK_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_OUTSIDE_WINDOW, plasma.CodeOf(err))

	exit, err := h.store.GetExit(plasma.InFlightExitID(s.txBytes))
	require.NoError(t, err)
	require.Equal(t, ClaimBitmap{}, exit.Bitmap, "bitmap unchanged after rejection")
	require.Empty(t, h.ledger.enqueued)
}

func TestPiggybackWrongCaller(t *testing.T) {
	h := newHarness(t)
	s := h.startedScenario(t)

	_, err := h.game.PiggybackInFlightExit(addr(0x99), PiggybackArgs{
		TxBytes:   s.txBytes,
		SlotIndex: 0,
		IsInput:   false,
	}, plasma.PIGGYBACK_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_NOT_PAYOUT_TARGET, plasma.CodeOf(err))

	_, err = h.game.PiggybackInFlightExit(addr(0x99), PiggybackArgs{
		TxBytes:   s.txBytes,
		SlotIndex: 0,
		IsInput:   true,
	}, plasma.PIGGYBACK_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_NOT_PAYOUT_TARGET, plasma.CodeOf(err))
}

func TestPiggybackSlotAlreadyClaimed(t *testing.T) {
	h := newHarness(t)
	s := h.startedScenario(t)

	args := PiggybackArgs{TxBytes: s.txBytes, SlotIndex: 0, IsInput: false}
	_, err := h.game.PiggybackInFlightExit(s.outOwner, args, plasma.PIGGYBACK_IFE_BOND)
	require.NoError(t, err)
	_, err = h.game.PiggybackInFlightExit(s.outOwner, args, plasma.PIGGYBACK_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_SLOT_CLAIMED, plasma.CodeOf(err))
}

func TestPiggybackSlotRange(t *testing.T) {
	h := newHarness(t)
	s := h.startedScenario(t)

	_, err := h.game.PiggybackInFlightExit(s.outOwner, PiggybackArgs{
		TxBytes:   s.txBytes,
		SlotIndex: MAX_SLOTS,
		IsInput:   false,
	}, plasma.PIGGYBACK_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_SLOT_RANGE, plasma.CodeOf(err))

	// Slot 1 is inside the cap but the tx declares only one output.
	_, err = h.game.PiggybackInFlightExit(s.outOwner, PiggybackArgs{
		TxBytes:   s.txBytes,
		SlotIndex: 1,
		IsInput:   false,
	}, plasma.PIGGYBACK_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_SLOT_RANGE, plasma.CodeOf(err))
}

func TestPiggybackUnknownExit(t *testing.T) {
	h := newHarness(t)
	_, err := h.game.PiggybackInFlightExit(addr(0x22), PiggybackArgs{
		TxBytes:   []byte("never started"),
		SlotIndex: 0,
		IsInput:   false,
	}, plasma.PIGGYBACK_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_EXIT_NOT_FOUND, plasma.CodeOf(err))
}

func TestPiggybackWrongBond(t *testing.T) {
	h := newHarness(t)
	s := h.startedScenario(t)

	_, err := h.game.PiggybackInFlightExit(s.outOwner, PiggybackArgs{
		TxBytes:   s.txBytes,
		SlotIndex: 0,
		IsInput:   false,
	}, plasma.PIGGYBACK_IFE_BOND+1)
	require.Equal(t, plasma.IFE_ERR_WRONG_BOND, plasma.CodeOf(err))
}

func TestPiggybackNonPlainOutput(t *testing.T) {
	h := newHarness(t)
	h.registerAcceptAll(plasma.OUTPUT_TYPE_PLAIN, plasma.TX_TYPE_PAYMENT)

	const guardedType = uint16(2)
	outOwner := addr(0x22)
	payload := append(append([]byte{}, outOwner[:]...), []byte("commitment-data")...)

	inOwner := addr(0x11)
	tokenA := token(0xa1)
	inputTx := &plasma.PaymentTx{TxType: plasma.TX_TYPE_PAYMENT, Outputs: []plasma.PaymentOutput{plainOutput(inOwner, tokenA, 100)}}
	inputTxBytes := plasma.TxBytes(inputTx)
	proofs := h.includeTxs(1000, inputTxBytes)
	inputPos := plasma.NewUtxoPos(1000, 0, 0)

	disputed := &plasma.PaymentTx{
		TxType: plasma.TX_TYPE_PAYMENT,
		Inputs: []plasma.UtxoPos{inputPos},
		Outputs: []plasma.PaymentOutput{{
			OutputType: guardedType,
			Guard:      plasma.GuardForType(guardedType, payload),
			Token:      tokenA,
			Amount:     100,
		}},
	}
	txBytes := plasma.TxBytes(disputed)
	_, err := h.game.StartInFlightExit(addr(0x33), StartArgs{
		TxBytes:          txBytes,
		InputTxBytes:     [][]byte{inputTxBytes},
		InputPositions:   []plasma.UtxoPos{inputPos},
		InputOutputTypes: []uint16{plasma.OUTPUT_TYPE_PLAIN},
		InclusionProofs:  proofs,
		Witnesses:        [][]byte{[]byte("w")},
	}, plasma.START_IFE_BOND)
	require.NoError(t, err)

	// No parser registered yet.
	claimArgs := PiggybackArgs{
		TxBytes:      txBytes,
		OutputType:   guardedType,
		GuardPayload: payload,
		SlotIndex:    0,
		IsInput:      false,
	}
	_, err = h.game.PiggybackInFlightExit(outOwner, claimArgs, plasma.PIGGYBACK_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_PARSER_NOT_REGISTERED, plasma.CodeOf(err))

	require.NoError(t, h.parsers.Register(guardedType, PreimageGuardParser{}, 0))

	// Tampered payload no longer reproduces the stored guard.
	bad := claimArgs
	bad.GuardPayload = append([]byte{}, payload...)
	bad.GuardPayload[0] ^= 0x01
	_, err = h.game.PiggybackInFlightExit(outOwner, bad, plasma.PIGGYBACK_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_GUARD_MISMATCH, plasma.CodeOf(err))

	ev, err := h.game.PiggybackInFlightExit(outOwner, claimArgs, plasma.PIGGYBACK_IFE_BOND)
	require.NoError(t, err)
	require.Equal(t, outOwner, ev.Claimant)

	exit, err := h.store.GetExit(plasma.InFlightExitID(txBytes))
	require.NoError(t, err)
	require.Equal(t, WithdrawData{PayoutTarget: outOwner, Token: tokenA, Amount: 100}, exit.Outputs[0])
}

func TestPiggybackEnqueueFailureAborts(t *testing.T) {
	h := newHarness(t)
	s := h.startedScenario(t)

	h.ledger.enqueueErr = plasma.Errf(plasma.IFE_ERR_PARSE, "queue down")
	_, err := h.game.PiggybackInFlightExit(s.outOwner, PiggybackArgs{
		TxBytes:   s.txBytes,
		SlotIndex: 0,
		IsInput:   false,
	}, plasma.PIGGYBACK_IFE_BOND)
	require.Error(t, err)

	exit, err := h.store.GetExit(plasma.InFlightExitID(s.txBytes))
	require.NoError(t, err)
	require.Equal(t, ClaimBitmap{}, exit.Bitmap)
	require.Equal(t, WithdrawData{}, exit.Outputs[0], "aborted claim leaves no partial writes")
}

func TestFinalizedExitIsImmutable(t *testing.T) {
	h := newHarness(t)
	s := h.startedScenario(t)
	id := plasma.InFlightExitID(s.txBytes)

	require.NoError(t, h.game.Finalize(id))

	_, err := h.game.PiggybackInFlightExit(s.outOwner, PiggybackArgs{
		TxBytes:   s.txBytes,
		SlotIndex: 0,
		IsInput:   false,
	}, plasma.PIGGYBACK_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_ALREADY_FINALIZED, plasma.CodeOf(err))

	require.Equal(t, plasma.IFE_ERR_ALREADY_FINALIZED, plasma.CodeOf(h.game.MarkExited(id, 0, true)))
	require.Equal(t, plasma.IFE_ERR_ALREADY_FINALIZED, plasma.CodeOf(h.game.Finalize(id)))

	// Restart attempts on a finalized exit stay rejected.
	_, err = h.game.StartInFlightExit(addr(0x33), s.args, plasma.START_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_ALREADY_FINALIZED, plasma.CodeOf(err))
}

func TestMarkExited(t *testing.T) {
	h := newHarness(t)
	s := h.startedScenario(t)
	id := plasma.InFlightExitID(s.txBytes)

	require.NoError(t, h.game.MarkExited(id, 2, false))
	exit, err := h.store.GetExit(id)
	require.NoError(t, err)
	require.True(t, exit.Bitmap.IsExited(2, false))
	require.False(t, exit.Bitmap.IsExited(2, true))
}
