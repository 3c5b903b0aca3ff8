package exitgame

import (
	"plasma.dev/node/crypto"
	"plasma.dev/node/plasma"
)

// PaymentSpendingCondition authorizes spends of plain payment outputs: the
// witness must be a recoverable signature over the spending transaction's
// content hash, signed by the owner encoded in the spent output's guard.
type PaymentSpendingCondition struct{}

func (PaymentSpendingCondition) Verify(
	outputGuard plasma.OutputGuard,
	_ plasma.UtxoPos,
	_ plasma.OutputID,
	txBytes []byte,
	_ uint16,
	witness []byte,
) (bool, error) {
	digest := plasma.TxHash(txBytes)
	signer, err := crypto.RecoverAddress(digest, witness)
	if err != nil {
		return false, err
	}
	return signer == outputGuard.OwnerAddress(), nil
}

// PreimageGuardParser reads the payout target from a guard preimage whose
// layout is the 20-byte target address followed by arbitrary commitment
// data.
type PreimageGuardParser struct{}

func (PreimageGuardParser) ParsePayoutTarget(payload []byte) (plasma.Address, error) {
	if len(payload) < 20 {
		return plasma.Address{}, plasma.Errf(plasma.IFE_ERR_PARSE, "guard preimage: %d bytes", len(payload))
	}
	var addr plasma.Address
	copy(addr[:], payload[:20])
	return addr, nil
}
