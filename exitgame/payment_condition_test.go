package exitgame

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/require"

	"plasma.dev/node/crypto"
	"plasma.dev/node/plasma"
)

func newSigner(t *testing.T, seedByte byte) (*secp256k1.PrivateKey, plasma.Address) {
	t.Helper()
	seed := make([]byte, 32)
	seed[31] = seedByte
	priv := secp256k1.PrivKeyFromBytes(seed)
	require.NotNil(t, priv)

	uncompressed := priv.PubKey().SerializeUncompressed()
	h := plasma.Keccak256(uncompressed[1:])
	var addr plasma.Address
	copy(addr[:], h[12:])
	return priv, addr
}

func signTx(priv *secp256k1.PrivateKey, txBytes []byte) []byte {
	digest := plasma.TxHash(txBytes)
	compact := secpecdsa.SignCompact(priv, digest[:], false)
	sig := make([]byte, 65)
	copy(sig[:64], compact[1:])
	sig[64] = compact[0]
	return sig
}

func TestPaymentConditionAuthorizesOwnerSignature(t *testing.T) {
	h := newHarness(t)
	key := ConditionKey{OutputType: plasma.OUTPUT_TYPE_PLAIN, TxType: plasma.TX_TYPE_PAYMENT}
	require.NoError(t, h.conditions.Register(key, PaymentSpendingCondition{}, 0))

	ownerKey, owner := newSigner(t, 0x07)
	tokenA := token(0xa1)

	inputTx := &plasma.PaymentTx{
		TxType:  plasma.TX_TYPE_PAYMENT,
		Outputs: []plasma.PaymentOutput{plainOutput(owner, tokenA, 100)},
	}
	inputTxBytes := plasma.TxBytes(inputTx)
	proofs := h.includeTxs(1000, inputTxBytes)
	inputPos := plasma.NewUtxoPos(1000, 0, 0)

	disputed := &plasma.PaymentTx{
		TxType:  plasma.TX_TYPE_PAYMENT,
		Inputs:  []plasma.UtxoPos{inputPos},
		Outputs: []plasma.PaymentOutput{plainOutput(addr(0x22), tokenA, 100)},
	}
	txBytes := plasma.TxBytes(disputed)

	args := StartArgs{
		TxBytes:          txBytes,
		InputTxBytes:     [][]byte{inputTxBytes},
		InputPositions:   []plasma.UtxoPos{inputPos},
		InputOutputTypes: []uint16{plasma.OUTPUT_TYPE_PLAIN},
		InclusionProofs:  proofs,
		Witnesses:        [][]byte{signTx(ownerKey, txBytes)},
	}
	_, err := h.game.StartInFlightExit(addr(0x33), args, plasma.START_IFE_BOND)
	require.NoError(t, err)

	exit, err := h.store.GetExit(plasma.InFlightExitID(txBytes))
	require.NoError(t, err)
	require.Equal(t, owner, exit.Inputs[0].PayoutTarget)
}

func TestPaymentConditionRejectsForeignSignature(t *testing.T) {
	h := newHarness(t)
	key := ConditionKey{OutputType: plasma.OUTPUT_TYPE_PLAIN, TxType: plasma.TX_TYPE_PAYMENT}
	require.NoError(t, h.conditions.Register(key, PaymentSpendingCondition{}, 0))

	_, owner := newSigner(t, 0x07)
	thiefKey, _ := newSigner(t, 0x08)
	tokenA := token(0xa1)

	inputTx := &plasma.PaymentTx{
		TxType:  plasma.TX_TYPE_PAYMENT,
		Outputs: []plasma.PaymentOutput{plainOutput(owner, tokenA, 100)},
	}
	inputTxBytes := plasma.TxBytes(inputTx)
	proofs := h.includeTxs(1000, inputTxBytes)
	inputPos := plasma.NewUtxoPos(1000, 0, 0)

	disputed := &plasma.PaymentTx{
		TxType:  plasma.TX_TYPE_PAYMENT,
		Inputs:  []plasma.UtxoPos{inputPos},
		Outputs: []plasma.PaymentOutput{plainOutput(addr(0x22), tokenA, 100)},
	}
	txBytes := plasma.TxBytes(disputed)

	args := StartArgs{
		TxBytes:          txBytes,
		InputTxBytes:     [][]byte{inputTxBytes},
		InputPositions:   []plasma.UtxoPos{inputPos},
		InputOutputTypes: []uint16{plasma.OUTPUT_TYPE_PLAIN},
		InclusionProofs:  proofs,
		Witnesses:        [][]byte{signTx(thiefKey, txBytes)},
	}
	_, err := h.game.StartInFlightExit(addr(0x33), args, plasma.START_IFE_BOND)
	require.Equal(t, plasma.IFE_ERR_COND_REJECTED, plasma.CodeOf(err))
}

func TestPaymentConditionVerifyDirect(t *testing.T) {
	ownerKey, owner := newSigner(t, 0x09)
	txBytes := []byte("spending transaction body")

	cond := PaymentSpendingCondition{}
	ok, err := cond.Verify(plasma.PlainGuard(owner), 0, plasma.OutputID{}, txBytes, 0, signTx(ownerKey, txBytes))
	require.NoError(t, err)
	require.True(t, ok)

	// Garbage witness surfaces the recovery error.
	_, err = cond.Verify(plasma.PlainGuard(owner), 0, plasma.OutputID{}, txBytes, 0, []byte("not a signature"))
	require.Error(t, err)
}

func TestPreimageGuardParser(t *testing.T) {
	target := addr(0x44)
	payload := append(append([]byte{}, target[:]...), []byte("commitment")...)

	got, err := PreimageGuardParser{}.ParsePayoutTarget(payload)
	require.NoError(t, err)
	require.Equal(t, target, got)

	_, err = PreimageGuardParser{}.ParsePayoutTarget([]byte{0x01, 0x02})
	require.Equal(t, plasma.IFE_ERR_PARSE, plasma.CodeOf(err))
}

// Compile-time use of the crypto provider abstraction alongside the
// condition; the game's digesting and the provider's must agree.
func TestTxHashMatchesProvider(t *testing.T) {
	body := []byte("tx body")
	require.Equal(t, plasma.TxHash(body), crypto.NativeProvider{}.Keccak256(body))
}
