package plasma

import (
	"encoding/binary"
)

type Address [20]byte

// Token identifies the asset an output carries. The zero value is the native
// ether-like asset.
type Token [20]byte

// OutputGuard is an opaque commitment over an output's ownership data. For
// OUTPUT_TYPE_PLAIN it is the owner address directly; for every other output
// type it commits to (output_type, preimage) and is interpreted by a
// registered parser.
type OutputGuard [20]byte

type PaymentOutput struct {
	OutputType uint16
	Guard      OutputGuard
	Token      Token
	Amount     uint64
}

// PaymentTx is the disputed-transaction shape the exit game operates on:
// an ordered list of input references (by position) and an ordered list of
// outputs. Both lists are capped at 4 entries.
type PaymentTx struct {
	TxType   uint16
	Inputs   []UtxoPos
	Outputs  []PaymentOutput
	Metadata [32]byte
}

// GuardForType commits a guard preimage under an output type. Plain outputs
// never go through here.
func GuardForType(outputType uint16, preimage []byte) OutputGuard {
	var tag [2]byte
	binary.BigEndian.PutUint16(tag[:], outputType)
	h := keccak256(tag[:], preimage)
	var g OutputGuard
	copy(g[:], h[:20])
	return g
}

// PlainGuard wraps an owner address as a plain-type guard.
func PlainGuard(owner Address) OutputGuard {
	return OutputGuard(owner)
}

// OwnerAddress reads a plain-type guard back as the owner address.
func (g OutputGuard) OwnerAddress() Address {
	return Address(g)
}

type cursor struct {
	b   []byte
	pos int
}

func newCursor(b []byte) *cursor {
	return &cursor{b: b, pos: 0}
}

func (c *cursor) remaining() int {
	if c.pos >= len(c.b) {
		return 0
	}
	return len(c.b) - c.pos
}

func (c *cursor) readExact(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, Errf(IFE_ERR_PARSE, "truncated")
	}
	start := c.pos
	c.pos += n
	return c.b[start:c.pos], nil
}

func (c *cursor) readU8() (byte, error) {
	b, err := c.readExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readU16LE() (uint16, error) {
	b, err := c.readExact(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) readU64LE() (uint64, error) {
	b, err := c.readExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ParseTxBytes decodes the canonical payment-transaction serialization.
//
// Layout:
//
//	tx_type u16le
//	input_count u8 | per input: utxo_pos u64le
//	output_count u8 | per output: output_type u16le | guard 20 | token 20 | amount u64le
//	metadata 32
func ParseTxBytes(b []byte) (*PaymentTx, error) {
	cur := newCursor(b)

	txType, err := cur.readU16LE()
	if err != nil {
		return nil, err
	}

	inputCount, err := cur.readU8()
	if err != nil {
		return nil, err
	}
	if int(inputCount) > MAX_TX_INPUTS {
		return nil, Errf(IFE_ERR_PARSE, "input_count %d exceeds cap", inputCount)
	}
	inputs := make([]UtxoPos, 0, inputCount)
	for i := 0; i < int(inputCount); i++ {
		pos, err := cur.readU64LE()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, UtxoPos(pos))
	}

	outputCount, err := cur.readU8()
	if err != nil {
		return nil, err
	}
	if int(outputCount) > MAX_TX_OUTPUTS {
		return nil, Errf(IFE_ERR_PARSE, "output_count %d exceeds cap", outputCount)
	}
	outputs := make([]PaymentOutput, 0, outputCount)
	for i := 0; i < int(outputCount); i++ {
		outputType, err := cur.readU16LE()
		if err != nil {
			return nil, err
		}
		guardBytes, err := cur.readExact(20)
		if err != nil {
			return nil, err
		}
		var guard OutputGuard
		copy(guard[:], guardBytes)

		tokenBytes, err := cur.readExact(20)
		if err != nil {
			return nil, err
		}
		var token Token
		copy(token[:], tokenBytes)

		amount, err := cur.readU64LE()
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, PaymentOutput{
			OutputType: outputType,
			Guard:      guard,
			Token:      token,
			Amount:     amount,
		})
	}

	metadataBytes, err := cur.readExact(32)
	if err != nil {
		return nil, err
	}
	var metadata [32]byte
	copy(metadata[:], metadataBytes)

	if cur.pos != len(b) {
		return nil, Errf(IFE_ERR_PARSE, "trailing bytes")
	}

	return &PaymentTx{
		TxType:   txType,
		Inputs:   inputs,
		Outputs:  outputs,
		Metadata: metadata,
	}, nil
}

func TxBytes(tx *PaymentTx) []byte {
	out := make([]byte, 0, 2+1+len(tx.Inputs)*8+1+len(tx.Outputs)*(2+20+20+8)+32)
	var tmp2 [2]byte
	var tmp8 [8]byte

	binary.LittleEndian.PutUint16(tmp2[:], tx.TxType)
	out = append(out, tmp2[:]...)

	out = append(out, byte(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		binary.LittleEndian.PutUint64(tmp8[:], uint64(in))
		out = append(out, tmp8[:]...)
	}

	out = append(out, byte(len(tx.Outputs)))
	for _, o := range tx.Outputs {
		binary.LittleEndian.PutUint16(tmp2[:], o.OutputType)
		out = append(out, tmp2[:]...)
		out = append(out, o.Guard[:]...)
		out = append(out, o.Token[:]...)
		binary.LittleEndian.PutUint64(tmp8[:], o.Amount)
		out = append(out, tmp8[:]...)
	}

	out = append(out, tx.Metadata[:]...)
	return out
}

// TxHash is the content hash proven against block merkle roots and carried
// in exit-game events.
func TxHash(txBytes []byte) [32]byte {
	return keccak256(txBytes)
}
