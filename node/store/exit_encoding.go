package store

import (
	"encoding/binary"
	"fmt"

	"plasma.dev/node/exitgame"
	"plasma.dev/node/plasma"
)

func encodeBlockKey(blockNum uint64) []byte {
	// block_num u64 big-endian so bucket iteration walks chain order.
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, blockNum)
	return out
}

func encodeBlockEntry(root [32]byte, timestamp uint64) []byte {
	// root(32) || timestamp u64le
	out := make([]byte, 32+8)
	copy(out[0:32], root[:])
	binary.LittleEndian.PutUint64(out[32:40], timestamp)
	return out
}

func decodeBlockEntry(b []byte) ([32]byte, uint64, error) {
	if len(b) != 40 {
		return [32]byte{}, 0, fmt.Errorf("block: expected 40 bytes, got %d", len(b))
	}
	var root [32]byte
	copy(root[:], b[0:32])
	return root, binary.LittleEndian.Uint64(b[32:40]), nil
}

const (
	withdrawDataLen = 20 + 20 + 8
	exitEntryLen    = 8 + 32 + 8 + 8 + 20 + 2*exitgame.MAX_SLOTS*withdrawDataLen
)

func putWithdrawData(dst []byte, w exitgame.WithdrawData) {
	copy(dst[0:20], w.PayoutTarget[:])
	copy(dst[20:40], w.Token[:])
	binary.LittleEndian.PutUint64(dst[40:48], w.Amount)
}

func getWithdrawData(src []byte) exitgame.WithdrawData {
	var w exitgame.WithdrawData
	copy(w.PayoutTarget[:], src[0:20])
	copy(w.Token[:], src[20:40])
	w.Amount = binary.LittleEndian.Uint64(src[40:48])
	return w
}

// encodeExit serializes one exit record. This is a persistence format, not a
// wire format.
//
// Layout:
//
//	start_ts u64le | bitmap 4*u64le | position u64le | oldest_competitor u64le |
//	bond_owner 20 | inputs 4*(target 20 | token 20 | amount u64le) | outputs likewise
func encodeExit(e *exitgame.InFlightExit) []byte {
	out := make([]byte, exitEntryLen)
	binary.LittleEndian.PutUint64(out[0:8], e.StartTimestamp)
	for i, word := range e.Bitmap {
		binary.LittleEndian.PutUint64(out[8+8*i:16+8*i], word)
	}
	binary.LittleEndian.PutUint64(out[40:48], uint64(e.Position))
	binary.LittleEndian.PutUint64(out[48:56], uint64(e.OldestCompetitorPosition))
	copy(out[56:76], e.BondOwner[:])
	off := 76
	for i := 0; i < exitgame.MAX_SLOTS; i++ {
		putWithdrawData(out[off:off+withdrawDataLen], e.Inputs[i])
		off += withdrawDataLen
	}
	for i := 0; i < exitgame.MAX_SLOTS; i++ {
		putWithdrawData(out[off:off+withdrawDataLen], e.Outputs[i])
		off += withdrawDataLen
	}
	return out
}

func decodeExit(b []byte) (*exitgame.InFlightExit, error) {
	if len(b) != exitEntryLen {
		return nil, fmt.Errorf("exit: expected %d bytes, got %d", exitEntryLen, len(b))
	}
	e := &exitgame.InFlightExit{}
	e.StartTimestamp = binary.LittleEndian.Uint64(b[0:8])
	for i := range e.Bitmap {
		e.Bitmap[i] = binary.LittleEndian.Uint64(b[8+8*i : 16+8*i])
	}
	e.Position = plasma.UtxoPos(binary.LittleEndian.Uint64(b[40:48]))
	e.OldestCompetitorPosition = plasma.UtxoPos(binary.LittleEndian.Uint64(b[48:56]))
	copy(e.BondOwner[:], b[56:76])
	off := 76
	for i := 0; i < exitgame.MAX_SLOTS; i++ {
		e.Inputs[i] = getWithdrawData(b[off : off+withdrawDataLen])
		off += withdrawDataLen
	}
	for i := 0; i < exitgame.MAX_SLOTS; i++ {
		e.Outputs[i] = getWithdrawData(b[off : off+withdrawDataLen])
		off += withdrawDataLen
	}
	return e, nil
}
