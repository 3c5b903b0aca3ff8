package store

import (
	"encoding/binary"
	"fmt"

	"plasma.dev/node/plasma"

	bolt "go.etcd.io/bbolt"
)

// The exit queue is one nested bucket per token under bucketQueue. Entry
// keys sort by exitable-at time, then transaction position, then exit id, so
// bbolt's key-ordered cursor walks entries in payout priority order.

type QueueEntry struct {
	ExitableAt uint64
	TxPos      plasma.UtxoPos
	ExitID     plasma.ExitID
}

func encodeQueueKey(e QueueEntry) []byte {
	// exitable_at u64be || tx_pos u64be || exit_id 24
	out := make([]byte, 8+8+24)
	binary.BigEndian.PutUint64(out[0:8], e.ExitableAt)
	binary.BigEndian.PutUint64(out[8:16], uint64(e.TxPos))
	copy(out[16:40], e.ExitID[:])
	return out
}

func decodeQueueKey(b []byte) (QueueEntry, error) {
	if len(b) != 40 {
		return QueueEntry{}, fmt.Errorf("queue: expected 40-byte key, got %d", len(b))
	}
	var e QueueEntry
	e.ExitableAt = binary.BigEndian.Uint64(b[0:8])
	e.TxPos = plasma.UtxoPos(binary.BigEndian.Uint64(b[8:16]))
	copy(e.ExitID[:], b[16:40])
	return e, nil
}

func (d *DB) EnqueueExit(token plasma.Token, e QueueEntry) error {
	key := encodeQueueKey(e)
	return d.db.Update(func(tx *bolt.Tx) error {
		tb, err := tx.Bucket(bucketQueue).CreateBucketIfNotExists(token[:])
		if err != nil {
			return fmt.Errorf("queue bucket %x: %w", token, err)
		}
		return tb.Put(key, nil)
	})
}

// PeekExit returns the highest-priority entry for token without removing it.
func (d *DB) PeekExit(token plasma.Token) (QueueEntry, bool, error) {
	var out QueueEntry
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		tb := tx.Bucket(bucketQueue).Bucket(token[:])
		if tb == nil {
			return nil
		}
		k, _ := tb.Cursor().First()
		if k == nil {
			return nil
		}
		e, derr := decodeQueueKey(k)
		if derr != nil {
			return derr
		}
		out, ok = e, true
		return nil
	})
	return out, ok, err
}

// PopExit removes and returns the highest-priority entry for token.
func (d *DB) PopExit(token plasma.Token) (QueueEntry, bool, error) {
	var out QueueEntry
	var ok bool
	err := d.db.Update(func(tx *bolt.Tx) error {
		tb := tx.Bucket(bucketQueue).Bucket(token[:])
		if tb == nil {
			return nil
		}
		c := tb.Cursor()
		k, _ := c.First()
		if k == nil {
			return nil
		}
		e, derr := decodeQueueKey(k)
		if derr != nil {
			return derr
		}
		if derr := c.Delete(); derr != nil {
			return derr
		}
		out, ok = e, true
		return nil
	})
	return out, ok, err
}

func (d *DB) QueueSize(token plasma.Token) (int, error) {
	var n int
	err := d.db.View(func(tx *bolt.Tx) error {
		tb := tx.Bucket(bucketQueue).Bucket(token[:])
		if tb == nil {
			return nil
		}
		return tb.ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
	})
	return n, err
}
