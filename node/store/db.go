package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"plasma.dev/node/exitgame"
	"plasma.dev/node/plasma"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketBlocks = []byte("blocks_by_number")
	bucketExits  = []byte("exits_by_id")
	bucketQueue  = []byte("exit_queue_by_token")
)

// DB is the exit game's durable state: committed block roots, in-flight exit
// records, and the per-token priority queue. Exclusively owned by the exit
// game runtime; no other component writes it.
type DB struct {
	chainDir string
	db       *bolt.DB
	manifest *Manifest
}

func Open(datadir string, chainIDHex string) (*DB, error) {
	if datadir == "" {
		return nil, fmt.Errorf("datadir required")
	}
	if chainIDHex == "" {
		return nil, fmt.Errorf("chain_id_hex required")
	}

	chainDir := ChainDir(datadir, chainIDHex)
	if err := ensureDir(chainDir); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Join(chainDir, "db")); err != nil {
		return nil, err
	}

	path := filepath.Join(chainDir, "db", "kv.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}

	d := &DB{chainDir: chainDir, db: bdb}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketBlocks, bucketExits, bucketQueue} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	m, err := readManifest(chainDir)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil // uninitialized chain; caller must InitChain.
		}
		_ = bdb.Close()
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if m.SchemaVersion > SchemaVersionV1 {
		_ = bdb.Close()
		return nil, fmt.Errorf("manifest schema_version %d > supported %d", m.SchemaVersion, SchemaVersionV1)
	}
	d.manifest = m
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) ChainDir() string { return d.chainDir }

func (d *DB) Manifest() *Manifest {
	if d == nil {
		return nil
	}
	return d.manifest
}

func (d *DB) SetManifest(m *Manifest) error {
	if d == nil {
		return fmt.Errorf("db: nil")
	}
	if err := writeManifestAtomic(d.chainDir, m); err != nil {
		return err
	}
	d.manifest = m
	return nil
}

func (d *DB) PutBlock(blockNum uint64, root [32]byte, timestamp uint64) error {
	key := encodeBlockKey(blockNum)
	val := encodeBlockEntry(root, timestamp)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlocks).Put(key, val)
	})
}

func (d *DB) GetBlock(blockNum uint64) (root [32]byte, timestamp uint64, ok bool, err error) {
	key := encodeBlockKey(blockNum)
	err = d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlocks).Get(key)
		if v == nil {
			return nil
		}
		r, ts, derr := decodeBlockEntry(v)
		if derr != nil {
			return derr
		}
		root, timestamp, ok = r, ts, true
		return nil
	})
	return root, timestamp, ok, err
}

func (d *DB) GetExit(id plasma.ExitID) (*exitgame.InFlightExit, error) {
	var out *exitgame.InFlightExit
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketExits).Get(id[:])
		if v == nil {
			return nil
		}
		e, derr := decodeExit(v)
		if derr != nil {
			return derr
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DB) PutExit(id plasma.ExitID, e *exitgame.InFlightExit) error {
	val := encodeExit(e)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketExits).Put(id[:], val)
	})
}
