package plasma

// Fixed-depth merkle tree over per-block transaction hashes. Leaf and
// interior nodes use distinct domain prefixes so a leaf can never be
// reinterpreted as an interior node.

var nullLeafHash = func() [32]byte {
	return keccak256([]byte{0x00})
}()

func merkleLeaf(leaf [32]byte) [32]byte {
	return keccak256([]byte{0x00}, leaf[:])
}

func merkleNode(left, right [32]byte) [32]byte {
	return keccak256([]byte{0x01}, left[:], right[:])
}

// CheckMembership verifies that leaf sits at index under root, walking a
// depth-MERKLE_TREE_DEPTH proof bottom-up.
func CheckMembership(leaf [32]byte, index uint64, root [32]byte, proof [][32]byte) bool {
	if len(proof) != MERKLE_TREE_DEPTH {
		return false
	}
	if index >= 1<<MERKLE_TREE_DEPTH {
		return false
	}
	computed := merkleLeaf(leaf)
	for _, sibling := range proof {
		if index%2 == 0 {
			computed = merkleNode(computed, sibling)
		} else {
			computed = merkleNode(sibling, computed)
		}
		index /= 2
	}
	return computed == root
}

// FixedMerkle is the full tree, built from block construction or by tests
// needing valid proofs. Missing leaves are padded with the null leaf.
type FixedMerkle struct {
	levels [][][32]byte // levels[0] = hashed leaves, last level = [root]
}

func NewFixedMerkle(leaves [][32]byte) (*FixedMerkle, error) {
	if len(leaves) > 1<<MERKLE_TREE_DEPTH {
		return nil, Errf(IFE_ERR_PARSE, "merkle: %d leaves exceed depth-%d capacity", len(leaves), MERKLE_TREE_DEPTH)
	}

	width := 1 << MERKLE_TREE_DEPTH
	level := make([][32]byte, width)
	nullHashed := merkleLeaf(nullLeafHash)
	for i := 0; i < width; i++ {
		if i < len(leaves) {
			level[i] = merkleLeaf(leaves[i])
		} else {
			level[i] = nullHashed
		}
	}

	t := &FixedMerkle{levels: [][][32]byte{level}}
	for len(level) > 1 {
		next := make([][32]byte, len(level)/2)
		for i := 0; i < len(next); i++ {
			next[i] = merkleNode(level[2*i], level[2*i+1])
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t, nil
}

func (t *FixedMerkle) Root() [32]byte {
	return t.levels[len(t.levels)-1][0]
}

// Proof returns the sibling path for the leaf at index.
func (t *FixedMerkle) Proof(index uint64) ([][32]byte, error) {
	if index >= 1<<MERKLE_TREE_DEPTH {
		return nil, Errf(IFE_ERR_PARSE, "merkle: index %d out of range", index)
	}
	proof := make([][32]byte, 0, MERKLE_TREE_DEPTH)
	for depth := 0; depth < MERKLE_TREE_DEPTH; depth++ {
		proof = append(proof, t.levels[depth][index^1])
		index /= 2
	}
	return proof, nil
}
