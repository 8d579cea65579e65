package document

import (
	"go.uber.org/zap"
)

// TextUnits returns the ids of all text nodes under root in document
// order. Traversal uses an explicit work stack so pathological trees
// cannot exhaust the goroutine stack.
func TextUnits(s Store, root NodeID) []NodeID {
	var out []NodeID
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.IsTextUnit(id) {
			out = append(out, id)
		}
		children := s.Children(id)
		// push in reverse so the leftmost child is processed first
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

// NodeMapping maps original text node ids to their counterparts in a
// duplicated subtree.
type NodeMapping map[NodeID]NodeID

// BuildMapping pairs text units of an original subtree with those of its
// duplicate by positional correspondence between the two parallel
// traversals. Ids are never compared: duplicates get fresh ids. A length
// mismatch is a soft failure: unpaired nodes are skipped with a warning
// and the mapping covers the common prefix.
func BuildMapping(s Store, original, duplicate NodeID, log *zap.Logger) NodeMapping {
	if log == nil {
		log = zap.NewNop()
	}
	src := TextUnits(s, original)
	dst := TextUnits(s, duplicate)

	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	if len(src) != len(dst) {
		log.Warn("Traversal length mismatch between original and duplicate, extra nodes skipped",
			zap.String("original", string(original)), zap.Int("originalUnits", len(src)),
			zap.String("duplicate", string(duplicate)), zap.Int("duplicateUnits", len(dst)))
	}

	mapping := make(NodeMapping, n)
	for i := 0; i < n; i++ {
		mapping[src[i]] = dst[i]
	}
	return mapping
}
