package document

// Store is the contract the pipeline consumes from the host document API.
// Implementations are expected to be cheap to read; mutation happens only
// through ReplaceText, SetRangeStyle, SetName and CloneSubtree.
type Store interface {
	// Selection returns the ids of currently selected top-level nodes.
	Selection() []NodeID

	// Children returns the ordered child ids of a node. Unknown ids
	// return nil.
	Children(id NodeID) []NodeID

	// Name returns the node's display name.
	Name(id NodeID) string

	// SetName renames a node (used for language-suffixed duplicates).
	SetName(id NodeID, name string) error

	// IsTextUnit reports whether the node is a translatable text node.
	IsTextUnit(id NodeID) bool

	// IsFrame reports whether the node is a top-level frame that can be
	// exported for translation.
	IsFrame(id NodeID) bool

	// Text returns the node's plain character content.
	Text(id NodeID) string

	// StyleRuns returns the ordered styled ranges of a text node. Ranges
	// may leave gaps where default styling applies.
	StyleRuns(id NodeID) ([]RawRun, error)

	// BaseRun returns the node-level default styling used to fill gaps
	// the run iterator omits.
	BaseRun(id NodeID) RawRun

	// ReplaceText overwrites the node's entire character content.
	ReplaceText(id NodeID, text string) error

	// SetRangeStyle mutates one property over [start,end) character
	// range. Value types are documented on the RangeProperty constants.
	SetRangeStyle(id NodeID, start, end int, prop RangeProperty, value any) error

	// LoadFont makes a font available for styling; an error means the
	// exact (family, style) pair does not exist in the catalog.
	LoadFont(f FontName) error

	// CloneSubtree deep-copies a node and returns the id of the copy
	// appended after the original. Child traversal order is preserved.
	CloneSubtree(id NodeID) (NodeID, error)

	// ExportImage renders a node preview and returns the encoded bytes.
	ExportImage(id NodeID) ([]byte, error)
}
