// internal/nodeid/types.go
package nodeid

// Segment is a single component of an address path, e.g. `for[1]`.
type Segment struct {
	Kind  string
	Index int // -1 when the segment has no position.
}

// Address is the structured identifier of a program node.
type Address struct {
	Path []Segment
}

// Root returns the address of a program root.
func Root(kind string) Address {
	return Address{Path: []Segment{{Kind: kind, Index: -1}}}
}

// Child returns the address of the index-th child of a, which has the given kind.
// The receiver is never modified.
func (a Address) Child(kind string, index int) Address {
	path := make([]Segment, len(a.Path), len(a.Path)+1)
	copy(path, a.Path)
	return Address{Path: append(path, Segment{Kind: kind, Index: index})}
}
