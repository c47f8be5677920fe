package report

// Report is the serialized record of one traversal.
type Report struct {
	ID      string `json:"id"`
	Root    string `json:"root"`
	Stopped bool   `json:"stopped,omitempty"` // traversal ended at the node limit
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
}

// Node is one visited object.
type Node struct {
	Index    int    `json:"index"`
	Depth    int    `json:"depth"`
	Type     string `json:"type"`            // runtime type
	Declared string `json:"declared"`        // type the object was reached through
	Kind     string `json:"kind"`            // primitive, array, iterable or composite
	Value    string `json:"value,omitempty"` // primitives only
}

// Edge is a reference from one node to another.
type Edge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label,omitempty"`
}

// KindCounts returns the number of nodes of each kind.
func (r *Report) KindCounts() map[string]int {
	counts := make(map[string]int)
	for _, n := range r.Nodes {
		counts[n.Kind]++
	}
	return counts
}

// MaxDepth returns the depth of the deepest node, or -1 for an empty report.
func (r *Report) MaxDepth() int {
	depth := -1
	for _, n := range r.Nodes {
		depth = max(depth, n.Depth)
	}
	return depth
}
