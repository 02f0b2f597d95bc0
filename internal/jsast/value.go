// Package jsast analyzes single JavaScript fragments: a tolerant tree-sitter
// parse, a schema-less syntax tree walk for syntactic counts, and a token
// classification pass for lexical counts.
package jsast

// Value is one node of a schema-less syntax tree: a map, an ordered sequence,
// or a scalar. The engine never binds to the shape a particular grammar
// emits; it only walks whatever structure is there.
type Value interface {
	isValue()
}

// Map is an unordered node with named fields.
type Map map[string]Value

// Seq is an ordered list of nodes.
type Seq []Value

// Scalar is a leaf value.
type Scalar string

func (Map) isValue()    {}
func (Seq) isValue()    {}
func (Scalar) isValue() {}

// WalkMaps visits every non-empty map reachable from v, including v itself,
// recursing into every map value and sequence element. Scalars and empty
// containers are dead ends. Each map is visited exactly once.
func WalkMaps(v Value, visit func(Map)) {
	switch node := v.(type) {
	case Map:
		if len(node) == 0 {
			return
		}
		visit(node)
		for _, sub := range node {
			WalkMaps(sub, visit)
		}
	case Seq:
		for _, sub := range node {
			WalkMaps(sub, visit)
		}
	}
}
