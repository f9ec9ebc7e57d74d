package template

import "go.mongodb.org/mongo-driver/bson"

// ToBSON converts a concrete (already substituted) tree into the driver's
// ordered document types: objects become bson.D, arrays bson.A, scalars pass
// through unchanged. Field order is preserved, which the server relies on for
// filters with operators and for pipeline stages.
func (n *Node) ToBSON() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindObject:
		doc := make(bson.D, 0, len(n.fields))
		for _, f := range n.fields {
			doc = append(doc, bson.E{Key: f.Key, Value: f.Value.ToBSON()})
		}
		return doc
	case KindArray:
		arr := make(bson.A, 0, len(n.items))
		for _, it := range n.items {
			arr = append(arr, it.ToBSON())
		}
		return arr
	default:
		return n.value
	}
}

// ToBSONDocs converts an array-rooted node (an aggregation pipeline) into a
// slice of ordered documents. A non-array node yields a single-element slice.
func (n *Node) ToBSONDocs() []any {
	if n == nil {
		return nil
	}
	if n.kind != KindArray {
		return []any{n.ToBSON()}
	}
	out := make([]any, 0, len(n.items))
	for _, it := range n.items {
		out = append(out, it.ToBSON())
	}
	return out
}
