package template

// Index walks the tree once, depth first, and records every location where a
// scalar equals one of the requested names exactly. Paths are recorded in
// traversal order. Names that never occur are simply absent from the result.
//
// Matching is exact string equality of a whole scalar; a name embedded inside
// a longer string is not a placeholder.
func Index(root *Node, names []string) PathMap {
	result := make(PathMap)
	if root == nil || len(names) == 0 {
		return result
	}
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	var walk func(n *Node, prefix Path)
	record := func(child *Node, prefix Path, step Step) {
		if s, ok := child.value.(string); ok {
			if _, hit := wanted[s]; hit {
				p := make(Path, len(prefix)+1)
				copy(p, prefix)
				p[len(prefix)] = step
				result[s] = append(result[s], p)
			}
		}
	}
	walk = func(n *Node, prefix Path) {
		switch n.kind {
		case KindObject:
			for _, f := range n.fields {
				step := Step{Key: f.Key}
				if f.Value.kind == KindScalar {
					record(f.Value, prefix, step)
					continue
				}
				walk(f.Value, append(prefix, step))
			}
		case KindArray:
			for i, it := range n.items {
				step := Step{Index: i, Array: true}
				if it.kind == KindScalar {
					record(it, prefix, step)
					continue
				}
				walk(it, append(prefix, step))
			}
		}
	}
	walk(root, nil)
	return result
}
