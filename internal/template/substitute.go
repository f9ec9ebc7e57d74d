package template

import "fmt"

// Substitute stamps generated values into a template at previously indexed
// locations. With copyTree set (the normal case) the original template is
// left untouched and a deep copy is returned; callers that already own a
// scratch copy may pass false to skip the clone.
//
// Every path recorded for the same name receives the identical value. Names
// present in the path map but missing from values are set to nil rather than
// skipped, so a concrete command never carries a raw placeholder.
func Substitute(root *Node, paths PathMap, values map[string]any, copyTree bool) (*Node, error) {
	if root == nil {
		return nil, nil
	}
	out := root
	if copyTree {
		out = root.Clone()
	}
	for name, locations := range paths {
		v := values[name]
		for _, p := range locations {
			if err := out.Set(p, v); err != nil {
				return nil, fmt.Errorf("substituting %q: %w", name, err)
			}
		}
	}
	return out, nil
}
