package filter

import "strconv"

// Normalizer applies an ordered, fixed list of filters to every scalar in a
// response tree.
//
// Filters are chained: for each leaf, filter n+1 receives the output of
// filter n. Containers (map[string]any and []any) are rewritten in place, so
// the caller must own the tree it passes in.
type Normalizer struct {
	filters []Filter
}

// NewNormalizer returns a Normalizer running filters in the given order. Nil
// entries are ignored.
func NewNormalizer(filters ...Filter) *Normalizer {
	kept := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			kept = append(kept, f)
		}
	}
	return &Normalizer{filters: kept}
}

// Len reports how many filters are registered.
func (n *Normalizer) Len() int {
	if n == nil {
		return 0
	}
	return len(n.filters)
}

// Process normalizes tree and returns the result. Objects and arrays keep
// their shape; every leaf is visited exactly once, depth first.
func (n *Normalizer) Process(service, operation string, tree any) any {
	if n.Len() == 0 {
		return tree
	}
	return n.visit(service, operation, "", tree)
}

func (n *Normalizer) visit(service, operation, key string, value any) any {
	switch v := value.(type) {
	case map[string]any:
		for k, child := range v {
			v[k] = n.visit(service, operation, k, child)
		}
		return v
	case []any:
		for i, child := range v {
			v[i] = n.visit(service, operation, strconv.Itoa(i), child)
		}
		return v
	default:
		return n.apply(service, operation, key, v)
	}
}

func (n *Normalizer) apply(service, operation, key string, value any) any {
	for _, f := range n.filters {
		value = f.Apply(service, operation, key, value)
	}
	return value
}
