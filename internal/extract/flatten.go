package extract

const reviewType = "Review"

// CollectReviewObjects walks root in pre-order and returns every object that
// looks like a single review. The same review can be returned twice when it
// is reachable along two paths; deduplication happens later.
func CollectReviewObjects(root Node) []Node {
	var out []Node
	collect(root, &out)
	return out
}

func collect(n Node, out *[]Node) {
	switch n.Kind {
	case Object:
		if isReviewShaped(n) {
			*out = append(*out, n)
		}
		list, ok := n.Get("review")
		unwrapped := ok && list.Kind == Array
		if unwrapped {
			for _, item := range list.Items {
				collect(item, out)
			}
		}
		for _, f := range n.Fields {
			if unwrapped && f.Key == "review" {
				continue
			}
			collect(f.Value, out)
		}
	case Array:
		for _, item := range n.Items {
			collect(item, out)
		}
	}
}

// isReviewShaped: typed as a Review, or holding both a rating container and a body.
func isReviewShaped(n Node) bool {
	if hasReviewType(n) {
		return true
	}
	return n.Has("reviewRating") && n.Has("reviewBody")
}

func hasReviewType(n Node) bool {
	t, ok := n.Get("@type")
	if !ok {
		return false
	}
	switch t.Kind {
	case String:
		return t.Str == reviewType
	case Array:
		for _, item := range t.Items {
			if item.Kind == String && item.Str == reviewType {
				return true
			}
		}
	}
	return false
}
