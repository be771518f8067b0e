package sexy

import "fmt"

// Match checks actual against pattern. Atoms must be equal. An ellipsis in a
// list matches any run of items, including none. Metadata present in the
// pattern must be present in actual; extra metadata in actual is ignored.
//
// The returned error names the path of the first mismatch, e.g. "root[2][1]".
func Match(pattern, actual *Node) error {
	return match(pattern, actual, "root")
}

func mismatch(path string, pattern, actual *Node) error {
	return fmt.Errorf("at %s: expected %s, got %s", path, pattern, actual)
}

func match(pattern, actual *Node, path string) error {
	if pattern.Type == NodeEllipsis {
		return nil
	}
	if pattern.Type != actual.Type {
		return mismatch(path, pattern, actual)
	}
	switch pattern.Type {
	case NodeSymbol, NodeString, NodeInteger:
		if pattern.Text != actual.Text {
			return mismatch(path, pattern, actual)
		}
		return nil

	case NodeList:
		for i, key := range pattern.MetaKeys {
			got := actual.Meta(key)
			if got == nil {
				return fmt.Errorf("at %s: missing metadata %s in %s", path, key, actual)
			}
			if err := match(pattern.MetaItems[i], got, path+"^"+key); err != nil {
				return err
			}
		}
		if !matchItems(pattern.Items, actual.Items, path, 0) {
			// Report the first item-wise difference when there is one.
			for i := 0; i < len(pattern.Items) && i < len(actual.Items); i++ {
				if pattern.Items[i].Type == NodeEllipsis {
					break
				}
				if err := match(pattern.Items[i], actual.Items[i], fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
			return mismatch(path, pattern, actual)
		}
		return nil

	case NodeMap:
		for i, key := range pattern.Keys {
			var got *Node
			for j, k := range actual.Keys {
				if k == key {
					got = actual.Items[j]
				}
			}
			if got == nil {
				return fmt.Errorf("at %s: missing key %s in %s", path, key, actual)
			}
			if err := match(pattern.Items[i], got, path+"."+key); err != nil {
				return err
			}
		}
		return nil
	}
	return mismatch(path, pattern, actual)
}

// matchItems matches item lists, backtracking over ellipses.
func matchItems(patterns, actual []*Node, path string, offset int) bool {
	if len(patterns) == 0 {
		return len(actual) == 0
	}
	if patterns[0].Type == NodeEllipsis {
		for skip := 0; skip <= len(actual); skip++ {
			if matchItems(patterns[1:], actual[skip:], path, offset+skip) {
				return true
			}
		}
		return false
	}
	if len(actual) == 0 {
		return false
	}
	if match(patterns[0], actual[0], fmt.Sprintf("%s[%d]", path, offset)) != nil {
		return false
	}
	return matchItems(patterns[1:], actual[1:], path, offset+1)
}
