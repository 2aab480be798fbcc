package schema

import "strings"

// FlatColumnMap maps a dotted json path to the dotted column path it is stored under.
type FlatColumnMap map[string]string

// Columns returns the set of column paths of the map.
func (m FlatColumnMap) Columns() map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for _, col := range m {
		set[col] = struct{}{}
	}
	return set
}

// Flatten converts a schema tree into its flat column map.
func Flatten(root *Node) FlatColumnMap {
	result := make(FlatColumnMap)
	if root == nil || isPrimitiveExtension(root.Name) {
		return result
	}

	f := &flattener{result: result}
	f.walk(root)
	return result
}

// FlattenAll flattens every schema of the index.
func FlattenAll(idx Index) map[string]FlatColumnMap {
	maps := make(map[string]FlatColumnMap, len(idx))
	for resourceType, root := range idx {
		maps[resourceType] = Flatten(root)
	}
	return maps
}

// flattener carries the json and column path stacks of one traversal.
// Column naming mirrors json naming.
type flattener struct {
	jsonPath   []string
	columnPath []string
	result     FlatColumnMap
}

func (f *flattener) walk(node *Node) {
	if node.IsTerminal() {
		f.result[strings.Join(f.jsonPath, ".")] = strings.Join(f.columnPath, ".")
		return
	}

	for _, key := range node.childNames() {
		child := node.SubNodes[key]
		if child == nil {
			continue
		}
		name := segment(key, child)
		if isPrimitiveExtension(key) || isPrimitiveExtension(name) {
			continue
		}

		f.jsonPath = append(f.jsonPath, name)
		f.columnPath = append(f.columnPath, name)

		f.walk(child)

		f.jsonPath = f.jsonPath[:len(f.jsonPath)-1]
		f.columnPath = f.columnPath[:len(f.columnPath)-1]
	}
}
