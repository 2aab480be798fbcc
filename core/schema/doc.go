// Package schema loads the per-resource-type schema documents produced by the
// schema generator and flattens them into the column set the warehouse tables
// are expected to expose.
//
// # Documents
//
// Each document is a JSON object describing one resource type:
//
//	{"Type": "Patient", "Name": "Patient", "IsLeaf": false, "IsRepeated": false,
//	 "SubNodes": {"id": {"Name": "id", "IsLeaf": true}, ...}}
//
// Documents are read once, from a directory (Load) or an object storage prefix
// (LoadFromStorage), and are read-only afterwards.
//
// # Flattening
//
// Flatten walks a tree depth first. Leaf and repeated nodes end the walk and
// produce one column each; repeated structs are stored as a single array column.
// Primitive extension fields (names starting with "_") are not materialized as
// columns and are skipped together with their sub nodes.
package schema
