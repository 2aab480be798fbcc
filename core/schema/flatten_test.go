package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNode(t *testing.T, doc string) *Node {
	t.Helper()
	var n Node
	require.NoError(t, json.Unmarshal([]byte(doc), &n))
	return &n
}

func TestFlatten_SkipsPrimitiveExtensions(t *testing.T) {
	root := mustNode(t, `{"Type":"X","Name":"X","IsLeaf":false,"SubNodes":{
		"a":{"Name":"a","IsLeaf":true},
		"_b":{"Name":"_b","IsLeaf":true}}}`)

	assert.Equal(t, FlatColumnMap{"a": "a"}, Flatten(root))
}

func TestFlatten_NestedAndRepeated(t *testing.T) {
	root := mustNode(t, `{"Type":"Patient","Name":"Patient","SubNodes":{
		"id":{"Name":"id","IsLeaf":true},
		"meta":{"Name":"meta","SubNodes":{
			"versionId":{"Name":"versionId","IsLeaf":true},
			"lastUpdated":{"Name":"lastUpdated","IsLeaf":true},
			"_lastUpdated":{"Name":"_lastUpdated","SubNodes":{
				"id":{"Name":"id","IsLeaf":true}}}}},
		"name":{"Name":"name","IsRepeated":true,"SubNodes":{
			"family":{"Name":"family","IsLeaf":true}}},
		"given":{"Name":"given","IsLeaf":true,"IsRepeated":true}}}`)

	got := Flatten(root)

	assert.Equal(t, FlatColumnMap{
		"id":               "id",
		"meta.versionId":   "meta.versionId",
		"meta.lastUpdated": "meta.lastUpdated",
		"name":             "name",
		"given":            "given",
	}, got)
}

func TestFlatten_PathsDoNotLeakAcrossSiblings(t *testing.T) {
	root := mustNode(t, `{"Type":"T","Name":"T","SubNodes":{
		"a":{"Name":"a","SubNodes":{"x":{"Name":"x","SubNodes":{"y":{"Name":"y","IsLeaf":true}}}}},
		"b":{"Name":"b","IsLeaf":true},
		"c":{"Name":"c","SubNodes":{"z":{"Name":"z","IsLeaf":true}}}}}`)

	assert.Equal(t, FlatColumnMap{"a.x.y": "a.x.y", "b": "b", "c.z": "c.z"}, Flatten(root))
}

func TestFlatten_NameFallsBackToKey(t *testing.T) {
	root := &Node{Type: "T", SubNodes: map[string]*Node{
		"code": {IsLeaf: true},
		"_ext": {IsLeaf: true},
		"nil":  nil,
	}}

	assert.Equal(t, FlatColumnMap{"code": "code"}, Flatten(root))
}

func TestFlatten_Idempotent(t *testing.T) {
	root := mustNode(t, `{"Type":"T","Name":"T","SubNodes":{
		"a":{"Name":"a","IsLeaf":true},
		"b":{"Name":"b","SubNodes":{"c":{"Name":"c","IsLeaf":true},"d":{"Name":"d","IsRepeated":true}}}}}`)

	first := Flatten(root)
	second := Flatten(root)
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestFlatten_SiblingOrderIndependent(t *testing.T) {
	a := mustNode(t, `{"Type":"T","SubNodes":{"a":{"Name":"a","IsLeaf":true},"b":{"Name":"b","SubNodes":{"c":{"Name":"c","IsLeaf":true}}}}}`)
	b := mustNode(t, `{"Type":"T","SubNodes":{"b":{"Name":"b","SubNodes":{"c":{"Name":"c","IsLeaf":true}}},"a":{"Name":"a","IsLeaf":true}}}`)

	assert.Equal(t, Flatten(a), Flatten(b))
}

func TestFlatten_NoUnderscoreSegments(t *testing.T) {
	root := mustNode(t, `{"Type":"T","Name":"T","SubNodes":{
		"_a":{"Name":"_a","SubNodes":{"b":{"Name":"b","IsLeaf":true}}},
		"c":{"Name":"c","SubNodes":{"_d":{"Name":"_d","IsLeaf":true},"e":{"Name":"e","IsLeaf":true}}},
		"f":{"Name":"f","SubNodes":{"g":{"Name":"g","SubNodes":{"_h":{"Name":"_h","IsRepeated":true}}}}}}}`)

	got := Flatten(root)
	assert.Equal(t, FlatColumnMap{"c.e": "c.e"}, got)
	for key := range got {
		for _, seg := range strings.Split(key, ".") {
			assert.False(t, strings.HasPrefix(seg, "_"), key)
		}
	}
}

func TestFlatten_EdgeCases(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.Empty(t, Flatten(&Node{Type: "T", Name: "_T", SubNodes: map[string]*Node{"a": {IsLeaf: true}}}))
	assert.Empty(t, Flatten(&Node{Type: "T", Name: "T"}))
}

func TestFlattenAll(t *testing.T) {
	idx := Index{
		"A": mustNode(t, `{"Type":"A","SubNodes":{"x":{"Name":"x","IsLeaf":true}}}`),
		"B": mustNode(t, `{"Type":"B","SubNodes":{"y":{"Name":"y","IsLeaf":true},"z":{"Name":"z","IsRepeated":true}}}`),
	}

	maps := FlattenAll(idx)
	require.Len(t, maps, 2)
	assert.Len(t, maps["A"], 1)
	assert.Len(t, maps["B"], 2)
	assert.Equal(t, []string{"A", "B"}, idx.ResourceTypes())
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindLeaf, (&Node{IsLeaf: true}).Kind())
	assert.Equal(t, KindRepeated, (&Node{IsRepeated: true}).Kind())
	assert.Equal(t, KindRepeated, (&Node{IsLeaf: true, IsRepeated: true}).Kind())
	assert.Equal(t, KindInternal, (&Node{}).Kind())
	assert.Equal(t, "repeated", KindRepeated.String())
}

func TestFlatColumnMap_Columns(t *testing.T) {
	m := FlatColumnMap{"a.b": "a.b", "c": "c"}
	assert.Equal(t, map[string]struct{}{"a.b": {}, "c": {}}, m.Columns())
}
