package template

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestParsePreservesKeyOrder(t *testing.T) {
	n := MustParse(`{"zebra": 1, "apple": 2, "mango": 3}`)

	if n.Kind() != KindObject {
		t.Fatalf("Kind() = %v, want object", n.Kind())
	}
	var keys []string
	for _, f := range n.Fields() {
		keys = append(keys, f.Key)
	}
	want := []string{"zebra", "apple", "mango"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("field order = %v, want %v", keys, want)
	}
}

func TestParseYAMLAndJSONEquivalent(t *testing.T) {
	fromJSON := MustParse(`{"a": {"b": ["x", 1, true]}}`)
	fromYAML := MustParse("a:\n  b:\n    - x\n    - 1\n    - true\n")

	if !fromJSON.Equal(fromYAML) {
		t.Errorf("JSON and YAML parses differ: %v vs %v",
			fromJSON.ToInterface(), fromYAML.ToInterface())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := MustParse(`{"a": {"b": "@id"}, "c": [1, 2]}`)
	snapshot := orig.Clone()

	copied := orig.Clone()
	if err := copied.Set(Path{{Key: "a"}, {Key: "b"}}, "changed"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	if !orig.Equal(snapshot) {
		t.Error("mutating a clone changed the original tree")
	}
	got, err := copied.Get(Path{{Key: "a"}, {Key: "b"}})
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Value() != "changed" {
		t.Errorf("clone value = %v, want changed", got.Value())
	}
}

func TestGetSetArrayPaths(t *testing.T) {
	n := MustParse(`{"arr": [{"x": "@p"}, "@p"]}`)

	path := Path{{Key: "arr"}, {Index: 1, Array: true}}
	if err := n.Set(path, 42); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, err := n.Get(path)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Value() != 42 {
		t.Errorf("value at %v = %v, want 42", path, got.Value())
	}
}

func TestSetErrors(t *testing.T) {
	n := MustParse(`{"a": 1}`)

	cases := []struct {
		name string
		path Path
	}{
		{"empty path", Path{}},
		{"missing key", Path{{Key: "nope"}}},
		{"index into object", Path{{Index: 0, Array: true}}},
		{"path through scalar", Path{{Key: "a"}, {Key: "b"}}},
	}
	for _, tc := range cases {
		if err := n.Set(tc.path, "x"); err == nil {
			t.Errorf("%s: Set() succeeded, want error", tc.name)
		}
	}
}

func TestToBSONKeepsOrder(t *testing.T) {
	n := MustParse(`{"b": 1, "a": {"nested": [1, "two"]}}`)

	doc, ok := n.ToBSON().(bson.D)
	if !ok {
		t.Fatalf("ToBSON() = %T, want bson.D", n.ToBSON())
	}
	if doc[0].Key != "b" || doc[1].Key != "a" {
		t.Errorf("bson key order = [%s %s], want [b a]", doc[0].Key, doc[1].Key)
	}
	nested, ok := doc[1].Value.(bson.D)
	if !ok {
		t.Fatalf("nested value = %T, want bson.D", doc[1].Value)
	}
	arr, ok := nested[0].Value.(bson.A)
	if !ok {
		t.Fatalf("array value = %T, want bson.A", nested[0].Value)
	}
	if len(arr) != 2 || arr[1] != "two" {
		t.Errorf("array = %v, want [1 two]", arr)
	}
}

func TestToBSONDocsPipeline(t *testing.T) {
	pipeline := MustParse(`[{"$match": {"a": 1}}, {"$limit": 5}]`)

	docs := pipeline.ToBSONDocs()
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	stage, ok := docs[0].(bson.D)
	if !ok || stage[0].Key != "$match" {
		t.Errorf("first stage = %v, want $match document", docs[0])
	}
}
