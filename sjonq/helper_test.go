package sjonq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeAlias(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		separator string
		wantNode  string
		wantAlias string
	}{
		{
			name:      "explicit alias",
			input:     "name.first as fname",
			separator: ".",
			wantNode:  "name.first",
			wantAlias: "fname",
		},
		{
			name:      "no alias defaults to last segment",
			input:     "name.first",
			separator: ".",
			wantNode:  "name.first",
			wantAlias: "first",
		},
		{
			name:      "plain attribute aliases to itself",
			input:     "price",
			separator: ".",
			wantNode:  "price",
			wantAlias: "price",
		},
		{
			name:      "custom separator",
			input:     "name->first",
			separator: "->",
			wantNode:  "name->first",
			wantAlias: "first",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			node, alias := makeAlias(tc.input, tc.separator)
			assert.Equal(t, tc.wantNode, node)
			assert.Equal(t, tc.wantAlias, alias)
		})
	}
}

func TestGetNestedValue(t *testing.T) {
	doc := map[string]interface{}{
		"users": []interface{}{
			map[string]interface{}{
				"name": map[string]interface{}{"first": "Tom"},
				"tags": []interface{}{"a", "b"},
			},
		},
		"empty": nil,
	}

	testCases := []struct {
		name string
		node string
		want interface{}
	}{
		{name: "map then index then map", node: "users.0.name.first", want: "Tom"},
		{name: "index into nested sequence", node: "users.0.tags.1", want: "b"},
		{name: "missing key", node: "users.0.age", want: nil},
		{name: "non-numeric index", node: "users.first", want: nil},
		{name: "index out of range", node: "users.5", want: nil},
		{name: "negative index", node: "users.-1", want: nil},
		{name: "segment into scalar", node: "users.0.name.first.x", want: nil},
		{name: "null value is indistinguishable from missing", node: "empty", want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, getNestedValue(doc, tc.node, "."))
		})
	}
}

func TestDeleteNestedValue_SequenceWalksElementWise(t *testing.T) {
	doc := []interface{}{
		map[string]interface{}{"id": 1.0, "meta": map[string]interface{}{"secret": "x"}},
		map[string]interface{}{"id": 2.0, "meta": map[string]interface{}{"secret": "y", "keep": "z"}},
		"scalar survives untouched",
	}

	got := deleteNestedValue(doc, "meta.secret", ".")

	assert.Equal(t, []interface{}{
		map[string]interface{}{"id": 1.0, "meta": map[string]interface{}{}},
		map[string]interface{}{"id": 2.0, "meta": map[string]interface{}{"keep": "z"}},
		"scalar survives untouched",
	}, got)
}

func TestDeleteNestedValue_ThroughNestedSequence(t *testing.T) {
	doc := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"price": 10.0, "name": "a"},
			map[string]interface{}{"price": 20.0, "name": "b"},
		},
	}

	deleteNestedValue(doc, "items.price", ".")

	assert.Equal(t, map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"name": "a"},
			map[string]interface{}{"name": "b"},
		},
	}, doc)
}

func TestDeleteNestedValue_MissingPathIsNoOp(t *testing.T) {
	doc := map[string]interface{}{"a": 1.0}
	deleteNestedValue(doc, "b.c", ".")
	assert.Equal(t, map[string]interface{}{"a": 1.0}, doc)
}
