package sjonq

import (
	"strconv"
	"strings"
)

const aliasToken = " as "

// makeAlias splits a projection spec into its node path and output alias.
// "name.first as fname" yields ("name.first", "fname"); without the alias
// keyword the alias defaults to the last path segment.
func makeAlias(input, separator string) (string, string) {
	if strings.Contains(input, aliasToken) {
		parts := strings.SplitN(input, aliasToken, 2)
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	alias := input
	if idx := strings.LastIndex(input, separator); idx != -1 {
		alias = input[idx+len(separator):]
	}
	return input, alias
}

// getNestedValue resolves a separator-delimited node path against a decoded
// JSON value. Mapping segments address keys; sequence segments must be
// numeric indexes. A nil return means the path does not resolve.
func getNestedValue(input interface{}, node, separator string) interface{} {
	current := input
	for _, segment := range strings.Split(node, separator) {
		switch v := current.(type) {
		case map[string]interface{}:
			val, ok := v[segment]
			if !ok {
				return nil
			}
			current = val
		case []interface{}:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(v) {
				return nil
			}
			current = v[index]
		default:
			return nil
		}
	}
	return current
}

// deleteNestedValue removes a node path from a decoded JSON value and
// returns the value. Sequences are walked element-wise so a single path
// spec strips the property from every mapping element.
func deleteNestedValue(input interface{}, node, separator string) interface{} {
	switch v := input.(type) {
	case []interface{}:
		for i, item := range v {
			v[i] = deleteNestedValue(item, node, separator)
		}
		return v
	case map[string]interface{}:
		deleteFromMap(v, strings.Split(node, separator))
		return v
	}
	return input
}

func deleteFromMap(m map[string]interface{}, segments []string) {
	if len(segments) == 0 {
		return
	}
	if len(segments) == 1 {
		delete(m, segments[0])
		return
	}
	child, ok := m[segments[0]]
	if !ok {
		return
	}
	switch c := child.(type) {
	case map[string]interface{}:
		deleteFromMap(c, segments[1:])
	case []interface{}:
		for _, item := range c {
			if cm, ok := item.(map[string]interface{}); ok {
				deleteFromMap(cm, segments[1:])
			}
		}
	}
}
