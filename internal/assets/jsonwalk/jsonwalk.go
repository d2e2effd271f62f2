// Package jsonwalk searches decoded JSON trees for keys at any depth.
package jsonwalk

import (
	"iter"
	"sort"
)

// Find yields the value of every object member named key, depth first.
// Object members are visited in sorted key order so results are stable.
// A match is also searched for nested matches.
func Find(doc any, key string) iter.Seq[any] {
	return func(yield func(any) bool) {
		walk(doc, key, yield)
	}
}

func walk(node any, key string, yield func(any) bool) bool {
	switch value := node.(type) {
	case map[string]any:
		names := make([]string, 0, len(value))
		for name := range value {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child := value[name]
			if name == key && !yield(child) {
				return false
			}
			if !walk(child, key, yield) {
				return false
			}
		}
	case []any:
		for _, child := range value {
			if !walk(child, key, yield) {
				return false
			}
		}
	}
	return true
}

// First returns the first match of key, if any.
func First(doc any, key string) (any, bool) {
	for value := range Find(doc, key) {
		return value, true
	}
	return nil, false
}
