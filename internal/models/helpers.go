// Package models defines the diagram, concept and abstraction types shared by the pipeline.
package models

import (
	"sort"
	"strings"
)

// SortedSet returns the distinct values of items in ascending order.
func SortedSet(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

// Union appends to dst every value of src not already present, preserving order.
func Union(dst []string, src ...[]string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, d := range dst {
		seen[d] = struct{}{}
	}
	for _, list := range src {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			dst = append(dst, s)
		}
	}
	return dst
}

// SetKey returns an order-independent key for a set of strings.
func SetKey(items []string) string {
	return strings.Join(SortedSet(items), "\x00")
}
