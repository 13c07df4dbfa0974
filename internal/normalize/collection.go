package normalize

import "sort"

// LocateCollection finds the underlying record array inside a payload of
// unknown top-level shape. The probes run in fixed order:
//
//  1. the payload itself is an array
//  2. payload.data is an array
//  3. payload.<domainKey> is an array, for each given domain key in order
//  4. payload.data.<domainKey> is an array, same order
//
// The boolean reports whether any probe matched; an empty-but-present array
// is a match (genuinely no data, not an unknown shape).
func LocateCollection(payload any, domainKeys ...string) ([]any, bool) {
	if arr, ok := payload.([]any); ok {
		return arr, true
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	if arr, ok := obj["data"].([]any); ok {
		return arr, true
	}
	for _, key := range domainKeys {
		if arr, ok := obj[key].([]any); ok {
			return arr, true
		}
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		for _, key := range domainKeys {
			if arr, ok := inner[key].([]any); ok {
				return arr, true
			}
		}
	}
	return nil, false
}

// DeepScanCollection is the last-resort strategy applied only when every
// declared probe misses: scan the payload's own keys to depth 2 and take the
// first non-empty array found. The scan is deliberately shallow to bound
// cost, and keys are visited in sorted order so repeated runs over the same
// payload pick the same array. Callers for whom silent misattribution is
// worse than "no data" simply do not invoke it.
func DeepScanCollection(payload any) ([]any, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	if arr, ok := scanLevel(obj); ok {
		return arr, true
	}
	for _, key := range sortedKeys(obj) {
		if nested, ok := obj[key].(map[string]any); ok {
			if arr, ok := scanLevel(nested); ok {
				return arr, true
			}
		}
	}
	return nil, false
}

func scanLevel(obj map[string]any) ([]any, bool) {
	for _, key := range sortedKeys(obj) {
		if arr, ok := obj[key].([]any); ok && len(arr) > 0 {
			return arr, true
		}
	}
	return nil, false
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
