// Package maputil provides deep operations on nested string keyed maps,
// the shape produced by decoding YAML mappings.
package maputil

import "fmt"

// DeepUpdate merges src over dst and returns dst. Values merge
// recursively when both sides are maps, otherwise the src value replaces
// the dst one.
func DeepUpdate(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = make(map[string]interface{}, len(src))
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]interface{})
		dstMap, dstIsMap := dst[k].(map[string]interface{})
		if srcIsMap && dstIsMap {
			dst[k] = DeepUpdate(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}

// DeepDelete removes the leaf keys named by remove from dst. It fails
// when a named key does not exist.
func DeepDelete(dst, remove map[string]interface{}) error {
	for k, v := range remove {
		current, ok := dst[k]
		if !ok {
			return fmt.Errorf("key %q does not exist", k)
		}
		removeMap, removeIsMap := v.(map[string]interface{})
		currentMap, currentIsMap := current.(map[string]interface{})
		if removeIsMap && currentIsMap {
			err := DeepDelete(currentMap, removeMap)
			if err != nil {
				return err
			}
			continue
		}
		delete(dst, k)
	}
	return nil
}
