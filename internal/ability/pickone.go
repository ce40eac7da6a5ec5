// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ability

// PickOneFunc reconciles a previously-chosen value against an advertised
// pool, projecting each pool entry through key.
//
// Rules, in order:
//   - empty pool: the feature is unavailable, ok is false
//   - the previous choice's key is in the pool: keep it, so selections are
//     stable across reconnects
//   - otherwise: fall back to the first advertised value
func PickOneFunc[T any, V comparable](current V, pool []T, key func(T) V) (V, bool) {
	if len(pool) == 0 {
		var zero V
		return zero, false
	}

	var zero V
	if current != zero {
		for _, entry := range pool {
			if key(entry) == current {
				return current, true
			}
		}
	}

	return key(pool[0]), true
}

// PickOne is PickOneFunc for pools whose entries are the values themselves.
func PickOne[V comparable](current V, pool []V) (V, bool) {
	return PickOneFunc(current, pool, func(v V) V { return v })
}
