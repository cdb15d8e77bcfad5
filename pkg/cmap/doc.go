// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are routed to shards with MurmurHash3 and each shard has its own
// RWMutex, so readers of different keys rarely contend. A map may be
// bounded: once a shard holds its share of the limit, storing a new key
// evicts an arbitrary entry of that shard. Use it as a memo cache for
// values that can be recomputed, not as a store.
//
// Usage:
//
//	m := cmap.New[string](cmap.WithLimit(4096))
//	part := m.GetOrCompute(userID, func() string { return derive(userID) })
package cmap
