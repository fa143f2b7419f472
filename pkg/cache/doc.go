// Package cache stores clustering results between runs.
//
// Clustering an edge list is quadratic in the number of edges, so the
// pipeline caches the assembled dendrogram with its level histogram, and
// every rendered picture, under content-derived keys (see [Keyer]).
//
// # Backends
//
//   - [FileCache]: JSON files under a directory; the CLI default
//   - [MemoryCache]: in-process LRU (hashicorp/golang-lru)
//   - [RedisCache]: shared Redis server (go-redis)
//   - [MongoCache]: MongoDB collection with a TTL index (mongo-driver)
//   - [NullCache]: caching disabled
//
// Both remote backends make up to three attempts on connection failures,
// doubling the delay, then report [ErrNetwork]. Every remote failure is a
// [BackendError] naming the backend and operation.
//
// [Open] builds one from [Options]. Remote backends are wrapped in a
// [Breaker] (sony/gobreaker) and, with FrontTTL set, get a [MemoryCache] in
// front through [Tiered].
package cache
