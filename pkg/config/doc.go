// Package config loads linkcomm.toml.
//
// A configuration file overrides [Default] table by table:
//
//	[graph]
//	directed = true
//	weighted = true
//
//	[csv]
//	header = true
//	comma = ";"
//
//	[cluster]
//	workers = 0              # 0 = GOMAXPROCS
//	parallel_threshold = 2048
//	progress_every = 100
//
//	[cache]
//	backend = "redis"        # none | file | memory | redis | mongo
//	redis_url = "redis://localhost:6379/0"
//	front_ttl = "5m"
//
//	[server]
//	addr = ":8080"
//	max_edges = 20000
//	allowed_origins = ["https://example.org"]
//	metrics = true           # serve GET /metrics
//
// Environment variables (LINKCOMM_CACHE_BACKEND, LINKCOMM_REDIS_URL,
// LINKCOMM_MONGO_URI, LINKCOMM_SERVER_ADDR, LINKCOMM_WORKERS, ...) win over
// the file; [LoadDotEnv] fills them from a .env file first. Command-line
// flags win over both.
package config
