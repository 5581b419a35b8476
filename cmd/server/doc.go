// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

/*
Package main is the entry point for the Nearby feed ranking server.

The server ranks local-discovery posts into four feeds (discover, popular,
latest and saved) and serves them over a Chi HTTP API.

# Application Architecture

	RootSupervisor ("nearby")
	├── DataSupervisor ("data-layer")
	│   └── StoreGCService (badger backend with STORE_GC_INTERVAL > 0)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON or console output
 3. Candidate store: memory, BadgerDB or PostgreSQL
 4. Demo seed (optional, empty stores only)
 5. Follow graph: the store itself, or Redis when REDIS_ADDR is set
 6. Circuit breaker around store and follow graph (gobreaker)
 7. Feed engine
 8. Supervisor tree and HTTP server

# Configuration

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	HTTP_PORT=8080               # HTTP server port
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	STORE_BACKEND=badger         # memory, badger, postgres
	STORE_PATH=/data/nearby      # BadgerDB directory
	POSTGRES_DSN=postgres://...  # required for postgres
	STORE_SEED_DEMO=false        # seed an empty store with demo content

	REDIS_ADDR=                  # optional follow graph

	CORS_ORIGINS=*
	RATE_LIMIT_REQUESTS=100
	RATE_LIMIT_WINDOW=1m

See internal/config for the full list.

# Signal Handling

SIGINT and SIGTERM cancel the supervisor context. The HTTP server drains
in-flight requests for up to HTTP_SHUTDOWN_TIMEOUT, then store handles are
closed.

# Example Usage

	export STORE_BACKEND=memory
	export STORE_SEED_DEMO=true
	export LOG_FORMAT=console
	./nearby

	curl -H 'X-User-ID: demo-user' 'localhost:8080/api/v1/feeds/discover?lat=52.52&lon=13.405'
*/
package main
