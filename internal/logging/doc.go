// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

// Package logging provides the service-wide zerolog logger.
//
// JSON output is the default; console output is available for local
// development. Request-scoped fields travel through context.Context:
//
//	ctx = logging.ContextWithRequestID(ctx, id)
//	logging.Ctx(ctx).Info().Str("strategy", "latest").Msg("feed served")
//
// Components that take an explicit logger (the ranking engine, store
// adapters) are given one from WithComponent. Libraries that require
// log/slog, such as sutureslog, use NewSlogLogger.
//
// # Configuration
//
// Environment Variables (via internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file and line (default: false)
//
// Always terminate event chains with .Msg() or .Send().
package logging
