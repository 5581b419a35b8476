// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

// Package services adapts long-running components to suture.Service.
//
// HTTPServerService turns http.Server's blocking ListenAndServe into a
// context-aware Serve with graceful Shutdown. StoreGCService runs a
// periodic garbage collection pass against the embedded store.
package services
