// Package config loads runtime configuration for the Vanguard CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//     Comments and trailing commas are allowed.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s string   local store path
//	-d string   store driver (json, sqlite)
//	-a string   address:port of the backend gRPC endpoint
//	-t int      backend request timeout (seconds)
//	-v          debug logging
//
// # JSON schema
//
// Durations are Go duration strings or integer nanoseconds:
//
//	{
//	  // where the remembered host and email live
//	  "store_path": "/home/me/.config/vanguard/app.store.json",
//	  "store_driver": "json",
//	  "backend_addr": "127.0.0.1:50051",
//	  "request_timeout": "12s",
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
