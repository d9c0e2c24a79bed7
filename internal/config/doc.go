// Package config loads runtime configuration for the mediakeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//  4. Derived paths (backend DSNs, markers dir) resolved from DataDir for
//     anything every earlier source left empty.
//
// Supported flags
//
//	-d string   data directory for durable state
//	-b string   comma-separated backend DSNs, read-preference order
//	-m string   markers directory for cross-process notifications
//	-p int      reconciliation poll interval (seconds)
//	-f int      recent-updates feed limit
//	-s string   session token signing secret
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be
// either strings like "15s" or integer nanoseconds:
//
//	{
//	  "data_dir": "/var/lib/mediakeeper",
//	  "backend_dsns": ["file:/var/lib/mediakeeper/local", "memory:session"],
//	  "poll_interval": "15s",
//	  "feed_limit": 3
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
