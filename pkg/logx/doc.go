// Package logx configures digestbot's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured, one record per line, appended across restarts
//
// The Service can swap level and sinks at runtime (config hot reload) while
// every Logger derived from it stays live.
package logx
