// Package server implements the MCP (Model Context Protocol) server for the
// edge detection tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the Canny edge
// pipeline through the MCP protocol, so clients can inspect every stage of
// the detector on image files.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over two transports:
//   - stdio: one request per line on the reader, one response per line on
//     the writer (Run)
//   - HTTP: one request per POST /mcp body (Handler, ListenAndServe), with
//     GET /healthz for liveness
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Edge Pipeline:
//   - edge_kernels: Synthesize the derivative-of-Gaussian kernels
//   - edge_detect: Render one pipeline stage as PNG, with statistics
//   - edge_stats: Pipeline statistics only
//
// The edge tools run with the server's configured pipeline; each call may
// override individual parameters and restrict detection to a region.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses with:
//   - code: -32700 (malformed JSON), -32601 (unknown method), -32602 (bad
//     arguments or pipeline parameters) or -32000 (any other tool failure)
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Logging
//
// Every tool call gets a random run id that tags its log lines, including
// the detector's per-stage timings at debug level. Logs never go to the
// stdio transport's writer.
package server
