// Package server implements the MCP (Model Context Protocol) diagnostics
// server for a running color tracker.
//
// The server exposes the tracker's live state, its configuration and the
// commit history recorded by the update gate, so that an MCP client can
// inspect and tune a tracking session while it runs.
//
// # Protocol
//
// The server communicates using JSON-RPC 2.0:
//   - Input: JSON-RPC requests, one per line
//   - Output: JSON-RPC responses, one per line
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - tracker_status: Smoothed position and area, active color, debounce
//     status and scan counters
//   - tracker_config: The configuration in effect
//   - tracker_commits: Gate commits recorded for a session
//   - tracker_sessions: Sessions stored in the commit database
//   - tracker_sample_color: Pixel color of the last scanned frame and the
//     classifier outcome for each tracking color
//   - tracker_debug_view: PNG of the last scanned frame with a marker at the
//     smoothed position
//
// The commit tools need a CommitLog; without one they return an error.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(tracker, cfg, db)
//	go func() {
//	    if err := srv.Run(os.Stdin, os.Stdout); err != nil {
//	        log.Printf("diagnostics server: %v", err)
//	    }
//	}()
package server
