// Package server provides the MCP server that exposes vocabulary building
// and embedding alignment as tools.
package server

// ToolServer defines the interface for the MCP server that handles
// vocabulary tool calls from MCP clients.
type ToolServer interface {
	// Initialize registers the tools.
	Initialize() error

	// Start serves tool calls over stdio until stdin closes.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}
