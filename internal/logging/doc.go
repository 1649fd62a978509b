// Package logging configures structured slog logging for AmanWeb.
//
// Logs are JSON lines written to a size-rotated file under ~/.amanweb/logs/.
// CLI commands mirror them to stderr; the MCP stdio server never writes to
// stdout or stderr because stdout carries JSON-RPC frames.
package logging
