// Package api provides the host-facing HTTP server: webhook endpoints for
// host lifecycle events, the prompt slot read surface, the settings surface,
// and the MCP mount.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8070")
	ListenAddr string
}

// ErrorResponse is the JSON error body for all API failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
