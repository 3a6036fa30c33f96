// Package client talks to the FitMacro gRPC Reports service on behalf of
// the CLI and opens the local SQLite session store.
//
// GRPCClient keeps the current token pair in memory, attaches the access
// token to every call and transparently refreshes it once when the server
// reports it as expired. Transport errors are mapped to ErrUnavailable,
// authentication failures to ErrUnauthorized.
package client
