// Package cli provides the interactive FitMacro command-line client.
//
// It wires configuration, the local session store, the gRPC client and an
// interactive REPL. On start the saved session is restored; otherwise the
// user registers or logs in.
//
// Commands:
//   - register / login / logout
//   - today [YYYY-MM-DD]   day totals against the goal
//   - chart [days]         calorie bar chart with the goal line
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
