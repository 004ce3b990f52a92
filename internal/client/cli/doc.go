// Package cli provides the interactive notekeeper terminal client.
//
// It wires configuration, the local session store and the API client, then
// runs a REPL. Commands:
//
//	register, login, logout, me
//	list, show <id>, create, summarize <id>, delete <id>
//	help, exit
//
// A session saved by a previous run is reused, so login is only needed once
// per refresh-token lifetime.
package cli
