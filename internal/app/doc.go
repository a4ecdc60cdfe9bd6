// Package app wires application dependencies for the CLI.
//
// It loads Config from a YAML file, builds the SQLite-backed stores and the
// trust services on top of them, and exposes the graph via the App struct
// for commands to use.
package app
