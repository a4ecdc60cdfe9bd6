// Package commands implements the keygate CLI.
//
// Commands are thin glue over internal/app: flag parsing and printing live
// here, every decision lives in the services.
package commands
