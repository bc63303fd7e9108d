// Package cli is the terminal front end: an interactive shell for one
// logged-in user at a time plus one-shot subcommands for scripting.
//
// Every command goes through the tracker, so the shell never touches the
// data files directly.
package cli
