// Command wfpack packages workflow bundle directories into versioned
// .alfredworkflow archives. See `wfpack build --help` for the packaging
// flags; config, history, staging, and doctor subcommands cover the
// supporting plumbing.
package main
