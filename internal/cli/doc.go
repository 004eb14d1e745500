// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates flags and MOVEGEN_* environment variables into the
// application's configuration and presents each command's result.
package cli
