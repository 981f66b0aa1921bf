// Package cli implements the rtpipe command line.
//
//	rtpipe [run]   run the pipeline until SIGINT or SIGTERM
//	rtpipe config  print the effective configuration as YAML
//
// Errors carry an exit code through ExitError; see GetExitCode.
package cli
