// Package main hosts the slideset CLI entrypoint and command graph.
//
// The Cobra command tree covers extraction (extract, cleanup), the
// annotation session (annotate, annotations status|sync), run history
// (runs, runs show), readiness checks (status), and configuration
// scaffolding. Configuration and logger setup live here so subcommands only
// translate flags into calls on the internal packages.
package main
