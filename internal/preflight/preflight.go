package preflight

import (
	"slideset/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional results are reported but never block a run.
	Optional bool
}

// RunAll executes the checks extraction and annotation rely on.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckReadableDirectory("Presentations directory", cfg.Paths.PresentationsDir),
		CheckDirectoryAccess("Images directory", cfg.Paths.ImagesDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		optional(CheckWritableFile("Annotation table", cfg.Paths.AnnotationsPath)),
	}
}

// Failures returns the required checks that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

func optional(r Result) Result {
	r.Optional = true
	return r
}
