// Package pipeline drives gdatamvn end to end.
//
// For each distribution version the [Runner] executes four stages:
//
//  1. Fetch: obtain the analyzer jar (once per run) and the distribution's
//     lib directory.
//  2. Analyze: run the analyzer over the lib directory to get its
//     dependency report.
//  3. Parse: turn the report into a dependency mapping, memoized in a byte
//     cache keyed by the report's content hash and the parse policy.
//  4. Generate: write descriptors and the deploy script, snapshot first,
//     then release.
//
// Versions are processed sequentially and the first error aborts the run.
// Every stage reports to [observability.Pipeline] hooks.
//
//	runner := pipeline.NewRunner(fetcher, generator, pipeline.Options{
//	    Cache:  c,
//	    Policy: depgraph.DefaultPolicy(),
//	    Logger: logger,
//	})
//	results, err := runner.Run(ctx, []string{"1.41.0", "1.41.1"})
package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/gdatamvn/pkg/depgraph"
	"github.com/matzehuels/gdatamvn/pkg/pom"
)

// Fetcher obtains the analyzer and the distribution jars.
type Fetcher interface {
	Analyzer(ctx context.Context, version string) (string, error)
	Distribution(ctx context.Context, version string) (string, error)
	HasDistribution(version string) bool
}

// Analyzer produces the dependency report of a jar directory.
type Analyzer interface {
	Analyze(ctx context.Context, version, jarPath string) (string, error)
	Cached(version string) bool
}

// AnalyzerFactory builds an Analyzer around the fetched analyzer jar.
type AnalyzerFactory func(jar string) Analyzer

// Generator writes descriptor trees.
type Generator interface {
	Generate(version string, m depgraph.Mapping, jarPath string, mode pom.Mode) (string, error)
}

// Result describes one processed version.
type Result struct {
	RunID   string `json:"run_id"`
	Version string `json:"version"`

	LibDir      string `json:"lib_dir"`
	DotFile     string `json:"dot_file"`
	SnapshotDir string `json:"snapshot_dir"`
	ReleaseDir  string `json:"release_dir"`

	Mapping depgraph.Mapping `json:"-"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Stats holds mapping sizes and stage timings.
type Stats struct {
	Artifacts int `json:"artifacts"`
	Edges     int `json:"edges"`
	Terminals int `json:"terminals"`

	FetchTime    time.Duration `json:"fetch_time"`
	AnalyzeTime  time.Duration `json:"analyze_time"`
	ParseTime    time.Duration `json:"parse_time"`
	GenerateTime time.Duration `json:"generate_time"`
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	FetchHit   bool `json:"fetch_hit"`
	AnalyzeHit bool `json:"analyze_hit"`
	ParseHit   bool `json:"parse_hit"`
}

// Dir returns the output directory for mode.
func (r Result) Dir(mode pom.Mode) string {
	if mode == pom.Snapshot {
		return r.SnapshotDir
	}
	return r.ReleaseDir
}
