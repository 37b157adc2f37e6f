package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/gdatamvn/pkg/cache"
	"github.com/matzehuels/gdatamvn/pkg/depgraph"
	"github.com/matzehuels/gdatamvn/pkg/errors"
	"github.com/matzehuels/gdatamvn/pkg/observability"
	"github.com/matzehuels/gdatamvn/pkg/pom"
)

// Options configures a Runner. Zero values select the defaults.
type Options struct {
	// NewAnalyzer wraps the fetched analyzer jar. Required for Run.
	NewAnalyzer AnalyzerFactory

	// Cache memoizes parsed mappings. Defaults to a NullCache.
	Cache cache.Cache

	// Keyer builds mapping cache keys. Defaults to a DefaultKeyer.
	Keyer cache.Keyer

	// TTL is the lifetime of cached mappings. Zero means no expiration.
	TTL time.Duration

	// Policy controls which terminal artifacts are kept.
	Policy depgraph.Policy

	// Refresh ignores cached mappings (they are still rewritten).
	Refresh bool

	Logger *log.Logger
}

// Runner executes the pipeline. It is not safe for concurrent use.
type Runner struct {
	fetcher   Fetcher
	generator Generator
	opts      Options
	logger    *log.Logger

	analyzer Analyzer
}

// NewRunner creates a runner. A nil cache disables mapping caching and a
// nil logger logs to the default logger.
func NewRunner(f Fetcher, g Generator, opts Options) *Runner {
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Runner{
		fetcher:   f,
		generator: g,
		opts:      opts,
		logger:    opts.Logger,
	}
}

// Run processes versions in order under a fresh run ID and stops at the
// first failure. Results for the versions completed before the failure are
// returned alongside the error.
func (r *Runner) Run(ctx context.Context, versions []string) ([]Result, error) {
	if len(versions) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no versions to process")
	}
	runID := uuid.NewString()
	r.logger.Debug("Starting run", "run", runID, "versions", versions)

	results := make([]Result, 0, len(versions))
	for _, v := range versions {
		res, err := r.runVersion(ctx, runID, v)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// RunVersion processes a single version under its own run ID.
func (r *Runner) RunVersion(ctx context.Context, version string) (Result, error) {
	return r.runVersion(ctx, uuid.NewString(), version)
}

func (r *Runner) runVersion(ctx context.Context, runID, version string) (Result, error) {
	if err := errors.ValidateVersion(version); err != nil {
		return Result{}, err
	}
	res := Result{RunID: runID, Version: version}
	logger := r.logger.With("version", version)

	// Fetch
	err := r.stage(ctx, observability.StageFetch, version, &res.Stats.FetchTime, func() error {
		an, err := r.analyzerFor(ctx)
		if err != nil {
			return err
		}
		r.analyzer = an
		res.CacheInfo.FetchHit = r.fetcher.HasDistribution(version)
		res.LibDir, err = r.fetcher.Distribution(ctx, version)
		return err
	})
	if err != nil {
		return res, err
	}
	logger.Debug("Fetched", "libs", res.LibDir, "cached", res.CacheInfo.FetchHit)

	// Analyze
	err = r.stage(ctx, observability.StageAnalyze, version, &res.Stats.AnalyzeTime, func() error {
		res.CacheInfo.AnalyzeHit = r.analyzer.Cached(version)
		var err error
		res.DotFile, err = r.analyzer.Analyze(ctx, version, res.LibDir)
		return err
	})
	if err != nil {
		return res, err
	}

	// Parse
	err = r.stage(ctx, observability.StageParse, version, &res.Stats.ParseTime, func() error {
		var err error
		res.Mapping, res.CacheInfo.ParseHit, err = r.ParseFile(ctx, res.DotFile)
		return err
	})
	if err != nil {
		return res, err
	}
	res.Stats.Artifacts = len(res.Mapping)
	res.Stats.Edges = res.Mapping.EdgeCount()
	res.Stats.Terminals = res.Mapping.TerminalCount()
	observability.Pipeline().OnParsed(ctx, version, res.Stats.Artifacts, res.Stats.Edges, res.Stats.Terminals)
	logger.Info("Parsed dependencies",
		"artifacts", res.Stats.Artifacts,
		"edges", res.Stats.Edges,
		"terminals", res.Stats.Terminals,
		"cached", res.CacheInfo.ParseHit)

	// Generate
	err = r.stage(ctx, observability.StageGenerate, version, &res.Stats.GenerateTime, func() error {
		var err error
		res.SnapshotDir, res.ReleaseDir, err = r.Generate(ctx, version, res.Mapping, res.LibDir)
		return err
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

// stage times fn and reports it to the pipeline hooks.
func (r *Runner) stage(ctx context.Context, stage observability.Stage, version string, elapsed *time.Duration, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, stage, version)
	start := time.Now()
	err := fn()
	*elapsed = time.Since(start)
	hooks.OnStageComplete(ctx, stage, version, *elapsed, err)
	return err
}

func (r *Runner) analyzerFor(ctx context.Context) (Analyzer, error) {
	if r.analyzer != nil {
		return r.analyzer, nil
	}
	if r.opts.NewAnalyzer == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no analyzer configured")
	}
	jar, err := r.fetcher.Analyzer(ctx, "")
	if err != nil {
		return nil, err
	}
	return r.opts.NewAnalyzer(jar), nil
}

// ParseFile parses the dependency report at path, consulting the mapping
// cache first. It reports whether the mapping came from the cache.
func (r *Runner) ParseFile(ctx context.Context, path string) (depgraph.Mapping, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
		}
		return nil, false, errors.Wrap(errors.ErrCodeParse, err, "read %s", path)
	}
	return r.Parse(ctx, data)
}

// Parse parses report text through the mapping cache.
func (r *Runner) Parse(ctx context.Context, report []byte) (depgraph.Mapping, bool, error) {
	key := r.opts.Keyer.MappingKey(cache.Hash(report), cache.MappingKeyOpts{Exclude: r.opts.Policy.Exclude})
	if r.opts.Refresh {
		_ = r.opts.Cache.Delete(ctx, key)
	}

	var m depgraph.Mapping
	hit, err := cache.Cached(ctx, r.opts.Cache, "mapping", key, r.opts.TTL, &m, func() error {
		m = depgraph.Parse(string(report), r.opts.Policy)
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeParse, err, "parse report")
	}
	if m == nil {
		m = depgraph.Mapping{}
	}
	return m, hit, nil
}

// Generate writes the snapshot and release trees for version and returns
// their directories.
func (r *Runner) Generate(ctx context.Context, version string, m depgraph.Mapping, jarPath string) (snapshot, release string, err error) {
	dirs := make(map[pom.Mode]string, len(pom.Modes))
	for _, mode := range pom.Modes {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		dir, err := r.generator.Generate(version, m, jarPath, mode)
		if err != nil {
			return "", "", err
		}
		dirs[mode] = dir
		observability.Pipeline().OnGenerated(ctx, version, mode.String(), len(m), dir)
		r.logger.Info("Poms and deployment script created", "version", version, "mode", mode, "dir", dir)
	}
	return dirs[pom.Snapshot], dirs[pom.Release], nil
}

// Close releases the mapping cache.
func (r *Runner) Close() error {
	return r.opts.Cache.Close()
}
