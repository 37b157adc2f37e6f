// Package config loads the immutable run configuration for gdatamvn.
//
// Configuration is assembled in three layers, later layers winning:
//
//  1. [Default]: the values the tool has always shipped with (gdata
//     1.40.0-1.41.1, Tattletale 1.1.0.Final, Sonatype OSS repositories).
//  2. An optional TOML file passed with --config.
//  3. GDATAMVN_* environment variables, optionally loaded from a .env file.
//
// The resulting [Config] is a plain value. Components receive the slice of
// it they need (see [Config.Fetch], [Config.POM], ...) and never read
// globals.
//
// Example file:
//
//	versions = ["1.41.0", "1.41.1"]
//	output_dir = "target"
//
//	[maven]
//	group_id = "com.example.gdata"
//
//	[maven.release]
//	id = "internal-releases"
//	url = "https://repo.example.com/releases"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/gdatamvn/pkg/analyze"
	"github.com/matzehuels/gdatamvn/pkg/cache"
	"github.com/matzehuels/gdatamvn/pkg/depgraph"
	"github.com/matzehuels/gdatamvn/pkg/errors"
	"github.com/matzehuels/gdatamvn/pkg/fetch"
	"github.com/matzehuels/gdatamvn/pkg/pom"
)

// appName names the default work and cache directories.
const appName = "gdata-mvn"

// Config is the complete run configuration.
type Config struct {
	// Versions is the list of distribution versions processed by "run"
	// when no versions are given on the command line.
	Versions []string `toml:"versions"`

	// WorkDir holds downloaded archives, extracted trees, and analyzer output.
	WorkDir string `toml:"work_dir"`

	// OutputDir receives snapshot/ and release/ descriptor trees.
	OutputDir string `toml:"output_dir"`

	Analyzer     AnalyzerConfig     `toml:"analyzer"`
	Distribution DistributionConfig `toml:"distribution"`
	Maven        MavenConfig        `toml:"maven"`
	Parse        ParseConfig        `toml:"parse"`
	Cache        CacheConfig        `toml:"cache"`
}

// AnalyzerConfig locates and runs the Tattletale analyzer.
type AnalyzerConfig struct {
	Version string `toml:"version"`
	URL     string `toml:"url"` // "{version}" is substituted
	Java    string `toml:"java"`
	Heap    string `toml:"heap"`
}

// DistributionConfig locates the distribution archives.
type DistributionConfig struct {
	URL string `toml:"url"` // "{version}" is substituted
}

// RepositoryConfig is one deploy target.
type RepositoryConfig struct {
	ID      string `toml:"id"`
	URL     string `toml:"url"`
	Command string `toml:"command"`
}

// MavenConfig holds the coordinates and project metadata written into
// every descriptor.
type MavenConfig struct {
	GroupID    string           `toml:"group_id"`
	ProjectURL string           `toml:"project_url"`
	SCMURL     string           `toml:"scm_url"`
	Snapshot   RepositoryConfig `toml:"snapshot"`
	Release    RepositoryConfig `toml:"release"`
}

// ParseConfig controls dependency graph parsing.
type ParseConfig struct {
	// Exclude lists identifier prefixes never emitted as terminal artifacts.
	Exclude []string `toml:"exclude"`
}

// CacheConfig selects the parsed-mapping cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// Duration is a time.Duration decoded from strings such as "24h".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	work := filepath.Join(os.TempDir(), appName)
	return Config{
		Versions:  []string{"1.40.0", "1.40.1", "1.40.2", "1.40.3", "1.41.0", "1.41.1"},
		WorkDir:   work,
		OutputDir: "target",
		Analyzer: AnalyzerConfig{
			Version: fetch.DefaultAnalyzerVersion,
			URL:     fetch.DefaultAnalyzerURL,
			Java:    analyze.DefaultJava,
			Heap:    analyze.DefaultHeap,
		},
		Distribution: DistributionConfig{URL: fetch.DefaultDistributionURL},
		Maven: MavenConfig{
			GroupID:    pom.DefaultGroupID,
			ProjectURL: pom.DefaultProjectURL,
			SCMURL:     pom.DefaultSCMURL,
			Snapshot: RepositoryConfig{
				ID:      pom.DefaultSnapshotRepository.ID,
				URL:     pom.DefaultSnapshotRepository.URL,
				Command: pom.DefaultSnapshotRepository.Command,
			},
			Release: RepositoryConfig{
				ID:      pom.DefaultReleaseRepository.ID,
				URL:     pom.DefaultReleaseRepository.URL,
				Command: pom.DefaultReleaseRepository.Command,
			},
		},
		Parse: ParseConfig{Exclude: depgraph.DefaultPolicy().Exclude},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			Dir:     cacheDir(work),
		},
	}
}

// cacheDir returns the mapping cache directory using the XDG convention
// (~/.cache/gdata-mvn/), falling back to a directory under work.
func cacheDir(work string) string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(work, "mappings")
	}
	return filepath.Join(home, ".cache", appName)
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty), and the environment. A .env file in the working directory
// is loaded first if present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.WorkDir, "GDATAMVN_WORK_DIR")
	set(&c.OutputDir, "GDATAMVN_OUTPUT_DIR")
	set(&c.Analyzer.Java, "GDATAMVN_JAVA")
	set(&c.Analyzer.Heap, "GDATAMVN_JAVA_HEAP")
	set(&c.Maven.GroupID, "GDATAMVN_GROUP_ID")
	set(&c.Cache.Backend, "GDATAMVN_CACHE_BACKEND")
	set(&c.Cache.Dir, "GDATAMVN_CACHE_DIR")
	set(&c.Cache.RedisURL, "GDATAMVN_REDIS_URL")
	if v := strings.TrimSpace(os.Getenv("GDATAMVN_VERSIONS")); v != "" {
		c.Versions = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if len(c.Versions) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "versions cannot be empty")
	}
	for _, v := range c.Versions {
		if err := errors.ValidateVersion(v); err != nil {
			return err
		}
	}
	if err := errors.ValidateVersion(c.Analyzer.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "analyzer.version")
	}
	if c.WorkDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "work_dir cannot be empty")
	}
	if c.OutputDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "output_dir cannot be empty")
	}
	for name, u := range map[string]string{
		"analyzer.url":       c.Analyzer.URL,
		"distribution.url":   c.Distribution.URL,
		"maven.snapshot.url": c.Maven.Snapshot.URL,
		"maven.release.url":  c.Maven.Release.URL,
		"maven.project_url":  c.Maven.ProjectURL,
		"maven.scm_url":      c.Maven.SCMURL,
	} {
		if err := errors.ValidateURL(u); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", name)
		}
	}
	if c.Maven.GroupID == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "maven.group_id cannot be empty")
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendMemory, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache.backend %q (must be one of: file, memory, redis, none)", c.Cache.Backend)
	}
	return nil
}

// Fetch returns the archive fetcher settings.
func (c Config) Fetch() fetch.Config {
	return fetch.Config{
		WorkDir:         c.WorkDir,
		AnalyzerVersion: c.Analyzer.Version,
		AnalyzerURL:     c.Analyzer.URL,
		DistributionURL: c.Distribution.URL,
	}
}

// Analyze returns the analyzer invoker settings.
func (c Config) Analyze() analyze.Config {
	return analyze.Config{
		WorkDir: c.WorkDir,
		Java:    c.Analyzer.Java,
		Heap:    c.Analyzer.Heap,
	}
}

// Policy returns the graph parsing policy.
func (c Config) Policy() depgraph.Policy {
	return depgraph.Policy{Exclude: append([]string(nil), c.Parse.Exclude...)}
}

// POM returns the descriptor generator settings.
func (c Config) POM() pom.Config {
	p := pom.DefaultConfig()
	p.OutputDir = c.OutputDir
	p.GroupID = c.Maven.GroupID
	p.ProjectURL = c.Maven.ProjectURL
	p.SCMURL = c.Maven.SCMURL
	p.Snapshot = pom.Repository(c.Maven.Snapshot)
	p.Release = pom.Repository(c.Maven.Release)
	return p
}

// CacheOptions returns the mapping cache backend settings.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:  c.Cache.Backend,
		Dir:      c.Cache.Dir,
		RedisURL: c.Cache.RedisURL,
		Prefix:   appName + ":",
	}
}
