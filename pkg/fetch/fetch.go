// Package fetch downloads and unpacks the Tattletale analyzer and the gdata
// distribution archives into a work directory.
//
// Both products are cached on disk by path: if the analyzer jar or the
// distribution lib directory already exists, nothing is downloaded. Delete
// the corresponding directory under the work root to force a refetch.
// Archives are unpacked into a "<name>.partial" staging directory and moved
// into place only when complete, so an interrupted fetch is retried on the
// next run.
//
//	f := fetch.New(cfg, fetch.WithLogger(logger))
//	jar, err := f.Analyzer(ctx, "1.1.0.Final")
//	libs, err := f.Distribution(ctx, "1.41.1")
//
// The Fetcher does no locking. Two processes sharing a work directory can
// interleave downloads; run one at a time.
package fetch

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gdatamvn/pkg/archive"
	"github.com/matzehuels/gdatamvn/pkg/cache"
	"github.com/matzehuels/gdatamvn/pkg/errors"
	"github.com/matzehuels/gdatamvn/pkg/httputil"
)

// VersionPlaceholder is replaced with the requested version in URL templates.
const VersionPlaceholder = "{version}"

// Defaults for [Config].
const (
	DefaultAnalyzerVersion = "1.1.0.Final"
	DefaultAnalyzerURL     = "https://sourceforge.net/projects/jboss/files/JBoss%20Tattletale/{version}/jboss-tattletale-{version}.tar.gz/download"
	DefaultDistributionURL = "http://gdata-java-client.googlecode.com/files/gdata-src.java-{version}.zip"
)

// Config locates the archives and the work directory.
type Config struct {
	WorkDir         string
	AnalyzerVersion string
	AnalyzerURL     string
	DistributionURL string
}

// Fetcher obtains analyzer and distribution archives.
type Fetcher struct {
	cfg      Config
	client   *http.Client
	logger   *log.Logger
	download httputil.DownloadOptions

	jars *cache.Presence
	libs *cache.Presence
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithProgress renders download progress bars to w.
func WithProgress(w io.Writer) Option {
	return func(f *Fetcher) {
		f.download.Progress = w != nil
		f.download.ProgressWriter = w
	}
}

// WithRetry sets the download retry budget and initial backoff.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(f *Fetcher) {
		f.download.Backoff = httputil.Backoff{Attempts: attempts, Delay: delay, Max: httputil.DefaultBackoff.Max}
	}
}

// New returns a Fetcher for cfg. An empty AnalyzerVersion or URL template
// falls back to the package defaults.
func New(cfg Config, opts ...Option) *Fetcher {
	if cfg.AnalyzerVersion == "" {
		cfg.AnalyzerVersion = DefaultAnalyzerVersion
	}
	if cfg.AnalyzerURL == "" {
		cfg.AnalyzerURL = DefaultAnalyzerURL
	}
	if cfg.DistributionURL == "" {
		cfg.DistributionURL = DefaultDistributionURL
	}
	f := &Fetcher{
		cfg:    cfg,
		client: httputil.NewHTTPClient(),
		logger: log.New(io.Discard),
		jars:   cache.NewPresence("analyzer", false),
		libs:   cache.NewPresence("distribution", true),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// AnalyzerVersion returns the configured analyzer version.
func (f *Fetcher) AnalyzerVersion() string { return f.cfg.AnalyzerVersion }

// AnalyzerJar returns where the analyzer jar for version is kept.
func (f *Fetcher) AnalyzerJar(version string) string {
	return filepath.Join(f.cfg.WorkDir, analyzerBase(version), "tattletale.jar")
}

// LibDir returns where the jars of distribution version are kept.
func (f *Fetcher) LibDir(version string) string {
	return filepath.Join(f.cfg.WorkDir, distributionBase(version), "gdata", "java", "lib")
}

// HasAnalyzer reports whether the analyzer for version is already cached.
func (f *Fetcher) HasAnalyzer(version string) bool {
	return f.jars.Exists(f.AnalyzerJar(f.analyzerVersion(version)))
}

// HasDistribution reports whether distribution version is already cached.
func (f *Fetcher) HasDistribution(version string) bool {
	return f.libs.Exists(f.LibDir(version))
}

// Analyzer returns the path of the analyzer jar, downloading and unpacking
// the analyzer tarball on a miss. An empty version selects the configured
// analyzer version.
func (f *Fetcher) Analyzer(ctx context.Context, version string) (string, error) {
	version = f.analyzerVersion(version)
	if err := errors.ValidateVersion(version); err != nil {
		return "", err
	}
	jar := f.AnalyzerJar(version)
	base := analyzerBase(version)
	hit, err := f.jars.LookupOrCompute(ctx, jar, func(ctx context.Context) error {
		f.logger.Info("Downloading analyzer", "version", version)
		staging := filepath.Join(f.cfg.WorkDir, base+stagingSuffix)
		return f.staged(staging, func() error {
			if err := f.fetch(ctx, expand(f.cfg.AnalyzerURL, version), base+".tar.gz", staging); err != nil {
				return err
			}
			// The tarball unpacks into a directory named after itself.
			return install(filepath.Join(staging, base), filepath.Join(f.cfg.WorkDir, base))
		})
	})
	if err != nil {
		return "", wrap(err, "analyzer %s", version)
	}
	if hit {
		f.logger.Debug("Analyzer cached", "path", jar)
	}
	return jar, nil
}

// Distribution returns the directory holding the jars of the given gdata
// distribution, downloading and unpacking it on a miss. After extraction the
// bundled deps directory is merged into the lib directory so that all jars
// sit in one flat directory. The lib directory only appears once both steps
// have succeeded.
func (f *Fetcher) Distribution(ctx context.Context, version string) (string, error) {
	if err := errors.ValidateVersion(version); err != nil {
		return "", err
	}
	libs := f.LibDir(version)
	dest := filepath.Join(f.cfg.WorkDir, distributionBase(version))
	hit, err := f.libs.LookupOrCompute(ctx, libs, func(ctx context.Context) error {
		f.logger.Info("Downloading distribution", "version", version)
		staging := dest + stagingSuffix
		return f.staged(staging, func() error {
			name := distributionBase(version) + ".zip"
			if err := f.fetch(ctx, expand(f.cfg.DistributionURL, version), name, staging); err != nil {
				return err
			}
			if err := f.mergeDeps(staging, filepath.Join(staging, "gdata", "java", "lib")); err != nil {
				return err
			}
			return install(staging, dest)
		})
	})
	if err != nil {
		return "", wrap(err, "distribution %s", version)
	}
	if hit {
		f.logger.Debug("Distribution cached", "path", libs)
	}
	return libs, nil
}

// fetch downloads url to <work>/<name>, extracts it into dest and removes
// the archive.
func (f *Fetcher) fetch(ctx context.Context, url, name, dest string) error {
	if err := errors.ValidateURL(url); err != nil {
		return err
	}
	archivePath := filepath.Join(f.cfg.WorkDir, name)
	start := time.Now()
	n, err := httputil.Download(ctx, f.client, url, archivePath, f.download)
	if err != nil {
		return downloadError(err, url)
	}
	f.logger.Debug("Downloaded", "url", url, "bytes", n, "took", time.Since(start).Round(time.Millisecond))

	if err := archive.Extract(archivePath, dest); err != nil {
		return errors.Wrap(errors.ErrCodeExtract, err, "extract %s", name)
	}
	if err := os.Remove(archivePath); err != nil {
		f.logger.Warn("Could not remove archive", "path", archivePath, "error", err)
	}
	return nil
}

// stagingSuffix names the directory an archive is unpacked into before it
// is moved to its final path.
const stagingSuffix = ".partial"

// staged runs fn against a fresh staging directory and removes the staging
// directory afterwards, whatever the outcome. Leftovers from an interrupted
// earlier run are cleared first.
func (f *Fetcher) staged(staging string, fn func() error) error {
	if err := os.RemoveAll(staging); err != nil {
		return errors.Wrap(errors.ErrCodeExtract, err, "clear %s", staging)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			f.logger.Warn("Could not remove staging directory", "path", staging, "error", err)
		}
	}()
	return fn()
}

// install moves a completed src tree to dest, replacing whatever is there.
// A missing src is left for the presence check to report.
func install(src, dest string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(dest); err != nil {
		return errors.Wrap(errors.ErrCodeExtract, err, "replace %s", dest)
	}
	if err := os.Rename(src, dest); err != nil {
		return errors.Wrap(errors.ErrCodeExtract, err, "install %s", dest)
	}
	return nil
}

func (f *Fetcher) mergeDeps(dest, libs string) error {
	deps := filepath.Join(dest, "gdata", "java", "deps")
	info, err := os.Stat(deps)
	if err != nil || !info.IsDir() {
		f.logger.Warn("Distribution has no deps directory", "path", deps)
		return nil
	}
	if err := os.MkdirAll(libs, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeExtract, err, "create %s", libs)
	}
	if err := archive.CopyDir(deps, libs); err != nil {
		return errors.Wrap(errors.ErrCodeExtract, err, "copy %s into %s", deps, libs)
	}
	return nil
}

func (f *Fetcher) analyzerVersion(version string) string {
	if version == "" {
		return f.cfg.AnalyzerVersion
	}
	return version
}

func analyzerBase(version string) string     { return "jboss-tattletale-" + version }
func distributionBase(version string) string { return "gdata-src.java-" + version }

func expand(tmpl, version string) string {
	return strings.ReplaceAll(tmpl, VersionPlaceholder, version)
}

func downloadError(err error, url string) error {
	switch {
	case errors.GetCode(err) != "":
		return err
	case isNotFound(err):
		return errors.Wrap(errors.ErrCodeNotFound, err, "download %s", url)
	case isCanceled(err):
		return err
	default:
		return errors.Wrap(errors.ErrCodeDownload, err, "download %s", url)
	}
}

func wrap(err error, format string, args ...any) error {
	if errors.GetCode(err) != "" || isCanceled(err) {
		return err
	}
	if isNotProduced(err) {
		return errors.Wrap(errors.ErrCodeNotProduced, err, format, args...)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, format, args...)
}
