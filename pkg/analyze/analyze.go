// Package analyze runs the JBoss Tattletale dependency analyzer over a
// directory of jars and returns the Graphviz dependency report it writes.
//
// Analyzer output is cached on disk: if <work>/tattletale_out/gdata-<version>
// already contains graphviz/dependencies.dot the analyzer is not run again.
package analyze

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gdatamvn/pkg/cache"
	"github.com/matzehuels/gdatamvn/pkg/errors"
)

// Defaults for [Config].
const (
	DefaultJava = "java"
	DefaultHeap = "512m"
)

// Config controls where output goes and how the JVM is started.
type Config struct {
	WorkDir string
	Java    string
	Heap    string
}

// Command is one subprocess invocation.
type Command struct {
	Name string
	Args []string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, cmd Command) ([]byte, error) {
	var out bytes.Buffer
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Stdout = &out
	c.Stderr = &out
	err := c.Run()
	return out.Bytes(), err
}

// Invoker runs the analyzer.
type Invoker struct {
	cfg    Config
	jar    string
	runner Runner
	logger *log.Logger
	dots   *cache.Presence
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(i *Invoker) {
		if r != nil {
			i.runner = r
		}
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(i *Invoker) {
		if l != nil {
			i.logger = l
		}
	}
}

// New returns an Invoker that runs the analyzer jar at analyzerJar.
func New(cfg Config, analyzerJar string, opts ...Option) *Invoker {
	if cfg.Java == "" {
		cfg.Java = DefaultJava
	}
	if cfg.Heap == "" {
		cfg.Heap = DefaultHeap
	}
	i := &Invoker{
		cfg:    cfg,
		jar:    analyzerJar,
		runner: ExecRunner{},
		logger: log.New(io.Discard),
		dots:   cache.NewPresence("report", false),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// OutputDir returns the analyzer output directory for version.
func (i *Invoker) OutputDir(version string) string {
	return filepath.Join(i.cfg.WorkDir, "tattletale_out", "gdata-"+version)
}

// DotFile returns the dependency report path for version.
func (i *Invoker) DotFile(version string) string {
	return filepath.Join(i.OutputDir(version), "graphviz", "dependencies.dot")
}

// Cached reports whether the report for version already exists.
func (i *Invoker) Cached(version string) bool {
	return i.dots.Exists(i.DotFile(version))
}

// Command returns the analyzer invocation for jarPath and outDir.
func (i *Invoker) Command(jarPath, outDir string) Command {
	return Command{
		Name: i.cfg.Java,
		Args: []string{"-Xmx" + i.cfg.Heap, "-jar", i.jar, jarPath, outDir},
	}
}

// Analyze runs the analyzer over the jars in jarPath and returns the path of
// the dependency report, reusing an existing report for version.
func (i *Invoker) Analyze(ctx context.Context, version, jarPath string) (string, error) {
	if err := errors.ValidateVersion(version); err != nil {
		return "", err
	}
	dot := i.DotFile(version)
	hit, err := i.dots.LookupOrCompute(ctx, dot, func(ctx context.Context) error {
		cmd := i.Command(jarPath, i.OutputDir(version))
		i.logger.Info("Running analyzer", "version", version)
		i.logger.Debug("Exec", "cmd", cmd.String())

		out, err := i.runner.Run(ctx, cmd)
		if len(out) > 0 {
			i.logger.Debug("Analyzer output", "version", version, "output", strings.TrimSpace(string(out)))
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(errors.ErrCodeAnalyzer, err, "run %s", cmd.Name)
		}
		return nil
	})
	if err != nil {
		if errors.GetCode(err) != "" || ctx.Err() != nil {
			return "", err
		}
		return "", errors.Wrap(errors.ErrCodeNotProduced, err, "analyzer produced no report for %s", version)
	}
	if hit {
		i.logger.Debug("Report cached", "path", dot)
	}
	return dot, nil
}
