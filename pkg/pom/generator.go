package pom

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gdatamvn/pkg/depgraph"
	"github.com/matzehuels/gdatamvn/pkg/errors"
)

// ScriptPrefix is the file name prefix of the deploy script.
const ScriptPrefix = "mvn_deploy_gdata_"

// Generator writes descriptor trees.
type Generator struct {
	cfg    Config
	logger *log.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// New returns a Generator writing with cfg.
func New(cfg Config, opts ...Option) *Generator {
	g := &Generator{cfg: cfg, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dir returns the output directory for version and mode.
func (g *Generator) Dir(version string, mode Mode) string {
	return filepath.Join(g.cfg.OutputDir, mode.String(), "v"+version)
}

// PomVersion returns the descriptor version for mode.
func PomVersion(version string, mode Mode) string {
	if mode == Snapshot {
		return version + SnapshotSuffix
	}
	return version
}

// ScriptName returns the deploy script file name for version.
func ScriptName(version string) string {
	return ScriptPrefix + version
}

// FileName returns the descriptor file name for id.
func FileName(id string) string {
	return id + "-pom.xml"
}

// Generate writes one descriptor per mapping key and the deploy script for
// mode, replacing any previous output for the same version and mode.
// jarPath is the directory holding the jars, as referenced by the script.
// It returns the output directory.
func (g *Generator) Generate(version string, m depgraph.Mapping, jarPath string, mode Mode) (string, error) {
	if err := errors.ValidateVersion(version); err != nil {
		return "", err
	}
	keys := m.Keys()
	for _, id := range keys {
		if err := errors.ValidateArtifactID(id); err != nil {
			return "", err
		}
	}

	dir := g.Dir(version, mode)
	if err := os.RemoveAll(dir); err != nil {
		return "", errors.Wrap(errors.ErrCodeWrite, err, "clear %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeWrite, err, "create %s", dir)
	}
	g.logger.Info("Generating poms", "dir", dir, "artifacts", len(keys))

	pomVersion := PomVersion(version, mode)
	for _, id := range keys {
		data, err := g.cfg.Marshal(id, pomVersion, m)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeWrite, err, "encode descriptor for %s", id)
		}
		path := filepath.Join(dir, FileName(id))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", errors.Wrap(errors.ErrCodeWrite, err, "write %s", path)
		}
		g.logger.Debug("Wrote descriptor", "artifact", id, "deps", len(m.Deps(id)))
	}

	script := filepath.Join(dir, ScriptName(version))
	if err := os.WriteFile(script, g.Script(keys, jarPath, mode), 0o744); err != nil {
		return "", errors.Wrap(errors.ErrCodeWrite, err, "write %s", script)
	}
	// WriteFile only applies the mode on create and is subject to umask.
	if err := os.Chmod(script, 0o744); err != nil {
		return "", errors.Wrap(errors.ErrCodeWrite, err, "chmod %s", script)
	}
	return dir, nil
}

// Script renders the deploy script for keys, in the given order.
func (g *Generator) Script(keys []string, jarPath string, mode Mode) []byte {
	repo := g.cfg.Repository(mode)

	var b bytes.Buffer
	b.WriteString("#!/bin/bash\n\n")
	fmt.Fprintf(&b, "MVN='%s'\n", repo.Command)
	fmt.Fprintf(&b, "JARS='%s'\n", withSlash(jarPath))
	b.WriteString("POMS='./'\n")
	fmt.Fprintf(&b, "REPO='%s'\n", repo.ID)
	fmt.Fprintf(&b, "URL='%s'\n\n", repo.URL)
	for _, id := range keys {
		fmt.Fprintf(&b, "${MVN} -Dfile=${JARS}%s.jar -DpomFile=${POMS}%s -DrepositoryId=${REPO} -Durl=${URL}\n", id, FileName(id))
	}
	return b.Bytes()
}

func withSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}
