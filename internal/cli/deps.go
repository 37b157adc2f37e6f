package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gdatamvn/pkg/depgraph"
	"github.com/matzehuels/gdatamvn/pkg/errors"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// depsCommand creates the deps command that prints a parsed mapping.
func (c *CLI) depsCommand() *cobra.Command {
	var (
		format    string
		noExclude bool
	)

	cmd := &cobra.Command{
		Use:   "deps <dotfile>",
		Short: "Print the dependency mapping parsed from an analyzer report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.parseReport(cmd, args[0], noExclude)
			if err != nil {
				return err
			}
			return writeMapping(os.Stdout, m, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or json")
	cmd.Flags().BoolVar(&noExclude, "no-exclude", false, "keep terminal artifacts that are normally excluded")
	return cmd
}

// parseReport parses a report file through the configured mapping cache.
func (c *CLI) parseReport(cmd *cobra.Command, path string, noExclude bool) (depgraph.Mapping, error) {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if noExclude {
		cfg.Parse.Exclude = nil
	}
	runner, err := c.newRunner(ctx, cfg, nil, false)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	m, hit, err := runner.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("Parsed report", "path", path, "artifacts", len(m), "cached", hit)
	return m, nil
}

// writeMapping renders m as text (one artifact per line) or JSON.
func writeMapping(w io.Writer, m depgraph.Mapping, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case formatText:
		for _, id := range m.Keys() {
			if m.IsTerminal(id) {
				fmt.Fprintf(w, "%s\n", id)
				continue
			}
			fmt.Fprintf(w, "%s -> %s\n", id, strings.Join(m.Deps(id), ", "))
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (must be text or json)", format)
	}
}
