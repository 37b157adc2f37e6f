package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gdatamvn/pkg/errors"
	"github.com/matzehuels/gdatamvn/pkg/render/nodelink"
)

// graphOptions holds flags for the graph command.
type graphOptions struct {
	output    string
	detailed  bool
	noExclude bool
}

// graphCommand creates the graph command that renders a parsed mapping.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOptions

	cmd := &cobra.Command{
		Use:   "graph <dotfile>",
		Short: "Render the dependency mapping of an analyzer report",
		Long: `Parse an analyzer report and render the resulting dependency mapping as a
node-link diagram. The format follows the output extension: .svg, .png, or .dot.`,
		Example: `  gdatamvn graph dependencies.dot -o gdata-1.41.1.svg`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <dotfile>.svg)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show dependency counts in labels")
	cmd.Flags().BoolVar(&opts.noExclude, "no-exclude", false, "keep terminal artifacts that are normally excluded")
	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, path string, opts graphOptions) error {
	m, err := c.parseReport(cmd, path, opts.noExclude)
	if err != nil {
		return err
	}
	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".svg"
	}

	dot := nodelink.ToDOT(m, nodelink.Options{Detailed: opts.detailed})

	spinner := newSpinnerWithContext(cmd.Context(), "Rendering graph...")
	spinner.Start()
	data, err := renderGraph(dot, filepath.Ext(out))
	spinner.Stop()
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", out)
	}
	printSuccess("Rendered %d artifacts", len(m))
	printFile(out)
	return nil
}

// renderGraph renders dot for the given file extension.
func renderGraph(dot, ext string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(ext) {
	case ".svg":
		data, err = nodelink.RenderSVG(dot)
	case ".png":
		data, err = nodelink.RenderPNG(dot)
	case ".dot", ".gv":
		err = nodelink.Validate(dot)
		data = []byte(dot)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported output format %q (use .svg, .png, or .dot)", ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render %s", strings.TrimPrefix(ext, "."))
	}
	return data, nil
}
