package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/domxml/internal/log"
	"github.com/zjrosen/domxml/internal/marshal"
	"github.com/zjrosen/domxml/internal/tracing"
)

type exportOptions struct {
	full     bool
	version  bool
	compact  bool
	out      string
	excludes []string
}

func newExportCmd(c *cli) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export <class> <id>",
		Short: "Write one domain instance as XML",
		Long: `Load a domain instance from the library database and write it as XML.

Examples:
  # Book 1 with its associations as id references
  domxml export Book 1

  # Convert associations completely and write the version attribute
  domxml export book 1 --full --version

  # Drop properties: "isbn" for every class, "name" for authors only
  domxml export Book 1 --exclude isbn --exclude Author.name

  # Publishers are identified by UUID
  domxml export Publisher 6f1c2a5e-8a1b-4d3e-9c7f-2b4e5d6a7c8e -o publisher.xml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.full, "full", false, "convert associated instances completely")
	cmd.Flags().BoolVar(&opts.version, "version", false, "write the version attribute")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "write XML without indentation")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringArrayVar(&opts.excludes, "exclude", nil,
		"property to omit, as name or Class.name (repeatable)")
	return cmd
}

func (c *cli) runExport(cmd *cobra.Command, className, id string, opts exportOptions) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	class, err := a.ResolveClass(className)
	if err != nil {
		return err
	}

	var extra []marshal.Option
	if cmd.Flags().Changed("full") {
		mode := marshal.RenderShallow
		if opts.full {
			mode = marshal.RenderFull
		}
		extra = append(extra, marshal.WithRenderMode(mode))
	}
	if cmd.Flags().Changed("version") {
		extra = append(extra, marshal.WithIncludeVersion(opts.version))
	}
	if len(opts.excludes) > 0 {
		extra = append(extra, marshal.WithExclusion(parseExcludes(opts.excludes, c.cfg.Marshal.Exclude)))
	}
	m, err := a.Marshaller(extra...)
	if err != nil {
		return err
	}

	ctx, span := tracing.StartExport(ctx, a.tracer.Tracer(), class, id, m.Mode().String())
	defer func() { tracing.Finish(span, err) }()

	db, err := a.OpenDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	instance, err := db.Session().Find(ctx, class, id)
	if err != nil {
		return err
	}

	renderOpts := c.cfg.RenderOptions()
	if opts.compact {
		renderOpts.Indent = ""
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		f, createErr := c.createOutput(opts.out)
		if createErr != nil {
			return fmt.Errorf("creating output file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing output file: %w", cerr)
			}
		}()
		w = f
	}

	if err := m.Render(w, instance, renderOpts); err != nil {
		return fmt.Errorf("export %s %s: %w", class, id, err)
	}
	if opts.out == "" {
		_, _ = fmt.Fprintln(w)
	}
	log.Info(log.CatCLI, "Exported instance", "class", class, "id", id, "mode", m.Mode())
	return nil
}

// parseExcludes merges "property" and "Class.property" flags into base.
func parseExcludes(flags []string, base map[string][]string) marshal.ExcludeNames {
	out := make(marshal.ExcludeNames, len(base)+1)
	for class, props := range base {
		out[class] = append([]string(nil), props...)
	}
	for _, f := range flags {
		class, prop, ok := strings.Cut(f, ".")
		if !ok {
			class, prop = marshal.AnyClass, f
		}
		out[class] = append(out[class], prop)
	}
	return out
}
