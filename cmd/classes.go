package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/domxml/internal/domain"
)

func newClassesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "classes [class...]",
		Short: "List registered domain classes",
		Long: `List the registered domain classes with their identifier, version
and properties. Classes come from the built-in library and the configured
mapping directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			names := a.registry.Classes()
			if len(args) > 0 {
				names = nil
				for _, arg := range args {
					class, err := a.ResolveClass(arg)
					if err != nil {
						return err
					}
					names = append(names, class)
				}
			}

			w := cmd.OutOrStdout()
			for _, name := range names {
				d, err := a.registry.Describe(name)
				if err != nil {
					return err
				}
				source, _ := a.registry.Source(name)
				writeDescriptor(w, d, source.String())
			}
			return nil
		},
	}
}

func writeDescriptor(w io.Writer, d *domain.Descriptor, source string) {
	_, _ = fmt.Fprintf(w, "%s (%s)\n", d.Name, source)
	if d.Identifier != nil {
		_, _ = fmt.Fprintf(w, "  %s: identifier\n", d.Identifier.Name)
	}
	if d.Version != nil {
		_, _ = fmt.Fprintf(w, "  %s: version\n", d.Version.Name)
	}
	for _, p := range d.Properties {
		_, _ = fmt.Fprintf(w, "  %s\n", p)
	}
}
