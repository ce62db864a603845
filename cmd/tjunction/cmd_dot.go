package main

import (
	"fmt"
	"os"

	"github.com/anggasct/tjunction"
	"github.com/anggasct/tjunction/visualization"
	"github.com/spf13/cobra"
)

func newDotCmd() *cobra.Command {
	var (
		output   string
		svg      bool
		noYields bool
	)

	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Render the rule table as a Graphviz graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options := visualization.DefaultDOTOptions()
			options.ShowYields = !noYields
			generator := visualization.NewDOTGenerator(tjunction.Rules(), options)

			var (
				content string
				err     error
			)
			if svg {
				content, err = generator.GenerateSVG()
			} else {
				content, err = generator.Generate()
			}
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, []byte(content), 0644)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the graph to a file instead of stdout")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG through the Graphviz dot binary")
	cmd.Flags().BoolVar(&noYields, "no-yields", false, "omit yield edges")
	return cmd
}
