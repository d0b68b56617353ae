package cli

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/raphaelgruber/umlfca/internal/service"
	"github.com/spf13/cobra"
)

var validateStrict bool

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file|glob>...",
		Short: "Parse diagrams and report what was recognized",
		Long: `Parse one or more PlantUML files without running the pipeline and report
the number of classes and relationships found.

Glob patterns support ** for recursive matching. With --strict, lines the
parser could not classify are listed and make the command fail.

Examples:
  umlfca validate model.puml
  umlfca validate "diagrams/**/*.puml"
  umlfca validate --strict model.puml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}

	cmd.Flags().BoolVar(&validateStrict, "strict", false, "fail on unrecognized lines or empty diagrams")

	return cmd
}

// expandPatterns resolves glob patterns to file paths. A pattern without
// matches is kept as given so the missing file is reported by the parser step.
func expandPatterns(patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	paths, err := expandPatterns(args)
	if err != nil {
		return err
	}

	out := newPrinter(cmd.OutOrStdout())
	var failures []error
	for _, path := range paths {
		res, err := service.Validate(path, validateStrict)
		if res != nil {
			out.success("%s: %d classes, %d relationships", res.Path, res.Classes, res.Relationships)
			if len(res.Unparsed) > 0 {
				out.hint("  %d unrecognized line(s)", len(res.Unparsed))
				if validateStrict || verbose {
					for _, u := range res.Unparsed {
						out.line("    %d: %s", u.Number, u.Text)
					}
				}
			}
		}
		if err != nil {
			failures = append(failures, err)
		}
	}

	switch len(failures) {
	case 0:
		return nil
	case 1:
		return failures[0]
	default:
		for _, err := range failures {
			out.warn("%s", errorLine(err))
		}
		return fmt.Errorf("%d of %d file(s) failed validation", len(failures), len(paths))
	}
}
