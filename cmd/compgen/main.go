// Command compgen validates, plans, and applies component template catalogs
// against a simulation host driver.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/simkit/compgen/pkg/host"
	"github.com/simkit/compgen/pkg/host/memory"
	"github.com/simkit/compgen/pkg/materialize"
	"github.com/simkit/compgen/pkg/orchestrator"
	"github.com/simkit/compgen/pkg/template"
)

type rootFlags struct {
	source  string
	quiet   bool
	layouts []string
	scripts []string
}

func main() {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "compgen",
		Short:         "Materialize component templates into a simulation host",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.source, "source", "components.jsonc", "template catalog path or URL")
	root.PersistentFlags().BoolVar(&flags.quiet, "quiet", false, "suppress progress logging")
	root.PersistentFlags().StringSliceVar(&flags.layouts, "layouts", nil, "layout names available in the host")
	root.PersistentFlags().StringSliceVar(&flags.scripts, "scripts", nil, "script capabilities available in the host")

	root.AddCommand(newValidateCmd(flags))
	root.AddCommand(newPlanCmd(flags))
	root.AddCommand(newApplyCmd(flags))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "compgen:", err)
		os.Exit(1)
	}
}

func newValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Parse and validate a template catalog without expanding it",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := orchestrator.New()
			templates, err := gen.Load(cmd.Context(), orchestrator.Request{Source: parseSource(flags.source)})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d templates valid\n", len(templates))
			return nil
		},
	}
}

func newPlanCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Expand every template and print the concrete property schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := orchestrator.New()
			plans, err := gen.Plan(cmd.Context(), orchestrator.Request{Source: parseSource(flags.source)})
			if err != nil {
				return err
			}

			var payload []byte
			switch format {
			case "yaml":
				payload, err = yaml.Marshal(plans)
			case "json":
				payload, err = json.MarshalIndent(plans, "", "  ")
			default:
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
			if err != nil {
				return fmt.Errorf("encode plan: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "plan output format (yaml or json)")
	return cmd
}

func newApplyCmd(flags *rootFlags) *cobra.Command {
	var (
		driver   string
		policy   string
		approved bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Materialize a template catalog against a host driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			failurePolicy, err := parsePolicy(policy)
			if err != nil {
				return err
			}

			logger := zap.NewNop()
			if !flags.quiet {
				logger, err = zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				defer func() {
					_ = logger.Sync()
				}()
			}

			registry := host.NewRegistry()
			registry.MustRegister(memory.New(
				memory.WithLayouts(flags.layouts...),
				memory.WithScripts(flags.scripts...),
			))

			gen := orchestrator.New(
				orchestrator.WithRegistry(registry),
				orchestrator.WithLogger(logger),
				orchestrator.WithFailurePolicy(failurePolicy),
			)

			req := orchestrator.Request{
				Source: parseSource(flags.source),
				Driver: driver,
			}

			templates, err := gen.Load(cmd.Context(), req)
			if err != nil {
				return err
			}
			req.Templates = templates

			if !approved {
				confirm := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Materialize %d templates against driver %q?", len(templates), driver),
				}
				if err := survey.AskOne(prompt, &confirm); err != nil {
					return err
				}
				if !confirm {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}

			report, runErr := gen.Apply(cmd.Context(), req)
			printReport(cmd, report)
			return runErr
		},
	}
	cmd.Flags().StringVar(&driver, "driver", memory.DriverName, "registered host driver")
	cmd.Flags().StringVar(&policy, "policy", string(materialize.FailFast), "failure policy (fail-fast or continue)")
	cmd.Flags().BoolVar(&approved, "yes", false, "skip the confirmation prompt")
	return cmd
}

func printReport(cmd *cobra.Command, report materialize.Report) {
	out := cmd.OutOrStdout()
	for _, result := range report.Results {
		if result.Err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", result.Template, result.Err)
			continue
		}
		fmt.Fprintf(out, "OK   %s: entity %s, %d properties\n", result.Template, result.Entity, result.Properties)
	}
	if failed := report.Failed(); len(failed) > 0 {
		fmt.Fprintf(out, "%d of %d templates failed\n", len(failed), len(report.Results))
	}
}

func parsePolicy(raw string) (materialize.FailurePolicy, error) {
	switch materialize.FailurePolicy(raw) {
	case materialize.FailFast:
		return materialize.FailFast, nil
	case materialize.ContinueOnError:
		return materialize.ContinueOnError, nil
	}
	return "", fmt.Errorf("unknown failure policy %q", raw)
}

func parseSource(raw string) template.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return template.SourceFromURL(path)
	}
	return template.SourceFromFile(path)
}
