package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/pkg/client"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// NewRulesCmd groups rule set management.
func NewRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Validate and manage pricing rule sets",
	}
	cmd.AddCommand(
		newRulesValidateCmd(),
		newRulesImportCmd(),
		newRulesListCmd(),
		newRulesServicesCmd(),
	)
	return cmd
}

func newRulesValidateCmd() *cobra.Command {
	var rules string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Schema-check and lint a local rule document",
		Long: "validate checks a rule document against the rule document schema, then reports\n" +
			"duplicate keys, unknown enum values and negative amounts.  It exits non-zero\n" +
			"when the server would reject the rule set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadRuleDocument(cmd, rules)
			if err != nil {
				return err
			}
			ws := domain.ValidateRules(doc.Rules)
			view := validationView{client.ValidateResult{
				RuleCount: len(doc.Rules),
				Warnings:  []client.Warning{},
				Blocking:  domain.HasBlocking(ws),
			}}
			if len(ws) > 0 {
				if err := convert(ws, &view.Warnings); err != nil {
					return err
				}
			}
			if err := PrintResult(cmd, view); err != nil {
				return err
			}
			if view.Blocking {
				return errors.New(errors.ErrCodeRuleInvalid, "rule document has blocking warnings")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rules, "rules", "", "rule document JSON file (\"-\" for stdin)")
	_ = cmd.MarkFlagRequired("rules")
	return cmd
}

func newRulesImportCmd() *cobra.Command {
	var rules string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a service's stored rules with a rule document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cliCtx, err := remoteClient(cmd)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, rules)
			if err != nil {
				return err
			}
			// fail fast on documents the server would reject anyway
			doc, err := parseDocument(raw)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()
			res, err := c.Rules().Import(ctx, raw)
			if err != nil {
				return err
			}
			cliCtx.Logger.Debug("rules imported")
			if cliCtx.OutputFormat == "json" {
				return printJSON(cmd, res)
			}
			PrintSuccess(cmd, fmt.Sprintf("imported %d rules for %s", res.RuleCount, doc.ServiceID))
			if len(res.Warnings) > 0 {
				return PrintResult(cmd, validationView{client.ValidateResult{RuleCount: res.RuleCount, Warnings: res.Warnings}})
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rules, "rules", "", "rule document JSON file (\"-\" for stdin)")
	_ = cmd.MarkFlagRequired("rules")
	return cmd
}

func newRulesListCmd() *cobra.Command {
	var serviceID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show a service's stored rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cliCtx, err := remoteClient(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			rs, err := c.Rules().List(ctx, serviceID)
			if err != nil {
				return err
			}
			return PrintResult(cmd, rulesView{*rs})
		},
	}
	cmd.Flags().StringVar(&serviceID, "service-id", "", "service id")
	_ = cmd.MarkFlagRequired("service-id")
	return cmd
}

func newRulesServicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the services that have stored rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cliCtx, err := remoteClient(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			services, err := c.Rules().Services(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, servicesView(services))
		},
	}
}

//Personal.AI order the ending
