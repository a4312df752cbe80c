package cli

import (
	"github.com/spf13/cobra"

	apppricing "github.com/turtacn/KeyIP-Pricing/internal/application/pricing"
	domain "github.com/turtacn/KeyIP-Pricing/internal/domain/pricing"
	"github.com/turtacn/KeyIP-Pricing/pkg/client"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// selectionFlags builds a selection from flags, or from --selection when
// given.
type selectionFlags struct {
	file            string
	kind            string
	applicationType string
	niceClasses     []int
	option1         bool
	priorUse        bool
	goods           string
	searchType      string
	turnaround      string
	draftingType    string
	filingType      string
	ferKey          string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.file, "selection", "", "selection JSON file (\"-\" for stdin); overrides the flags below")
	fs.StringVar(&f.kind, "kind", "trademark", "service kind (trademark, patentability_search, drafting, filing, fer)")
	fs.StringVar(&f.applicationType, "application-type", "individual", "application type (individual, startup_msme, others)")
	fs.IntSliceVar(&f.niceClasses, "nice-classes", nil, "trademark NICE classes")
	fs.BoolVar(&f.option1, "option1", false, "include option1")
	fs.BoolVar(&f.priorUse, "prior-use", false, "mark declared prior use")
	fs.StringVar(&f.goods, "goods-services", "", "goods/services dropdown value")
	fs.StringVar(&f.searchType, "search-type", "", "patentability search type")
	fs.StringVar(&f.turnaround, "turnaround", "", "patentability turnaround")
	fs.StringVar(&f.draftingType, "drafting-type", "", "drafting type")
	fs.StringVar(&f.filingType, "filing-type", "", "filing type")
	fs.StringVar(&f.ferKey, "fer-key", "", "FER bucket")
}

func (f *selectionFlags) selection(cmd *cobra.Command) (client.Selection, error) {
	if f.file != "" {
		var sel client.Selection
		err := readJSONInput(cmd, f.file, &sel)
		return sel, err
	}
	return client.Selection{
		Kind:            f.kind,
		ApplicationType: f.applicationType,
		NiceClasses:     f.niceClasses,
		Option1:         f.option1,
		PriorUse:        client.PriorUse{Used: f.priorUse},
		GoodsServices:   client.GoodsServices{Dropdown: f.goods},
		SearchType:      f.searchType,
		Turnaround:      f.turnaround,
		DraftingType:    f.draftingType,
		FilingType:      f.filingType,
		FerKey:          f.ferKey,
	}, nil
}

// loadRuleDocument reads and schema-checks a rule document.
func loadRuleDocument(cmd *cobra.Command, path string) (*apppricing.RuleDocument, error) {
	raw, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	return parseDocument(raw)
}

func parseDocument(raw []byte) (*apppricing.RuleDocument, error) {
	return apppricing.ParseRuleDocument(raw)
}

// NewQuoteCmd groups the pricing commands.
func NewQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price service selections",
	}
	cmd.AddCommand(
		newQuoteEvaluateCmd(),
		newQuotePreviewCmd(),
		newQuoteCreateCmd(),
		newQuoteSnapshotCmd(),
	)
	return cmd
}

func newQuoteEvaluateCmd() *cobra.Command {
	var (
		sel      selectionFlags
		rules    string
		variants bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Price a selection against a local rule document",
		Example: `  pricectl quote evaluate --rules rules.json --kind trademark --nice-classes 9,42
  pricectl quote evaluate --rules rules.json --selection selection.json --variants -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			doc, err := loadRuleDocument(cmd, rules)
			if err != nil {
				return err
			}
			s, err := sel.selection(cmd)
			if err != nil {
				return err
			}
			var req apppricing.SelectionRequest
			if err := convert(s, &req); err != nil {
				return err
			}

			svc := apppricing.NewQuoteService(nil, apppricing.NewEngine(cliCtx.Logger, nil), nil, nil, cliCtx.Logger)
			q, err := svc.Evaluate(cmd.Context(), &apppricing.EvaluateRequest{
				Rules:           doc.Rules,
				Selection:       req,
				IncludeVariants: variants,
			})
			if err != nil {
				return err
			}
			q.ServiceID = doc.ServiceID

			var view quoteView
			if err := convert(q, &view.Quote); err != nil {
				return err
			}
			return PrintResult(cmd, view)
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&rules, "rules", "", "rule document JSON file (\"-\" for stdin)")
	cmd.Flags().BoolVar(&variants, "variants", false, "also price every variant of the service's variant dimension")
	_ = cmd.MarkFlagRequired("rules")
	return cmd
}

func newQuotePreviewCmd() *cobra.Command {
	var (
		rules   string
		form    string
		service string
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Derive the order form price preview from a local rule document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			doc, err := loadRuleDocument(cmd, rules)
			if err != nil {
				return err
			}
			var state apppricing.FormState
			if form != "" {
				if err := readJSONInput(cmd, form, &state); err != nil {
					return err
				}
			}
			if service != "" {
				kind, err := domain.ParseServiceKind(service)
				if err != nil {
					return err
				}
				state.Service = kind
			}

			var opts []apppricing.PreviewOption
			if k := cliCtx.Config.Pricing.DefaultFerKey; k != "" {
				opts = append(opts, apppricing.WithDefaultFerKey(domain.FerKey(k)))
			}
			agg := apppricing.NewPreviewAggregator(apppricing.NewEngine(cliCtx.Logger, nil), nil, opts...)
			p := agg.Preview(domain.RuleSet(doc.Rules), state)

			var view previewView
			if err := convert(p, &view.Preview); err != nil {
				return err
			}
			return PrintResult(cmd, view)
		},
	}
	cmd.Flags().StringVar(&rules, "rules", "", "rule document JSON file")
	cmd.Flags().StringVar(&form, "form", "", "form state JSON file (\"-\" for stdin)")
	cmd.Flags().StringVar(&service, "service", "", "override the form's service")
	_ = cmd.MarkFlagRequired("rules")
	return cmd
}

func newQuoteCreateCmd() *cobra.Command {
	var (
		sel       selectionFlags
		serviceID string
		variants  bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Price a selection against a service's stored rules on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cliCtx, err := remoteClient(cmd)
			if err != nil {
				return err
			}
			s, err := sel.selection(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			q, err := c.Quotes().Quote(ctx, serviceID, &client.QuoteRequest{Selection: s, IncludeVariants: variants})
			if err != nil {
				return err
			}
			return PrintResult(cmd, quoteView{Quote: *q})
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&serviceID, "service-id", "", "stored rule set to price against")
	cmd.Flags().BoolVar(&variants, "variants", false, "also price every variant")
	_ = cmd.MarkFlagRequired("service-id")
	return cmd
}

func newQuoteSnapshotCmd() *cobra.Command {
	var serviceID, quoteID string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the stored snapshot of an earlier quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cliCtx, err := remoteClient(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			snap, err := c.Quotes().Snapshot(ctx, serviceID, quoteID)
			if err != nil {
				return err
			}
			if snap.Quote == nil {
				return errors.New(errors.ErrCodeSnapshotFailed, "snapshot has no quote")
			}
			if cliCtx.OutputFormat == "json" {
				return printJSON(cmd, snap)
			}
			return PrintResult(cmd, quoteView{Quote: *snap.Quote})
		},
	}
	cmd.Flags().StringVar(&serviceID, "service-id", "", "service id")
	cmd.Flags().StringVar(&quoteID, "quote-id", "", "quote id")
	_ = cmd.MarkFlagRequired("service-id")
	_ = cmd.MarkFlagRequired("quote-id")
	return cmd
}

//Personal.AI order the ending
