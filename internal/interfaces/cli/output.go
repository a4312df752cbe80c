package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// tabular is implemented by views that render as a table with -o table.
type tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult writes data to stdout in the selected output format.  Outside
// a pricectl invocation it falls back to JSON.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := "json"
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}

	switch format {
	case "json":
		return printJSON(cmd, data)
	case "table":
		if t, ok := data.(tabular); ok {
			_, err := fmt.Fprint(cmd.OutOrStdout(), FormatTable(t.TableHeaders(), t.TableRows()))
			return err
		}
	}
	return printText(cmd, data)
}

// printJSON prefers a view's JSONValue, which drops text-only decoration.
func printJSON(cmd *cobra.Command, data interface{}) error {
	if v, ok := data.(interface{ JSONValue() interface{} }); ok {
		data = v.JSONValue()
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	var err error
	switch v := data.(type) {
	case string:
		_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		_, err = fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return err
}

func PrintError(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
}

func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintln(cmd.OutOrStdout(), "OK:", msg)
}

// FormatTable aligns rows under headers with a dashed rule between them.
// Short rows are padded with empty cells; trailing blanks are trimmed.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	var buf strings.Builder
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	line := func(cells []string) {
		padded := make([]string, len(headers))
		copy(padded, cells)
		fmt.Fprintln(tw, strings.Join(padded, "\t"))
	}

	line(headers)
	rule := make([]string, len(headers))
	for i := range headers {
		w := len(headers[i])
		for _, r := range rows {
			if i < len(r) && len(r[i]) > w {
				w = len(r[i])
			}
		}
		rule[i] = strings.Repeat("-", w)
	}
	line(rule)
	for _, r := range rows {
		line(r)
	}
	_ = tw.Flush()

	var out strings.Builder
	for _, l := range strings.SplitAfter(buf.String(), "\n") {
		if l == "" {
			continue
		}
		out.WriteString(strings.TrimRight(l, " \n") + "\n")
	}
	return out.String()
}

//Personal.AI order the ending
