package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/turtacn/KeyIP-Pricing/pkg/client"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// convert re-decodes src as dst.  Service types and SDK types share one wire
// shape, so offline and remote results render through the same views.
func convert(src, dst interface{}) error {
	b, err := json.Marshal(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode result")
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decode result")
	}
	return nil
}

type quoteView struct {
	client.Quote
}

func (v quoteView) JSONValue() interface{} { return v.Quote }

func (v quoteView) components() [][]string {
	b := v.Breakdown
	return [][]string{
		{"professional_fee", b.ProfessionalFee.String()},
		{"option1", b.Option1.String()},
		{"nice_classes", b.NiceClasses.String()},
		{"goods_services", b.GoodsServices.String()},
		{"prior_use", b.PriorUse.String()},
		{"government_fee", v.GovernmentFee.String()},
		{"total", v.Total.String()},
	}
}

func (v quoteView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Quote %s (%s, %s)\n", v.ID, v.Kind, v.ApplicationType)
	for _, row := range v.components() {
		fmt.Fprintf(&sb, "  %-18s %s\n", row[0], row[1])
	}
	if len(v.Variants) > 0 {
		sb.WriteString("Variants:\n")
		for _, k := range sortedKeys(v.Variants) {
			fmt.Fprintf(&sb, "  %-18s %s\n", k, v.Variants[k].String())
		}
	}
	if v.SnapshotKey != "" {
		fmt.Fprintf(&sb, "Snapshot: %s\n", v.SnapshotKey)
	}
	writeWarnings(&sb, v.Warnings)
	return strings.TrimRight(sb.String(), "\n")
}

func (v quoteView) TableHeaders() []string { return []string{"COMPONENT", "AMOUNT"} }

func (v quoteView) TableRows() [][]string {
	rows := v.components()
	for _, k := range sortedKeys(v.Variants) {
		rows = append(rows, []string{"variant:" + k, v.Variants[k].String()})
	}
	return rows
}

type previewView struct {
	client.Preview
}

func (v previewView) JSONValue() interface{} { return v.Preview }

func (v previewView) rows() [][]string {
	return [][]string{
		{"professional_fee", v.ProfessionalFee.String()},
		{"government_fee", v.GovernmentFee.String()},
		{"total", v.Total.String()},
		{"patentability_total", v.PatentabilityTotal.String()},
		{"drafting_total", v.DraftingTotal.String()},
		{"filing_total", v.FilingTotal.String()},
		{"fer_total", v.FerTotal.String()},
	}
}

func (v previewView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Preview (%s, %s)\n", v.Service, v.ApplicationType)
	for _, row := range v.rows() {
		fmt.Fprintf(&sb, "  %-20s %s\n", row[0], row[1])
	}
	for _, k := range sortedKeys(v.Variants) {
		fmt.Fprintf(&sb, "  %-20s %s\n", "variant:"+k, v.Variants[k].String())
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (v previewView) TableHeaders() []string { return []string{"FIELD", "AMOUNT"} }

func (v previewView) TableRows() [][]string {
	rows := v.rows()
	for _, k := range sortedKeys(v.Variants) {
		rows = append(rows, []string{"variant:" + k, v.Variants[k].String()})
	}
	return rows
}

type rulesView struct {
	client.RuleSet
}

func (v rulesView) JSONValue() interface{} { return v.RuleSet }

func (v rulesView) TableHeaders() []string {
	return []string{"#", "APPLICATION_TYPE", "KEY", "UNIT", "AMOUNT", "VARIANT"}
}

func (v rulesView) TableRows() [][]string {
	rows := make([][]string, len(v.Rules))
	for i, r := range v.Rules {
		rows[i] = []string{strconv.Itoa(i), r.ApplicationType, r.Key, r.Unit, r.Amount.String(), r.Variant}
	}
	return rows
}

func (v rulesView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Service %s: %d rules\n", v.ServiceID, len(v.Rules))
	sb.WriteString(FormatTable(v.TableHeaders(), v.TableRows()))
	writeWarnings(&sb, v.Warnings)
	return strings.TrimRight(sb.String(), "\n")
}

type validationView struct {
	client.ValidateResult
}

func (v validationView) JSONValue() interface{} { return v.ValidateResult }

func (v validationView) TableHeaders() []string {
	return []string{"INDEX", "KIND", "KEY", "MESSAGE"}
}

func (v validationView) TableRows() [][]string {
	rows := make([][]string, len(v.Warnings))
	for i, w := range v.Warnings {
		rows[i] = []string{strconv.Itoa(w.Index), w.Kind, w.Key, w.Message}
	}
	return rows
}

func (v validationView) String() string {
	var sb strings.Builder
	status := "ok"
	if v.Blocking {
		status = "rejected"
	}
	fmt.Fprintf(&sb, "%d rules, %d warnings: %s\n", v.RuleCount, len(v.Warnings), status)
	writeWarnings(&sb, v.Warnings)
	return strings.TrimRight(sb.String(), "\n")
}

type servicesView []string

func (v servicesView) JSONValue() interface{} {
	return map[string][]string{"services": []string(v)}
}

func (v servicesView) String() string {
	if len(v) == 0 {
		return "no services"
	}
	return strings.Join(v, "\n")
}

func (v servicesView) TableHeaders() []string { return []string{"SERVICE_ID"} }

func (v servicesView) TableRows() [][]string {
	rows := make([][]string, len(v))
	for i, s := range v {
		rows[i] = []string{s}
	}
	return rows
}

func writeWarnings(sb *strings.Builder, ws []client.Warning) {
	if len(ws) == 0 {
		return
	}
	sb.WriteString("Warnings:\n")
	for _, w := range ws {
		fmt.Fprintf(sb, "  [%d] %s: %s\n", w.Index, w.Kind, w.Message)
	}
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

//Personal.AI order the ending
