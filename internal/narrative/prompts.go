package narrative

import (
	"fmt"
	"strings"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
	"github.com/hdmquan/logos-living-capital/internal/exporter"
)

const instruction = "Identify key financial ratios and trends to provide a comprehensive overview of its financial position. " +
	"Your analysis should be as concise as possible without compromising any information and do not make up numbers and things."

// MasterInstruction closes the master prompt.
const MasterInstruction = "Given these analysis of these financial data of a real estate company, compile a complete analysis of " +
	"what is going on, what should decision maker be aware of and what is the potential course of action. " +
	"Your analysis should be as concise as possible without compromising any information and do not make up numbers and things."

// Template describes how one analysis is asked about.
type Template struct {
	// Label prefixes the analysis answer in the master prompt.
	Label string
	// Subject completes "Analyze the ... of this real estate company".
	Subject string
	// Captions introduce each section, keyed by section key. Sections without
	// a caption are embedded bare.
	Captions map[string]string
}

// Templates are the prompts of the default analyses, keyed by analysis name.
var Templates = map[string]Template{
	analysis.NameBalanceSheet: {
		Label:   "Balance sheet analysis: ",
		Subject: "balance sheet",
	},
	analysis.NameIncomeStatement: {
		Label:   "Income Statement analysis: ",
		Subject: "income statement",
	},
	analysis.NameVariance: {
		Label:   "Variance analysis: ",
		Subject: "finance variance data",
		Captions: map[string]string{
			analysis.SectionPercentVariance: "This is the company top 10 percentage variance:",
			analysis.SectionDollarVariance:  "This is the company top 10 dollar variance:",
		},
	},
	analysis.NameLabor: {
		Label:   "Labor Data analysis: ",
		Subject: "labor data",
	},
	analysis.NameRevenue: {
		Label:   "Revenue Data analysis: ",
		Subject: "revenue details",
	},
}

// BuildPrompt renders the prompt for one analysis result.
func BuildPrompt(tmpl Template, res *analysis.Result) (string, error) {
	var b strings.Builder

	for _, s := range res.Sections {
		text, err := exporter.EncodeTable(s.Table)
		if err != nil {
			return "", fmt.Errorf("failed to encode section %s: %w", s.Key, err)
		}
		if caption, ok := tmpl.Captions[s.Key]; ok {
			b.WriteString(caption)
			b.WriteByte('\n')
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "Analyze the %s of this real estate company to assess its financial health and performance. %s",
		tmpl.Subject, instruction)
	return b.String(), nil
}

// MasterPrompt joins the labelled answers, one per line, and appends the
// synthesis instruction.
func MasterPrompt(sections []Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, s.Label+s.Text)
	}
	return strings.Join(parts, "\n") + "\n\n" + MasterInstruction
}
