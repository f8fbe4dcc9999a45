package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

type rankedRowView struct {
	Rank     int
	LineItem string
	Percent  string
	Dollar   string
}

type rankedView struct {
	Caption string
	Rows    []rankedRowView
}

type flowRowView struct {
	Label string
	Value string
	Total bool
}

type flowView struct {
	Column string
	Rows   []flowRowView
}

type pageView struct {
	Title       string
	RunID       string
	Workbook    string
	GeneratedAt string
	Narrative   template.HTML
	Ranked      []rankedView
	Flow        *flowView
	FlowCaption string
	Failures    []Failure
	Warnings    []string
}

// RenderHTML writes r as a standalone HTML document.
func RenderHTML(w io.Writer, r *Report) error {
	if err := pageTemplate.Execute(w, newPageView(r)); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func newPageView(r *Report) pageView {
	v := pageView{
		Title:       r.Title,
		RunID:       r.RunID,
		Workbook:    r.Workbook,
		GeneratedAt: r.GeneratedAt.Format(time.RFC1123),
		FlowCaption: CaptionFlow,
		Failures:    r.Failures,
		Warnings:    r.Warnings,
		Ranked: []rankedView{
			{Caption: CaptionDollarVariance, Rows: rankedRows(r.DollarVariance)},
			{Caption: CaptionPercentVariance, Rows: rankedRows(r.PercentVariance)},
		},
	}
	if s := r.Summary(); s != "" {
		v.Narrative = Markdown(s)
	}
	if r.Flow != nil && !r.Flow.Empty() {
		v.Flow = newFlowView(r.Flow)
	}
	return v
}

func rankedRows(rows []analysis.RankedRow) []rankedRowView {
	out := make([]rankedRowView, 0, len(rows))
	for _, row := range rows {
		out = append(out, rankedRowView{
			Rank:     row.Rank,
			LineItem: row.LineItem,
			Percent:  strconv.FormatInt(row.Percent, 10) + "%",
			Dollar:   FormatDollars(row.Dollar),
		})
	}
	return out
}

func newFlowView(f *analysis.Flow) *flowView {
	v := &flowView{Column: f.YTDColumn}
	add := func(item analysis.FlowItem, total bool) {
		v.Rows = append(v.Rows, flowRowView{Label: item.Label, Value: CompactMoney(item.Value), Total: total})
	}

	for _, item := range f.Sources {
		add(item, false)
	}
	if f.TotalRevenue != nil {
		add(*f.TotalRevenue, true)
	}
	for _, item := range f.Expenses {
		add(item, false)
	}
	if f.OperatingIncome != nil {
		add(*f.OperatingIncome, true)
	}
	return v
}
