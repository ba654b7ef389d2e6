package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Format selects an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatMarkdown, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, markdown or csv)", s)
	}
}

// Options controls rendering.
type Options struct {
	Format   Format
	Currency string
	Style    string // glamour style for FormatText
}

// Markdown renders r as a markdown table.
func Markdown(r Report, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title())
	if len(r.Items) == 0 {
		b.WriteString("_No transactions._\n")
		return b.String()
	}
	b.WriteString("| Category | Amount |\n|---|---:|\n")
	for _, it := range r.Items {
		fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(it.Label), FormatAmount(it.Amount, currency))
	}
	fmt.Fprintf(&b, "| **Total** | **%s** |\n", FormatAmount(r.Total(), currency))
	return b.String()
}

// KPIMarkdown renders k as a markdown list.
func KPIMarkdown(k AdjustmentKPI, currency string) string {
	var b strings.Builder
	b.WriteString("# Adjustment KPI\n\n")
	fmt.Fprintf(&b, "- Range: %s to %s\n", orOpen(k.From), orOpen(k.To))
	fmt.Fprintf(&b, "- Adjustments: %s\n", FormatAmount(k.Adjustments, currency))
	fmt.Fprintf(&b, "- Expenses: %s\n", FormatAmount(k.Expenses, currency))
	fmt.Fprintf(&b, "- Ratio: %s\n", k.Ratio.StringFixed(4))
	return b.String()
}

// Write renders r to w in the requested format.
func Write(w io.Writer, r Report, opts Options) error {
	switch opts.Format {
	case FormatCSV:
		return WriteCSV(w, r, opts.Currency)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r, opts.Currency))
		return err
	default:
		return renderText(w, Markdown(r, opts.Currency), opts.Style)
	}
}

// WriteKPI renders k to w in the requested format.
func WriteKPI(w io.Writer, k AdjustmentKPI, opts Options) error {
	switch opts.Format {
	case FormatCSV:
		u := unitOf(opts.Currency)
		cw := csv.NewWriter(w)
		err := cw.WriteAll([][]string{
			{"from", "to", "adjustments", "expenses", "ratio"},
			{k.From, k.To, u.Major(k.Adjustments), u.Major(k.Expenses), k.Ratio.StringFixed(4)},
		})
		if err != nil {
			return fmt.Errorf("writing kpi: %w", err)
		}
		return nil
	case FormatMarkdown:
		_, err := io.WriteString(w, KPIMarkdown(k, opts.Currency))
		return err
	default:
		return renderText(w, KPIMarkdown(k, opts.Currency), opts.Style)
	}
}

// WriteCSV writes r as label,amount rows with amounts in major units of
// the currency.
func WriteCSV(w io.Writer, r Report, code string) error {
	u := unitOf(code)
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "amount"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, it := range r.Items {
		if err := cw.Write([]string{it.Label, u.Major(it.Amount)}); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderText(w io.Writer, md, style string) error {
	if style == "" {
		style = "auto"
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func orOpen(p string) string {
	if p == "" {
		return "open"
	}
	return p
}
