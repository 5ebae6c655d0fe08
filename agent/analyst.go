// Package agent writes a short narrative of a replay report with a Gemini
// model. The model can query the daily NAV series and the final holdings
// of the report through function calls.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/fundnav"
	"github.com/etnz/fundnav/renderer"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const instruction = `
You are a fund analyst writing the monthly letter of a small fund.
You receive the report of the fund as markdown: NAV per unit, holdings, transactions and cash flows.
Write two short paragraphs in plain text: how the NAV per unit moved and why, based on the holdings and the transactions.
Subscriptions and redemptions do not change the NAV per unit, never present them as performance.
Use the tools to look at the NAV series on specific dates when you need more detail.
Do not give investment advice.
`

// Prompt returns the request sent to the model for a report.
func Prompt(r *fundnav.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Comment the report of the fund %q from %s to %s.\n\n", r.Name, r.Range.From, r.Range.To)
	b.WriteString(renderer.ReportMarkdown(r))
	return b.String()
}

// NewAnalyst creates an expert able to look into the report.
func NewAnalyst(r *fundnav.Report, model string) *Expert {
	if model == "" {
		model = DefaultModel
	}
	lib := []Function{navHistory(r), holdings(r)}
	return &Expert{
		Name:      "Analyst",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools:             []*genai.Tool{{FunctionDeclarations: NewDeclaration(lib)}},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
		},
		Library: NewLibrary(lib),
	}
}

// Comment asks the model for a narrative of the report.
func Comment(ctx context.Context, client *genai.Client, r *fundnav.Report, model string) (string, error) {
	e := NewAnalyst(r, model)
	if err := e.Start(ctx, client); err != nil {
		return "", fmt.Errorf("cannot start %s chat: %w", e.ModelName, err)
	}
	content, err := e.Ask(ctx, &genai.Part{Text: Prompt(r)})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String()), nil
}

// navHistory declares the daily NAV series of the report.
func navHistory(r *fundnav.Report) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "nav_history",
			Description: "Returns the NAV per unit, units outstanding and total value of the fund for every trading day between two dates.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"from": {Type: genai.TypeString, Description: "First date, YYYY-MM-DD. Defaults to the first day of the report."},
					"to":   {Type: genai.TypeString, Description: "Last date, YYYY-MM-DD. Defaults to the last day of the report."},
				},
			},
		},
		Func: func(ctx context.Context, args map[string]any) (any, error) {
			from, err := dateArg(args, "from", r.Range.From)
			if err != nil {
				return nil, err
			}
			to, err := dateArg(args, "to", r.Range.To)
			if err != nil {
				return nil, err
			}
			rng := fundnav.NewRange(from, to)
			var rows []map[string]any
			for _, d := range r.Daily {
				if !d.Trading || !rng.Contains(d.On) {
					continue
				}
				rows = append(rows, map[string]any{
					"date":  d.On.String(),
					"nav":   d.NAV.Decimal().StringFixed(4),
					"units": d.Units.Decimal().StringFixed(4),
					"total": d.Total.Decimal().StringFixed(2),
				})
			}
			return rows, nil
		},
	}
}

// holdings declares the final holdings of the report.
func holdings(r *fundnav.Report) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "holdings",
			Description: "Returns the positions of the fund on the last day of the report, with their weight in the total value.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		Func: func(ctx context.Context, args map[string]any) (any, error) {
			rows := make([]map[string]any, 0, len(r.Holdings))
			for _, h := range r.Holdings {
				rows = append(rows, map[string]any{
					"ticker":  h.Ticker,
					"shares":  h.Shares.String(),
					"average": h.Average.Decimal().StringFixed(4),
					"close":   h.Price.Decimal().StringFixed(4),
					"weight":  fundnav.Pct(h.Weight.InexactFloat64()).String(),
				})
			}
			return rows, nil
		},
	}
}

func dateArg(args map[string]any, name string, def fundnav.Date) (fundnav.Date, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return def, fmt.Errorf("argument %q is not a string as expected but %T", name, v)
	}
	if s == "" {
		return def, nil
	}
	d, err := fundnav.ParseDate(s)
	if err != nil {
		return def, fmt.Errorf("argument %q must be a date formatted as YYYY-MM-DD, got %q", name, s)
	}
	return d, nil
}
