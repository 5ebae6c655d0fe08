package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/etnz/fundnav"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

func report() *fundnav.Report {
	d1, d2, d3 := fundnav.NewDate(2025, 3, 7), fundnav.NewDate(2025, 3, 8), fundnav.NewDate(2025, 3, 10)
	return &fundnav.Report{
		Name:     "income",
		Currency: "USD",
		Range:    fundnav.NewRange(d1, d3),
		Holdings: []fundnav.Line{{
			Position: fundnav.Position{Ticker: "XYZ", Shares: fundnav.Q(10), Average: fundnav.M(20, ""), Price: fundnav.M(22, "USD"), Value: fundnav.M(220, "USD")},
			Weight:   decimal.RequireFromString("0.2"),
		}},
		Total: fundnav.M(1100, "USD"),
		Units: fundnav.Q(1),
		NAV:   fundnav.M(1100, "USD"),
		Daily: []fundnav.Day{
			{On: d1, Trading: true, Total: fundnav.M(1000, "USD"), Units: fundnav.Q(1), NAV: fundnav.M(1000, "USD")},
			{On: d2, Total: fundnav.M(1000, "USD"), Units: fundnav.Q(1), NAV: fundnav.M(1000, "USD")},
			{On: d3, Trading: true, Total: fundnav.M(1100, "USD"), Units: fundnav.Q(1), NAV: fundnav.M(1100, "USD")},
		},
	}
}

func TestPrompt(t *testing.T) {
	got := Prompt(report())
	for _, want := range []string{`"income"`, "2025-03-07", "XYZ", "$1,100.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("Prompt() does not contain %q:\n%s", want, got)
		}
	}
}

func TestLibrary(t *testing.T) {
	e := NewAnalyst(report(), "")
	if got, want := e.ModelName, DefaultModel; got != want {
		t.Errorf("NewAnalyst().ModelName = %q, want %q", got, want)
	}
	ctx := context.Background()

	tests := []struct {
		name     string
		call     *genai.FunctionCall
		wantKey  string
		wantRows int
	}{
		{
			name:     "full history skips non trading days",
			call:     &genai.FunctionCall{ID: "1", Name: "nav_history", Args: map[string]any{}},
			wantKey:  "output",
			wantRows: 2,
		},
		{
			name:     "history from a date",
			call:     &genai.FunctionCall{ID: "2", Name: "nav_history", Args: map[string]any{"from": "2025-03-09"}},
			wantKey:  "output",
			wantRows: 1,
		},
		{
			name:    "invalid date",
			call:    &genai.FunctionCall{ID: "3", Name: "nav_history", Args: map[string]any{"to": "March"}},
			wantKey: "error",
		},
		{
			name:     "holdings",
			call:     &genai.FunctionCall{ID: "4", Name: "holdings"},
			wantKey:  "output",
			wantRows: 1,
		},
		{
			name:    "unknown function",
			call:    &genai.FunctionCall{ID: "5", Name: "trade"},
			wantKey: "error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := e.Library(ctx, tt.call)
			if resp.ID != tt.call.ID {
				t.Errorf("response ID = %q, want %q", resp.ID, tt.call.ID)
			}
			v, ok := resp.Response[tt.wantKey]
			if !ok {
				t.Fatalf("response %v has no %q", resp.Response, tt.wantKey)
			}
			if tt.wantKey != "output" {
				return
			}
			rows, ok := v.([]map[string]any)
			if !ok {
				t.Fatalf("output is %T, want rows", v)
			}
			if len(rows) != tt.wantRows {
				t.Errorf("got %d rows, want %d: %v", len(rows), tt.wantRows, rows)
			}
		})
	}
}

func TestAskNotStarted(t *testing.T) {
	e := NewAnalyst(report(), "")
	if _, err := e.Ask(context.Background(), &genai.Part{Text: "hello"}); err == nil {
		t.Error("Ask() on an expert not started should fail")
	}
}
