// Package renderer renders fundnav reports to markdown.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/fundnav"
	md "github.com/nao1215/markdown"
)

// ReportMarkdown renders the report of a replay.
func ReportMarkdown(r *fundnav.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	cur := r.Currency

	doc.H1(fmt.Sprintf("Portfolio %s", r.Name))
	doc.PlainText(fmt.Sprintf("Replayed from %s to %s.", r.Range.From, r.Range.To))

	st := r.Statistics
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("NAV per unit"), md.Bold(r.NAV.In(cur).String())},
		Rows: [][]string{
			{"Units", r.Units.Decimal().StringFixed(4)},
			{"Total Value", r.Total.In(cur).String()},
			{"Cash", r.Cash.In(cur).String()},
			{"Return", fundnav.Pct(st.Return).SignedString()},
			{"Volatility (annualised)", fundnav.Pct(st.Volatility).String()},
			{"Max Drawdown", fundnav.Pct(st.MaxDrawdown).String()},
			{"Trading Days", fmt.Sprintf("%d / %d", st.TradingDays, st.Days)},
		},
	})

	if len(r.Holdings) > 0 {
		doc.H2("Holdings")
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{"Ticker", "Shares", "Avg. Price", "Close", "Value", "Weight"},
		}
		for _, h := range r.Holdings {
			table.Rows = append(table.Rows, []string{
				h.Ticker,
				h.Shares.String(),
				h.Average.In(cur).String(),
				h.Price.In(cur).String(),
				h.Value.In(cur).String(),
				fundnav.Pct(h.Weight.InexactFloat64()).String(),
			})
		}
		doc.Table(table)
	}

	if len(r.Records) > 0 {
		doc.H2("Transactions")
		var lines []string
		for _, rec := range r.Records {
			lines = append(lines, Record(rec, cur))
		}
		doc.OrderedList(lines...)
	}

	if len(r.Flows) > 0 {
		doc.H2("Cash Flows")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
			Header:    []string{"Date", "Kind", "Ticker", "Amount"},
		}
		for _, f := range r.Flows {
			table.Rows = append(table.Rows, []string{
				f.Date.String(),
				string(f.Kind),
				f.Security,
				f.Amount.In(cur).SignedString(),
			})
		}
		doc.Table(table)
	}

	if rows := history(r.Daily); len(rows) > 0 {
		doc.H2("NAV History")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Date", "Equity", "Cash", "Units", "NAV"},
		}
		for _, d := range rows {
			table.Rows = append(table.Rows, []string{
				d.On.String(),
				d.Equity.In(cur).String(),
				d.Cash.In(cur).String(),
				d.Units.Decimal().StringFixed(4),
				d.NAV.In(cur).String(),
			})
		}
		doc.Table(table)
	}

	if rows := equityHistory(r.Daily); len(rows) > 0 {
		doc.H2("Equity History")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Date", "Ticker", "Shares", "Close", "Value", "Weight"},
		}
		for _, d := range rows {
			for _, p := range d.Positions {
				table.Rows = append(table.Rows, []string{
					d.On.String(),
					p.Ticker,
					p.Shares.String(),
					p.Price.In(cur).String(),
					p.Value.In(cur).String(),
					fundnav.Pct(p.Weight.InexactFloat64()).String(),
				})
			}
		}
		doc.Table(table)
	}

	if r.Commentary != "" {
		doc.H2("Commentary")
		doc.PlainText(r.Commentary)
	}

	return doc.String()
}

// history returns the first day, the last day of every month and the last
// day of the series.
func history(days []fundnav.Day) []fundnav.Day {
	var rows []fundnav.Day
	for i, d := range days {
		last := i == len(days)-1
		if i == 0 || last || days[i+1].On.Month() != d.On.Month() {
			rows = append(rows, d)
		}
	}
	return rows
}

// equityHistory returns the trading days with positions.
func equityHistory(days []fundnav.Day) []fundnav.Day {
	var rows []fundnav.Day
	for _, d := range days {
		if d.Trading && len(d.Positions) > 0 {
			rows = append(rows, d)
		}
	}
	return rows
}
