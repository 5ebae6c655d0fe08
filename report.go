package fundnav

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear annualises daily volatility.
const TradingDaysPerYear = 252

// Report is the outcome of the replay of a ledger.
type Report struct {
	Name       string
	Currency   string
	Range      Range
	Holdings   []Line    // Holdings are the final positions, ticker sorted.
	Cash       Money     // Cash is the final cash balance.
	Total      Money     // Total is the final portfolio value.
	Units      Quantity  // Units is the final number of units.
	NAV        Money     // NAV is the final value of a unit.
	Statistics Statistics
	Records    []Record   // Records are the transactions and corporate actions replayed.
	Flows      []CashFlow // Flows is the cash flow log.
	Daily      []Day      // Daily has one entry per calendar day.
	Commentary string     // Commentary is an optional narrative of the report.
}

// Line is a position of a report with its weight in the total value.
type Line struct {
	Position
	Weight decimal.Decimal // Weight is the share of the total value, in [0,1] when cash is positive.
}

// Day is a row of the daily series of a report.
type Day struct {
	On        Date
	Trading   bool
	Cash      Money
	Equity    Money // Equity is the market value of the holdings.
	Total     Money
	Units     Quantity
	NAV       Money
	Positions []Line // Positions are the holdings valued on that day, ticker sorted.
}

// Statistics summarises the NAV series over trading days.
type Statistics struct {
	Return      float64 // Return is the NAV change over the whole range.
	Mean        float64 // Mean is the average daily return.
	Volatility  float64 // Volatility is the annualised standard deviation of daily returns.
	MaxDrawdown float64 // MaxDrawdown is the largest peak to trough NAV decline, as a positive fraction.
	Days        int
	TradingDays int
}

// NewReport builds the report of a replay.
func NewReport(r *Result) *Report {
	last := r.Last()
	cur := r.Ledger.Currency()
	rep := &Report{
		Name:     r.Ledger.Name(),
		Currency: cur,
		Range:    r.Calendar.Range(),
		Cash:     r.States[last].Cash,
		Total:    r.Totals[last],
		Units:    r.NAV[last].Units,
		NAV:      r.NAV[last].NAV,
		Flows:    r.Flows,
	}
	rep.Holdings = lines(r.Equity[last].Positions, rep.Total)
	for _, tx := range r.Ledger.Transactions() {
		if rep.Range.Contains(tx.When()) {
			rep.Records = append(rep.Records, tx)
		}
	}
	for _, a := range r.Ledger.CorporateActions() {
		if rep.Range.Contains(a.On()) {
			rep.Records = append(rep.Records, a)
		}
	}
	rep.Daily = make([]Day, len(r.States))
	var navs []float64
	for i, s := range r.States {
		d := Day{
			On:        s.On,
			Trading:   r.Calendar.IsTradingDay(s.On),
			Cash:      s.Cash,
			Equity:    r.Equity[i].MarketValue(),
			Total:     r.Totals[i],
			Units:     r.NAV[i].Units,
			NAV:       r.NAV[i].NAV,
			Positions: lines(r.Equity[i].Positions, r.Totals[i]),
		}
		rep.Daily[i] = d
		if d.Trading {
			navs = append(navs, d.NAV.Decimal().InexactFloat64())
		}
	}
	rep.Statistics = statistics(navs)
	rep.Statistics.Days = len(r.States)
	return rep
}

// lines weighs positions in total. Weights are zero when total is zero.
func lines(positions []Position, total Money) []Line {
	if len(positions) == 0 {
		return nil
	}
	ls := make([]Line, len(positions))
	for i, p := range positions {
		ls[i] = Line{Position: p}
		if !total.IsZero() {
			ls[i].Weight = p.Value.Decimal().Div(total.Decimal())
		}
	}
	return ls
}

// statistics computes return statistics of a NAV series.
func statistics(navs []float64) Statistics {
	s := Statistics{TradingDays: len(navs)}
	if len(navs) < 2 {
		return s
	}
	s.Return = navs[len(navs)-1]/navs[0] - 1

	returns := make([]float64, 0, len(navs)-1)
	for i := 1; i < len(navs); i++ {
		if navs[i-1] == 0 {
			continue
		}
		returns = append(returns, navs[i]/navs[i-1]-1)
	}
	if len(returns) > 0 {
		s.Mean = stat.Mean(returns, nil)
	}
	if len(returns) > 1 {
		s.Volatility = stat.StdDev(returns, nil) * math.Sqrt(TradingDaysPerYear)
	}

	peak := navs[0]
	for _, v := range navs {
		peak = math.Max(peak, v)
		if peak > 0 {
			s.MaxDrawdown = math.Max(s.MaxDrawdown, (peak-v)/peak)
		}
	}
	return s
}

// MarshalJSON implements the json.Marshaler interface for Report.
func (r *Report) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("name", r.Name)
	w.Append("currency", r.Currency)
	w.Append("from", r.Range.From)
	w.Append("to", r.Range.To)
	w.Append("total", r.Total)
	w.Append("cash", r.Cash)
	w.Append("units", r.Units)
	w.Append("nav", r.NAV)
	w.Append("statistics", r.Statistics)
	w.Append("holdings", jsonLines(r.Holdings))
	if r.Records == nil {
		w.Append("records", []Record{})
	} else {
		w.Append("records", r.Records)
	}
	if r.Flows == nil {
		w.Append("flows", []CashFlow{})
	} else {
		w.Append("flows", r.Flows)
	}
	days := make([]jsonDay, len(r.Daily))
	for i, d := range r.Daily {
		days[i] = jsonDay(d)
	}
	w.Append("daily", days)
	w.Optional("commentary", r.Commentary)
	return w.MarshalJSON()
}

type jsonLine Line

func jsonLines(ls []Line) []jsonLine {
	out := make([]jsonLine, len(ls))
	for i, l := range ls {
		out[i] = jsonLine(l)
	}
	return out
}

func (l jsonLine) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", l.Ticker)
	w.Append("shares", l.Shares)
	w.Append("average", l.Average)
	w.Append("price", l.Price)
	w.Append("value", l.Value)
	w.Append("weight", l.Weight.Round(6))
	return w.MarshalJSON()
}

type jsonDay Day

func (d jsonDay) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", d.On)
	w.Append("trading", d.Trading)
	w.Append("cash", d.Cash)
	w.Append("equity", d.Equity)
	w.Append("total", d.Total)
	w.Append("units", d.Units)
	w.Append("nav", d.NAV)
	w.Append("positions", jsonLines(d.Positions))
	return w.MarshalJSON()
}

// MarshalJSON implements the json.Marshaler interface for Statistics.
func (s Statistics) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("return", round(s.Return))
	w.Append("mean", round(s.Mean))
	w.Append("volatility", round(s.Volatility))
	w.Append("max_drawdown", round(s.MaxDrawdown))
	w.Append("days", s.Days)
	w.Append("trading_days", s.TradingDays)
	return w.MarshalJSON()
}

func round(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f).Round(6)
}
