package fundnav

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecodeLedger(t *testing.T) {
	jsonlStream := `
{"command":"init","date":"2025-08-01","currency":"USD","cash":10000}
{"command":"hold","ticker":"AAPL","shares":10,"price":195.5}
{"command":"buy","date":"2025-08-01","ticker":"GOOG","amount":5,"price":140.2,"memo":"first"}
{"command":"sell","date":"2025-08-04","ticker":"AAPL","amount":2,"price":201,"tax":0.001}
{"command":"transfer","date":"2025-08-02","amount":-1000}

{"command":"dividend","ticker":"AAPL","cum":"2025-08-08","ex":"2025-08-11","payment":"2025-08-14","price":0.26}
{"command":"split","ticker":"GOOG","cum":"2025-08-14","ex":"2025-08-15","ratio":0.05}
{"command":"stock-dividend","ticker":"AAPL","cum":"2025-08-14","ex":"2025-08-15","ratio":20}
`
	l, err := DecodeLedger(strings.NewReader(jsonlStream))
	if err != nil {
		t.Fatalf("DecodeLedger() returned an unexpected error: %v", err)
	}

	if got, want := l.Start(), NewDate(2025, 8, 1); got != want {
		t.Errorf("Start() = %s, want %s", got, want)
	}
	if got := l.Currency(); got != "USD" {
		t.Errorf("Currency() = %q, want USD", got)
	}

	wantTx := []reflect.Type{reflect.TypeOf(Buy{}), reflect.TypeOf(Transfer{}), reflect.TypeOf(Sell{})}
	if len(l.Transactions()) != len(wantTx) {
		t.Fatalf("got %d transactions, want %d", len(l.Transactions()), len(wantTx))
	}
	for i, tx := range l.Transactions() {
		if reflect.TypeOf(tx) != wantTx[i] {
			t.Errorf("transaction %d is a %T, want %v", i, tx, wantTx[i])
		}
	}

	// same day actions are ordered dividend, split, stock dividend.
	wantActions := []reflect.Type{reflect.TypeOf(Dividend{}), reflect.TypeOf(StockSplit{}), reflect.TypeOf(StockDividend{})}
	if len(l.CorporateActions()) != len(wantActions) {
		t.Fatalf("got %d corporate actions, want %d", len(l.CorporateActions()), len(wantActions))
	}
	for i, a := range l.CorporateActions() {
		if reflect.TypeOf(a) != wantActions[i] {
			t.Errorf("action %d is a %T, want %v", i, a, wantActions[i])
		}
	}
	if got := len(l.Splits()); got != 1 {
		t.Errorf("got %d splits, want 1", got)
	}

	buy := l.Transactions()[0].(Buy)
	if buy.Memo != "first" {
		t.Errorf("buy memo = %q, want first", buy.Memo)
	}
	checkDecimal(t, "buy price", buy.Price.Decimal(), "140.2")
	sell := l.Transactions()[2].(Sell)
	checkDecimal(t, "sell tax", sell.Tax, "0.001")
}

func TestDecodeLedger_Errors(t *testing.T) {
	init := `{"command":"init","date":"2025-08-01","currency":"USD","cash":100}` + "\n"
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown field", init + `{"command":"buy","date":"2025-08-01","security":"AAPL","amount":1,"price":1}`, "line 2"},
		{"unknown command", init + `{"command":"deposit","date":"2025-08-01","amount":1}`, "deposit"},
		{"invalid json", init + `{"command":"buy"`, "line 2"},
		{"negative amount", init + `{"command":"buy","date":"2025-08-01","ticker":"AAPL","amount":-1,"price":1}`, "amount must be positive"},
		{"tax out of range", init + `{"command":"sell","date":"2025-08-01","ticker":"AAPL","amount":1,"price":1,"tax":1}`, "tax"},
		{"zero transfer", init + `{"command":"transfer","date":"2025-08-01","amount":0}`, "zero"},
		{"duplicate init", init + init, "already opened"},
		{"duplicate hold", init + `{"command":"hold","ticker":"A","shares":1,"price":1}` + "\n" + `{"command":"hold","ticker":"A","shares":2,"price":1}`, "twice"},
		{"unknown currency", `{"command":"init","date":"2025-08-01","currency":"QQQ","cash":100}`, "QQQ"},
		{"ex before cum", init + `{"command":"split","ticker":"A","cum":"2025-08-02","ex":"2025-08-01","ratio":2}`, "before cum"},
		{"payment before ex", init + `{"command":"dividend","ticker":"A","cum":"2025-08-01","ex":"2025-08-04","payment":"2025-08-02","price":1}`, "payment"},
		{"zero ratio", init + `{"command":"stock-dividend","ticker":"A","cum":"2025-08-01","ex":"2025-08-04","ratio":0}`, "ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLedger(strings.NewReader(tt.input))
			checkKind(t, err, ErrLedger)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestEncodeLedger(t *testing.T) {
	// Records are appended in a deliberately unsorted order. tx2 and tx3
	// have the same date, their relative order must be preserved.
	day := func(d int) Date { return NewDate(2025, 8, d) }
	tx1 := NewBuy(day(3), "AAPL", Q(10), M(195.5, ""), decimal.Zero)
	tx2 := NewTransfer(day(1), M(1000, ""))
	tx3 := NewSell(day(1), "GOOG", Q(5), M(140, ""), decimal.RequireFromString("0.001"))
	tx3.Memo = "rebalance"
	split := NewStockSplit("AAPL", day(1), day(2), decimal.RequireFromString("0.25"))

	l := NewLedger()
	if err := l.Append(tx1, split, tx2, NewHold("GOOG", Q(5), M(130, "")), tx3, NewInit(day(1), "USD", decimal.NewFromInt(5000))); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l); err != nil {
		t.Fatalf("EncodeLedger() unexpected error: %v", err)
	}

	want := `{"command":"init","date":"2025-08-01","currency":"USD","cash":5000}
{"command":"hold","ticker":"GOOG","shares":5,"price":130}
{"command":"transfer","date":"2025-08-01","amount":1000}
{"command":"sell","date":"2025-08-01","memo":"rebalance","ticker":"GOOG","amount":5,"price":140,"tax":0.001}
{"command":"buy","date":"2025-08-03","ticker":"AAPL","amount":10,"price":195.5}
{"command":"split","ticker":"AAPL","cum":"2025-08-01","ex":"2025-08-02","ratio":0.25}
`
	if got := buf.String(); got != want {
		t.Errorf("EncodeLedger() mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	// canonical form is stable.
	decoded, err := DecodeLedger(strings.NewReader(want))
	if err != nil {
		t.Fatal(err)
	}
	var again bytes.Buffer
	if err := EncodeLedger(&again, decoded); err != nil {
		t.Fatal(err)
	}
	if again.String() != want {
		t.Errorf("decoded then encoded ledger differs:\n%s", again.String())
	}
}

func TestSaveLoadLedger(t *testing.T) {
	l := NewLedger()
	if err := l.Append(NewInit(NewDate(2025, 1, 6), "EUR", decimal.NewFromInt(100))); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "growth.jsonl")
	if err := SaveLedger(path, l); err != nil {
		t.Fatal(err)
	}
	got, err := LoadLedger(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name() != "growth" {
		t.Errorf("Name() = %q, want growth", got.Name())
	}
	if got.Currency() != "EUR" {
		t.Errorf("Currency() = %q, want EUR", got.Currency())
	}
	if _, err := LoadLedger(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("LoadLedger() of a missing file should fail")
	}
}
