package fundnav

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// line holds every field a ledger line may carry.
type line struct {
	Command  CommandType     `json:"command"`
	Date     Date            `json:"date"`
	Memo     string          `json:"memo"`
	Currency string          `json:"currency"`
	Cash     decimal.Decimal `json:"cash"`
	Ticker   string          `json:"ticker"`
	Shares   Quantity        `json:"shares"`
	Amount   decimal.Decimal `json:"amount"`
	Price    decimal.Decimal `json:"price"`
	Tax      decimal.Decimal `json:"tax"`
	Cum      Date            `json:"cum"`
	Ex       Date            `json:"ex"`
	Payment  Date            `json:"payment"`
	Ratio    decimal.Decimal `json:"ratio"`
}

// record builds the typed record of a line.
func (l line) record() (Record, error) {
	switch l.Command {
	case CmdInit:
		return NewInit(l.Date, l.Currency, l.Cash), nil
	case CmdHold:
		return NewHold(l.Ticker, l.Shares, M(l.Price, "")), nil
	case CmdBuy:
		tx := NewBuy(l.Date, l.Ticker, Q(l.Amount), M(l.Price, ""), l.Tax)
		tx.Memo = l.Memo
		return tx, nil
	case CmdSell:
		tx := NewSell(l.Date, l.Ticker, Q(l.Amount), M(l.Price, ""), l.Tax)
		tx.Memo = l.Memo
		return tx, nil
	case CmdTransfer:
		tx := NewTransfer(l.Date, M(l.Amount, ""))
		tx.Memo = l.Memo
		return tx, nil
	case CmdDividend:
		return NewDividend(l.Ticker, l.Cum, l.Ex, l.Payment, M(l.Price, ""), l.Tax), nil
	case CmdSplit:
		return NewStockSplit(l.Ticker, l.Cum, l.Ex, l.Ratio), nil
	case CmdStockDividend:
		return NewStockDividend(l.Ticker, l.Cum, l.Ex, l.Ratio), nil
	default:
		return nil, fmt.Errorf("unknown command %q", l.Command)
	}
}

// DecodeLedger decodes records from a stream of JSONL data, one record per
// line. Every record is typed and validated, the first invalid line fails
// the whole ledger with an ErrLedger error naming the line.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	n := 0
	for scanner.Scan() {
		n++
		lineBytes := bytes.TrimSpace(scanner.Bytes())
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var l line
		dec := json.NewDecoder(bytes.NewReader(lineBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&l); err != nil {
			return nil, &Error{Kind: ErrLedger, Record: fmt.Sprintf("line %d", n), Err: err}
		}
		rec, err := l.record()
		if err != nil {
			return nil, &Error{Kind: ErrLedger, Record: fmt.Sprintf("line %d", n), Err: err}
		}
		if err := ledger.Append(rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return ledger, nil
}

// EncodeLedger writes the ledger in its canonical JSONL form.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for rec := range ledger.Records() {
		b, err := rec.MarshalJSON()
		if err != nil {
			return fmt.Errorf("cannot encode %s record: %w", rec.What(), err)
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// LoadLedger reads a ledger file, the ledger is named after the file.
func LoadLedger(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ledger, err := DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ledger.SetName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	return ledger, nil
}

// SaveLedger writes the ledger to a file in its canonical form.
func SaveLedger(path string, ledger *Ledger) error {
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, ledger); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
