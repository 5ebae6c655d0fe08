package fundnav

import (
	"encoding/json"
	"testing"
)

func TestJSONObjectWriter(t *testing.T) {
	tests := []struct {
		name  string
		build func(w *jsonObjectWriter)
		want  string
	}{
		{
			name:  "empty",
			build: func(w *jsonObjectWriter) {},
			want:  `{}`,
		},
		{
			name: "keeps insertion order",
			build: func(w *jsonObjectWriter) {
				w.Append("z", 1).Append("a", "x")
			},
			want: `{"z":1,"a":"x"}`,
		},
		{
			name: "embeds fields in place",
			build: func(w *jsonObjectWriter) {
				w.Append("a", 1).Embed(json.RawMessage(`{"c":3,"d":4}`)).Append("b", 2)
			},
			want: `{"a":1,"c":3,"d":4,"b":2}`,
		},
		{
			name: "embeds an empty object",
			build: func(w *jsonObjectWriter) {
				w.Append("a", 1).Embed([]byte(`{}`))
			},
			want: `{"a":1}`,
		},
		{
			name: "skips zero optional values",
			build: func(w *jsonObjectWriter) {
				w.Append("a", 0).Optional("b", "").Optional("c", Money{}).Optional("d", "kept")
			},
			want: `{"a":0,"d":"kept"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w jsonObjectWriter
			tt.build(&w)
			got, err := w.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestJSONObjectWriter_Error(t *testing.T) {
	var w jsonObjectWriter
	w.Append("f", func() {}).Append("a", 1)
	if _, err := w.MarshalJSON(); err == nil {
		t.Error("MarshalJSON() of an unsupported value should fail")
	}
}

func TestCashFlow_MarshalJSON(t *testing.T) {
	tests := []struct {
		flow CashFlow
		want string
	}{
		{
			flow: CashFlow{Date: NewDate(2025, 1, 6), Amount: M(-5005, "EUR"), Kind: FlowPurchase, Security: "AAA"},
			want: `{"date":"2025-01-06","kind":"purchase","ticker":"AAA","amount":-5005}`,
		},
		{
			flow: CashFlow{Date: NewDate(2025, 1, 7), Amount: M(10000, "EUR"), Kind: FlowTransfer},
			want: `{"date":"2025-01-07","kind":"transfer","amount":10000}`,
		},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.flow)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.flow.Kind, got, tt.want)
		}
	}
}
