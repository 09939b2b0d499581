package parser

import (
	"testing"

	"github.com/quantfeed/blockwatch/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		contract string
		want     types.InstrumentType
	}{
		{"BTC-27FEB26-95000-C", types.InstrumentOptions},
		{"BTC-28NOV25-105000-P", types.InstrumentOptions},
		{"eth-26jun26-4000-c", types.InstrumentOptions},
		{"BTC-PERPETUAL", types.InstrumentPerpetual},
		{"ETH-PERP", types.InstrumentPerpetual},
		{"BTC-27MAR26", types.InstrumentFutures},
		{"BTC-FUTURES", types.InstrumentFutures},
		{"", types.InstrumentUnknown},
		{"SOMETHING-ELSE", types.InstrumentUnknown},
		// No C/P suffix means no silent coercion to options.
		{"BTC-27FEB26-95000", types.InstrumentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.contract, func(t *testing.T) {
			if got := Classify(tt.contract); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.contract, got, tt.want)
			}
		})
	}
}

func TestClassifyLeg_LineVetoOverridesAmbiguousContract(t *testing.T) {
	// The contract token alone parses as an option, but the line text names
	// a perpetual. Both checks must agree for OPTIONS; disagreement falls to
	// the more conservative classification.
	got := classifyLeg("BTC-27FEB26-95000-C", "Bought 10.0x BTC-27FEB26-95000-C PERPETUAL hedge")
	if got != types.InstrumentPerpetual {
		t.Errorf("classifyLeg = %s, want PERPETUAL when the line vetoes options", got)
	}

	// A clean options line stays an option.
	got = classifyLeg("BTC-27FEB26-95000-C", "Bought 10.0x BTC-27FEB26-95000-C at 0.05")
	if got != types.InstrumentOptions {
		t.Errorf("classifyLeg = %s, want OPTIONS", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"873.55K", 873550, false},
		{"$2,456.78", 2456.78, false},
		{"1.5M", 1.5e6, false},
		{"2B", 2e9, false},
		{"-0.0020", -0.0020, false},
		{"102,992.00", 102992, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAmount(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseAmount(%q) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	n := Normalize("**LONG BTC CALL (225.0x):**\r\n🟢 Bought 225.0x 🔶 BTC-27FEB26-95000-C 📈 at 0.0447 ₿ ($3,882.45)\n\nExchange: Deribit")

	if n.Header != "LONG BTC CALL (225.0x)" {
		t.Errorf("header = %q", n.Header)
	}
	if len(n.Body) != 2 {
		t.Fatalf("body lines = %d, want 2", len(n.Body))
	}
	if n.Body[0] != "🟢 Bought 225.0x BTC-27FEB26-95000-C at 0.0447 ₿ ($3,882.45)" {
		t.Errorf("body[0] = %q", n.Body[0])
	}
}

func TestNormalize_NoHeaderFailsSoft(t *testing.T) {
	n := Normalize("🟢 Bought 10.0x BTC-27FEB26-95000-C at 0.05 ₿ ($4,344.00)")
	if n.Header != "" {
		t.Errorf("header = %q, want empty", n.Header)
	}
	if len(n.Body) != 1 {
		t.Errorf("body lines = %d, want 1", len(n.Body))
	}
}

func TestExtractSpotPrices(t *testing.T) {
	got := ExtractSpotPrices("🏷️ Spot Prices\nBTC $102,992.00\nETH $3,423.82")
	if got[types.AssetBTC] != 102992.00 {
		t.Errorf("btc = %f, want 102992", got[types.AssetBTC])
	}
	if got[types.AssetETH] != 3423.82 {
		t.Errorf("eth = %f, want 3423.82", got[types.AssetETH])
	}

	// Untagged messages are never mined for prices: strategy titles put
	// numbers next to asset names too.
	if got := ExtractSpotPrices("LONG BTC CALL (225.0x)"); got != nil {
		t.Errorf("expected nil for untagged message, got %v", got)
	}

	// Out-of-range values are rejected as false positives.
	if got := ExtractSpotPrices("Spot Prices\nBTC $225.00"); got != nil {
		t.Errorf("expected nil for out-of-range price, got %v", got)
	}
}
