package parser

import (
	"testing"

	"github.com/quantfeed/blockwatch/pkg/types"
	"go.uber.org/zap"
)

const singleLegCallMsg = `**LONG BTC CALL (225.0x):**
🟢 Bought 225.0x 🔶 BTC-27FEB26-95000-C 📈 at 0.0447 ₿ ($3,882.45)
Total Bought: 10.0575 ₿ ($873.55K), **IV**: 43.45%, **Ref**: $86884.71

Exchange: Deribit
#block`

const perpetualMsg = `**BTC PERPETUAL TRADE:**
🟢 Bought 25000000.0x BTC-PERPETUAL at 86900.0 ($25.00M)
Total Bought: 287.0 ₿ ($25.00M)

Exchange: Deribit
#block`

const fourLegStrategyMsg = `**SHORT BTC CUSTOM STRATEGY (🐮 Spot 🐻 Vol):**
🔴 Sold 150.0x 🔶 BTC-27FEB26-90000-P 📉 at 0.0312 ₿ ($2,710.00)
Total Sold: 4.6800 ₿ ($406.50K), **IV**: 41.20%, **Ref**: $86884.71
🟢 Bought 150.0x 🔶 BTC-27FEB26-80000-P 📈 at 0.0150 ₿ ($1,303.27)
Total Bought: 2.2500 ₿ ($195.49K), **IV**: 44.80%, **Ref**: $86884.71
🔴 Sold 150.0x 🔶 BTC-27MAR26-100000-C 📉 at 0.0287 ₿ ($2,493.00)
Total Sold: 4.3050 ₿ ($373.95K), **IV**: 39.95%, **Ref**: $86884.71
🟢 Bought 150.0x 🔶 BTC-27MAR26-110000-C 📈 at 0.0145 ₿ ($1,259.83)
Total Bought: 2.1750 ₿ ($188.97K), **IV**: 42.60%, **Ref**: $86884.71
📖 Risks: Δ: 2.12, Γ: -0.0020, ν: 423.29, Θ: 3879.16, ρ: 60.24

Exchange: Deribit
#block`

const noRefMsg = `**LONG ETH CALL (600.0x):**
🟢 Bought 600.0x ETH-26JUN26-4000-C at 0.0520 Ξ ($178.36)
Total Bought: 31.2000 Ξ ($107.02K), **IV**: 61.30%

Exchange: Deribit
#block`

func TestParse_SingleLegCall(t *testing.T) {
	p := New(zap.NewNop())

	res := p.Parse(singleLegCallMsg, nil)
	if res.Trade == nil {
		t.Fatal("expected parsed trade, got nil")
	}
	trade := res.Trade

	if trade.Asset != types.AssetBTC {
		t.Errorf("asset = %s, want BTC", trade.Asset)
	}
	if trade.Exchange != "Deribit" {
		t.Errorf("exchange = %s, want Deribit", trade.Exchange)
	}
	if trade.StrategyTitle != "LONG BTC CALL (225.0x)" {
		t.Errorf("strategy title = %q", trade.StrategyTitle)
	}
	if len(trade.Legs) != 1 {
		t.Fatalf("legs = %d, want 1", len(trade.Legs))
	}

	leg := trade.Legs[0]
	if leg.Contract != "BTC-27FEB26-95000-C" {
		t.Errorf("contract = %q", leg.Contract)
	}
	if leg.Side != types.SideLong {
		t.Errorf("side = %s, want LONG", leg.Side)
	}
	if leg.Volume != 225.0 {
		t.Errorf("volume = %f, want 225.0", leg.Volume)
	}
	if leg.PriceBase != 0.0447 {
		t.Errorf("price base = %f, want 0.0447", leg.PriceBase)
	}
	if leg.PriceUSD != 3882.45 {
		t.Errorf("price usd = %f, want 3882.45", leg.PriceUSD)
	}
	if leg.TotalBase != 10.0575 {
		t.Errorf("total base = %f, want 10.0575", leg.TotalBase)
	}
	if leg.TotalUSD != 873550.0 {
		t.Errorf("total usd = %f, want 873550", leg.TotalUSD)
	}
	if leg.IV == nil || *leg.IV != 43.45 {
		t.Errorf("iv = %v, want 43.45", leg.IV)
	}
	if leg.RefSpotUSD == nil || *leg.RefSpotUSD != 86884.71 {
		t.Errorf("ref = %v, want 86884.71", leg.RefSpotUSD)
	}
	if leg.RefTier != types.RefTierLeg {
		t.Errorf("ref tier = %s, want leg-ref", leg.RefTier)
	}
	if leg.Instrument != types.InstrumentOptions {
		t.Errorf("instrument = %s, want OPTIONS", leg.Instrument)
	}
}

const crossAssetMajorityMsg = `**LONG VOL CUSTOM STRATEGY:**
🟢 Bought 400.0x ETH-26JUN26-4000-C at 0.0520 Ξ ($178.36)
Total Bought: 20.8000 Ξ ($71.34K), **IV**: 61.30%
🟢 Bought 400.0x ETH-26JUN26-3000-P at 0.0310 Ξ ($106.33)
Total Bought: 12.4000 Ξ ($42.53K), **IV**: 64.10%
🔴 Sold 10.0x BTC-27FEB26-95000-C at 0.0447 ₿ ($3,882.45)
Total Sold: 0.4470 ₿ ($38.82K), **IV**: 43.45%

Exchange: Deribit
#block`

const crossAssetTieMsg = `**LONG VOL CUSTOM STRATEGY:**
🟢 Bought 10.0x BTC-27FEB26-95000-C at 0.0447 ₿ ($3,882.45)
Total Bought: 0.4470 ₿ ($38.82K), **IV**: 43.45%
🟢 Bought 400.0x ETH-26JUN26-4000-C at 0.0520 Ξ ($178.36)
Total Bought: 20.8000 Ξ ($71.34K), **IV**: 61.30%

Exchange: Deribit
#block`

func TestParse_CrossAssetMajority(t *testing.T) {
	p := New(zap.NewNop())

	res := p.Parse(crossAssetMajorityMsg, nil)
	if res.Trade == nil {
		t.Fatal("expected parsed trade, got nil")
	}
	if len(res.Trade.Legs) != 3 {
		t.Fatalf("legs = %d, want 3", len(res.Trade.Legs))
	}
	if res.Trade.Asset != types.AssetETH {
		t.Errorf("asset = %s, want ETH (majority of options legs)", res.Trade.Asset)
	}
}

func TestParse_CrossAssetTieBreaksFirstSeen(t *testing.T) {
	p := New(zap.NewNop())

	res := p.Parse(crossAssetTieMsg, nil)
	if res.Trade == nil {
		t.Fatal("expected parsed trade, got nil")
	}
	if len(res.Trade.Legs) != 2 {
		t.Fatalf("legs = %d, want 2", len(res.Trade.Legs))
	}
	if res.Trade.Asset != types.AssetBTC {
		t.Errorf("asset = %s, want BTC (first-seen wins the tie)", res.Trade.Asset)
	}
}

func TestParse_PerpetualLegIsNotOptions(t *testing.T) {
	p := New(zap.NewNop())

	res := p.Parse(perpetualMsg, nil)
	if res.Trade == nil {
		t.Fatal("expected parsed trade, got nil")
	}
	if len(res.Trade.Legs) != 1 {
		t.Fatalf("legs = %d, want 1", len(res.Trade.Legs))
	}
	if res.Trade.Legs[0].Instrument != types.InstrumentPerpetual {
		t.Errorf("instrument = %s, want PERPETUAL", res.Trade.Legs[0].Instrument)
	}

	m := types.ComputeMetrics(res.Trade)
	if len(m.OptionsLegs) != 0 {
		t.Errorf("options legs = %d, want 0 regardless of size", len(m.OptionsLegs))
	}
}

func TestParse_FourLegStrategyWithGreeks(t *testing.T) {
	p := New(zap.NewNop())

	res := p.Parse(fourLegStrategyMsg, nil)
	if res.Trade == nil {
		t.Fatal("expected parsed trade, got nil")
	}
	trade := res.Trade

	if len(trade.Legs) != 4 {
		t.Fatalf("legs = %d, want 4", len(trade.Legs))
	}
	if trade.Greeks == nil {
		t.Fatal("expected greeks, got nil")
	}

	g := trade.Greeks
	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"delta", g.Delta, 2.12},
		{"gamma", g.Gamma, -0.0020},
		{"vega", g.Vega, 423.29},
		{"theta", g.Theta, 3879.16},
		{"rho", g.Rho, 60.24},
	}
	for _, c := range checks {
		if c.got == nil {
			t.Errorf("%s missing", c.name)
			continue
		}
		if *c.got != c.want {
			t.Errorf("%s = %f, want %f", c.name, *c.got, c.want)
		}
	}

	// Sold legs outnumber at neither side; sides must alternate as written.
	wantSides := []types.Side{types.SideShort, types.SideLong, types.SideShort, types.SideLong}
	for i, leg := range trade.Legs {
		if leg.Side != wantSides[i] {
			t.Errorf("leg %d side = %s, want %s", i, leg.Side, wantSides[i])
		}
	}
}

func TestParse_NoRefNoSpotNoHint(t *testing.T) {
	p := New(zap.NewNop())

	res := p.Parse(noRefMsg, nil)
	if res.Trade == nil {
		t.Fatal("expected parsed trade, got nil")
	}
	leg := res.Trade.Legs[0]
	if leg.RefSpotUSD != nil {
		t.Errorf("ref = %v, want unresolved", *leg.RefSpotUSD)
	}
	if leg.RefTier != types.RefTierNone {
		t.Errorf("ref tier = %s, want none", leg.RefTier)
	}

	m := types.ComputeMetrics(res.Trade)
	if m.NetPremiumUSD != nil {
		t.Error("net premium should be nil without a resolved reference price")
	}
	if m.OptionsVolumeSum != 600.0 {
		t.Errorf("volume sum = %f, want 600 (volume rule stays evaluable)", m.OptionsVolumeSum)
	}
}

type staticHints map[types.Asset]float64

func (h staticHints) Lookup(a types.Asset) (float64, bool) {
	v, ok := h[a]
	return v, ok
}

func TestParse_RefFallbackTiers(t *testing.T) {
	p := New(zap.NewNop())

	tests := []struct {
		name     string
		text     string
		hints    HintSource
		wantTier types.RefTier
		wantRef  float64
	}{
		{
			name:     "leg-trailer-wins",
			text:     singleLegCallMsg,
			hints:    staticHints{types.AssetBTC: 80000},
			wantTier: types.RefTierLeg,
			wantRef:  86884.71,
		},
		{
			name: "spot-block-second",
			text: "🟢 Bought 10.0x BTC-27FEB26-95000-C at 0.05 ₿ ($4,344.00)\n" +
				"Total Bought: 0.5 ₿ ($43.44K)\n" +
				"🏷️ Spot Prices: BTC $86,884.71, ETH $3,423.82",
			hints:    staticHints{types.AssetBTC: 80000},
			wantTier: types.RefTierSpotBlock,
			wantRef:  86884.71,
		},
		{
			name: "caller-hint-last",
			text: "🟢 Bought 10.0x BTC-27FEB26-95000-C at 0.05 ₿ ($4,344.00)\n" +
				"Total Bought: 0.5 ₿ ($43.44K)",
			hints:    staticHints{types.AssetBTC: 80000},
			wantTier: types.RefTierHint,
			wantRef:  80000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Parse(tt.text, tt.hints)
			if res.Trade == nil {
				t.Fatal("expected parsed trade")
			}
			leg := res.Trade.Legs[0]
			if leg.RefTier != tt.wantTier {
				t.Errorf("tier = %s, want %s", leg.RefTier, tt.wantTier)
			}
			if leg.RefSpotUSD == nil || *leg.RefSpotUSD != tt.wantRef {
				t.Errorf("ref = %v, want %f", leg.RefSpotUSD, tt.wantRef)
			}
		})
	}
}

func TestParse_PartialSuccessDropsBadLeg(t *testing.T) {
	p := New(zap.NewNop())

	// Second leg has a direction marker but no size token.
	text := "🟢 Bought 100.0x BTC-27FEB26-95000-C at 0.05 ₿ ($4,344.00)\n" +
		"Total Bought: 5.0 ₿ ($434.40K), Ref: $86884.71\n" +
		"🔴 Sold garbage-line-without-size\n" +
		"Exchange: Deribit"

	res := p.Parse(text, nil)
	if res.Trade == nil {
		t.Fatal("expected parsed trade despite one bad leg")
	}
	if len(res.Trade.Legs) != 1 {
		t.Errorf("legs = %d, want 1 (bad leg dropped, not fatal)", len(res.Trade.Legs))
	}
	if len(res.LegFailures) != 1 {
		t.Errorf("leg failures = %d, want 1", len(res.LegFailures))
	}
}

func TestParse_ZeroLegsIsUnparseable(t *testing.T) {
	p := New(zap.NewNop())

	res := p.Parse("🏷️ Spot Prices: BTC $86,884.71, ETH $3,423.82", nil)
	if res.Trade != nil {
		t.Errorf("expected nil trade for message with no legs, got %+v", res.Trade)
	}
}

func TestParse_Deterministic(t *testing.T) {
	p := New(zap.NewNop())

	a := p.Parse(fourLegStrategyMsg, nil)
	b := p.Parse(fourLegStrategyMsg, nil)

	if a.Trade == nil || b.Trade == nil {
		t.Fatal("expected parsed trades")
	}
	if len(a.Trade.Legs) != len(b.Trade.Legs) {
		t.Fatal("leg counts differ across identical parses")
	}
	for i := range a.Trade.Legs {
		if a.Trade.Legs[i] != b.Trade.Legs[i] {
			// Legs hold pointers; compare the dereferenced fields.
			la, lb := a.Trade.Legs[i], b.Trade.Legs[i]
			if la.Contract != lb.Contract || la.Volume != lb.Volume ||
				la.TotalUSD != lb.TotalUSD || la.Side != lb.Side {
				t.Errorf("leg %d differs across identical parses", i)
			}
		}
	}
}

func TestComputeMetrics_LegTotalConsistency(t *testing.T) {
	p := New(zap.NewNop())

	res := p.Parse(fourLegStrategyMsg, nil)
	if res.Trade == nil {
		t.Fatal("expected parsed trade")
	}

	m := types.ComputeMetrics(res.Trade)
	if m.PremiumPaidUSD == nil || m.PremiumReceivedUSD == nil {
		t.Fatal("expected premium totals (all legs have totals and refs)")
	}

	var sum float64
	for _, leg := range m.OptionsLegs {
		sum += leg.TotalUSD
	}
	got := *m.PremiumPaidUSD + *m.PremiumReceivedUSD
	if diff := (got - sum) / sum; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("premium total %f does not match leg total sum %f", got, sum)
	}

	// received(406.50K + 373.95K) - paid(195.49K + 188.97K)
	wantNet := 406500.0 + 373950.0 - 195490.0 - 188970.0
	if *m.NetPremiumUSD != wantNet {
		t.Errorf("net premium = %f, want %f", *m.NetPremiumUSD, wantNet)
	}
}
