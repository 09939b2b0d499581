package alert

import (
	"reflect"
	"testing"
	"time"

	"github.com/quantfeed/blockwatch/pkg/types"
	"go.uber.org/zap"
)

func testRules() RuleSet {
	return RuleSet{
		VolumeThresholds: map[types.Asset]float64{
			types.AssetBTC: 200,
			types.AssetETH: 5000,
		},
		PremiumThresholdUSD: 1_000_000,
		Aggregation:         AggregationSum,
		AllowedExchanges:    []string{"Deribit"},
	}
}

func ref(v float64) *float64 { return &v }

func optionsLeg(side types.Side, volume, totalUSD float64) types.Leg {
	return types.Leg{
		Contract:   "BTC-27FEB26-95000-C",
		Side:       side,
		Volume:     volume,
		TotalUSD:   totalUSD,
		RefSpotUSD: ref(86884.71),
		RefTier:    types.RefTierLeg,
		Instrument: types.InstrumentOptions,
	}
}

func testMessage() types.RawMessage {
	return types.RawMessage{
		ID:        42,
		Timestamp: time.Date(2026, 2, 27, 8, 0, 0, 0, time.UTC),
		Text:      "irrelevant here",
	}
}

func btcTrade(legs ...types.Leg) *types.ParsedTrade {
	return &types.ParsedTrade{
		Asset:    types.AssetBTC,
		Exchange: "Deribit",
		Legs:     legs,
	}
}

func TestEvaluate_VolumeRule(t *testing.T) {
	e := New(zap.NewNop())

	tests := []struct {
		name       string
		volume     float64
		wantFire   bool
		wantReason types.AlertReason
		wantSkip   types.SkipReason
	}{
		// The volume comparator is strict greater-than: equal must not fire.
		{"above-threshold-fires", 225.0, true, types.ReasonVolume, ""},
		{"exactly-at-threshold-does-not-fire", 200.0, false, "", types.SkipBelowThreshold},
		{"epsilon-above-fires", 200.0001, true, types.ReasonVolume, ""},
		{"below-threshold", 50.0, false, "", types.SkipBelowThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trade := btcTrade(optionsLeg(types.SideLong, tt.volume, 100_000))
			d := e.Evaluate(testMessage(), trade, testRules())

			if d.Fire != tt.wantFire {
				t.Errorf("fire = %v, want %v", d.Fire, tt.wantFire)
			}
			if tt.wantFire && !d.HasReason(tt.wantReason) {
				t.Errorf("reasons = %v, want %s", d.Reasons, tt.wantReason)
			}
			if !tt.wantFire && d.SkipReason != tt.wantSkip {
				t.Errorf("skip reason = %s, want %s", d.SkipReason, tt.wantSkip)
			}
		})
	}
}

func TestEvaluate_PremiumRuleInclusiveBoundary(t *testing.T) {
	e := New(zap.NewNop())

	// Unlike the volume rule, the premium comparator is >=: exactly at the
	// threshold fires. The asymmetry is an observed contract, not a bug to
	// normalize away.
	trade := btcTrade(optionsLeg(types.SideShort, 10.0, 1_000_000))
	d := e.Evaluate(testMessage(), trade, testRules())

	if !d.Fire {
		t.Fatal("premium exactly at threshold must fire")
	}
	if !d.HasReason(types.ReasonPremium) {
		t.Errorf("reasons = %v, want premium", d.Reasons)
	}
	if d.HasReason(types.ReasonVolume) {
		t.Errorf("volume must not trigger at volume 10, reasons = %v", d.Reasons)
	}
}

func TestEvaluate_MultiReasonMerge(t *testing.T) {
	e := New(zap.NewNop())

	// Crosses both thresholds: exactly one decision with both reasons.
	trade := btcTrade(optionsLeg(types.SideShort, 500.0, 2_500_000))
	d := e.Evaluate(testMessage(), trade, testRules())

	if !d.Fire {
		t.Fatal("expected decision to fire")
	}
	want := []types.AlertReason{types.ReasonVolume, types.ReasonPremium}
	if !reflect.DeepEqual(d.Reasons, want) {
		t.Errorf("reasons = %v, want %v", d.Reasons, want)
	}
}

func TestEvaluate_SkipReasons(t *testing.T) {
	e := New(zap.NewNop())

	perpLeg := types.Leg{
		Contract:   "BTC-PERPETUAL",
		Side:       types.SideLong,
		Volume:     25_000_000,
		Instrument: types.InstrumentPerpetual,
	}

	unknownAssetLeg := optionsLeg(types.SideLong, 1_000_000, 5_000_000)
	unknownAssetLeg.Contract = "SOL-27FEB26-200-C"

	tests := []struct {
		name     string
		trade    *types.ParsedTrade
		wantSkip types.SkipReason
	}{
		{"nil-trade-unparseable", nil, types.SkipUnparseable},
		{"zero-legs-unparseable", &types.ParsedTrade{Asset: types.AssetBTC, Exchange: "Deribit"}, types.SkipUnparseable},
		{
			"wrong-exchange",
			&types.ParsedTrade{Asset: types.AssetBTC, Exchange: "OKX", Legs: []types.Leg{optionsLeg(types.SideLong, 500, 2_000_000)}},
			types.SkipWrongExchange,
		},
		{
			"no-option-legs-regardless-of-size",
			btcTrade(perpLeg),
			types.SkipNoOptionLegs,
		},
		{
			"unknown-asset",
			&types.ParsedTrade{Asset: types.AssetUnknown, Exchange: "Deribit", Legs: []types.Leg{unknownAssetLeg}},
			types.SkipUnknownAsset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := e.Evaluate(testMessage(), tt.trade, testRules())
			if d.Fire {
				t.Error("decision must not fire")
			}
			if d.SkipReason != tt.wantSkip {
				t.Errorf("skip reason = %s, want %s", d.SkipReason, tt.wantSkip)
			}
		})
	}
}

func TestEvaluate_AggregationModes(t *testing.T) {
	e := New(zap.NewNop())

	// Three legs of 100 each: sum 300 crosses the 200 threshold, the largest
	// single leg does not. The mode is configuration and both behaviors are
	// covered on the same trade.
	trade := btcTrade(
		optionsLeg(types.SideLong, 100, 100_000),
		optionsLeg(types.SideLong, 100, 100_000),
		optionsLeg(types.SideLong, 100, 100_000),
	)

	sumRules := testRules()
	sumRules.Aggregation = AggregationSum
	d := e.Evaluate(testMessage(), trade, sumRules)
	if !d.Fire || !d.HasReason(types.ReasonVolume) {
		t.Errorf("sum mode: fire = %v reasons = %v, want volume fire", d.Fire, d.Reasons)
	}

	maxRules := testRules()
	maxRules.Aggregation = AggregationMaxLeg
	d = e.Evaluate(testMessage(), trade, maxRules)
	if d.Fire {
		t.Errorf("max-leg mode: fire = %v, want no fire at max leg 100", d.Fire)
	}
	if d.SkipReason != types.SkipBelowThreshold {
		t.Errorf("skip reason = %s, want below_threshold", d.SkipReason)
	}
}

func TestEvaluate_MissingPremiumSkipsPremiumRuleOnly(t *testing.T) {
	e := New(zap.NewNop())

	// No resolved reference price: premium metrics are nil, not zero, and
	// only the volume rule is evaluated.
	leg := optionsLeg(types.SideShort, 225.0, 5_000_000)
	leg.RefSpotUSD = nil
	leg.RefTier = types.RefTierNone

	d := e.Evaluate(testMessage(), btcTrade(leg), testRules())
	if !d.Fire {
		t.Fatal("volume rule must still fire")
	}
	if d.HasReason(types.ReasonPremium) {
		t.Error("premium rule must be skipped, not evaluated against zero")
	}
	if d.Metrics.NetPremiumUSD != nil {
		t.Error("net premium must stay nil when a ref price is missing")
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := New(zap.NewNop())
	trade := btcTrade(optionsLeg(types.SideShort, 500.0, 2_500_000))

	a := e.Evaluate(testMessage(), trade, testRules())
	b := e.Evaluate(testMessage(), trade, testRules())

	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different decisions:\n%+v\n%+v", a, b)
	}
	if a.ID == "" || a.ID != b.ID {
		t.Errorf("decision IDs differ: %s vs %s", a.ID, b.ID)
	}
}

func TestEvaluate_ETHThreshold(t *testing.T) {
	e := New(zap.NewNop())

	leg := optionsLeg(types.SideLong, 5100, 200_000)
	leg.Contract = "ETH-26JUN26-4000-C"
	trade := &types.ParsedTrade{Asset: types.AssetETH, Exchange: "Deribit", Legs: []types.Leg{leg}}

	d := e.Evaluate(testMessage(), trade, testRules())
	if !d.Fire || !d.HasReason(types.ReasonVolume) {
		t.Errorf("ETH 5100 > 5000 must fire volume, got fire=%v reasons=%v", d.Fire, d.Reasons)
	}
	if d.Thresholds.VolumeThreshold != 5000 {
		t.Errorf("threshold snapshot = %f, want 5000", d.Thresholds.VolumeThreshold)
	}
}
