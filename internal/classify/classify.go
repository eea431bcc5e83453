// Package classify turns a market snapshot into an item verdict.
package classify

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/price-check/internal/model"
)

// secondsPerDay converts snapshot age into days.
const secondsPerDay = 24 * 60 * 60

// Settings are the configuration values the classifier reads.
type Settings struct {
	PriceMode     int
	MaxUploadDays int
	MinPrice      int
}

// Input is everything needed to classify one marketable item.
type Input struct {
	VendorPrice uint32
	HQ          bool
	Snapshot    *model.MarketSnapshot
	Settings    Settings
	Now         time.Time
}

// Output is the verdict. MarketPrice is set once a price was selected.
type Output struct {
	Result      model.ItemResult
	MarketPrice *uint32
	LastUpdated int64
}

// Classify applies the market checks in order and stops at the first
// failing one.
func Classify(in Input) Output {
	snap := in.Snapshot
	if snap == nil {
		return Output{Result: model.ResultFailedToGetData}
	}

	if !snap.HasAveragePrice() && !snap.HasUploadTime() {
		zap.L().Debug("classify: no market data")
		return Output{Result: model.ResultNoDataAvailable}
	}

	selected := SelectPrice(snap, in.Settings.PriceMode, in.HQ)
	if selected == nil || *selected == 0 {
		zap.L().Debug("classify: no price for mode", zap.Int("price_mode", in.Settings.PriceMode), zap.Bool("hq", in.HQ))
		return Output{Result: model.ResultNoDataAvailable}
	}

	price := roundPrice(*selected)
	out := Output{MarketPrice: &price, LastUpdated: snap.LastCheckTime}
	zap.L().Debug("classify: market price", zap.Uint32("market_price", price))

	ageDays := (in.Now.Unix() - out.LastUpdated) / secondsPerDay
	zap.L().Debug("classify: max days check",
		zap.Int64("age_days", ageDays),
		zap.Int("max_upload_days", in.Settings.MaxUploadDays),
	)
	if in.Settings.MaxUploadDays > 0 && ageDays >= int64(in.Settings.MaxUploadDays) {
		out.Result = model.ResultNoRecentDataAvailable
		return out
	}

	zap.L().Debug("classify: vendor check", zap.Uint32("vendor_price", in.VendorPrice), zap.Uint32("market_price", price))
	if in.VendorPrice >= price {
		out.Result = model.ResultBelowVendor
		return out
	}

	zap.L().Debug("classify: min check", zap.Uint32("market_price", price), zap.Int("min_price", in.Settings.MinPrice))
	if int64(price) < int64(in.Settings.MinPrice) {
		out.Result = model.ResultBelowMinimum
		return out
	}

	out.Result = model.ResultSuccess
	return out
}

// SelectPrice returns the snapshot field for the price mode and quality.
// Unknown modes select nothing.
func SelectPrice(snap *model.MarketSnapshot, priceMode int, hq bool) *float64 {
	pick := func(nq, hqv *float64) *float64 {
		if hq {
			return hqv
		}
		return nq
	}
	switch priceMode {
	case model.AveragePrice:
		return pick(snap.AveragePriceNQ, snap.AveragePriceHQ)
	case model.CurrentAveragePrice:
		return pick(snap.CurrentAveragePriceNQ, snap.CurrentAveragePriceHQ)
	case model.MinimumPrice:
		return pick(snap.MinimumPriceNQ, snap.MinimumPriceHQ)
	case model.MaximumPrice:
		return pick(snap.MaximumPriceNQ, snap.MaximumPriceHQ)
	case model.CurrentMinimumPrice:
		return snap.CurrentMinimumPrice
	default:
		return nil
	}
}

func roundPrice(v float64) uint32 {
	r := math.Round(v)
	switch {
	case r <= 0:
		return 0
	case r >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(r)
	}
}
