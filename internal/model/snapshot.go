package model

// MarketSnapshot is a point-in-time set of market statistics for one
// (world, item) pair. Nil fields mean the market source had no data.
type MarketSnapshot struct {
	WorldID               uint32   `json:"world_id"`
	ItemID                uint32   `json:"item_id"`
	LastUploadTime        *float64 `json:"last_upload_time,omitempty"` // remote, unix ms
	AveragePriceNQ        *float64 `json:"average_price_nq,omitempty"`
	AveragePriceHQ        *float64 `json:"average_price_hq,omitempty"`
	CurrentAveragePriceNQ *float64 `json:"current_average_price_nq,omitempty"`
	CurrentAveragePriceHQ *float64 `json:"current_average_price_hq,omitempty"`
	MinimumPriceNQ        *float64 `json:"minimum_price_nq,omitempty"`
	MinimumPriceHQ        *float64 `json:"minimum_price_hq,omitempty"`
	MaximumPriceNQ        *float64 `json:"maximum_price_nq,omitempty"`
	MaximumPriceHQ        *float64 `json:"maximum_price_hq,omitempty"`
	CurrentMinimumPrice   *float64 `json:"current_minimum_price,omitempty"`
	LastCheckTime         int64    `json:"last_check_time"` // local fetch, unix seconds
}

// HasAveragePrice reports whether any historical average is present.
func (s *MarketSnapshot) HasAveragePrice() bool {
	return s.AveragePriceNQ != nil || s.AveragePriceHQ != nil
}

// HasUploadTime reports whether the remote upload time is present and non-zero.
func (s *MarketSnapshot) HasUploadTime() bool {
	return s.LastUploadTime != nil && *s.LastUploadTime != 0
}
