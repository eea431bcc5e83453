package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeInterest(t *testing.T) {
	tests := []struct {
		raw  uint64
		want InterestEvent
	}{
		{0, InterestEvent{}},
		{1, InterestEvent{ItemID: 1}},
		{5057, InterestEvent{ItemID: 5057}},
		{HQOffset - 1, InterestEvent{ItemID: 999_999}},
		{HQOffset, InterestEvent{ItemID: 0, HQ: true}},
		{HQOffset + 1, InterestEvent{ItemID: 1, HQ: true}},
		{1_005_057, InterestEvent{ItemID: 5057, HQ: true}},
		{MaxRawInterest, InterestEvent{ItemID: math.MaxUint32, HQ: true}},
		{MaxRawInterest + 1, InterestEvent{}},
		{math.MaxUint64, InterestEvent{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeInterest(tt.raw), "raw %d", tt.raw)
	}
}

func TestPricedItem_DisplayName(t *testing.T) {
	p := PricedItem{Name: "Iron Ore"}
	assert.Equal(t, "Iron Ore", p.DisplayName())
	p.HQ = true
	assert.Equal(t, "Iron Ore (HQ)", p.DisplayName())
}

func TestMarketSnapshot_Presence(t *testing.T) {
	var s MarketSnapshot
	assert.False(t, s.HasAveragePrice())
	assert.False(t, s.HasUploadTime())

	zero := 0.0
	s.LastUploadTime = &zero
	assert.False(t, s.HasUploadTime())

	v := 10.0
	s.AveragePriceHQ = &v
	s.LastUploadTime = &v
	assert.True(t, s.HasAveragePrice())
	assert.True(t, s.HasUploadTime())
}
