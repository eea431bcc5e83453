package model

import (
	"math"
	"time"
)

// HQOffset separates high-quality hover ids from normal ones.
const HQOffset = 1_000_000

// MaxRawInterest is the largest raw hover id that maps onto a uint32 item id.
const MaxRawInterest = HQOffset + math.MaxUint32

// Item is the game-data view of an item.
type Item struct {
	ID          uint32 `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Marketable  bool   `json:"marketable" yaml:"marketable"`
	VendorPrice uint32 `json:"vendor_price" yaml:"vendor_price"`
}

// InterestEvent is a normalized hover.
type InterestEvent struct {
	ItemID uint32
	HQ     bool
}

// NormalizeInterest splits a raw hover id into item id and quality.
// Raw 0, raw HQOffset and ids above MaxRawInterest yield an event with
// ItemID 0, which callers treat as nothing.
func NormalizeInterest(raw uint64) InterestEvent {
	if raw > MaxRawInterest {
		return InterestEvent{}
	}
	if raw >= HQOffset {
		return InterestEvent{ItemID: uint32(raw - HQOffset), HQ: true}
	}
	return InterestEvent{ItemID: uint32(raw)}
}

// PricedItem is the outcome of one evaluation.
type PricedItem struct {
	ItemID       uint32     `json:"item_id"`
	HQ           bool       `json:"hq"`
	Name         string     `json:"name"`
	Marketable   bool       `json:"marketable"`
	VendorPrice  uint32     `json:"vendor_price"`
	MarketPrice  *uint32    `json:"market_price,omitempty"`
	LastUpdated  int64      `json:"last_updated"`
	Result       ItemResult `json:"result"`
	Message      string     `json:"message"`
	OverlayColor string     `json:"overlay_color"`
	ChatColor    uint16     `json:"chat_color"`
	EvaluatedAt  time.Time  `json:"evaluated_at"`
}

// DisplayName appends the HQ marker to the item name.
func (p *PricedItem) DisplayName() string {
	if p.HQ {
		return p.Name + " (HQ)"
	}
	return p.Name
}
