package models

// Stock represents one user-owned stock position.
//
// BuyPrice is denominated in the display currency (INR). CurrentPrice is the
// most recently known market price; nil means unknown, in which case the
// position contributes zero performance delta to portfolio metrics.
//
// JSON keys are camelCase to match the StockSphere wire contract consumed by
// the frontend and the client facade.
type Stock struct {
	Base
	UserID       uint     `gorm:"index;not null" json:"-"`
	Name         string   `gorm:"not null" json:"name"`
	Ticker       string   `gorm:"not null" json:"ticker"`
	Quantity     float64  `gorm:"not null" json:"quantity"`
	BuyPrice     float64  `gorm:"not null" json:"buyPrice"`
	CurrentPrice *float64 `json:"currentPrice,omitempty"`
}
