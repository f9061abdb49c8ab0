package tradetypes

import "time"

type Entity string

const (
	EntityZurich  Entity = "zurich"
	EntityNewYork Entity = "new_york"
)

type InstrumentType string

const (
	InstrumentStock  InstrumentType = "stock"
	InstrumentCrypto InstrumentType = "crypto"
)

var (
	Entities        = []Entity{EntityZurich, EntityNewYork}
	InstrumentTypes = []InstrumentType{InstrumentStock, InstrumentCrypto}
)

// Trade is one synthetic fill. Quantity is positive for a buy and negative
// for a sell.
type Trade struct {
	TradeID        string    `json:"trade_id"`
	Entity         string    `json:"entity"`
	InstrumentType string    `json:"instrument_type"`
	Symbol         string    `json:"symbol"`
	Quantity       float64   `json:"quantity"`
	Price          *float64  `json:"price,omitempty"`
	TS             time.Time `json:"ts"`
}
