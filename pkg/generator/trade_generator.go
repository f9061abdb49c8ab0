package generator

import (
	"math"
	"time"

	"trade-producer/pkg/tradetypes"
	"trade-producer/pkg/utils/syncutils"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	stocks    = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "NVDA", "NFLX"}
	stockBase = map[string]float64{"AAPL": 190, "MSFT": 420, "GOOGL": 145, "AMZN": 180, "TSLA": 220, "NVDA": 800, "NFLX": 550}

	cryptos    = []string{"BTC", "ETH", "SOL", "ADA", "XRP"}
	cryptoBase = map[string]float64{"BTC": 60000, "ETH": 3200, "SOL": 150, "ADA": 0.45, "XRP": 0.6}
)

// TradeGenerator emits encoded synthetic trades.
type TradeGenerator struct {
	mu    syncutils.Mutex
	faker *gofakeit.Faker
	serde tradetypes.SerdeG[tradetypes.Trade]
	now   func() time.Time
}

var _ = Generator(&TradeGenerator{})

// NewTradeGenerator seeds the generator; a zero seed picks a random one.
func NewTradeGenerator(serdeFormat tradetypes.SerdeFormat, seed uint64) (*TradeGenerator, error) {
	serde, err := tradetypes.GetTradeSerdeG(serdeFormat)
	if err != nil {
		return nil, err
	}
	return &TradeGenerator{
		faker: gofakeit.New(seed),
		serde: serde,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

func round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}

// NextTrade draws a stock trade of 1-50 shares priced within 1.5% of its
// base, or a crypto trade of 0.001-0.5 units within 2.5% of its base. Half
// of all trades are sells.
func (g *TradeGenerator) NextTrade() tradetypes.Trade {
	g.mu.Lock()
	defer g.mu.Unlock()

	ent := tradetypes.Entities[g.faker.IntRange(0, len(tradetypes.Entities)-1)]
	itype := tradetypes.InstrumentTypes[g.faker.IntRange(0, len(tradetypes.InstrumentTypes)-1)]

	var (
		sym string
		qty float64
		px  float64
	)
	if itype == tradetypes.InstrumentStock {
		sym = g.faker.RandomString(stocks)
		px = round(stockBase[sym]*(1+(g.faker.Float64()-0.5)*0.03), 2)
		qty = float64(g.faker.IntRange(1, 50))
	} else {
		sym = g.faker.RandomString(cryptos)
		px = round(cryptoBase[sym]*(1+(g.faker.Float64()-0.5)*0.05), 2)
		qty = round(g.faker.Float64Range(0.001, 0.5), 4)
	}
	if g.faker.Bool() {
		qty = -qty
	}

	price := px
	return tradetypes.Trade{
		TradeID:        uuid.NewString(),
		Entity:         string(ent),
		InstrumentType: string(itype),
		Symbol:         sym,
		Quantity:       qty,
		Price:          &price,
		TS:             g.now(),
	}
}

func (g *TradeGenerator) Generate() string {
	t := g.NextTrade()
	encoded, err := g.serde.Encode(t)
	if err != nil {
		// unreachable for a well-formed Trade
		log.Error().Err(err).Str("trade_id", t.TradeID).Msg("trade serialization failed")
		return t.TradeID
	}
	return string(encoded)
}
