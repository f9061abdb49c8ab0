package generator

import (
	"strings"
	"sync"
	"testing"

	"trade-producer/pkg/common_errors"
	"trade-producer/pkg/recordloader"
	"trade-producer/pkg/tradetypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestTradeGeneratorProducesValidTrades(t *testing.T) {
	g, err := NewTradeGenerator(tradetypes.JSON, 3)
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		tr := g.NextTrade()
		assert.NotEmpty(t, tr.TradeID)
		assert.Contains(t, []string{"zurich", "new_york"}, tr.Entity)
		require.NotNil(t, tr.Price)
		switch tr.InstrumentType {
		case "stock":
			base, ok := stockBase[tr.Symbol]
			require.True(t, ok, tr.Symbol)
			assert.InDelta(t, base, *tr.Price, base*0.015+0.005)
			q := tr.Quantity
			if q < 0 {
				q = -q
			}
			assert.GreaterOrEqual(t, q, 1.0)
			assert.LessOrEqual(t, q, 50.0)
		case "crypto":
			base, ok := cryptoBase[tr.Symbol]
			require.True(t, ok, tr.Symbol)
			assert.InDelta(t, base, *tr.Price, base*0.025+0.005)
			q := tr.Quantity
			if q < 0 {
				q = -q
			}
			assert.GreaterOrEqual(t, q, 0.001)
			assert.LessOrEqual(t, q, 0.5)
		default:
			t.Fatalf("unexpected instrument type %q", tr.InstrumentType)
		}
	}
}

func TestTradeGeneratorPayloadDecodes(t *testing.T) {
	for _, f := range []tradetypes.SerdeFormat{tradetypes.JSON, tradetypes.MSGP} {
		g, err := NewTradeGenerator(f, 7)
		require.NoError(t, err)
		serde, err := tradetypes.GetTradeSerdeG(f)
		require.NoError(t, err)
		tr, err := serde.Decode([]byte(g.Generate()))
		require.NoError(t, err)
		assert.NotEmpty(t, tr.Symbol)
	}
}

func TestTradeGeneratorConcurrentUse(t *testing.T) {
	g, err := NewTradeGenerator(tradetypes.JSON, 0)
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NotEmpty(t, g.Generate())
			}
		}()
	}
	wg.Wait()
}

func TestRecordReplayCycles(t *testing.T) {
	idx, err := recordloader.Load(strings.NewReader("{\"id\":\"b\",\"n\":1}\n{\"id\":\"a\",\"n\":2}\n{\"id\":\"b\",\"n\":3}\n"))
	require.NoError(t, err)
	r, err := NewRecordReplay(idx)
	require.NoError(t, err)

	got := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		got = append(got, r.Generate())
	}
	assert.Equal(t, []string{
		`{"id":"a","n":2}`,
		`{"id":"b","n":1}`,
		`{"id":"b","n":3}`,
		`{"id":"a","n":2}`,
	}, got)
}

func TestRecordReplayRejectsEmptyIndex(t *testing.T) {
	_, err := NewRecordReplay(recordloader.Index{})
	assert.True(t, xerrors.Is(err, common_errors.ErrEmptyIndex))
}

func TestFuncAdapter(t *testing.T) {
	var g Generator = Func(func() string { return "x" })
	assert.Equal(t, "x", g.Generate())
}
