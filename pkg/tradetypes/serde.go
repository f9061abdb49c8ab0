package tradetypes

import (
	"encoding/json"
	"strings"

	"trade-producer/pkg/common_errors"
)

type SerdeFormat uint8

const (
	JSON SerdeFormat = 0
	MSGP SerdeFormat = 1
)

func (f SerdeFormat) String() string {
	switch f {
	case JSON:
		return "json"
	case MSGP:
		return "msgp"
	default:
		return "unknown"
	}
}

func ParseSerdeFormat(s string) (SerdeFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "msgp":
		return MSGP, nil
	default:
		return JSON, common_errors.ErrUnrecognizedSerdeFormat
	}
}

type SerdeG[V any] interface {
	Encode(value V) ([]byte, error)
	Decode(data []byte) (V, error)
}

type TradeJSONSerdeG struct{}

var _ = SerdeG[Trade](TradeJSONSerdeG{})

func (s TradeJSONSerdeG) Encode(value Trade) ([]byte, error) {
	return json.Marshal(value)
}

func (s TradeJSONSerdeG) Decode(data []byte) (Trade, error) {
	v := Trade{}
	if err := json.Unmarshal(data, &v); err != nil {
		return Trade{}, err
	}
	return v, nil
}

type TradeMsgpSerdeG struct{}

var _ = SerdeG[Trade](TradeMsgpSerdeG{})

func (s TradeMsgpSerdeG) Encode(value Trade) ([]byte, error) {
	return value.MarshalMsg(nil)
}

func (s TradeMsgpSerdeG) Decode(data []byte) (Trade, error) {
	v := Trade{}
	if _, err := v.UnmarshalMsg(data); err != nil {
		return Trade{}, err
	}
	return v, nil
}

func GetTradeSerdeG(serdeFormat SerdeFormat) (SerdeG[Trade], error) {
	switch serdeFormat {
	case JSON:
		return TradeJSONSerdeG{}, nil
	case MSGP:
		return TradeMsgpSerdeG{}, nil
	default:
		return nil, common_errors.ErrUnrecognizedSerdeFormat
	}
}
