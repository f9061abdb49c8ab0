package tradetypes

import (
	"github.com/tinylib/msgp/msgp"
)

// MarshalMsg implements msgp.Marshaler
func (z *Trade) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	o = msgp.AppendMapHeader(o, 7)
	o = msgp.AppendString(o, "trade_id")
	o = msgp.AppendString(o, z.TradeID)
	o = msgp.AppendString(o, "entity")
	o = msgp.AppendString(o, z.Entity)
	o = msgp.AppendString(o, "instrument_type")
	o = msgp.AppendString(o, z.InstrumentType)
	o = msgp.AppendString(o, "symbol")
	o = msgp.AppendString(o, z.Symbol)
	o = msgp.AppendString(o, "quantity")
	o = msgp.AppendFloat64(o, z.Quantity)
	o = msgp.AppendString(o, "price")
	if z.Price == nil {
		o = msgp.AppendNil(o)
	} else {
		o = msgp.AppendFloat64(o, *z.Price)
	}
	o = msgp.AppendString(o, "ts")
	o = msgp.AppendTime(o, z.TS)
	return
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *Trade) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var field []byte
	var nfields uint32
	nfields, bts, err = msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		err = msgp.WrapError(err)
		return
	}
	for nfields > 0 {
		nfields--
		field, bts, err = msgp.ReadMapKeyZC(bts)
		if err != nil {
			err = msgp.WrapError(err)
			return
		}
		switch msgp.UnsafeString(field) {
		case "trade_id":
			z.TradeID, bts, err = msgp.ReadStringBytes(bts)
			if err != nil {
				err = msgp.WrapError(err, "TradeID")
				return
			}
		case "entity":
			z.Entity, bts, err = msgp.ReadStringBytes(bts)
			if err != nil {
				err = msgp.WrapError(err, "Entity")
				return
			}
		case "instrument_type":
			z.InstrumentType, bts, err = msgp.ReadStringBytes(bts)
			if err != nil {
				err = msgp.WrapError(err, "InstrumentType")
				return
			}
		case "symbol":
			z.Symbol, bts, err = msgp.ReadStringBytes(bts)
			if err != nil {
				err = msgp.WrapError(err, "Symbol")
				return
			}
		case "quantity":
			z.Quantity, bts, err = msgp.ReadFloat64Bytes(bts)
			if err != nil {
				err = msgp.WrapError(err, "Quantity")
				return
			}
		case "price":
			if msgp.IsNil(bts) {
				bts, err = msgp.ReadNilBytes(bts)
				if err != nil {
					return
				}
				z.Price = nil
			} else {
				if z.Price == nil {
					z.Price = new(float64)
				}
				*z.Price, bts, err = msgp.ReadFloat64Bytes(bts)
				if err != nil {
					err = msgp.WrapError(err, "Price")
					return
				}
			}
		case "ts":
			z.TS, bts, err = msgp.ReadTimeBytes(bts)
			if err != nil {
				err = msgp.WrapError(err, "TS")
				return
			}
			z.TS = z.TS.UTC()
		default:
			bts, err = msgp.Skip(bts)
			if err != nil {
				err = msgp.WrapError(err)
				return
			}
		}
	}
	o = bts
	return
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message
func (z *Trade) Msgsize() (s int) {
	s = 1 + 9 + msgp.StringPrefixSize + len(z.TradeID) + 7 + msgp.StringPrefixSize + len(z.Entity) +
		16 + msgp.StringPrefixSize + len(z.InstrumentType) + 7 + msgp.StringPrefixSize + len(z.Symbol) +
		9 + msgp.Float64Size + 6
	if z.Price == nil {
		s += msgp.NilSize
	} else {
		s += msgp.Float64Size
	}
	s += 3 + msgp.TimeSize
	return
}
