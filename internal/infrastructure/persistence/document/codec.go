package document

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// money decodes any BSON numeric into a decimal. Null and missing values decode to zero.
type money struct {
	decimal.Decimal
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler
func (m *money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Double:
		m.Decimal = decimal.NewFromFloat(rv.Double())
	case bsontype.Int32:
		m.Decimal = decimal.NewFromInt32(rv.Int32())
	case bsontype.Int64:
		m.Decimal = decimal.NewFromInt(rv.Int64())
	case bsontype.Decimal128:
		d, err := decimal.NewFromString(rv.Decimal128().String())
		if err != nil {
			return fmt.Errorf("decode decimal128: %w", err)
		}
		m.Decimal = d
	case bsontype.Null, bsontype.Undefined:
		m.Decimal = decimal.Zero
	default:
		return fmt.Errorf("cannot decode %s into money", t)
	}
	return nil
}

// docID decodes ObjectID or string identifiers into their string form
type docID string

// UnmarshalBSONValue implements bson.ValueUnmarshaler
func (id *docID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.ObjectID:
		*id = docID(rv.ObjectID().Hex())
	case bsontype.String:
		*id = docID(rv.StringValue())
	case bsontype.Int32:
		*id = docID(fmt.Sprint(rv.Int32()))
	case bsontype.Int64:
		*id = docID(fmt.Sprint(rv.Int64()))
	case bsontype.Null, bsontype.Undefined:
		*id = ""
	default:
		return fmt.Errorf("cannot decode %s into id", t)
	}
	return nil
}

func (id docID) String() string { return string(id) }
