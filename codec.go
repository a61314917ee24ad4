package restclient

import (
	"encoding"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Encoder turns the body argument of a call into request body text.
type Encoder interface {
	Encode(value interface{}) (string, error)
}

// Decoder parses a raw response body into target, which is a pointer.
// Malformed input must produce an error, never a zero value.
type Decoder interface {
	Decode(raw string, target interface{}) error
}

// JSONCodec implements Encoder and Decoder with encoding/json.
// It is the default codec of the client.
type JSONCodec struct {
	// DisallowUnknownFields makes Decode fail on fields absent in target.
	DisallowUnknownFields bool
}

func (c *JSONCodec) Encode(value interface{}) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *JSONCodec) Decode(raw string, target interface{}) error {
	decoder := json.NewDecoder(strings.NewReader(raw))
	if c.DisallowUnknownFields {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

// TextCodec passes bodies as plain text. It handles strings, byte slices
// and types implementing encoding.TextMarshaler / TextUnmarshaler.
type TextCodec struct{}

func (TextCodec) Encode(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return toString(value)
}

func (TextCodec) Decode(raw string, target interface{}) error {
	switch t := target.(type) {
	case *string:
		*t = raw
	case *[]byte:
		*t = []byte(raw)
	case encoding.TextUnmarshaler:
		return t.UnmarshalText([]byte(raw))
	default:
		return fmt.Errorf("text codec can not decode into %T", target)
	}
	return nil
}

// ProtoJSONCodec encodes protobuf messages with protojson and everything
// else with Fallback (JSONCodec if nil).
type ProtoJSONCodec struct {
	Marshal   protojson.MarshalOptions
	Unmarshal protojson.UnmarshalOptions
	Fallback  interface {
		Encoder
		Decoder
	}
}

func (c *ProtoJSONCodec) fallback() interface {
	Encoder
	Decoder
} {
	if c.Fallback != nil {
		return c.Fallback
	}
	return &JSONCodec{}
}

func (c *ProtoJSONCodec) Encode(value interface{}) (string, error) {
	if msg, ok := value.(proto.Message); ok {
		data, err := c.Marshal.Marshal(msg)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return c.fallback().Encode(value)
}

func (c *ProtoJSONCodec) Decode(raw string, target interface{}) error {
	if msg, ok := target.(proto.Message); ok {
		return c.Unmarshal.Unmarshal([]byte(raw), msg)
	}
	if msg, ok := newProtoTarget(target); ok {
		return c.Unmarshal.Unmarshal([]byte(raw), msg)
	}
	return c.fallback().Decode(raw, target)
}

var protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()

// newProtoTarget handles **Msg targets, produced when the declared result
// type is *Msg. The inner pointer is allocated if needed.
func newProtoTarget(target interface{}) (proto.Message, bool) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Ptr {
		return nil, false
	}
	elem := v.Elem()
	if !elem.Type().Implements(protoMessageType) {
		return nil, false
	}
	if elem.IsNil() {
		elem.Set(reflect.New(elem.Type().Elem()))
	}
	return elem.Interface().(proto.Message), true
}

// CSVDecoder decodes a text/csv body into *[][]string, header row included.
type CSVDecoder struct {
	Comma rune
}

func (d CSVDecoder) Decode(raw string, target interface{}) error {
	rows, ok := target.(*[][]string)
	if !ok {
		return fmt.Errorf("csv decoder can not decode into %T", target)
	}
	reader := csv.NewReader(strings.NewReader(raw))
	if d.Comma != 0 {
		reader.Comma = d.Comma
	}
	records, err := reader.ReadAll()
	if err != nil {
		return err
	}
	*rows = records
	return nil
}
