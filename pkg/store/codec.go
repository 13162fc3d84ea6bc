package store

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/schemaflow/pkg/diagram"
)

// Codec converts layout records to and from bytes.
type Codec interface {
	Name() string
	Marshal(rec diagram.LayoutRecord) ([]byte, error)
	Unmarshal(data []byte) (diagram.LayoutRecord, error)
}

// JSONCodec stores records as a JSON object of identity → {x, y}.
type JSONCodec struct{}

// Name returns "json".
func (JSONCodec) Name() string { return "json" }

// Marshal encodes rec as JSON.
func (JSONCodec) Marshal(rec diagram.LayoutRecord) ([]byte, error) {
	return json.Marshal(rec)
}

// Unmarshal decodes a JSON record.
func (JSONCodec) Unmarshal(data []byte) (diagram.LayoutRecord, error) {
	var rec diagram.LayoutRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = diagram.LayoutRecord{}
	}
	return rec, nil
}

// MsgpackCodec stores records as a msgpack map, which is smaller for large diagrams.
type MsgpackCodec struct{}

// Name returns "msgpack".
func (MsgpackCodec) Name() string { return "msgpack" }

// Marshal encodes rec as msgpack.
func (MsgpackCodec) Marshal(rec diagram.LayoutRecord) ([]byte, error) {
	if rec == nil {
		rec = diagram.LayoutRecord{}
	}
	return msgpack.Marshal(map[string]diagram.Position(rec))
}

// Unmarshal decodes a msgpack record.
func (MsgpackCodec) Unmarshal(data []byte) (diagram.LayoutRecord, error) {
	var m map[string]diagram.Position
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]diagram.Position{}
	}
	return diagram.LayoutRecord(m), nil
}

// CodecByName returns the codec registered under name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
