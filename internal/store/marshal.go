package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/recordselect/internal/ir"
)

// marshalFields converts IRObject to canonical JSON TEXT for storage.
// Canonical encoding makes two writes of the same record byte-identical.
func marshalFields(fields ir.IRObject) (string, error) {
	if fields == nil {
		fields = ir.IRObject{}
	}
	data, err := ir.MarshalCanonical(fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return string(data), nil
}

// unmarshalFields parses stored JSON TEXT to IRObject.
// Uses ir.IRObject.UnmarshalJSON which keeps integers above 2^53 exact.
func unmarshalFields(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return obj, nil
}

// marshalRecordType converts a RecordType to JSON TEXT for the schema snapshot table.
func marshalRecordType(rt ir.RecordType) (string, error) {
	data, err := json.Marshal(rt)
	if err != nil {
		return "", fmt.Errorf("marshal record type: %w", err)
	}
	return string(data), nil
}

// unmarshalRecordType parses a schema snapshot.
func unmarshalRecordType(data string) (ir.RecordType, error) {
	var rt ir.RecordType
	if err := json.Unmarshal([]byte(data), &rt); err != nil {
		return ir.RecordType{}, fmt.Errorf("unmarshal record type: %w", err)
	}
	return rt, nil
}
