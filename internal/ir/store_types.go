package ir

// NOTE: These are storage-layer types shared by the record stores.
// Seq is assigned by the store and defines storage-natural order.

// Row is one stored record.
// ID is the storage key produced by KeyString.
type Row struct {
	Type   string   `json:"type"`
	ID     string   `json:"id"`
	Seq    int64    `json:"seq,omitempty"`
	Fields IRObject `json:"fields"`
}

// NewRow builds a Row for rt, deriving the storage key from the key field.
func NewRow(rt RecordType, fields IRObject) (Row, error) {
	id, err := rt.KeyOf(fields)
	if err != nil {
		return Row{}, err
	}
	return Row{Type: rt.Name, ID: id, Fields: fields}, nil
}
