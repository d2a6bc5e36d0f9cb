package kvstore

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Key layout:
//
//	r/<type>/<seq:8 bytes big-endian>  -> canonical JSON {"fields":{...},"id":"<rid>"}
//	k/<type>/<rid>                     -> seq (8 bytes big-endian)
//	t/<type>                           -> record type snapshot (JSON)
//	m/seq                              -> clock high-water mark
//
// Big-endian seqs make a prefix scan over r/<type>/ return records in
// storage-natural order.
const (
	recordSpace = "r/"
	indexSpace  = "k/"
	typeSpace   = "t/"
)

var seqKey = []byte("m/seq")

func recordPrefix(typeName string) []byte {
	return []byte(recordSpace + typeName + "/")
}

func recordKey(typeName string, seq int64) []byte {
	return binary.BigEndian.AppendUint64(recordPrefix(typeName), uint64(seq))
}

func indexKey(typeName, id string) []byte {
	return []byte(indexSpace + typeName + "/" + id)
}

func typeKey(typeName string) []byte {
	return []byte(typeSpace + typeName)
}

// seqFromRecordKey decodes the seq suffix of a record key.
func seqFromRecordKey(key []byte) (int64, error) {
	if len(key) < 8 {
		return 0, fmt.Errorf("record key %q too short", key)
	}
	return int64(binary.BigEndian.Uint64(key[len(key)-8:])), nil
}

func encodeSeq(seq int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(seq))
}

func decodeSeq(data []byte) (int64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("seq value has %d bytes, want 8", len(data))
	}
	return int64(binary.BigEndian.Uint64(data)), nil
}

// prefixUpperBound returns the smallest key greater than every key with prefix.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// checkName rejects type names that would break the key layout.
func checkName(typeName string) error {
	if typeName == "" {
		return fmt.Errorf("record type is required")
	}
	if strings.ContainsRune(typeName, '/') {
		return fmt.Errorf("record type %q must not contain '/'", typeName)
	}
	return nil
}
