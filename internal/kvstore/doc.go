// Package kvstore is a pebble-backed record store.
//
// It resolves the same queryir.Select values as the SQLite store but
// evaluates them in process: records of one type are prefix-scanned in seq
// order, filtered with queryir.Match and sorted with queryir.CompareRecords.
// Both stores return identical results for identical data.
//
// A new record is stamped with the next value of the store's Clock.
// Replacing a record keeps its seq, and the clock's high-water mark is
// persisted with every write batch so seqs are never reused after reopen.
package kvstore
