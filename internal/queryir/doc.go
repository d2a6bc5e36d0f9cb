// Package queryir provides the query intermediate representation shared by
// the select builder and every resolver backend.
//
// QueryIR is the abstraction boundary between the loose caller-facing input
// (lists of condition maps, order maps) and the backends that execute a
// query (SQL via querysql, in-memory evaluation for the key-value store).
//
// ARCHITECTURE:
//
//	[where maps / order map] → ParseWhere / ParseOrder → [Select] → [SQL Backend]
//	                                                              → [KV Backend]
//
// VALIDATED CONSTRUCTION:
//
// Condition and OrderClause have unexported fields. The only way to obtain a
// non-zero value is NewCondition / NewOrderClause (or the parsers, which call
// them), so a backend never sees an unknown operator, a missing operand or an
// operand of the wrong shape.
//
// SEMANTICS SHARED BY ALL BACKENDS:
//
//   - A missing field reads as null; null satisfies only is-null
//   - AND binds tighter than OR; the first condition's conjunction is ignored
//   - like uses % and _ wildcards and folds ASCII case only
//   - Ordering follows ir.Compare; the storage-natural order breaks ties
//
// Match and CompareRecords implement these rules in memory. The SQL compiler
// produces statements that SQLite evaluates the same way.
package queryir
