// Package ir provides the value and schema types shared by every other
// package of recordselect.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This ensures IR remains the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - IRValue is sealed; record fields and condition operands only ever hold
//     IRNull, IRString, IRInt, IRFloat, IRBool, IRArray or IRObject
//   - Integral numbers always decode to IRInt, never IRFloat
//   - Compare orders values like SQLite orders json_extract results, so the
//     SQL and key-value resolvers agree on every ORDER BY
//   - Stored payloads use MarshalCanonical (sorted keys, NFC strings)
package ir
