// Package activerecord provides a fluent select builder over declared
// record types.
//
// A Select is bound to one record type. Where and Order append to its
// state, Limit overwrites it, and the terminal calls Get, All, First and
// Last hand a frozen copy of the state to a Resolver:
//
//	q, err := activerecord.NewSelect("Post", registry, db)
//	q.Where([]map[string]any{{"field": "status", "value": "published"}})
//	q.Order(queryir.NewOrderMap("created_at", "desc"))
//	q.Limit(2)
//	posts, err := q.Get(ctx)
//
// Get never fails on zero rows; First and Last return an EMPTY_RESULT
// QueryError instead. Resolver failures surface as RESOLUTION_ERROR with
// the cause text only.
package activerecord
