package queryir

import "fmt"

// ConditionError reports a malformed condition or order entry.
// Index is the position of the entry in its input list, or -1 when the
// error came from a direct constructor call.
type ConditionError struct {
	Index   int
	Field   string
	Message string
}

func (e *ConditionError) Error() string {
	switch {
	case e.Index >= 0 && e.Field != "":
		return fmt.Sprintf("condition %d (%s): %s", e.Index, e.Field, e.Message)
	case e.Index >= 0:
		return fmt.Sprintf("condition %d: %s", e.Index, e.Message)
	case e.Field != "":
		return fmt.Sprintf("condition on %s: %s", e.Field, e.Message)
	default:
		return "condition: " + e.Message
	}
}

// at returns a copy of err positioned at index i.
func at(err error, i int) error {
	if ce, ok := err.(*ConditionError); ok {
		out := *ce
		out.Index = i
		return &out
	}
	return &ConditionError{Index: i, Message: err.Error()}
}
