package dom

import "fmt"

// EditErrorKind is the error taxonomy for Cursor/SyncCursor editing
// operations (spec section 7, "Editing errors"). Navigation never returns
// an error; a null or tombstoned cursor's navigation methods fall through
// to further null/zero results instead.
type EditErrorKind int

const (
	// EditNoMemory mirrors sax.ErrNoMemory at the editing surface: an
	// allocation could not be satisfied.
	EditNoMemory EditErrorKind = iota
	// EditInvalidName is returned when set_name or append_child_element is
	// given a string that is not a well-formed XML Name.
	EditInvalidName
	// EditTreeCycle is returned when an edit would make a node its own
	// ancestor (e.g. inserting an element as a child of itself or of one
	// of its own descendants).
	EditTreeCycle
	// EditDetached is returned for an edit attempted on a null cursor or a
	// tombstoned node id, for an edit that needs a parent (inserting or
	// reattaching a sibling, detaching) on a node that has none, and for a
	// reattach across two Documents. Edits on a detached but not dropped
	// subtree succeed.
	EditDetached
	// EditMultipleRoots is returned when an edit would give the document a
	// second element child (spec invariant 7: "the document has exactly one
	// element child under the root"), e.g. appending, inserting, or
	// reattaching an element as a sibling of the existing root element.
	EditMultipleRoots
)

func (k EditErrorKind) String() string {
	switch k {
	case EditNoMemory:
		return "NoMemory"
	case EditInvalidName:
		return "InvalidName"
	case EditTreeCycle:
		return "TreeCycle"
	case EditDetached:
		return "Detached"
	case EditMultipleRoots:
		return "MultipleRoots"
	default:
		return "Unknown"
	}
}

// EditError is returned by Cursor/SyncCursor editing methods. It is never
// returned from a navigation method.
type EditError struct {
	Kind    EditErrorKind
	Message string
}

func (e *EditError) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func editErr(kind EditErrorKind, format string, args ...any) *EditError {
	return &EditError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
