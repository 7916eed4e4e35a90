package dom

// ElementString extracts a string from an Evaluate result, the dom package's
// counterpart to the teacher's ElementString in utils.go: for node-set
// results it returns the text content of the first node, for a string
// result it returns the string directly, and "" for anything else.
func ElementString(input any) string {
	switch v := input.(type) {
	case []any:
		if len(v) == 0 {
			return ""
		}
		switch elem := v[0].(type) {
		case Cursor:
			return elem.TextContent()
		case *Attr:
			return elem.Value
		default:
			return ""
		}
	case string:
		return v
	default:
		return ""
	}
}
