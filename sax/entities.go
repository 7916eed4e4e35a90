package sax

import (
	"strconv"
	"strings"

	"github.com/wilkmaciej/ikslite/utf8scan"
)

// predefinedEntities are the only named entities this module accepts,
// per spec section 4.3: named entities other than these five are an error.
var predefinedEntities = map[string]rune{
	"lt":   '<',
	"gt":   '>',
	"amp":  '&',
	"apos": '\'',
	"quot": '"',
}

// expandText expands character references and the five predefined named
// entities in a run of character data, normalizing line endings (#xD#xA and
// bare #xD both become #xA) in the literal (non-reference) text.
func expandText(raw []byte, pos Position) (string, *ParseError) {
	return expand(raw, pos, false)
}

// expandAttributeValue expands references in an attribute value the same
// way as expandText, and additionally replaces literal (non-reference)
// #x9 and #xA with #x20 after line-ending normalization, per spec section
// 4.3's attribute whitespace normalization rule. Characters produced by a
// reference are never subject to this replacement.
func expandAttributeValue(raw []byte, pos Position) (string, *ParseError) {
	return expand(raw, pos, true)
}

func expand(raw []byte, pos Position, isAttr bool) (string, *ParseError) {
	var sb strings.Builder
	sb.Grow(len(raw))
	p := pos
	i := 0
	for i < len(raw) {
		switch raw[i] {
		case '<':
			return "", newErr(ErrBadSyntax, p, "'<' is not allowed in %s", contentKind(isAttr))
		case '\r':
			// #xD#xA and bare #xD both normalize to #xA first; attribute
			// values then fold that #xA into #x20 like any other literal
			// whitespace character.
			if isAttr {
				sb.WriteByte(0x20)
			} else {
				sb.WriteByte(0x0A)
			}
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i += 2
			} else {
				i++
			}
			p.Line++
			p.Column = 1
		case '\n':
			if isAttr {
				sb.WriteByte(0x20)
			} else {
				sb.WriteByte(0x0A)
			}
			i++
			p.Line++
			p.Column = 1
		case '\t':
			if isAttr {
				sb.WriteByte(0x20)
			} else {
				sb.WriteByte(0x09)
			}
			i++
			p.Column++
		case '&':
			ref, n, perr := readReference(raw[i:], p)
			if perr != nil {
				return "", perr
			}
			sb.WriteRune(ref)
			i += n
			p.Column += n
		default:
			if !isAttr && i+2 < len(raw) && raw[i] == ']' && raw[i+1] == ']' && raw[i+2] == '>' {
				return "", newErr(ErrBadSyntax, p, "']]>' is not allowed in character data outside a CDATA section")
			}
			r, size, status := utf8scan.DecodeRune(raw[i:])
			switch status {
			case utf8scan.Invalid:
				return "", newErr(ErrBadUtf8, p, "malformed UTF-8 sequence")
			case utf8scan.Incomplete:
				return "", newErr(ErrBadUtf8, p, "truncated UTF-8 sequence")
			}
			if !utf8scan.IsChar(r) {
				return "", newErr(ErrBadChar, p, "code point U+%04X is not a legal XML character", r)
			}
			sb.WriteByte(raw[i])
			for k := 1; k < size; k++ {
				sb.WriteByte(raw[i+k])
			}
			i += size
			p.Column += size
		}
	}
	return sb.String(), nil
}

func contentKind(isAttr bool) string {
	if isAttr {
		return "an attribute value"
	}
	return "character data"
}

// readReference parses one "&...;" reference at the start of b and returns
// the rune it denotes plus the total number of bytes consumed (including
// '&' and ';').
func readReference(b []byte, pos Position) (rune, int, *ParseError) {
	semi := -1
	for i := 1; i < len(b) && i < 32; i++ {
		if b[i] == ';' {
			semi = i
			break
		}
	}
	if semi < 0 {
		return 0, 0, newErr(ErrBadEntity, pos, "unterminated entity or character reference")
	}
	body := string(b[1:semi])
	if body == "" {
		return 0, 0, newErr(ErrBadEntity, pos, "empty reference")
	}
	if body[0] == '#' {
		var v uint64
		var err error
		if len(body) > 1 && (body[1] == 'x' || body[1] == 'X') {
			v, err = strconv.ParseUint(body[2:], 16, 32)
		} else {
			v, err = strconv.ParseUint(body[1:], 10, 32)
		}
		if err != nil {
			return 0, 0, newErr(ErrBadEntity, pos, "malformed character reference %q", body)
		}
		r := rune(v)
		if !utf8scan.IsChar(r) {
			return 0, 0, newErr(ErrBadChar, pos, "character reference U+%04X is not a legal XML character", r)
		}
		return r, semi + 1, nil
	}
	r, ok := predefinedEntities[body]
	if !ok {
		return 0, 0, newErr(ErrBadEntity, pos, "undefined entity %q", body)
	}
	return r, semi + 1, nil
}
