// Package descriptor parses Java field and method descriptor strings,
// such as "I", "[Ljava/lang/String;" and "(ILjava/lang/Object;)V".
//
// The class file decoder captures descriptors verbatim; this package is
// the opt-in structured view for consumers that need one.
package descriptor

import (
	"strings"

	"github.com/wippyai/jclass/errors"
)

// Kind identifies a descriptor type.
type Kind uint8

const (
	KindByte Kind = iota
	KindChar
	KindDouble
	KindFloat
	KindInt
	KindLong
	KindShort
	KindBoolean
	KindObject
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindByte:
		return "byte"
	case KindChar:
		return "char"
	case KindDouble:
		return "double"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindShort:
		return "short"
	case KindBoolean:
		return "boolean"
	case KindObject:
		return "object"
	case KindVoid:
		return "void"
	default:
		return "unknown"
	}
}

// Type is one parsed field type. ClassName is set only for KindObject
// and uses the internal slashed form ("java/lang/String"). Dimensions is
// the array depth, zero for scalars.
type Type struct {
	Kind       Kind
	ClassName  string
	Dimensions int
}

// String renders the type in Java source form, e.g. "int[]" or
// "java.lang.String".
func (t Type) String() string {
	var b strings.Builder
	if t.Kind == KindObject {
		b.WriteString(strings.ReplaceAll(t.ClassName, "/", "."))
	} else {
		b.WriteString(t.Kind.String())
	}
	for i := 0; i < t.Dimensions; i++ {
		b.WriteString("[]")
	}
	return b.String()
}

// Method is a parsed method descriptor.
type Method struct {
	Params []Type
	Return Type
}

// String renders the signature in Java source form, e.g.
// "int (java.lang.String, long)".
func (m Method) String() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.String()
	}
	return m.Return.String() + " (" + strings.Join(params, ", ") + ")"
}

// ParseField parses a field descriptor. The whole string must be
// consumed; trailing characters are an error.
func ParseField(s string) (Type, error) {
	t, rest, err := parseType(s, s, false)
	if err != nil {
		return Type{}, err
	}
	if rest != "" {
		return Type{}, errors.InvalidDescriptor(s, "trailing characters")
	}
	return t, nil
}

// ParseMethod parses a method descriptor of the form "(params)return".
// Void is legal only as the return type.
func ParseMethod(s string) (Method, error) {
	if !strings.HasPrefix(s, "(") {
		return Method{}, errors.InvalidDescriptor(s, "missing parameter list")
	}
	rest := s[1:]

	var m Method
	for !strings.HasPrefix(rest, ")") {
		if rest == "" {
			return Method{}, errors.InvalidDescriptor(s, "unterminated parameter list")
		}
		var (
			t   Type
			err error
		)
		t, rest, err = parseType(rest, s, false)
		if err != nil {
			return Method{}, err
		}
		m.Params = append(m.Params, t)
	}
	rest = rest[1:]

	ret, rest, err := parseType(rest, s, true)
	if err != nil {
		return Method{}, err
	}
	if rest != "" {
		return Method{}, errors.InvalidDescriptor(s, "trailing characters")
	}
	m.Return = ret
	return m, nil
}

// parseType consumes one type from s. full is the original descriptor,
// used for error reporting; allowVoid permits the 'V' return type.
func parseType(s, full string, allowVoid bool) (Type, string, error) {
	var t Type
	for strings.HasPrefix(s, "[") {
		t.Dimensions++
		s = s[1:]
	}
	if s == "" {
		return Type{}, "", errors.InvalidDescriptor(full, "truncated type")
	}

	switch s[0] {
	case 'B':
		t.Kind = KindByte
	case 'C':
		t.Kind = KindChar
	case 'D':
		t.Kind = KindDouble
	case 'F':
		t.Kind = KindFloat
	case 'I':
		t.Kind = KindInt
	case 'J':
		t.Kind = KindLong
	case 'S':
		t.Kind = KindShort
	case 'Z':
		t.Kind = KindBoolean
	case 'V':
		if !allowVoid || t.Dimensions > 0 {
			return Type{}, "", errors.InvalidDescriptor(full, "void outside return position")
		}
		t.Kind = KindVoid
	case 'L':
		end := strings.IndexByte(s, ';')
		if end < 0 {
			return Type{}, "", errors.InvalidDescriptor(full, "unterminated class name")
		}
		if end == 1 {
			return Type{}, "", errors.InvalidDescriptor(full, "empty class name")
		}
		t.Kind = KindObject
		t.ClassName = s[1:end]
		return t, s[end+1:], nil
	default:
		return Type{}, "", errors.InvalidDescriptor(full, "unknown type character "+string(s[0]))
	}
	return t, s[1:], nil
}
