package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in decoding the error occurred
type Phase string

const (
	PhaseHeader     Phase = "header"     // magic and version
	PhaseConstPool  Phase = "constpool"  // constant pool table
	PhaseField      Phase = "field"      // field_info records
	PhaseMethod     Phase = "method"     // method_info records
	PhaseAttribute  Phase = "attribute"  // attribute envelopes and sub-decoders
	PhaseResolve    Phase = "resolve"    // typed index resolution against the pool
	PhaseDescriptor Phase = "descriptor" // descriptor string parsing
	PhaseLoad       Phase = "load"       // class path loading
)

// Kind categorizes the error
type Kind string

const (
	KindInsufficientData        Kind = "insufficient_data"
	KindInvalidMagic            Kind = "invalid_magic"
	KindUnsupportedTag          Kind = "unsupported_tag"
	KindUnsupportedFrameType    Kind = "unsupported_frame_type"
	KindIndexOutOfBounds        Kind = "index_out_of_bounds"
	KindTypeMismatch            Kind = "type_mismatch"
	KindAttributeLengthMismatch Kind = "attribute_length_mismatch"
	KindInvalidDescriptor       Kind = "invalid_descriptor"
	KindNotFound                Kind = "not_found"
	KindLoadFailed              Kind = "load_failed"
)

// Error is the structured error type used throughout the decoder.
// Offset is the byte position in the input buffer where decoding stopped,
// or -1 when no position applies (index resolution, loading).
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Offset int
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if len(e.Path) > 0 {
		b.WriteString(" in ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is an *Error of the given kind, in any phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Offset sets the byte offset in the input buffer
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Path sets the structural path (e.g. "method[3]", "attribute[Code]")
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InsufficientData reports a read past the end of the input buffer.
func InsufficientData(phase Phase, offset, want, remaining int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInsufficientData,
		Offset: offset,
		Detail: fmt.Sprintf("need %d bytes, %d remain", want, remaining),
		Value:  want,
	}
}

// InvalidMagic reports a class file that does not start with 0xCAFEBABE.
func InvalidMagic(got uint32) *Error {
	return &Error{
		Phase:  PhaseHeader,
		Kind:   KindInvalidMagic,
		Offset: 0,
		Detail: fmt.Sprintf("magic 0x%08X, expected 0xCAFEBABE", got),
		Value:  got,
	}
}

// UnsupportedTag reports an unknown constant pool tag byte.
func UnsupportedTag(tag uint8, offset int) *Error {
	return &Error{
		Phase:  PhaseConstPool,
		Kind:   KindUnsupportedTag,
		Offset: offset,
		Detail: fmt.Sprintf("constant pool tag %d", tag),
		Value:  tag,
	}
}

// UnsupportedFrameType reports a stack map frame discriminant outside
// every range defined by the class file format.
func UnsupportedFrameType(frameType uint8, offset int) *Error {
	return &Error{
		Phase:  PhaseAttribute,
		Kind:   KindUnsupportedFrameType,
		Offset: offset,
		Detail: fmt.Sprintf("stack map frame type %d", frameType),
		Value:  frameType,
	}
}

// IndexOutOfBounds reports a constant pool index that is zero, past the
// end of the pool, or the unusable slot after a Long/Double entry.
func IndexOutOfBounds(index, size uint16) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindIndexOutOfBounds,
		Offset: -1,
		Detail: fmt.Sprintf("constant pool index %d (pool size %d)", index, size),
		Value:  index,
	}
}

// TypeMismatch reports a pool entry whose tag differs from the tag a
// typed index expected.
func TypeMismatch(index uint16, expected, actual string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindTypeMismatch,
		Offset: -1,
		Detail: fmt.Sprintf("constant pool index %d holds %s, expected %s", index, actual, expected),
		Value:  index,
	}
}

// AttributeLengthMismatch reports a specialized attribute sub-decoder
// that consumed a byte count different from the declared length.
func AttributeLengthMismatch(name string, declared uint32, consumed int) *Error {
	return &Error{
		Phase:  PhaseAttribute,
		Kind:   KindAttributeLengthMismatch,
		Offset: -1,
		Detail: fmt.Sprintf("%s attribute declared %d bytes, decoder consumed %d", name, declared, consumed),
		Path:   []string{name},
		Value:  consumed,
	}
}

// InvalidDescriptor reports a malformed field or method descriptor string.
func InvalidDescriptor(descriptor, detail string) *Error {
	return &Error{
		Phase:  PhaseDescriptor,
		Kind:   KindInvalidDescriptor,
		Offset: -1,
		Detail: fmt.Sprintf("%s in %q", detail, descriptor),
		Value:  descriptor,
	}
}

// NotFound reports a class that is not present on the search path.
func NotFound(className string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindNotFound,
		Offset: -1,
		Detail: fmt.Sprintf("class %q not found on class path", className),
		Value:  className,
	}
}

// Load wraps an I/O failure encountered while reading a class image.
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoadFailed,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}
