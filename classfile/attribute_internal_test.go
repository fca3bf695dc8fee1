package classfile

import (
	"bytes"
	"testing"

	"github.com/wippyai/jclass/classfile/internal/binary"
	"github.com/wippyai/jclass/errors"
)

// attrPool builds the minimal pool used by attribute tests:
// [1] Utf8 name1, [2] Utf8 name2, ...
func attrPool(t *testing.T, names ...string) *ConstantPool {
	t.Helper()
	var data []byte
	data = append(data, byte((len(names)+1)>>8), byte(len(names)+1))
	for _, name := range names {
		data = append(data, 1, byte(len(name)>>8), byte(len(name)))
		data = append(data, name...)
	}
	pool, err := decodeConstantPool(binary.NewCursor(data, errors.PhaseConstPool))
	if err != nil {
		t.Fatalf("attrPool: %v", err)
	}
	return pool
}

func u2(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }
func u4(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// envelope prepends the name index and length to an attribute body.
func envelope(nameIndex uint16, body []byte) []byte {
	var out []byte
	out = append(out, u2(nameIndex)...)
	out = append(out, u4(uint32(len(body)))...)
	return append(out, body...)
}

func TestDecodeAttributeUnknownPreserved(t *testing.T) {
	pool := attrPool(t, "Deprecated")
	body := []byte{0xDE, 0xAD}
	cur := binary.NewCursor(envelope(1, body), errors.PhaseAttribute)

	attr, err := decodeAttribute(cur, pool)
	if err != nil {
		t.Fatalf("decodeAttribute: %v", err)
	}
	if attr.Parsed != nil {
		t.Errorf("unknown attribute decoded to %T", attr.Parsed)
	}
	if !bytes.Equal(attr.Info, body) {
		t.Errorf("Info: got %v, want %v", attr.Info, body)
	}
	if name, err := attr.Name(pool); err != nil || name != "Deprecated" {
		t.Errorf("Name: got %q, %v", name, err)
	}
}

func TestDecodeAttributeBadNameIndex(t *testing.T) {
	pool := attrPool(t, "x")
	cur := binary.NewCursor(envelope(9, nil), errors.PhaseAttribute)
	_, err := decodeAttribute(cur, pool)
	if !errors.IsKind(err, errors.KindIndexOutOfBounds) {
		t.Fatalf("expected index_out_of_bounds, got %v", err)
	}
}

func TestDecodeConstantValue(t *testing.T) {
	pool := attrPool(t, "ConstantValue")
	cur := binary.NewCursor(envelope(1, u2(7)), errors.PhaseAttribute)

	attr, err := decodeAttribute(cur, pool)
	if err != nil {
		t.Fatalf("decodeAttribute: %v", err)
	}
	cv, ok := attr.Parsed.(ConstantValueAttribute)
	if !ok {
		t.Fatalf("Parsed is %T", attr.Parsed)
	}
	if cv.ValueIndex != 7 {
		t.Errorf("ValueIndex: got %d, want 7", cv.ValueIndex)
	}
}

func TestDecodeAttributeLengthMismatch(t *testing.T) {
	pool := attrPool(t, "ConstantValue")
	// ConstantValue consumes 2 bytes; declare 4.
	body := append(u2(7), 0x00, 0x00)
	cur := binary.NewCursor(envelope(1, body), errors.PhaseAttribute)

	_, err := decodeAttribute(cur, pool)
	if !errors.IsKind(err, errors.KindAttributeLengthMismatch) {
		t.Fatalf("expected attribute_length_mismatch, got %v", err)
	}
}

func TestDecodeAttributeOverConsumption(t *testing.T) {
	pool := attrPool(t, "ConstantValue")
	// ConstantValue needs 2 bytes; declare 1. The body is captured in
	// full, so the shortfall is a length mismatch, not truncation.
	cur := binary.NewCursor(envelope(1, []byte{0x00}), errors.PhaseAttribute)

	_, err := decodeAttribute(cur, pool)
	if !errors.IsKind(err, errors.KindAttributeLengthMismatch) {
		t.Fatalf("expected attribute_length_mismatch, got %v", err)
	}
}

func TestDecodeSourceFile(t *testing.T) {
	pool := attrPool(t, "SourceFile", "Main.java")
	cur := binary.NewCursor(envelope(1, u2(2)), errors.PhaseAttribute)

	attr, err := decodeAttribute(cur, pool)
	if err != nil {
		t.Fatalf("decodeAttribute: %v", err)
	}
	sf, ok := attr.Parsed.(SourceFileAttribute)
	if !ok {
		t.Fatalf("Parsed is %T", attr.Parsed)
	}
	if name, err := pool.Utf8(sf.SourceFile); err != nil || name != "Main.java" {
		t.Errorf("SourceFile: got %q, %v", name, err)
	}
}

func TestDecodeExceptions(t *testing.T) {
	pool := attrPool(t, "Exceptions")
	var body []byte
	body = append(body, u2(2)...)
	body = append(body, u2(4)...)
	body = append(body, u2(9)...)
	cur := binary.NewCursor(envelope(1, body), errors.PhaseAttribute)

	attr, err := decodeAttribute(cur, pool)
	if err != nil {
		t.Fatalf("decodeAttribute: %v", err)
	}
	ex, ok := attr.Parsed.(ExceptionsAttribute)
	if !ok {
		t.Fatalf("Parsed is %T", attr.Parsed)
	}
	if len(ex.ExceptionTable) != 2 || ex.ExceptionTable[0] != 4 || ex.ExceptionTable[1] != 9 {
		t.Errorf("ExceptionTable: got %v", ex.ExceptionTable)
	}
}

func TestDecodeBootstrapMethods(t *testing.T) {
	pool := attrPool(t, "BootstrapMethods")
	var body []byte
	body = append(body, u2(1)...) // one bootstrap method
	body = append(body, u2(5)...) // method handle index
	body = append(body, u2(2)...) // two arguments
	body = append(body, u2(7)...)
	body = append(body, u2(8)...)
	cur := binary.NewCursor(envelope(1, body), errors.PhaseAttribute)

	attr, err := decodeAttribute(cur, pool)
	if err != nil {
		t.Fatalf("decodeAttribute: %v", err)
	}
	bm, ok := attr.Parsed.(BootstrapMethodsAttribute)
	if !ok {
		t.Fatalf("Parsed is %T", attr.Parsed)
	}
	if len(bm.Methods) != 1 {
		t.Fatalf("Methods: got %d, want 1", len(bm.Methods))
	}
	m := bm.Methods[0]
	if m.MethodRef != 5 {
		t.Errorf("MethodRef: got %d, want 5", m.MethodRef)
	}
	if len(m.Arguments) != 2 || m.Arguments[0] != 7 || m.Arguments[1] != 8 {
		t.Errorf("Arguments: got %v", m.Arguments)
	}
}

func TestDecodeCodeWithNestedAttributes(t *testing.T) {
	pool := attrPool(t, "Code", "StackMapTable")

	var smt []byte
	smt = append(smt, u2(1)...) // one frame
	smt = append(smt, 2)        // same_frame, offset delta 2

	var body []byte
	body = append(body, u2(3)...)                  // max_stack
	body = append(body, u2(2)...)                  // max_locals
	body = append(body, u4(4)...)                  // code_length
	body = append(body, 0x03, 0x3C, 0x1B, 0xB1)    // bytecode
	body = append(body, u2(1)...)                  // one exception entry
	body = append(body, u2(0)...)                  // start_pc
	body = append(body, u2(4)...)                  // end_pc
	body = append(body, u2(4)...)                  // handler_pc
	body = append(body, u2(0)...)                  // catch_type (catch all)
	body = append(body, u2(1)...)                  // one nested attribute
	body = append(body, envelope(2, smt)...)       // StackMapTable

	cur := binary.NewCursor(envelope(1, body), errors.PhaseAttribute)
	attr, err := decodeAttribute(cur, pool)
	if err != nil {
		t.Fatalf("decodeAttribute: %v", err)
	}

	code, ok := attr.Parsed.(CodeAttribute)
	if !ok {
		t.Fatalf("Parsed is %T", attr.Parsed)
	}
	if code.MaxStack != 3 || code.MaxLocals != 2 {
		t.Errorf("max_stack/max_locals: got %d/%d", code.MaxStack, code.MaxLocals)
	}
	if !bytes.Equal(code.Code, []byte{0x03, 0x3C, 0x1B, 0xB1}) {
		t.Errorf("Code: got %v", code.Code)
	}
	if len(code.ExceptionTable) != 1 {
		t.Fatalf("ExceptionTable: got %d entries", len(code.ExceptionTable))
	}
	entry := code.ExceptionTable[0]
	if entry.EndPC != 4 || entry.HandlerPC != 4 || !entry.CatchType.IsZero() {
		t.Errorf("ExceptionTable[0]: got %+v", entry)
	}

	if len(code.Attributes) != 1 {
		t.Fatalf("nested attributes: got %d", len(code.Attributes))
	}
	table, ok := code.Attributes[0].Parsed.(StackMapTableAttribute)
	if !ok {
		t.Fatalf("nested Parsed is %T", code.Attributes[0].Parsed)
	}
	if len(table.Frames) != 1 || table.Frames[0].Kind != FrameSame || table.Frames[0].OffsetDelta != 2 {
		t.Errorf("Frames: got %+v", table.Frames)
	}
	if len(table.Frames[0].Locals) != 0 || len(table.Frames[0].Stack) != 0 {
		t.Errorf("same frame carries payload: %+v", table.Frames[0])
	}
}

func TestDecodeCodeNestedFailureAborts(t *testing.T) {
	pool := attrPool(t, "Code", "StackMapTable")

	var smt []byte
	smt = append(smt, u2(1)...)
	smt = append(smt, 200) // reserved frame type

	var body []byte
	body = append(body, u2(1)...)
	body = append(body, u2(1)...)
	body = append(body, u4(1)...)
	body = append(body, 0xB1)
	body = append(body, u2(0)...)
	body = append(body, u2(1)...)
	body = append(body, envelope(2, smt)...)

	cur := binary.NewCursor(envelope(1, body), errors.PhaseAttribute)
	_, err := decodeAttribute(cur, pool)
	if !errors.IsKind(err, errors.KindUnsupportedFrameType) {
		t.Fatalf("expected unsupported_frame_type, got %v", err)
	}
}

func TestDecodeStackMapFrames(t *testing.T) {
	objectItem := append([]byte{7}, u2(2)...)      // Object, class #2
	uninitItem := append([]byte{8}, u2(0x10)...)   // Uninitialized, offset 16

	tests := []struct {
		name  string
		data  []byte
		check func(t *testing.T, f StackMapFrame)
	}{
		{
			"same",
			[]byte{42},
			func(t *testing.T, f StackMapFrame) {
				if f.Kind != FrameSame || f.OffsetDelta != 42 {
					t.Errorf("got %+v", f)
				}
			},
		},
		{
			"same_locals_1_stack_item",
			append([]byte{70}, 1), // Integer item
			func(t *testing.T, f StackMapFrame) {
				if f.Kind != FrameSameLocals1StackItem || f.OffsetDelta != 6 {
					t.Errorf("got %+v", f)
				}
				if len(f.Stack) != 1 || f.Stack[0].Kind != VerifyInteger {
					t.Errorf("stack: got %+v", f.Stack)
				}
			},
		},
		{
			"same_locals_1_stack_item_extended",
			append(append([]byte{247}, u2(300)...), objectItem...),
			func(t *testing.T, f StackMapFrame) {
				if f.Kind != FrameSameLocals1StackItemExtended || f.OffsetDelta != 300 {
					t.Errorf("got %+v", f)
				}
				if len(f.Stack) != 1 || f.Stack[0].Kind != VerifyObject || f.Stack[0].Class != 2 {
					t.Errorf("stack: got %+v", f.Stack)
				}
			},
		},
		{
			"chop",
			append([]byte{249}, u2(12)...),
			func(t *testing.T, f StackMapFrame) {
				if f.Kind != FrameChop || f.OffsetDelta != 12 {
					t.Errorf("got %+v", f)
				}
			},
		},
		{
			"same_extended",
			append([]byte{251}, u2(400)...),
			func(t *testing.T, f StackMapFrame) {
				if f.Kind != FrameSameExtended || f.OffsetDelta != 400 {
					t.Errorf("got %+v", f)
				}
			},
		},
		{
			"append",
			append(append([]byte{253}, u2(8)...), 4, 6), // Long, UninitializedThis
			func(t *testing.T, f StackMapFrame) {
				if f.Kind != FrameAppend || f.OffsetDelta != 8 {
					t.Errorf("got %+v", f)
				}
				if len(f.Locals) != 2 || f.Locals[0].Kind != VerifyLong || f.Locals[1].Kind != VerifyUninitializedThis {
					t.Errorf("locals: got %+v", f.Locals)
				}
			},
		},
		{
			"full",
			func() []byte {
				d := append([]byte{255}, u2(20)...)
				d = append(d, u2(2)...) // two locals
				d = append(d, 0)        // Top
				d = append(d, uninitItem...)
				d = append(d, u2(1)...) // one stack item
				d = append(d, 5)        // Null
				return d
			}(),
			func(t *testing.T, f StackMapFrame) {
				if f.Kind != FrameFull || f.OffsetDelta != 20 {
					t.Errorf("got %+v", f)
				}
				if len(f.Locals) != 2 || f.Locals[0].Kind != VerifyTop ||
					f.Locals[1].Kind != VerifyUninitialized || f.Locals[1].Offset != 0x10 {
					t.Errorf("locals: got %+v", f.Locals)
				}
				if len(f.Stack) != 1 || f.Stack[0].Kind != VerifyNull {
					t.Errorf("stack: got %+v", f.Stack)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := binary.NewCursor(tt.data, errors.PhaseAttribute)
			frame, err := decodeStackMapFrame(cur)
			if err != nil {
				t.Fatalf("decodeStackMapFrame: %v", err)
			}
			if cur.Remaining() != 0 {
				t.Errorf("frame left %d unread bytes", cur.Remaining())
			}
			if frame.FrameType != tt.data[0] {
				t.Errorf("FrameType: got %d, want %d", frame.FrameType, tt.data[0])
			}
			tt.check(t, frame)
		})
	}
}

func TestDecodeStackMapFrameReserved(t *testing.T) {
	for _, frameType := range []byte{128, 200, 246} {
		cur := binary.NewCursor([]byte{frameType}, errors.PhaseAttribute)
		_, err := decodeStackMapFrame(cur)
		if !errors.IsKind(err, errors.KindUnsupportedFrameType) {
			t.Errorf("frame type %d: expected unsupported_frame_type, got %v", frameType, err)
		}
	}
}

func TestDecodeVerificationTypeBadTag(t *testing.T) {
	cur := binary.NewCursor([]byte{9}, errors.PhaseAttribute)
	_, err := decodeVerificationType(cur)
	if !errors.IsKind(err, errors.KindUnsupportedFrameType) {
		t.Fatalf("expected unsupported_frame_type, got %v", err)
	}
}

func TestBuiltinDecodersRegistered(t *testing.T) {
	names := []string{
		AttrConstantValue,
		AttrCode,
		AttrStackMapTable,
		AttrExceptions,
		AttrBootstrapMethods,
		AttrSourceFile,
	}
	for _, name := range names {
		if _, ok := attributeDecoders[name]; !ok {
			t.Errorf("%s has no registered decoder", name)
		}
	}
}

func TestRegisterAttribute(t *testing.T) {
	const name = "Synthetic"
	RegisterAttribute(name, func(cur *binary.Cursor, _ *ConstantPool) (ParsedAttribute, error) {
		return SourceFileAttribute{}, nil
	})
	defer delete(attributeDecoders, name)

	pool := attrPool(t, name)
	cur := binary.NewCursor(envelope(1, nil), errors.PhaseAttribute)
	attr, err := decodeAttribute(cur, pool)
	if err != nil {
		t.Fatalf("decodeAttribute: %v", err)
	}
	if _, ok := attr.Parsed.(SourceFileAttribute); !ok {
		t.Errorf("registered decoder not used; Parsed is %T", attr.Parsed)
	}
}
