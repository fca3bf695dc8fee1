package classfile

import (
	"fmt"

	"github.com/wippyai/jclass/classfile/internal/binary"
	"github.com/wippyai/jclass/errors"
)

// AttributeInfo is the generic attribute envelope: a name index and the
// raw attribute body. Info borrows from the input buffer and is never
// copied. When the resolved name matches a registered sub-decoder,
// Parsed holds the decoded form; for unrecognized attributes Parsed is
// nil and Info is the only representation.
type AttributeInfo struct {
	NameIndex Index[ConstantUtf8]
	Info      []byte
	Parsed    ParsedAttribute
}

// Name resolves the attribute's name against the pool.
func (a AttributeInfo) Name(pool *ConstantPool) (string, error) {
	return pool.Utf8(a.NameIndex)
}

// ParsedAttribute is the decoded form of a recognized attribute.
type ParsedAttribute interface {
	isAttribute()
}

// ConstantValueAttribute is the decoded ConstantValue attribute. The
// index stays raw because the entry kind it must denote depends on the
// field's descriptor (Integer, Float, Long, Double or String).
type ConstantValueAttribute struct {
	ValueIndex RawIndex
}

func (ConstantValueAttribute) isAttribute() {}

// ExceptionEntry is one exception_table row of a Code attribute. A zero
// CatchType means the handler catches all exceptions.
type ExceptionEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType Index[ConstantClass]
}

// CodeAttribute is the decoded Code attribute. Code borrows the bytecode
// range from the input buffer; the decoder never interprets it.
type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionEntry
	Attributes     []AttributeInfo
}

func (CodeAttribute) isAttribute() {}

// FrameKind identifies the shape of a stack map frame.
type FrameKind uint8

const (
	FrameSame FrameKind = iota
	FrameSameLocals1StackItem
	FrameSameLocals1StackItemExtended
	FrameChop
	FrameSameExtended
	FrameAppend
	FrameFull
)

func (k FrameKind) String() string {
	switch k {
	case FrameSame:
		return "same"
	case FrameSameLocals1StackItem:
		return "same_locals_1_stack_item"
	case FrameSameLocals1StackItemExtended:
		return "same_locals_1_stack_item_extended"
	case FrameChop:
		return "chop"
	case FrameSameExtended:
		return "same_extended"
	case FrameAppend:
		return "append"
	case FrameFull:
		return "full"
	default:
		return "unknown"
	}
}

// VerificationKind is the tag of a verification_type_info union.
type VerificationKind uint8

const (
	VerifyTop               VerificationKind = 0
	VerifyInteger           VerificationKind = 1
	VerifyFloat             VerificationKind = 2
	VerifyDouble            VerificationKind = 3
	VerifyLong              VerificationKind = 4
	VerifyNull              VerificationKind = 5
	VerifyUninitializedThis VerificationKind = 6
	VerifyObject            VerificationKind = 7
	VerifyUninitialized     VerificationKind = 8
)

// VerificationType is one verification_type_info entry. Class is set
// only for VerifyObject, Offset only for VerifyUninitialized.
type VerificationType struct {
	Kind   VerificationKind
	Class  Index[ConstantClass]
	Offset uint16
}

// StackMapFrame is one frame of a StackMapTable. FrameType is the raw
// discriminant byte; OffsetDelta is already extracted from it for the
// compressed kinds. Locals holds the appended locals for FrameAppend and
// the full locals for FrameFull; Stack holds the single item for the
// SameLocals1StackItem kinds and the full stack for FrameFull.
type StackMapFrame struct {
	Kind        FrameKind
	FrameType   uint8
	OffsetDelta uint16
	Locals      []VerificationType
	Stack       []VerificationType
}

// StackMapTableAttribute is the decoded StackMapTable attribute.
type StackMapTableAttribute struct {
	Frames []StackMapFrame
}

func (StackMapTableAttribute) isAttribute() {}

// ExceptionsAttribute is the decoded Exceptions attribute: the classes a
// method declares it may throw.
type ExceptionsAttribute struct {
	ExceptionTable []Index[ConstantClass]
}

func (ExceptionsAttribute) isAttribute() {}

// BootstrapMethod is one bootstrap_methods entry.
type BootstrapMethod struct {
	MethodRef Index[ConstantMethodHandle]
	Arguments []RawIndex
}

// BootstrapMethodsAttribute is the decoded BootstrapMethods class
// attribute, referenced by InvokeDynamic pool entries.
type BootstrapMethodsAttribute struct {
	Methods []BootstrapMethod
}

func (BootstrapMethodsAttribute) isAttribute() {}

// SourceFileAttribute is the decoded SourceFile class attribute.
type SourceFileAttribute struct {
	SourceFile Index[ConstantUtf8]
}

func (SourceFileAttribute) isAttribute() {}

// AttributeDecoder decodes one attribute body. The cursor covers exactly
// the declared attribute length; the decoder must consume all of it.
type AttributeDecoder func(cur *binary.Cursor, pool *ConstantPool) (ParsedAttribute, error)

// attributeDecoders maps attribute names to their sub-decoders. All
// other attribute names decode to the generic envelope only. Populated
// in init: a map literal would form an initialization cycle through
// decodeCode, which recurses into decodeAttribute.
var attributeDecoders = map[string]AttributeDecoder{}

func init() {
	RegisterAttribute(AttrConstantValue, decodeConstantValue)
	RegisterAttribute(AttrCode, decodeCode)
	RegisterAttribute(AttrStackMapTable, decodeStackMapTable)
	RegisterAttribute(AttrExceptions, decodeExceptions)
	RegisterAttribute(AttrBootstrapMethods, decodeBootstrapMethods)
	RegisterAttribute(AttrSourceFile, decodeSourceFile)
}

// RegisterAttribute installs a sub-decoder for an attribute name,
// replacing any existing one. Registration is not synchronized with
// in-flight parses; call it during program initialization.
func RegisterAttribute(name string, fn AttributeDecoder) {
	attributeDecoders[name] = fn
}

// decodeAttributes reads count attribute envelopes, decoding recognized
// bodies eagerly.
func decodeAttributes(cur *binary.Cursor, pool *ConstantPool, count uint16) ([]AttributeInfo, error) {
	attrs := make([]AttributeInfo, count)
	for i := uint16(0); i < count; i++ {
		attr, err := decodeAttribute(cur, pool)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", i, err)
		}
		attrs[i] = attr
	}
	return attrs, nil
}

func decodeAttribute(cur *binary.Cursor, pool *ConstantPool) (AttributeInfo, error) {
	nameIndex, err := readIndex[ConstantUtf8](cur)
	if err != nil {
		return AttributeInfo{}, err
	}
	length, err := cur.U32()
	if err != nil {
		return AttributeInfo{}, err
	}
	info, err := cur.Take(int(length))
	if err != nil {
		return AttributeInfo{}, err
	}

	attr := AttributeInfo{NameIndex: nameIndex, Info: info}

	name, err := pool.Utf8(nameIndex)
	if err != nil {
		return AttributeInfo{}, fmt.Errorf("attribute name: %w", err)
	}
	decode, ok := attributeDecoders[name]
	if !ok {
		// Unknown attribute: the envelope is the result.
		return attr, nil
	}

	sub := binary.NewCursor(info, errors.PhaseAttribute)
	parsed, err := decode(sub, pool)
	if err != nil {
		// The envelope already captured all declared bytes, so running
		// out inside the body means the sub-decoder needed more than
		// the declared length.
		if errors.IsKind(err, errors.KindInsufficientData) {
			return AttributeInfo{}, errors.New(errors.PhaseAttribute, errors.KindAttributeLengthMismatch).
				Path(name).
				Detail("%s attribute declared %d bytes, decoder needed more", name, length).
				Cause(err).
				Build()
		}
		return AttributeInfo{}, fmt.Errorf("%s: %w", name, err)
	}
	if sub.Pos() != len(info) {
		return AttributeInfo{}, errors.AttributeLengthMismatch(name, length, sub.Pos())
	}
	attr.Parsed = parsed
	return attr, nil
}

func decodeConstantValue(cur *binary.Cursor, _ *ConstantPool) (ParsedAttribute, error) {
	index, err := cur.U16()
	if err != nil {
		return nil, err
	}
	return ConstantValueAttribute{ValueIndex: RawIndex(index)}, nil
}

func decodeCode(cur *binary.Cursor, pool *ConstantPool) (ParsedAttribute, error) {
	maxStack, err := cur.U16()
	if err != nil {
		return nil, err
	}
	maxLocals, err := cur.U16()
	if err != nil {
		return nil, err
	}

	codeLength, err := cur.U32()
	if err != nil {
		return nil, err
	}
	code, err := cur.Take(int(codeLength))
	if err != nil {
		return nil, err
	}

	tableLength, err := cur.U16()
	if err != nil {
		return nil, err
	}
	table := make([]ExceptionEntry, tableLength)
	for i := range table {
		if table[i], err = decodeExceptionEntry(cur); err != nil {
			return nil, fmt.Errorf("exception table entry %d: %w", i, err)
		}
	}

	// A Code attribute carries its own nested attribute list (for
	// example a StackMapTable). Recursion is bounded by the enclosing
	// byte range: nested content cannot exceed the parent's captured
	// length.
	attrCount, err := cur.U16()
	if err != nil {
		return nil, err
	}
	attrs, err := decodeAttributes(cur, pool, attrCount)
	if err != nil {
		return nil, err
	}

	return CodeAttribute{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		Code:           code,
		ExceptionTable: table,
		Attributes:     attrs,
	}, nil
}

func decodeExceptionEntry(cur *binary.Cursor) (ExceptionEntry, error) {
	startPC, err := cur.U16()
	if err != nil {
		return ExceptionEntry{}, err
	}
	endPC, err := cur.U16()
	if err != nil {
		return ExceptionEntry{}, err
	}
	handlerPC, err := cur.U16()
	if err != nil {
		return ExceptionEntry{}, err
	}
	catchType, err := readIndex[ConstantClass](cur)
	if err != nil {
		return ExceptionEntry{}, err
	}
	return ExceptionEntry{
		StartPC:   startPC,
		EndPC:     endPC,
		HandlerPC: handlerPC,
		CatchType: catchType,
	}, nil
}

func decodeStackMapTable(cur *binary.Cursor, _ *ConstantPool) (ParsedAttribute, error) {
	count, err := cur.U16()
	if err != nil {
		return nil, err
	}
	frames := make([]StackMapFrame, count)
	for i := range frames {
		if frames[i], err = decodeStackMapFrame(cur); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return StackMapTableAttribute{Frames: frames}, nil
}

func decodeStackMapFrame(cur *binary.Cursor) (StackMapFrame, error) {
	typeOffset := cur.Pos()
	frameType, err := cur.U8()
	if err != nil {
		return StackMapFrame{}, err
	}

	frame := StackMapFrame{FrameType: frameType}

	switch {
	case frameType <= 63:
		frame.Kind = FrameSame
		frame.OffsetDelta = uint16(frameType)

	case frameType <= 127:
		frame.Kind = FrameSameLocals1StackItem
		frame.OffsetDelta = uint16(frameType - 64)
		item, err := decodeVerificationType(cur)
		if err != nil {
			return StackMapFrame{}, err
		}
		frame.Stack = []VerificationType{item}

	case frameType == 247:
		frame.Kind = FrameSameLocals1StackItemExtended
		if frame.OffsetDelta, err = cur.U16(); err != nil {
			return StackMapFrame{}, err
		}
		item, err := decodeVerificationType(cur)
		if err != nil {
			return StackMapFrame{}, err
		}
		frame.Stack = []VerificationType{item}

	case frameType >= 248 && frameType <= 250:
		frame.Kind = FrameChop
		if frame.OffsetDelta, err = cur.U16(); err != nil {
			return StackMapFrame{}, err
		}

	case frameType == 251:
		frame.Kind = FrameSameExtended
		if frame.OffsetDelta, err = cur.U16(); err != nil {
			return StackMapFrame{}, err
		}

	case frameType >= 252 && frameType <= 254:
		frame.Kind = FrameAppend
		if frame.OffsetDelta, err = cur.U16(); err != nil {
			return StackMapFrame{}, err
		}
		frame.Locals = make([]VerificationType, frameType-251)
		for i := range frame.Locals {
			if frame.Locals[i], err = decodeVerificationType(cur); err != nil {
				return StackMapFrame{}, err
			}
		}

	case frameType == 255:
		frame.Kind = FrameFull
		if frame.OffsetDelta, err = cur.U16(); err != nil {
			return StackMapFrame{}, err
		}
		localCount, err := cur.U16()
		if err != nil {
			return StackMapFrame{}, err
		}
		frame.Locals = make([]VerificationType, localCount)
		for i := range frame.Locals {
			if frame.Locals[i], err = decodeVerificationType(cur); err != nil {
				return StackMapFrame{}, err
			}
		}
		stackCount, err := cur.U16()
		if err != nil {
			return StackMapFrame{}, err
		}
		frame.Stack = make([]VerificationType, stackCount)
		for i := range frame.Stack {
			if frame.Stack[i], err = decodeVerificationType(cur); err != nil {
				return StackMapFrame{}, err
			}
		}

	default:
		// 128-246 are reserved by the format.
		return StackMapFrame{}, errors.UnsupportedFrameType(frameType, typeOffset)
	}

	return frame, nil
}

func decodeVerificationType(cur *binary.Cursor) (VerificationType, error) {
	tagOffset := cur.Pos()
	tag, err := cur.U8()
	if err != nil {
		return VerificationType{}, err
	}

	vt := VerificationType{Kind: VerificationKind(tag)}
	switch VerificationKind(tag) {
	case VerifyTop, VerifyInteger, VerifyFloat, VerifyDouble, VerifyLong,
		VerifyNull, VerifyUninitializedThis:
		return vt, nil
	case VerifyObject:
		if vt.Class, err = readIndex[ConstantClass](cur); err != nil {
			return VerificationType{}, err
		}
		return vt, nil
	case VerifyUninitialized:
		if vt.Offset, err = cur.U16(); err != nil {
			return VerificationType{}, err
		}
		return vt, nil
	default:
		return VerificationType{}, errors.New(errors.PhaseAttribute, errors.KindUnsupportedFrameType).
			Offset(tagOffset).
			Value(tag).
			Detail("verification type tag %d", tag).
			Build()
	}
}

func decodeExceptions(cur *binary.Cursor, _ *ConstantPool) (ParsedAttribute, error) {
	count, err := cur.U16()
	if err != nil {
		return nil, err
	}
	table := make([]Index[ConstantClass], count)
	for i := range table {
		if table[i], err = readIndex[ConstantClass](cur); err != nil {
			return nil, err
		}
	}
	return ExceptionsAttribute{ExceptionTable: table}, nil
}

func decodeBootstrapMethods(cur *binary.Cursor, _ *ConstantPool) (ParsedAttribute, error) {
	count, err := cur.U16()
	if err != nil {
		return nil, err
	}
	methods := make([]BootstrapMethod, count)
	for i := range methods {
		methodRef, err := readIndex[ConstantMethodHandle](cur)
		if err != nil {
			return nil, err
		}
		argCount, err := cur.U16()
		if err != nil {
			return nil, err
		}
		args := make([]RawIndex, argCount)
		for j := range args {
			v, err := cur.U16()
			if err != nil {
				return nil, err
			}
			args[j] = RawIndex(v)
		}
		methods[i] = BootstrapMethod{MethodRef: methodRef, Arguments: args}
	}
	return BootstrapMethodsAttribute{Methods: methods}, nil
}

func decodeSourceFile(cur *binary.Cursor, _ *ConstantPool) (ParsedAttribute, error) {
	index, err := readIndex[ConstantUtf8](cur)
	if err != nil {
		return nil, err
	}
	return SourceFileAttribute{SourceFile: index}, nil
}
