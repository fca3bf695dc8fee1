package classfile

import (
	"fmt"

	"github.com/wippyai/jclass/classfile/internal/binary"
	"github.com/wippyai/jclass/errors"
)

// Parse decodes a complete class file image. The returned ClassFile
// borrows sub-ranges of data (Utf8 constants, bytecode, unknown
// attribute bodies), so data must not be mutated while the ClassFile is
// in use. The first malformed section aborts the parse; there is no
// partial result.
func Parse(data []byte) (*ClassFile, error) {
	cur := binary.NewCursor(data, errors.PhaseHeader)

	magic, err := cur.U32()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, errors.InvalidMagic(magic)
	}

	minor, err := cur.U16()
	if err != nil {
		return nil, err
	}
	major, err := cur.U16()
	if err != nil {
		return nil, err
	}

	cur.SetPhase(errors.PhaseConstPool)
	pool, err := decodeConstantPool(cur)
	if err != nil {
		return nil, err
	}

	cf := &ClassFile{
		Version: Version{Minor: minor, Major: major},
		Pool:    pool,
	}

	cur.SetPhase(errors.PhaseHeader)
	accessFlags, err := cur.U16()
	if err != nil {
		return nil, err
	}
	cf.AccessFlags = ClassAccessFlags(accessFlags)

	if cf.ThisClass, err = readIndex[ConstantClass](cur); err != nil {
		return nil, err
	}
	// this_class must resolve; a class file without a valid own name is
	// rejected here rather than on first use.
	if _, err := cf.ClassName(); err != nil {
		return nil, fmt.Errorf("this_class: %w", err)
	}

	if cf.SuperClass, err = readIndex[ConstantClass](cur); err != nil {
		return nil, err
	}
	// super_class is zero only for java/lang/Object.
	if !cf.SuperClass.IsZero() {
		if _, err := cf.SuperClassName(); err != nil {
			return nil, fmt.Errorf("super_class: %w", err)
		}
	}

	interfaceCount, err := cur.U16()
	if err != nil {
		return nil, err
	}
	cf.Interfaces = make([]Index[ConstantClass], interfaceCount)
	for i := range cf.Interfaces {
		if cf.Interfaces[i], err = readIndex[ConstantClass](cur); err != nil {
			return nil, err
		}
		if _, err := pool.ClassName(cf.Interfaces[i]); err != nil {
			return nil, fmt.Errorf("interface %d: %w", i, err)
		}
	}

	cur.SetPhase(errors.PhaseField)
	fieldCount, err := cur.U16()
	if err != nil {
		return nil, err
	}
	cf.Fields = make([]FieldInfo, fieldCount)
	for i := range cf.Fields {
		if cf.Fields[i], err = decodeField(cur, pool); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
	}

	cur.SetPhase(errors.PhaseMethod)
	methodCount, err := cur.U16()
	if err != nil {
		return nil, err
	}
	cf.Methods = make([]MethodInfo, methodCount)
	for i := range cf.Methods {
		if cf.Methods[i], err = decodeMethod(cur, pool); err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
	}

	cur.SetPhase(errors.PhaseAttribute)
	attrCount, err := cur.U16()
	if err != nil {
		return nil, err
	}
	if cf.Attributes, err = decodeAttributes(cur, pool, attrCount); err != nil {
		return nil, err
	}

	return cf, nil
}

func decodeField(cur *binary.Cursor, pool *ConstantPool) (FieldInfo, error) {
	flags, nameIndex, descIndex, attrs, err := decodeMember(cur, pool)
	if err != nil {
		return FieldInfo{}, err
	}
	return FieldInfo{
		AccessFlags:     FieldAccessFlags(flags),
		NameIndex:       nameIndex,
		DescriptorIndex: descIndex,
		Attributes:      attrs,
	}, nil
}

func decodeMethod(cur *binary.Cursor, pool *ConstantPool) (MethodInfo, error) {
	flags, nameIndex, descIndex, attrs, err := decodeMember(cur, pool)
	if err != nil {
		return MethodInfo{}, err
	}
	return MethodInfo{
		AccessFlags:     MethodAccessFlags(flags),
		NameIndex:       nameIndex,
		DescriptorIndex: descIndex,
		Attributes:      attrs,
	}, nil
}

// decodeMember reads the layout shared by field_info and method_info:
// access flags, name index, descriptor index and an attribute list.
func decodeMember(cur *binary.Cursor, pool *ConstantPool) (uint16, Index[ConstantUtf8], Index[ConstantUtf8], []AttributeInfo, error) {
	flags, err := cur.U16()
	if err != nil {
		return 0, 0, 0, nil, err
	}
	nameIndex, err := readIndex[ConstantUtf8](cur)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	descIndex, err := readIndex[ConstantUtf8](cur)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	attrCount, err := cur.U16()
	if err != nil {
		return 0, 0, 0, nil, err
	}
	attrs, err := decodeAttributes(cur, pool, attrCount)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	return flags, nameIndex, descIndex, attrs, nil
}
