package classfile

import (
	"fmt"
	"math"

	"github.com/wippyai/jclass/classfile/internal/binary"
	"github.com/wippyai/jclass/errors"
)

// Entry is one constant pool entry. All implementations are value types
// so that a zero value of any concrete kind reports its tag.
type Entry interface {
	Tag() Tag
}

// ConstantUtf8 is a CONSTANT_Utf8_info entry. Bytes borrows from the
// input buffer and is not validated as UTF-8 at decode time.
type ConstantUtf8 struct {
	Bytes []byte
}

func (ConstantUtf8) Tag() Tag { return TagUtf8 }

// String converts the captured bytes to a string. Validation, if the
// caller needs it, is the caller's concern.
func (c ConstantUtf8) String() string { return string(c.Bytes) }

// ConstantInteger is a CONSTANT_Integer_info entry.
type ConstantInteger struct {
	Value int32
}

func (ConstantInteger) Tag() Tag { return TagInteger }

// ConstantFloat is a CONSTANT_Float_info entry.
type ConstantFloat struct {
	Value float32
}

func (ConstantFloat) Tag() Tag { return TagFloat }

// ConstantLong is a CONSTANT_Long_info entry. It occupies two pool slots;
// the slot after it is unusable.
type ConstantLong struct {
	Value int64
}

func (ConstantLong) Tag() Tag { return TagLong }

// ConstantDouble is a CONSTANT_Double_info entry. It occupies two pool
// slots; the slot after it is unusable.
type ConstantDouble struct {
	Value float64
}

func (ConstantDouble) Tag() Tag { return TagDouble }

// ConstantClass is a CONSTANT_Class_info entry.
type ConstantClass struct {
	NameIndex Index[ConstantUtf8]
}

func (ConstantClass) Tag() Tag { return TagClass }

// ConstantString is a CONSTANT_String_info entry.
type ConstantString struct {
	ValueIndex Index[ConstantUtf8]
}

func (ConstantString) Tag() Tag { return TagString }

// ConstantFieldRef is a CONSTANT_Fieldref_info entry.
type ConstantFieldRef struct {
	ClassIndex       Index[ConstantClass]
	NameAndTypeIndex Index[ConstantNameAndType]
}

func (ConstantFieldRef) Tag() Tag { return TagFieldRef }

// ConstantMethodRef is a CONSTANT_Methodref_info entry.
type ConstantMethodRef struct {
	ClassIndex       Index[ConstantClass]
	NameAndTypeIndex Index[ConstantNameAndType]
}

func (ConstantMethodRef) Tag() Tag { return TagMethodRef }

// ConstantInterfaceMethodRef is a CONSTANT_InterfaceMethodref_info entry.
type ConstantInterfaceMethodRef struct {
	ClassIndex       Index[ConstantClass]
	NameAndTypeIndex Index[ConstantNameAndType]
}

func (ConstantInterfaceMethodRef) Tag() Tag { return TagInterfaceMethodRef }

// ConstantNameAndType is a CONSTANT_NameAndType_info entry.
type ConstantNameAndType struct {
	NameIndex       Index[ConstantUtf8]
	DescriptorIndex Index[ConstantUtf8]
}

func (ConstantNameAndType) Tag() Tag { return TagNameAndType }

// ConstantMethodHandle is a CONSTANT_MethodHandle_info entry. The entry
// kind ReferenceIndex must denote depends on ReferenceKind, so the index
// stays raw.
type ConstantMethodHandle struct {
	ReferenceKind  uint8
	ReferenceIndex RawIndex
}

func (ConstantMethodHandle) Tag() Tag { return TagMethodHandle }

// ConstantMethodType is a CONSTANT_MethodType_info entry.
type ConstantMethodType struct {
	DescriptorIndex Index[ConstantUtf8]
}

func (ConstantMethodType) Tag() Tag { return TagMethodType }

// ConstantInvokeDynamic is a CONSTANT_InvokeDynamic_info entry. The
// bootstrap method index points into the BootstrapMethods class
// attribute, not the constant pool.
type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         Index[ConstantNameAndType]
}

func (ConstantInvokeDynamic) Tag() Tag { return TagInvokeDynamic }

// ConstantPool is the ordered table of constant pool entries for one
// class file. The table is 1-indexed: slot 0 is reserved and invalid,
// and the slot after a Long or Double entry is unusable. All lookups go
// through the checked lookup path; entries are never read directly.
type ConstantPool struct {
	// entries has length equal to the declared count. Slot 0 and the
	// slots skipped by Long/Double entries hold nil.
	entries []Entry
}

// decodeConstantPool reads the 16-bit count and count-1 entries.
func decodeConstantPool(cur *binary.Cursor) (*ConstantPool, error) {
	count, err := cur.U16()
	if err != nil {
		return nil, err
	}

	pool := &ConstantPool{entries: make([]Entry, count)}
	// The slot index is an int: a uint16 would wrap to 0 when a
	// Long/Double occupies the final slot of a 65535-count pool.
	for i := 1; i < int(count); i++ {
		entry, err := decodeEntry(cur)
		if err != nil {
			return nil, fmt.Errorf("constant pool entry %d: %w", i, err)
		}
		pool.entries[i] = entry
		// Long and Double take two slots; the second stays nil and is
		// never a valid lookup target.
		if tag := entry.Tag(); tag == TagLong || tag == TagDouble {
			i++
		}
	}
	return pool, nil
}

// decodeEntry reads one tagged entry at the cursor's current position.
func decodeEntry(cur *binary.Cursor) (Entry, error) {
	tagOffset := cur.Pos()
	tag, err := cur.U8()
	if err != nil {
		return nil, err
	}

	switch Tag(tag) {
	case TagUtf8:
		length, err := cur.U16()
		if err != nil {
			return nil, err
		}
		data, err := cur.Take(int(length))
		if err != nil {
			return nil, err
		}
		return ConstantUtf8{Bytes: data}, nil

	case TagInteger:
		v, err := cur.U32()
		if err != nil {
			return nil, err
		}
		return ConstantInteger{Value: int32(v)}, nil

	case TagFloat:
		bits, err := cur.U32()
		if err != nil {
			return nil, err
		}
		return ConstantFloat{Value: math.Float32frombits(bits)}, nil

	case TagLong:
		v, err := cur.U64()
		if err != nil {
			return nil, err
		}
		return ConstantLong{Value: int64(v)}, nil

	case TagDouble:
		bits, err := cur.U64()
		if err != nil {
			return nil, err
		}
		return ConstantDouble{Value: math.Float64frombits(bits)}, nil

	case TagClass:
		nameIndex, err := readIndex[ConstantUtf8](cur)
		if err != nil {
			return nil, err
		}
		return ConstantClass{NameIndex: nameIndex}, nil

	case TagString:
		valueIndex, err := readIndex[ConstantUtf8](cur)
		if err != nil {
			return nil, err
		}
		return ConstantString{ValueIndex: valueIndex}, nil

	case TagFieldRef:
		classIndex, natIndex, err := readRefIndices(cur)
		if err != nil {
			return nil, err
		}
		return ConstantFieldRef{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, nil

	case TagMethodRef:
		classIndex, natIndex, err := readRefIndices(cur)
		if err != nil {
			return nil, err
		}
		return ConstantMethodRef{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, nil

	case TagInterfaceMethodRef:
		classIndex, natIndex, err := readRefIndices(cur)
		if err != nil {
			return nil, err
		}
		return ConstantInterfaceMethodRef{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, nil

	case TagNameAndType:
		nameIndex, err := readIndex[ConstantUtf8](cur)
		if err != nil {
			return nil, err
		}
		descIndex, err := readIndex[ConstantUtf8](cur)
		if err != nil {
			return nil, err
		}
		return ConstantNameAndType{NameIndex: nameIndex, DescriptorIndex: descIndex}, nil

	case TagMethodHandle:
		kind, err := cur.U8()
		if err != nil {
			return nil, err
		}
		refIndex, err := cur.U16()
		if err != nil {
			return nil, err
		}
		return ConstantMethodHandle{ReferenceKind: kind, ReferenceIndex: RawIndex(refIndex)}, nil

	case TagMethodType:
		descIndex, err := readIndex[ConstantUtf8](cur)
		if err != nil {
			return nil, err
		}
		return ConstantMethodType{DescriptorIndex: descIndex}, nil

	case TagInvokeDynamic:
		bootstrapIndex, err := cur.U16()
		if err != nil {
			return nil, err
		}
		natIndex, err := readIndex[ConstantNameAndType](cur)
		if err != nil {
			return nil, err
		}
		return ConstantInvokeDynamic{BootstrapMethodAttrIndex: bootstrapIndex, NameAndTypeIndex: natIndex}, nil

	default:
		return nil, errors.UnsupportedTag(tag, tagOffset)
	}
}

func readRefIndices(cur *binary.Cursor) (Index[ConstantClass], Index[ConstantNameAndType], error) {
	classIndex, err := readIndex[ConstantClass](cur)
	if err != nil {
		return 0, 0, err
	}
	natIndex, err := readIndex[ConstantNameAndType](cur)
	if err != nil {
		return 0, 0, err
	}
	return classIndex, natIndex, nil
}

// Size returns the declared constant pool count. The table holds at most
// Size()-1 usable entries.
func (p *ConstantPool) Size() uint16 {
	return uint16(len(p.entries))
}

// lookup is the single checked lookup path for the pool. A want of 0
// accepts any entry kind.
func (p *ConstantPool) lookup(index uint16, want Tag) (Entry, error) {
	if index == 0 || int(index) >= len(p.entries) {
		return nil, errors.IndexOutOfBounds(index, p.Size())
	}
	entry := p.entries[index]
	if entry == nil {
		// The slot after a Long/Double entry.
		return nil, errors.IndexOutOfBounds(index, p.Size())
	}
	if want != 0 && entry.Tag() != want {
		return nil, errors.TypeMismatch(index, want.String(), entry.Tag().String())
	}
	return entry, nil
}

// Entry returns the entry at a raw index, of any kind. It fails for
// index 0, out-of-range indices, and unusable slots.
func (p *ConstantPool) Entry(index RawIndex) (Entry, error) {
	return p.lookup(uint16(index), 0)
}

// Utf8 resolves a Utf8 index to its string form.
func (p *ConstantPool) Utf8(index Index[ConstantUtf8]) (string, error) {
	entry, err := index.Resolve(p)
	if err != nil {
		return "", err
	}
	return entry.String(), nil
}

// ClassName resolves a Class index to the class name it references.
func (p *ConstantPool) ClassName(index Index[ConstantClass]) (string, error) {
	class, err := index.Resolve(p)
	if err != nil {
		return "", err
	}
	return p.Utf8(class.NameIndex)
}

// RefInfo is a fully resolved field, method, or interface method
// reference.
type RefInfo struct {
	ClassName  string
	Name       string
	Descriptor string
}

func (p *ConstantPool) resolveRef(classIndex Index[ConstantClass], natIndex Index[ConstantNameAndType]) (RefInfo, error) {
	className, err := p.ClassName(classIndex)
	if err != nil {
		return RefInfo{}, err
	}
	nat, err := natIndex.Resolve(p)
	if err != nil {
		return RefInfo{}, err
	}
	name, err := p.Utf8(nat.NameIndex)
	if err != nil {
		return RefInfo{}, err
	}
	descriptor, err := p.Utf8(nat.DescriptorIndex)
	if err != nil {
		return RefInfo{}, err
	}
	return RefInfo{ClassName: className, Name: name, Descriptor: descriptor}, nil
}

// FieldRef resolves a Fieldref entry to class, field name and descriptor.
func (p *ConstantPool) FieldRef(index Index[ConstantFieldRef]) (RefInfo, error) {
	ref, err := index.Resolve(p)
	if err != nil {
		return RefInfo{}, err
	}
	return p.resolveRef(ref.ClassIndex, ref.NameAndTypeIndex)
}

// MethodRef resolves a Methodref entry to class, method name and
// descriptor.
func (p *ConstantPool) MethodRef(index Index[ConstantMethodRef]) (RefInfo, error) {
	ref, err := index.Resolve(p)
	if err != nil {
		return RefInfo{}, err
	}
	return p.resolveRef(ref.ClassIndex, ref.NameAndTypeIndex)
}

// InterfaceMethodRef resolves an InterfaceMethodref entry to class,
// method name and descriptor.
func (p *ConstantPool) InterfaceMethodRef(index Index[ConstantInterfaceMethodRef]) (RefInfo, error) {
	ref, err := index.Resolve(p)
	if err != nil {
		return RefInfo{}, err
	}
	return p.resolveRef(ref.ClassIndex, ref.NameAndTypeIndex)
}
