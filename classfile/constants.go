package classfile

import "strings"

// Magic is the class file signature, the first four bytes of every image.
const Magic uint32 = 0xCAFEBABE

// Tag is the one-byte discriminant identifying a constant pool entry's kind.
type Tag uint8

// Constant pool tags as defined in the class file format.
const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldRef           Tag = 9
	TagMethodRef          Tag = 10
	TagInterfaceMethodRef Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagInvokeDynamic      Tag = 18
)

func (t Tag) String() string {
	switch t {
	case TagUtf8:
		return "Utf8"
	case TagInteger:
		return "Integer"
	case TagFloat:
		return "Float"
	case TagLong:
		return "Long"
	case TagDouble:
		return "Double"
	case TagClass:
		return "Class"
	case TagString:
		return "String"
	case TagFieldRef:
		return "FieldRef"
	case TagMethodRef:
		return "MethodRef"
	case TagInterfaceMethodRef:
		return "InterfaceMethodRef"
	case TagNameAndType:
		return "NameAndType"
	case TagMethodHandle:
		return "MethodHandle"
	case TagMethodType:
		return "MethodType"
	case TagInvokeDynamic:
		return "InvokeDynamic"
	default:
		return "Unknown"
	}
}

// MethodHandle reference kinds (reference_kind byte of a
// CONSTANT_MethodHandle_info entry).
const (
	RefGetField         uint8 = 1
	RefGetStatic        uint8 = 2
	RefPutField         uint8 = 3
	RefPutStatic        uint8 = 4
	RefInvokeVirtual    uint8 = 5
	RefInvokeStatic     uint8 = 6
	RefInvokeSpecial    uint8 = 7
	RefNewInvokeSpecial uint8 = 8
	RefInvokeInterface  uint8 = 9
)

// RefKindName returns the symbolic name of a MethodHandle reference
// kind, or "unknown" outside 1-9.
func RefKindName(kind uint8) string {
	switch kind {
	case RefGetField:
		return "getField"
	case RefGetStatic:
		return "getStatic"
	case RefPutField:
		return "putField"
	case RefPutStatic:
		return "putStatic"
	case RefInvokeVirtual:
		return "invokeVirtual"
	case RefInvokeStatic:
		return "invokeStatic"
	case RefInvokeSpecial:
		return "invokeSpecial"
	case RefNewInvokeSpecial:
		return "newInvokeSpecial"
	case RefInvokeInterface:
		return "invokeInterface"
	default:
		return "unknown"
	}
}

// Attribute names with dedicated sub-decoders.
const (
	AttrConstantValue    = "ConstantValue"
	AttrCode             = "Code"
	AttrStackMapTable    = "StackMapTable"
	AttrExceptions       = "Exceptions"
	AttrBootstrapMethods = "BootstrapMethods"
	AttrSourceFile       = "SourceFile"
)

// ClassAccessFlags is the access_flags bitmask of a class.
type ClassAccessFlags uint16

const (
	ClassAccPublic     ClassAccessFlags = 0x0001
	ClassAccFinal      ClassAccessFlags = 0x0010
	ClassAccSuper      ClassAccessFlags = 0x0020
	ClassAccInterface  ClassAccessFlags = 0x0200
	ClassAccAbstract   ClassAccessFlags = 0x0400
	ClassAccSynthetic  ClassAccessFlags = 0x1000
	ClassAccAnnotation ClassAccessFlags = 0x2000
	ClassAccEnum       ClassAccessFlags = 0x4000
)

// Has reports whether all bits of f are set.
func (a ClassAccessFlags) Has(f ClassAccessFlags) bool { return a&f == f }

func (a ClassAccessFlags) String() string {
	return flagString(uint16(a), []flagName{
		{uint16(ClassAccPublic), "public"},
		{uint16(ClassAccFinal), "final"},
		{uint16(ClassAccSuper), "super"},
		{uint16(ClassAccInterface), "interface"},
		{uint16(ClassAccAbstract), "abstract"},
		{uint16(ClassAccSynthetic), "synthetic"},
		{uint16(ClassAccAnnotation), "annotation"},
		{uint16(ClassAccEnum), "enum"},
	})
}

// FieldAccessFlags is the access_flags bitmask of a field.
type FieldAccessFlags uint16

const (
	FieldAccPublic    FieldAccessFlags = 0x0001
	FieldAccPrivate   FieldAccessFlags = 0x0002
	FieldAccProtected FieldAccessFlags = 0x0004
	FieldAccStatic    FieldAccessFlags = 0x0008
	FieldAccFinal     FieldAccessFlags = 0x0010
	FieldAccVolatile  FieldAccessFlags = 0x0040
	FieldAccTransient FieldAccessFlags = 0x0080
	FieldAccSynthetic FieldAccessFlags = 0x1000
	FieldAccEnum      FieldAccessFlags = 0x4000
)

// Has reports whether all bits of f are set.
func (a FieldAccessFlags) Has(f FieldAccessFlags) bool { return a&f == f }

func (a FieldAccessFlags) String() string {
	return flagString(uint16(a), []flagName{
		{uint16(FieldAccPublic), "public"},
		{uint16(FieldAccPrivate), "private"},
		{uint16(FieldAccProtected), "protected"},
		{uint16(FieldAccStatic), "static"},
		{uint16(FieldAccFinal), "final"},
		{uint16(FieldAccVolatile), "volatile"},
		{uint16(FieldAccTransient), "transient"},
		{uint16(FieldAccSynthetic), "synthetic"},
		{uint16(FieldAccEnum), "enum"},
	})
}

// MethodAccessFlags is the access_flags bitmask of a method.
type MethodAccessFlags uint16

const (
	MethodAccPublic       MethodAccessFlags = 0x0001
	MethodAccPrivate      MethodAccessFlags = 0x0002
	MethodAccProtected    MethodAccessFlags = 0x0004
	MethodAccStatic       MethodAccessFlags = 0x0008
	MethodAccFinal        MethodAccessFlags = 0x0010
	MethodAccSynchronized MethodAccessFlags = 0x0020
	MethodAccBridge       MethodAccessFlags = 0x0040
	MethodAccVarargs      MethodAccessFlags = 0x0080
	MethodAccNative       MethodAccessFlags = 0x0100
	MethodAccAbstract     MethodAccessFlags = 0x0400
	MethodAccStrict       MethodAccessFlags = 0x0800
	MethodAccSynthetic    MethodAccessFlags = 0x1000
)

// Has reports whether all bits of f are set.
func (a MethodAccessFlags) Has(f MethodAccessFlags) bool { return a&f == f }

func (a MethodAccessFlags) String() string {
	return flagString(uint16(a), []flagName{
		{uint16(MethodAccPublic), "public"},
		{uint16(MethodAccPrivate), "private"},
		{uint16(MethodAccProtected), "protected"},
		{uint16(MethodAccStatic), "static"},
		{uint16(MethodAccFinal), "final"},
		{uint16(MethodAccSynchronized), "synchronized"},
		{uint16(MethodAccBridge), "bridge"},
		{uint16(MethodAccVarargs), "varargs"},
		{uint16(MethodAccNative), "native"},
		{uint16(MethodAccAbstract), "abstract"},
		{uint16(MethodAccStrict), "strictfp"},
		{uint16(MethodAccSynthetic), "synthetic"},
	})
}

type flagName struct {
	bit  uint16
	name string
}

func flagString(bits uint16, names []flagName) string {
	var set []string
	for _, fn := range names {
		if bits&fn.bit != 0 {
			set = append(set, fn.name)
		}
	}
	return strings.Join(set, " ")
}
