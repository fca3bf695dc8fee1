package classfile

import "fmt"

// Version is the class file format version from the header. Major
// versions map to Java releases starting at 45 for JDK 1.1.
type Version struct {
	Minor uint16
	Major uint16
}

// Java returns the Java release name for the major version, such as
// "1.4" or "11". Versions outside the known range render as "unknown".
func (v Version) Java() string {
	switch {
	case v.Major >= 45 && v.Major <= 48:
		return fmt.Sprintf("1.%d", v.Major-44)
	case v.Major >= 49 && v.Major <= 57:
		return fmt.Sprintf("%d", v.Major-44)
	default:
		return "unknown"
	}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// FieldInfo is one field_info record. Name and descriptor stay as typed
// indices; resolution is explicit and fallible.
type FieldInfo struct {
	AccessFlags     FieldAccessFlags
	NameIndex       Index[ConstantUtf8]
	DescriptorIndex Index[ConstantUtf8]
	Attributes      []AttributeInfo
}

// Name resolves the field's name against the pool.
func (f FieldInfo) Name(pool *ConstantPool) (string, error) {
	return pool.Utf8(f.NameIndex)
}

// Descriptor resolves the field's descriptor string against the pool.
func (f FieldInfo) Descriptor(pool *ConstantPool) (string, error) {
	return pool.Utf8(f.DescriptorIndex)
}

// ConstantValue returns the field's decoded ConstantValue attribute, or
// false when the field has none.
func (f FieldInfo) ConstantValue() (ConstantValueAttribute, bool) {
	for _, attr := range f.Attributes {
		if cv, ok := attr.Parsed.(ConstantValueAttribute); ok {
			return cv, true
		}
	}
	return ConstantValueAttribute{}, false
}

// MethodInfo is one method_info record.
type MethodInfo struct {
	AccessFlags     MethodAccessFlags
	NameIndex       Index[ConstantUtf8]
	DescriptorIndex Index[ConstantUtf8]
	Attributes      []AttributeInfo
}

// Name resolves the method's name against the pool.
func (m MethodInfo) Name(pool *ConstantPool) (string, error) {
	return pool.Utf8(m.NameIndex)
}

// Descriptor resolves the method's descriptor string against the pool.
func (m MethodInfo) Descriptor(pool *ConstantPool) (string, error) {
	return pool.Utf8(m.DescriptorIndex)
}

// Code returns the method's decoded Code attribute, or false for
// abstract and native methods, which carry none.
func (m MethodInfo) Code() (CodeAttribute, bool) {
	for _, attr := range m.Attributes {
		if code, ok := attr.Parsed.(CodeAttribute); ok {
			return code, true
		}
	}
	return CodeAttribute{}, false
}

// ClassFile is a fully decoded class file. Byte-range fields (Utf8
// constants, bytecode, unknown attribute bodies) borrow from the input
// buffer, so the buffer must outlive the ClassFile.
type ClassFile struct {
	Version      Version
	Pool         *ConstantPool
	AccessFlags  ClassAccessFlags
	ThisClass    Index[ConstantClass]
	SuperClass   Index[ConstantClass]
	Interfaces   []Index[ConstantClass]
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

// ClassName returns this class's name.
func (c *ClassFile) ClassName() (string, error) {
	return c.Pool.ClassName(c.ThisClass)
}

// SuperClassName returns the superclass name, or "" for java/lang/Object,
// whose super_class index is zero.
func (c *ClassFile) SuperClassName() (string, error) {
	if c.SuperClass.IsZero() {
		return "", nil
	}
	return c.Pool.ClassName(c.SuperClass)
}

// InterfaceNames resolves the names of all directly implemented
// interfaces.
func (c *ClassFile) InterfaceNames() ([]string, error) {
	names := make([]string, len(c.Interfaces))
	for i, idx := range c.Interfaces {
		name, err := c.Pool.ClassName(idx)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

// SourceFile returns the SourceFile attribute's value, or false when the
// class carries none.
func (c *ClassFile) SourceFile() (string, bool) {
	for _, attr := range c.Attributes {
		if sf, ok := attr.Parsed.(SourceFileAttribute); ok {
			name, err := c.Pool.Utf8(sf.SourceFile)
			if err != nil {
				return "", false
			}
			return name, true
		}
	}
	return "", false
}

// BootstrapMethods returns the class's decoded BootstrapMethods
// attribute, or false when absent.
func (c *ClassFile) BootstrapMethods() (BootstrapMethodsAttribute, bool) {
	for _, attr := range c.Attributes {
		if bm, ok := attr.Parsed.(BootstrapMethodsAttribute); ok {
			return bm, true
		}
	}
	return BootstrapMethodsAttribute{}, false
}

// FindMethod returns the first method with the given name and
// descriptor, or false when no method matches.
func (c *ClassFile) FindMethod(name, descriptor string) (MethodInfo, bool) {
	for _, m := range c.Methods {
		n, err := m.Name(c.Pool)
		if err != nil {
			continue
		}
		d, err := m.Descriptor(c.Pool)
		if err != nil {
			continue
		}
		if n == name && d == descriptor {
			return m, true
		}
	}
	return MethodInfo{}, false
}

// FindMethodsByName returns all methods with the given name, in
// declaration order.
func (c *ClassFile) FindMethodsByName(name string) []MethodInfo {
	var out []MethodInfo
	for _, m := range c.Methods {
		if n, err := m.Name(c.Pool); err == nil && n == name {
			out = append(out, m)
		}
	}
	return out
}

// FindField returns the first field with the given name, or false when
// no field matches.
func (c *ClassFile) FindField(name string) (FieldInfo, bool) {
	for _, f := range c.Fields {
		if n, err := f.Name(c.Pool); err == nil && n == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}
