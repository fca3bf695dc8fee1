// Package classfile provides Java class file binary decoding.
//
// The decoder reads the complete class file structure from a byte
// buffer: header, constant pool, class metadata, fields, methods and
// attributes. Decoding is zero-copy where the format allows it: Utf8
// constants, bytecode ranges and unknown attribute bodies are sub-slices
// of the input buffer.
//
// # Parsing
//
// Decode a class file image:
//
//	cf, err := classfile.Parse(data)
//	if err != nil {
//		return err
//	}
//	name, err := cf.ClassName()
//
// Parsing is strict: the first malformed section aborts with a
// structured error describing the phase, the error kind and the byte
// offset. There is no partial result.
//
// # Constant Pool
//
// The constant pool is 1-indexed, slot 0 is reserved, and Long/Double
// entries occupy two slots. References into the pool are typed indices
// (Index[T]) that record the expected entry kind at the type level;
// resolution is an explicit, fallible step:
//
//	utf8, err := field.NameIndex.Resolve(cf.Pool)
//
// # Attributes
//
// Attributes decode as a generic envelope (name index plus raw bytes).
// Recognized attributes (ConstantValue, Code, StackMapTable, Exceptions,
// BootstrapMethods, SourceFile) are additionally decoded eagerly into
// their structured form; RegisterAttribute installs sub-decoders for
// further attribute names. Unknown attributes keep their raw bytes and
// never fail the parse.
//
// The decoder does not verify or execute bytecode and does not
// re-encode class files.
package classfile
