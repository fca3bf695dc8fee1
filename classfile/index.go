package classfile

import (
	"github.com/wippyai/jclass/classfile/internal/binary"
)

// RawIndex is a 16-bit constant pool index exactly as read from the
// file. It carries no expectation about the entry kind at that slot.
type RawIndex uint16

// IsZero reports whether the index is the reserved invalid slot 0.
// A zero super_class index means "no superclass".
func (i RawIndex) IsZero() bool { return i == 0 }

// Index is a RawIndex annotated at the type level with the entry kind
// expected at that slot. Construction never validates anything: reading
// an index is cheap and cannot fail. Resolve performs the checked pool
// lookup, which is the only fallible step.
type Index[T Entry] uint16

// Raw strips the type annotation.
func (i Index[T]) Raw() RawIndex { return RawIndex(i) }

// IsZero reports whether the index is the reserved invalid slot 0.
func (i Index[T]) IsZero() bool { return i == 0 }

// Resolve looks the index up in pool and checks that the entry matches
// the expected kind. It fails with IndexOutOfBounds for slot 0,
// out-of-range indices and unusable slots, and with TypeMismatch when
// the stored entry's tag differs from T's.
func (i Index[T]) Resolve(pool *ConstantPool) (T, error) {
	var want T
	entry, err := pool.lookup(uint16(i), want.Tag())
	if err != nil {
		return want, err
	}
	return entry.(T), nil
}

// readIndex reads a typed index from the stream. This is the point where
// a field or attribute declares "this is an index into the constant pool
// expected to be kind T".
func readIndex[T Entry](cur *binary.Cursor) (Index[T], error) {
	v, err := cur.U16()
	if err != nil {
		return 0, err
	}
	return Index[T](v), nil
}
