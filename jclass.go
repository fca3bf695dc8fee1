package jclass

import (
	"os"

	"github.com/wippyai/jclass/classfile"
	"github.com/wippyai/jclass/errors"
)

// Parse decodes a class file image from memory. The returned ClassFile
// borrows sub-ranges of data; see classfile.Parse.
func Parse(data []byte) (*classfile.ClassFile, error) {
	return classfile.Parse(data)
}

// ParseFile reads and decodes a class file from disk. The backing
// buffer is owned by the returned ClassFile's internals and kept alive
// with it.
func ParseFile(path string) (*classfile.ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("reading "+path, err)
	}
	return classfile.Parse(data)
}
