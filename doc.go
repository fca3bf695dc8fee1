// Package jclass provides a Go implementation of Java class file decoding.
//
// This library parses compiled Java class files into structured form:
// constant pool, fields, methods and attributes, with typed constant pool
// indices and strict error reporting.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	jclass/              Root package with Parse/ParseFile convenience helpers
//	├── classfile/       Class file binary decoding (pool, attributes, members)
//	├── descriptor/      Field and method descriptor string parsing
//	├── loader/          Class path loading from directories and jar files
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Parse a class file from disk:
//
//	cf, err := jclass.ParseFile("Main.class")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	name, _ := cf.ClassName()
//	fmt.Println(name, "compiled for Java", cf.Version.Java())
//
// Or resolve classes across a search path:
//
//	l, err := loader.Open("build/classes", "lib/deps.jar")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Close()
//
//	cf, _, err := l.Load("com/example/Main")
//
// # Decoding Model
//
// Decoding is a single forward pass with no backtracking: the first
// malformed byte aborts with a structured error naming the phase, the
// error kind and the byte offset. Pool references are typed indices whose
// resolution is explicit and checked; raw bytecode and unknown attributes
// are preserved as opaque ranges of the input buffer. The library never
// executes bytecode and never re-encodes class files.
package jclass
