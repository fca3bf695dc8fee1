// Package loader locates and parses class files on a search path of
// directories and jar archives.
package loader

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/jclass/classfile"
	"github.com/wippyai/jclass/errors"
)

// Loader resolves class names against an ordered search path. Entries
// ending in ".jar" are opened as zip archives and their contents indexed
// once; all other entries are treated as directories. The first entry
// providing a class wins.
//
// A Loader is safe for concurrent use once Open has returned.
type Loader struct {
	entries []pathEntry
}

type pathEntry interface {
	// find returns the class image, or ok=false when the entry does not
	// provide the class.
	find(className string) (data []byte, ok bool, err error)
	io.Closer
}

// Open builds a loader from the given search path entries. Jar entries
// are opened and indexed immediately; a missing or unreadable jar fails
// Open. Directories are probed lazily per load.
func Open(searchPath ...string) (*Loader, error) {
	l := &Loader{}
	for _, p := range searchPath {
		if strings.HasSuffix(p, ".jar") {
			jar, err := openJar(p)
			if err != nil {
				l.Close()
				return nil, err
			}
			l.entries = append(l.entries, jar)
			continue
		}
		l.entries = append(l.entries, dirEntry(p))
	}
	return l, nil
}

// Close releases the open jar archives.
func (l *Loader) Close() error {
	var first error
	for _, e := range l.entries {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Load resolves a class by its internal name ("java/lang/Object"),
// reads the image and parses it. The returned buffer backs the
// ClassFile; the caller owns it. Fails with NotFound when no search
// path entry provides the class.
func (l *Loader) Load(className string) (*classfile.ClassFile, []byte, error) {
	for _, e := range l.entries {
		data, ok, err := e.find(className)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		Logger().Debug("class found",
			zap.String("class", className),
			zap.Int("size", len(data)))
		cf, err := classfile.Parse(data)
		if err != nil {
			return nil, nil, err
		}
		return cf, data, nil
	}
	Logger().Debug("class not found", zap.String("class", className))
	return nil, nil, errors.NotFound(className)
}

// dirEntry probes <dir>/<className>.class on each lookup.
type dirEntry string

func (d dirEntry) find(className string) ([]byte, bool, error) {
	path := filepath.Join(string(d), filepath.FromSlash(className)+".class")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Load("reading "+path, err)
	}
	return data, true, nil
}

func (dirEntry) Close() error { return nil }

// jarEntry holds an open archive and an index of its class entries.
type jarEntry struct {
	rc    *zip.ReadCloser
	files map[string]*zip.File
}

func openJar(path string) (*jarEntry, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Load("opening jar "+path, err)
	}
	j := &jarEntry{rc: rc, files: make(map[string]*zip.File, len(rc.File))}
	for _, f := range rc.File {
		if strings.HasSuffix(f.Name, ".class") {
			j.files[strings.TrimSuffix(f.Name, ".class")] = f
		}
	}
	Logger().Debug("jar indexed",
		zap.String("jar", path),
		zap.Int("classes", len(j.files)))
	return j, nil
}

func (j *jarEntry) find(className string) ([]byte, bool, error) {
	f, ok := j.files[className]
	if !ok {
		return nil, false, nil
	}
	r, err := f.Open()
	if err != nil {
		return nil, false, errors.Load("opening jar entry "+f.Name, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, errors.Load("reading jar entry "+f.Name, err)
	}
	return data, true, nil
}

func (j *jarEntry) Close() error { return j.rc.Close() }
