package admin

import (
	"errors"
	"io"
	"io/fs"
	"sort"
)

// overlayFS resolves files from the first layer that has them. Directories
// present in several layers list the union of their entries, so a template
// walk sees user templates and the embedded defaults side by side.
type overlayFS struct {
	layers []fs.FS
}

func newOverlayFS(layers ...fs.FS) fs.FS {
	out := make([]fs.FS, 0, len(layers))
	for _, l := range layers {
		if l != nil {
			out = append(out, l)
		}
	}
	return &overlayFS{layers: out}
}

func (o *overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	var dirInfo fs.FileInfo
	var entries []fs.DirEntry
	seen := map[string]bool{}

	for _, layer := range o.layers {
		info, err := fs.Stat(layer, name)
		if err != nil {
			continue
		}

		if !info.IsDir() {
			if dirInfo != nil {
				continue
			}
			return layer.Open(name)
		}

		if dirInfo == nil {
			dirInfo = info
		}

		list, err := fs.ReadDir(layer, name)
		if err != nil {
			return nil, err
		}
		for _, e := range list {
			if seen[e.Name()] {
				continue
			}
			seen[e.Name()] = true
			entries = append(entries, e)
		}
	}

	if dirInfo == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	return &overlayDir{info: dirInfo, entries: entries}, nil
}

type overlayDir struct {
	info    fs.FileInfo
	entries []fs.DirEntry
	offset  int
}

func (d *overlayDir) Stat() (fs.FileInfo, error) { return d.info, nil }

func (d *overlayDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.info.Name(), Err: errors.New("is a directory")}
}

func (d *overlayDir) Close() error { return nil }

func (d *overlayDir) ReadDir(n int) ([]fs.DirEntry, error) {
	remaining := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return remaining, nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if n > len(remaining) {
		n = len(remaining)
	}
	d.offset += n
	return remaining[:n], nil
}
