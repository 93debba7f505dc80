package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/kholles/internal/apperr"
)

// FileFunc handles one matched file. path is the file's full path.
type FileFunc func(path string, data []byte) error

// DirFunc is called for every directory reached by WalkDirs, root included.
type DirFunc func(path string) error

// Walk calls fn for every file under root whose extension is ext, at any
// depth. ext may be given with or without its leading dot. Symbolic links
// to files and directories are followed, the root included; a directory
// reached twice through links is visited once.
//
// A root that does not exist or is not a directory yields no calls and no
// error. Listing or reading failures stop the walk with an apperr.ErrIO
// error naming the path; errors returned by fn stop it unchanged.
func Walk(root, ext string, fn FileFunc) error {
	ext = "." + strings.TrimPrefix(ext, ".")
	return WalkFiles(root, func(p string) error {
		if filepath.Ext(p) != ext {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return apperr.AtPath(p, apperr.Kind(apperr.ErrIO, err))
		}
		return fn(p, data)
	})
}

// WalkFiles calls fn with the path of every non-directory entry under
// root, following symbolic links like Walk. Files are not read.
func WalkFiles(root string, fn func(path string) error) error {
	return walkTree(root, nil, fn)
}

// WalkDirs calls fn for root and every directory below it, following
// symbolic links like Walk.
func WalkDirs(root string, fn DirFunc) error {
	return walkTree(root, fn, nil)
}

func walkTree(root string, onDir DirFunc, onFile func(string) error) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return apperr.AtPath(root, apperr.Kind(apperr.ErrIO, err))
	}
	if !info.IsDir() {
		return nil
	}
	w := &walker{visited: make(map[string]struct{}), onDir: onDir, onFile: onFile}
	return w.dir(root)
}

type walker struct {
	visited map[string]struct{}
	onDir   DirFunc
	onFile  func(string) error
}

func (w *walker) dir(p string) error {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return apperr.AtPath(p, apperr.Kind(apperr.ErrIO, err))
	}
	if _, seen := w.visited[resolved]; seen {
		return nil
	}
	w.visited[resolved] = struct{}{}

	if w.onDir != nil {
		if err := w.onDir(p); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(p)
	if err != nil {
		return apperr.AtPath(p, apperr.Kind(apperr.ErrIO, err))
	}
	for _, e := range entries {
		child := filepath.Join(p, e.Name())
		isDir := e.IsDir()
		if e.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(child)
			if err != nil {
				return apperr.AtPath(child, apperr.Kind(apperr.ErrIO, err))
			}
			isDir = target.IsDir()
		}
		if isDir {
			if err := w.dir(child); err != nil {
				return err
			}
			continue
		}
		if w.onFile != nil {
			if err := w.onFile(child); err != nil {
				return err
			}
		}
	}
	return nil
}
