package loader

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
)

// AssetSource resolves asset names to bytes. The Loader owns no I/O of its own; every read
// goes through the source chosen at startup.
type AssetSource interface {
	// Read returns the full contents of the named asset.
	//
	// Parameters:
	//   - ctx: cancels the read
	//   - name: the asset name relative to the source root, using forward slashes
	//
	// Returns:
	//   - []byte: the asset contents
	//   - error: error if the asset cannot be read
	Read(ctx context.Context, name string) ([]byte, error)

	// Location returns where name would be read from, for logs and errors.
	Location(name string) string
}

// fsSource reads assets from a hackpadfs file system rooted at dir.
type fsSource struct {
	fsys hackpadfs.FS
	dir  string
}

var _ AssetSource = &fsSource{}

// NewFSSource creates an AssetSource reading dir/name from fsys.
//
// Parameters:
//   - fsys: the file system, e.g. an in-memory hackpadfs mem.FS in tests
//   - dir: the directory inside fsys holding the assets; "" or "." for the root
//
// Returns:
//   - AssetSource: the source
func NewFSSource(fsys hackpadfs.FS, dir string) AssetSource {
	return &fsSource{fsys: fsys, dir: path.Clean(filepath.ToSlash(dir))}
}

// NewOSSource creates an AssetSource over the host file system, reading dir/name. A relative
// dir is resolved against the working directory.
//
// Parameters:
//   - dir: the local asset directory
//
// Returns:
//   - AssetSource: the source
//   - error: error if dir cannot be resolved
func NewOSSource(dir string) (AssetSource, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve asset dir %s: %w", dir, err)
	}
	// hackpadfs paths are unrooted
	rel := strings.TrimPrefix(filepath.ToSlash(abs), "/")
	return &fsSource{fsys: osfs.NewFS(), dir: rel}, nil
}

func (s *fsSource) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := path.Join(s.dir, name)
	if !fs.ValidPath(p) {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrInvalid}
	}
	return fs.ReadFile(s.fsys, p)
}

func (s *fsSource) Location(name string) string {
	return path.Join(s.dir, name)
}
