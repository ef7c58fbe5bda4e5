package mustache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PartialLoader supplies partial template sources by name.
type PartialLoader interface {
	// LoadPartial returns the source of the partial name. found is false when
	// the loader has no such partial; that is not an error.
	LoadPartial(ctx context.Context, name string) (source string, found bool, err error)
}

// PartialMap maps partial names to sources. Values are strings, byte slices,
// or Deferred values settling to either. When passed to a render call, every
// entry is registered with the engine before rendering starts.
type PartialMap map[string]any

// LoadPartial implements PartialLoader.
func (m PartialMap) LoadPartial(ctx context.Context, name string) (string, bool, error) {
	value, ok := m[name]
	if !ok {
		return "", false, nil
	}
	return partialSource(ctx, value)
}

// LoaderFunc adapts a function to PartialLoader.
type LoaderFunc func(ctx context.Context, name string) (source string, found bool, err error)

// LoadPartial implements PartialLoader.
func (f LoaderFunc) LoadPartial(ctx context.Context, name string) (string, bool, error) {
	if f == nil {
		return "", false, nil
	}
	return f(ctx, name)
}

// DeferredLoaderFunc returns a Deferred partial source for name, or nil when
// there is no such partial.
type DeferredLoaderFunc func(name string) Deferred

// LoadPartial implements PartialLoader.
func (f DeferredLoaderFunc) LoadPartial(ctx context.Context, name string) (string, bool, error) {
	if f == nil {
		return "", false, nil
	}
	d := f(name)
	if d == nil {
		return "", false, nil
	}
	return partialSource(ctx, d)
}

// partialSource awaits value and converts it to template text. A value that
// settles to nil counts as not found.
func partialSource(ctx context.Context, value any) (string, bool, error) {
	value, err := Await(ctx, value)
	if err != nil {
		return "", false, err
	}
	switch v := value.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case []byte:
		return string(v), true, nil
	}
	return "", false, NewDeferredTypeError(ErrMsgDeferredPartial, value)
}

// FilesystemLoader loads partials from files named <name><ext> under a root
// directory. Names may contain forward slashes to address subdirectories but
// may not leave the root.
type FilesystemLoader struct {
	root string
	ext  string
}

// NewFilesystemLoader creates a loader reading <root>/<name>.mustache files.
func NewFilesystemLoader(root string) (*FilesystemLoader, error) {
	return NewFilesystemLoaderWithExt(root, DefaultPartialExt)
}

// NewFilesystemLoaderWithExt creates a loader reading <root>/<name><ext> files.
func NewFilesystemLoaderWithExt(root, ext string) (*FilesystemLoader, error) {
	if root == "" {
		return nil, NewLoaderError(ErrMsgEmptyLoaderRoot, nil)
	}
	return &FilesystemLoader{root: root, ext: ext}, nil
}

// Root returns the directory partials are read from.
func (l *FilesystemLoader) Root() string {
	return l.root
}

// Names lists the partial names available under the root, sorted.
func (l *FilesystemLoader) Names() ([]string, error) {
	var names []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, l.ext) {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(rel, l.ext)))
		return nil
	})
	if err != nil {
		return nil, NewLoaderError(ErrMsgReadPartialFailed, err)
	}
	return names, nil
}

// LoadPartial implements PartialLoader.
func (l *FilesystemLoader) LoadPartial(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := validatePartialName(name); err != nil {
		return "", false, err
	}

	path := filepath.Join(l.root, filepath.FromSlash(name)+l.ext)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, NewReadPartialError(path, err)
	}
	return string(data), true, nil
}

// validatePartialName rejects names that could escape the loader root.
func validatePartialName(name string) error {
	if name == "" {
		return NewLoaderError(ErrMsgEmptyPartialName, nil)
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, "/") || strings.ContainsAny(name, "\\:*?\"<>|") {
		return NewInvalidPartialNameError(name)
	}
	return nil
}
