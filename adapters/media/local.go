package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// Local 將圖片存放在本機的媒體目錄
type Local struct {
	root       string
	publicPath string
}

type LocalOption func(*Local)

// WithPublicPath 設定媒體檔案對外公開的路徑前綴，預設為 /media
func WithPublicPath(publicPath string) LocalOption {
	return func(l *Local) {
		l.publicPath = publicPath
	}
}

func NewLocal(root string, options ...LocalOption) *Local {
	local := &Local{
		root:       root,
		publicPath: "/media",
	}
	for _, option := range options {
		option(local)
	}
	return local
}

// Root 回傳媒體根目錄
func (l *Local) Root() string {
	return l.root
}

func (l *Local) Save(ctx context.Context, dir, ext, contentType string, content []byte) (string, error) {
	const op = "Local.Save"
	if err := os.MkdirAll(filepath.Join(l.root, filepath.FromSlash(dir)), 0o755); err != nil {
		return "", fmt.Errorf("[%s] Fail to create directory, dir=%s, err=%w", op, dir, err)
	}
	ref := path.Join(dir, newFileName(ext))
	if err := os.WriteFile(l.Path(ref), content, 0o644); err != nil {
		return "", fmt.Errorf("[%s] Fail to write file, ref=%s, err=%w", op, ref, err)
	}
	return ref, nil
}

func (l *Local) Path(ref string) string {
	return filepath.Join(l.root, filepath.FromSlash(ref))
}

func (l *Local) URL(ref string) string {
	u, err := url.JoinPath(l.publicPath, ref)
	if err != nil {
		return path.Join(l.publicPath, ref)
	}
	return u
}

// List 列出目錄下的一般檔案，子目錄不會被列出
func (l *Local) List(ctx context.Context, dir string) ([]string, error) {
	const op = "Local.List"
	full := filepath.Join(l.root, filepath.FromSlash(dir))
	entries, err := os.ReadDir(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("[%s] Fail to list %s, err=%w", op, full, ErrDirectoryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list %s, err=%w", op, full, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(full, entry.Name()))
	}
	return paths, nil
}

func (l *Local) Remove(ctx context.Context, path string) error {
	const op = "Local.Remove"
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("[%s] Fail to remove %s, err=%w", op, path, err)
	}
	return nil
}
