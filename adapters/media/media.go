package media

import (
	"context"
	"errors"
)

// ErrDirectoryNotFound 代表媒體目錄不存在
var ErrDirectoryNotFound = errors.New("directory not found")

// Storage 是圖片檔案的儲存後端
//
// ref 是以 "/" 分隔、相對於媒體根目錄的參照，例如 profile_images/a.png，
// 也就是資料庫中記錄的值；path 則是後端實際使用的位置。
type Storage interface {
	// Save 將圖片存到 dir 目錄下並回傳新的參照
	Save(ctx context.Context, dir, ext, contentType string, content []byte) (string, error)
	// Path 將參照轉換為後端的實際位置
	Path(ref string) string
	// URL 回傳參照對外公開的網址
	URL(ref string) string
	// List 列出目錄下所有檔案的實際位置
	List(ctx context.Context, dir string) ([]string, error)
	// Remove 刪除實際位置上的檔案
	Remove(ctx context.Context, path string) error
}
