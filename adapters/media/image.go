package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// MaxImageSize 是上傳圖片的大小上限
const MaxImageSize int64 = 5 << 20

// SecureMIMETypesExtension 定義了允許上傳的安全圖片類型及其對應的副檔名
var SecureMIMETypesExtension = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
	"image/webp": "webp",
}

// CheckSecureImageAndGetExtension 檢查 MIME 類型是否為允許的圖片類型，並返回對應的副檔名
func CheckSecureImageAndGetExtension(mimeType string) (bool, string) {
	ext, ok := SecureMIMETypesExtension[mimeType]
	return ok, ext
}

type UnsupportedImageError struct {
	MIMEType string
}

func (e *UnsupportedImageError) Error() string {
	return fmt.Sprintf("Invalid image type: %s", e.MIMEType)
}

// Image 是通過檢查的上傳圖片
type Image struct {
	Content     []byte
	ContentType string
	Extension   string
}

// ReadImage 讀取上傳的圖片
//   - 1. 大小不可超過 maxSize
//   - 2. 以內容判斷 MIME 類型，只接受不包含腳本的圖片類型
func ReadImage(r io.Reader, maxSize int64) (*Image, error) {
	const op = "ReadImage"
	content, err := io.ReadAll(NewMaxSizeReader(r, maxSize))
	var limitErr *ReachLimitError
	if errors.As(err, &limitErr) {
		return nil, limitErr
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to read image, err=%w", op, err)
	}
	mimeType := http.DetectContentType(content)
	secure, ext := CheckSecureImageAndGetExtension(mimeType)
	if !secure {
		return nil, &UnsupportedImageError{MIMEType: mimeType}
	}
	return &Image{Content: content, ContentType: mimeType, Extension: ext}, nil
}

func newFileName(ext string) string {
	return uuid.NewString() + "." + ext
}
