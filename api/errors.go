package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"commerce/adapters/media"
	"commerce/market"
)

// handleError 將錯誤轉換為對應的 HTTP 狀態
//   - 表單錯誤回傳 400 與欄位錯誤
//   - 找不到資料與沒有權限都回傳 404
//   - 其他錯誤回傳 500 並記錄
func (s *Server) handleError(c *gin.Context, err error) {
	var formErr *market.FormError
	switch {
	case errors.As(err, &formErr):
		s.respond(c, http.StatusBadRequest, gin.H{"errors": formErr.Fields})
	case errors.Is(err, market.ErrAuctionNotFound),
		errors.Is(err, market.ErrUserNotFound),
		errors.Is(err, market.ErrProfileNotFound):
		s.respond(c, http.StatusNotFound, gin.H{"message": "not found"})
	case errors.Is(err, market.ErrInvalidCredentials):
		s.respond(c, http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		s.logger.Error("Unexpected error",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
		s.respond(c, http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}

// pathID 解析路徑上的 id，格式錯誤時視為找不到
func (s *Server) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.respond(c, http.StatusNotFound, gin.H{"message": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) userID(c *gin.Context) uuid.UUID {
	return c.MustGet(CONTEXT_KEY_USER_ID).(uuid.UUID)
}

// readUpload 讀取表單中的圖片，沒有上傳時回傳 nil
func readUpload(c *gin.Context, field string) (*market.Upload, error) {
	const op = "readUpload"
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to get form file, err=%w", op, err)
	}
	if header.Size > media.MaxImageSize {
		return nil, uploadError(field, &media.ReachLimitError{MaxBytes: media.MaxImageSize})
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to open form file, err=%w", op, err)
	}
	defer file.Close()

	image, err := media.ReadImage(file, media.MaxImageSize)
	if err != nil {
		return nil, uploadError(field, err)
	}
	return &market.Upload{
		Content:     image.Content,
		ContentType: image.ContentType,
		Extension:   image.Extension,
	}, nil
}

func uploadError(field string, err error) error {
	var limitErr *media.ReachLimitError
	var typeErr *media.UnsupportedImageError
	formErr := &market.FormError{}
	switch {
	case errors.As(err, &limitErr):
		formErr.Add(field, fmt.Sprintf("Image file too large ( > %s )", media.FormatBytes(limitErr.MaxBytes)))
	case errors.As(err, &typeErr):
		formErr.Add(field, typeErr.Error())
	default:
		return err
	}
	return formErr
}
