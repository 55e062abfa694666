package market

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidPrice       = errors.New("invalid price")
	ErrAuctionNotFound    = errors.New("auction not found")
	ErrAuctionNotActive   = errors.New("auction is not active")
	ErrBidTooLow          = errors.New("bid must be greater than the current price")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
)

// FormError 收集表單欄位的驗證錯誤，key 是欄位名稱
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field, message := range e.Fields {
		fields = append(fields, field+": "+message)
	}
	sort.Strings(fields)
	return "invalid form: " + strings.Join(fields, "; ")
}

// Add 記錄欄位錯誤，同一個欄位只保留第一個錯誤
func (e *FormError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Err 沒有任何欄位錯誤時回傳 nil
func (e *FormError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// fieldError 建立只有單一欄位錯誤的 FormError
func fieldError(field, message string) error {
	formErr := &FormError{}
	formErr.Add(field, message)
	return formErr
}
