package session

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// FlashKey 是待讀取訊息在 session 中的 key
const FlashKey = "_flashes"

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash 是一則只會被讀取一次的訊息
type Flash struct {
	Level   string `msgpack:"level" json:"level"`
	Message string `msgpack:"message" json:"message"`
}

// encodeFlashes 將訊息以 msgpack 序列化後再做 base64 編碼
func encodeFlashes(flashes []Flash) (string, error) {
	bytes, err := msgpack.Marshal(flashes)
	if err != nil {
		return "", fmt.Errorf("msgpack marshal error: %w", err)
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

func decodeFlashes(encoded string) ([]Flash, error) {
	if encoded == "" {
		return nil, nil
	}
	bytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("base64 decode error: %w", err)
	}
	var flashes []Flash
	if err := msgpack.Unmarshal(bytes, &flashes); err != nil {
		return nil, fmt.Errorf("msgpack unmarshal error: %w", err)
	}
	return flashes, nil
}
