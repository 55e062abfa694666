//go:generate mockgen -package=session -destination=mock.go -source=interfaces.go -exclude_interfaces=ISession

package session

import "context"

type IStore interface {
	Load(ctx context.Context, name string) (map[string]string, error)
	Save(ctx context.Context, name string, data map[string]string) error
}

type ISession interface {
	ID() string
	Load() error
	Get(key string) string
	Set(key, value string)
	Delete(key string)
	Clear()
	// AddFlash 新增一則只會被讀取一次的訊息
	AddFlash(flash Flash) error
	// Flashes 取出並清除所有待讀取的訊息
	Flashes() ([]Flash, error)
	// Modified 表示資料在載入後是否被修改過
	Modified() bool
	Save() error
}
