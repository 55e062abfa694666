package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"commerce/adapters/media"
	"commerce/adapters/store"
	"commerce/api"
)

type testEnv struct {
	router    *gin.Engine
	mediaRoot string
}

// newTestEnv 建立使用記憶體資料庫、miniredis 與暫存媒體目錄的 Server
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(store.Config{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mediaRoot := t.TempDir()
	server, err := api.NewServer(context.Background(), api.ServerConfig{
		Redis:   api.RedisConfig{KeyPrefix: "test:"},
		Session: api.SessionConfig{KeyForCookie: "sessionid", CookieMaxAge: time.Hour},
	},
		api.WithDB(db),
		api.WithRedisClient(client),
		api.WithMediaStorage(media.NewLocal(mediaRoot)),
	)
	require.NoError(t, err)
	require.NoError(t, server.Migrate(context.Background()))
	t.Cleanup(server.Close)
	return &testEnv{router: server.Router(), mediaRoot: mediaRoot}
}

// testClient 會在請求之間保留 cookie，模擬同一個瀏覽器
type testClient struct {
	t       *testing.T
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (e *testEnv) client(t *testing.T) *testClient {
	return &testClient{t: t, env: e, cookies: map[string]*http.Cookie{}}
}

type response struct {
	Status int
	Body   map[string]any
}

func (c *testClient) do(method, target string, body io.Reader, contentType string) response {
	c.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.env.router.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}

	res := response{Status: rec.Code, Body: map[string]any{}}
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &res.Body), rec.Body.String())
	return res
}

func (c *testClient) get(target string) response {
	c.t.Helper()
	return c.do(http.MethodGet, target, nil, "")
}

func (c *testClient) postForm(target string, values url.Values) response {
	c.t.Helper()
	return c.do(http.MethodPost, target, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
}

// postMultipart 送出包含一個檔案欄位的 multipart 表單
func (c *testClient) postMultipart(target string, values url.Values, fileField, fileName string, content []byte) response {
	c.t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, vs := range values {
		for _, v := range vs {
			require.NoError(c.t, writer.WriteField(key, v))
		}
	}
	part, err := writer.CreateFormFile(fileField, fileName)
	require.NoError(c.t, err)
	_, err = part.Write(content)
	require.NoError(c.t, err)
	require.NoError(c.t, writer.Close())
	return c.do(http.MethodPost, target, &buf, writer.FormDataContentType())
}

// register 註冊並登入一個新的使用者
func (c *testClient) register(username string) map[string]any {
	c.t.Helper()
	res := c.postForm("/register", url.Values{
		"first_name": {"Test"},
		"last_name":  {"User"},
		"username":   {username},
		"email":      {username + "@example.com"},
		"password1":  {"s3cret-pass"},
		"password2":  {"s3cret-pass"},
	})
	require.Equal(c.t, http.StatusCreated, res.Status, res.Body)
	return res.Body["user"].(map[string]any)
}

// addAuction 建立一個拍賣商品並回傳 id
func (c *testClient) addAuction(name, price string) string {
	c.t.Helper()
	res := c.postForm("/add_auction", url.Values{
		"name":     {name},
		"price":    {price},
		"category": {"2"},
	})
	require.Equal(c.t, http.StatusCreated, res.Status, res.Body)
	return res.Body["auction"].(map[string]any)["id"].(string)
}

func messages(res response) []any {
	return res.Body["messages"].([]any)
}

func storeConfig(driver, database, path string) store.Config {
	return store.Config{Driver: driver, Database: database, Path: path}
}

// pngHeader 足以讓 http.DetectContentType 判斷為 image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
