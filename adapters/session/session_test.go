package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewSession(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		id      string
		store   IStore
		wantNil bool
	}{
		{
			name:    "valid parameters",
			ctx:     context.Background(),
			id:      "test-id",
			store:   &MockIStore{},
			wantNil: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			id:      "test-id",
			store:   &MockIStore{},
			wantNil: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession(tt.ctx, tt.id, tt.store)
			if tt.wantNil {
				assert.Nil(t, session)
			} else {
				assert.NotNil(t, session)
			}
		})
	}
}

func TestSession_Load(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name      string
		mockSetup func(*MockIStore)
		wantErr   bool
		errMsg    string
	}{
		{
			name: "successful load",
			mockSetup: func(mockStore *MockIStore) {
				mockStore.EXPECT().
					Load(gomock.Any(), "test-id").
					Return(map[string]string{"key": "value"}, nil)
			},
			wantErr: false,
		},
		{
			name: "load error",
			mockSetup: func(mockStore *MockIStore) {
				mockStore.EXPECT().
					Load(gomock.Any(), "test-id").
					Return(nil, errors.New("load error"))
			},
			wantErr: true,
			errMsg:  "load error",
		},
		{
			name: "already loaded",
			mockSetup: func(mockStore *MockIStore) {
				// 不應該呼叫 Load
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := NewMockIStore(ctrl)
			tt.mockSetup(mockStore)

			s := &sessionImpl{
				id:    "test-id",
				ctx:   context.Background(),
				store: mockStore,
			}

			if tt.name == "already loaded" {
				s.data = map[string]string{"existing": "data"}
			}

			err := s.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSession_Save(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name      string
		data      map[string]string
		mockSetup func(*MockIStore)
		wantErr   bool
		errMsg    string
	}{
		{
			name: "successful save",
			data: map[string]string{"key": "value"},
			mockSetup: func(mockStore *MockIStore) {
				mockStore.EXPECT().
					Save(gomock.Any(), "test-id", map[string]string{"key": "value"}).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "save error",
			data: map[string]string{"key": "value"},
			mockSetup: func(mockStore *MockIStore) {
				mockStore.EXPECT().
					Save(gomock.Any(), "test-id", gomock.Any()).
					Return(errors.New("save error"))
			},
			wantErr: true,
			errMsg:  "save error",
		},
		{
			name:      "nil data",
			data:      nil,
			mockSetup: func(mockStore *MockIStore) {},
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := NewMockIStore(ctrl)
			tt.mockSetup(mockStore)

			s := &sessionImpl{
				id:    "test-id",
				ctx:   context.Background(),
				store: mockStore,
				data:  tt.data,
			}

			err := s.Save()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSession_Get(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]string
		key      string
		expected string
	}{
		{
			name:     "get existing key",
			data:     map[string]string{"key1": "value1"},
			key:      "key1",
			expected: "value1",
		},
		{
			name:     "get non-existent key",
			data:     map[string]string{"key1": "value1"},
			key:      "key2",
			expected: "",
		},
		{
			name:     "nil data",
			data:     nil,
			key:      "key1",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &sessionImpl{
				data: tt.data,
			}
			assert.Equal(t, tt.expected, s.Get(tt.key))
		})
	}
}

func TestSession_Set(t *testing.T) {
	tests := []struct {
		name         string
		initialData  map[string]string
		key          string
		value        string
		expectedData map[string]string
	}{
		{
			name:         "set to existing map",
			initialData:  map[string]string{"key1": "value1"},
			key:          "key2",
			value:        "value2",
			expectedData: map[string]string{"key1": "value1", "key2": "value2"},
		},
		{
			name:         "set to nil map",
			initialData:  nil,
			key:          "key1",
			value:        "value1",
			expectedData: map[string]string{"key1": "value1"},
		},
		{
			name:         "override existing key",
			initialData:  map[string]string{"key1": "value1"},
			key:          "key1",
			value:        "new value",
			expectedData: map[string]string{"key1": "new value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &sessionImpl{
				data: tt.initialData,
			}
			s.Set(tt.key, tt.value)
			assert.Equal(t, tt.expectedData, s.data)
		})
	}
}

func TestSession_Delete(t *testing.T) {
	tests := []struct {
		name         string
		initialData  map[string]string
		key          string
		expectedData map[string]string
	}{
		{
			name:         "delete existing key",
			initialData:  map[string]string{"key1": "value1", "key2": "value2"},
			key:          "key1",
			expectedData: map[string]string{"key2": "value2"},
		},
		{
			name:         "delete non-existent key",
			initialData:  map[string]string{"key1": "value1"},
			key:          "key2",
			expectedData: map[string]string{"key1": "value1"},
		},
		{
			name:         "delete from nil map",
			initialData:  nil,
			key:          "key1",
			expectedData: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &sessionImpl{
				data: tt.initialData,
			}
			s.Delete(tt.key)
			assert.Equal(t, tt.expectedData, s.data)
		})
	}
}

func TestSession_Clear(t *testing.T) {
	tests := []struct {
		name        string
		initialData map[string]string
	}{
		{
			name:        "clear non-empty map",
			initialData: map[string]string{"key1": "value1", "key2": "value2"},
		},
		{
			name:        "clear empty map",
			initialData: map[string]string{},
		},
		{
			name:        "clear nil map",
			initialData: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &sessionImpl{
				data: tt.initialData,
			}
			s.Clear()
			assert.NotNil(t, s.data)
			assert.Empty(t, s.data)
		})
	}
}

func TestSession_Flashes(t *testing.T) {
	s := &sessionImpl{}

	flashes, err := s.Flashes()
	require.NoError(t, err)
	assert.Empty(t, flashes)
	assert.False(t, s.Modified())

	require.NoError(t, s.AddFlash(Flash{Level: FlashSuccess, Message: "Your bid has been placed!"}))
	require.NoError(t, s.AddFlash(Flash{Level: FlashError, Message: "Something went wrong"}))
	assert.True(t, s.Modified())

	flashes, err = s.Flashes()
	require.NoError(t, err)
	assert.Equal(t, []Flash{
		{Level: FlashSuccess, Message: "Your bid has been placed!"},
		{Level: FlashError, Message: "Something went wrong"},
	}, flashes)

	// 訊息只會被讀取一次
	flashes, err = s.Flashes()
	require.NoError(t, err)
	assert.Empty(t, flashes)
}

func TestSession_FlashesInvalidData(t *testing.T) {
	s := &sessionImpl{data: map[string]string{FlashKey: "not base64!"}}
	_, err := s.Flashes()
	assert.Error(t, err)
	assert.Error(t, s.AddFlash(Flash{Message: "x"}))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	tests := []struct {
		name      string
		cookie    string
		handler   gin.HandlerFunc
		mockSetup func(*MockIStore)
	}{
		{
			name:      "untouched session is not saved",
			handler:   func(c *gin.Context) { c.Status(http.StatusNoContent) },
			mockSetup: func(mockStore *MockIStore) {},
		},
		{
			name:   "modified session is saved",
			cookie: "existing-id",
			handler: func(c *gin.Context) {
				session, err := GetSession(c)
				if err != nil {
					c.Status(http.StatusInternalServerError)
					return
				}
				session.Set("key", "value")
				c.Status(http.StatusNoContent)
			},
			mockSetup: func(mockStore *MockIStore) {
				mockStore.EXPECT().Load(gomock.Any(), "existing-id").Return(map[string]string{}, nil)
				mockStore.EXPECT().Save(gomock.Any(), "existing-id", map[string]string{"key": "value"}).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := NewMockIStore(ctrl)
			tt.mockSetup(mockStore)

			router := gin.New()
			router.Use(GinMiddleware(mockStore, WithCookieSecure(false)))
			router.GET("/", tt.handler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, "session", cookies[0].Name)
			if tt.cookie != "" {
				assert.Equal(t, tt.cookie, cookies[0].Value)
			} else {
				assert.NotEmpty(t, cookies[0].Value)
			}
		})
	}
}

func TestGetSessionWithoutMiddleware(t *testing.T) {
	_, err := GetSession(context.Background())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
