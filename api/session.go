package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"commerce/adapters/session"
)

const (
	SESSION_KEY_USER_ID = "_user_id"
	// CONTEXT_KEY_USER_ID 是通過登入檢查後，存放使用者 id 的 gin context key
	CONTEXT_KEY_USER_ID = "commerce-user-id"
)

func (s *Server) SessionMiddleware() gin.HandlerFunc {
	return session.GinMiddleware(
		s.sessionStore,
		session.WithSessionKeyForCookie(s.config.Session.KeyForCookie),
		session.WithCookieMaxAge(s.config.Session.CookieMaxAge),
		session.WithCookieSecure(s.config.Session.CookieSecure),
		session.WithLogger(s.logger),
	)
}

// LoginRequired 拒絕沒有登入的請求
func (s *Server) LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := s.currentUserID(c)
		if !ok {
			s.respond(c, http.StatusUnauthorized, gin.H{"message": "login required"})
			c.Abort()
			return
		}
		c.Set(CONTEXT_KEY_USER_ID, userID)
		c.Next()
	}
}

// currentUserID 從 session 取得目前登入的使用者
func (s *Server) currentUserID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(CONTEXT_KEY_USER_ID); ok {
		return v.(uuid.UUID), true
	}
	sess, err := session.GetSession(c)
	if err != nil {
		return uuid.Nil, false
	}
	raw := sess.Get(SESSION_KEY_USER_ID)
	if raw == "" {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// login 將使用者寫入 session
func (s *Server) login(c *gin.Context, userID uuid.UUID) error {
	sess, err := session.GetSession(c)
	if err != nil {
		return err
	}
	sess.Clear()
	sess.Set(SESSION_KEY_USER_ID, userID.String())
	c.Set(CONTEXT_KEY_USER_ID, userID)
	return sess.Save()
}

func (s *Server) logout(c *gin.Context) error {
	sess, err := session.GetSession(c)
	if err != nil {
		return err
	}
	sess.Clear()
	return sess.Save()
}

// flash 新增一則只會被讀取一次的訊息
func (s *Server) flash(c *gin.Context, level, message string) {
	sess, err := session.GetSession(c)
	if err != nil {
		s.logger.Warn("Fail to get session for flash", slog.Any("error", err))
		return
	}
	if err := sess.AddFlash(session.Flash{Level: level, Message: message}); err != nil {
		s.logger.Warn("Fail to add flash", slog.Any("error", err))
	}
}

// respond 回傳 JSON，並附上尚未讀取的 flash 訊息
func (s *Server) respond(c *gin.Context, status int, body gin.H) {
	messages := []session.Flash{}
	sess, err := session.GetSession(c)
	if err == nil {
		flashes, err := sess.Flashes()
		if err != nil {
			s.logger.Warn("Fail to read flashes", slog.Any("error", err))
		}
		if len(flashes) > 0 {
			messages = flashes
		}
		// middleware 會在回應寫出之後才儲存，這裡先存確保之後的請求不會再讀到
		if sess.Modified() {
			if err := sess.Save(); err != nil {
				s.logger.Error("Fail to save session", slog.Any("error", err))
			}
		}
	} else if !errors.Is(err, session.ErrSessionNotFound) {
		s.logger.Warn("Fail to get session", slog.Any("error", err))
	}
	if body == nil {
		body = gin.H{}
	}
	body["messages"] = messages
	c.JSON(status, body)
}
