package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"commerce/adapters/session"
	"commerce/market"
)

type LoginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

var registerFields = []string{"first_name", "last_name", "username", "email", "password1", "password2"}

func (s *Server) GetRegister(c *gin.Context) {
	s.respond(c, http.StatusOK, gin.H{"fields": registerFields})
}

// PostRegister 建立帳號並自動登入
func (s *Server) PostRegister(c *gin.Context) {
	var form market.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		s.respond(c, http.StatusBadRequest, gin.H{"message": "invalid form"})
		return
	}
	user, err := s.accounts.Register(c, form)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if err := s.login(c, user.ID); err != nil {
		s.handleError(c, err)
		return
	}
	s.respond(c, http.StatusCreated, gin.H{"user": s.userResponse(user)})
}

func (s *Server) PostLogin(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		s.respond(c, http.StatusBadRequest, gin.H{"message": "invalid form"})
		return
	}
	user, err := s.accounts.Authenticate(c, form.Username, form.Password)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if err := s.login(c, user.ID); err != nil {
		s.handleError(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"user": s.userResponse(user)})
}

func (s *Server) PostLogout(c *gin.Context) {
	if err := s.logout(c); err != nil {
		s.handleError(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"message": "logged out"})
}

// GetUserProfile 回傳自己的個人檔案，匯入的使用者會在第一次瀏覽時建立
func (s *Server) GetUserProfile(c *gin.Context) {
	const op = "GetUserProfile"
	userID := s.userID(c)
	user, err := s.accounts.User(c, userID)
	if errors.Is(err, market.ErrUserNotFound) {
		// 帳號已被刪除，session 不再有效
		_ = s.logout(c)
		s.respond(c, http.StatusUnauthorized, gin.H{"message": "login required"})
		return
	}
	if err != nil {
		s.handleError(c, err)
		return
	}
	profile, err := s.accounts.EnsureProfile(c, userID)
	if err != nil {
		s.handleError(c, fmt.Errorf("[%s] Fail to ensure profile, err=%w", op, err))
		return
	}
	profile.User = user
	s.respond(c, http.StatusOK, gin.H{"profile": s.profileResponse(profile)})
}

func (s *Server) PostUserProfile(c *gin.Context) {
	var form market.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		s.respond(c, http.StatusBadRequest, gin.H{"message": "invalid form"})
		return
	}
	avatar, err := readUpload(c, "avatar")
	if err != nil {
		s.handleError(c, err)
		return
	}
	form.Avatar = avatar
	profile, err := s.accounts.UpdateProfile(c, s.userID(c), form)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.flash(c, session.FlashSuccess, "Your profile has been updated!")
	s.respond(c, http.StatusOK, gin.H{"profile": s.profileResponse(profile)})
}
