package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"

	"commerce/adapters/store"
	"commerce/models"
)

// PasswordMinLength 是密碼的最短長度
const PasswordMinLength = 8

// RegisterForm 是註冊表單
type RegisterForm struct {
	FirstName string `form:"first_name" json:"first_name" validate:"required,max=30"`
	LastName  string `form:"last_name" json:"last_name" validate:"required,max=30"`
	Username  string `form:"username" json:"username" validate:"required,max=150"`
	Email     string `form:"email" json:"email" validate:"required,max=30,email"`
	Password1 string `form:"password1" json:"password1" validate:"required"`
	Password2 string `form:"password2" json:"password2" validate:"required,eqfield=Password1"`
}

// Accounts 處理註冊、登入與個人檔案
type Accounts struct {
	store    AccountStore
	images   ImageStorage
	policy   *bluemonday.Policy
	validate *validator.Validate
	logger   *slog.Logger
}

type AccountsOption func(*Accounts)

func WithAccountsLogger(logger *slog.Logger) AccountsOption {
	return func(a *Accounts) {
		a.logger = logger
	}
}

// WithAccountsPolicy 設定自我介紹使用的 HTML 過濾規則，預設為 bluemonday.UGCPolicy
func WithAccountsPolicy(policy *bluemonday.Policy) AccountsOption {
	return func(a *Accounts) {
		a.policy = policy
	}
}

func NewAccounts(accountStore AccountStore, images ImageStorage, opts ...AccountsOption) *Accounts {
	accounts := &Accounts{
		store:    accountStore,
		images:   images,
		policy:   bluemonday.UGCPolicy(),
		validate: newValidator(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(accounts)
	}
	accounts.logger = accounts.logger.With("caller", "Accounts")
	return accounts
}

// Register 建立使用者，並在同一個交易中建立個人檔案
func (a *Accounts) Register(ctx context.Context, form RegisterForm) (*models.User, error) {
	const op = "Register"
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)

	formErr := validateForm(a.validate, form)
	if _, ok := formErr.Fields["password2"]; !ok {
		if msg := checkPassword(form.Password2, form.Username); msg != "" {
			formErr.Add("password2", msg)
		}
	}
	if _, ok := formErr.Fields["username"]; !ok {
		exists, err := a.store.UsernameExists(ctx, form.Username)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to check username, err=%w", op, err)
		}
		if exists {
			formErr.Add("username", "A user with that username already exists.")
		}
	}
	if err := formErr.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to hash password, err=%w", op, err)
	}
	user := &models.User{
		Username:     form.Username,
		PasswordHash: string(hash),
		Email:        form.Email,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
	}
	if _, err := a.store.CreateUserWithProfile(ctx, user); err != nil {
		// 同時註冊相同的使用者名稱時，只有一個會成功
		if errors.Is(err, store.ErrDuplicated) {
			return nil, fieldError("username", "A user with that username already exists.")
		}
		return nil, fmt.Errorf("[%s] Fail to create user, err=%w", op, err)
	}
	a.logger.Info("User registered", slog.String("user", user.ID.String()))
	return user, nil
}

// checkPassword 檢查密碼強度，通過時回傳空字串
func checkPassword(password, username string) string {
	switch {
	case len([]rune(password)) < PasswordMinLength:
		return fmt.Sprintf("This password is too short. It must contain at least %d characters.", PasswordMinLength)
	case strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1:
		return "This password is entirely numeric."
	case strings.EqualFold(password, username):
		return "The password is too similar to the username."
	}
	return ""
}

// Authenticate 驗證使用者名稱與密碼
func (a *Accounts) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	const op = "Authenticate"
	user, err := a.store.FindUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to find user, err=%w", op, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (a *Accounts) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "User"
	user, err := a.store.FindUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to find user, err=%w", op, err)
	}
	return user, nil
}

// EnsureProfile 確保使用者擁有個人檔案，重複呼叫只會有一份
func (a *Accounts) EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return a.store.EnsureProfile(ctx, userID)
}

// FindProfileByUser 取得使用者的個人檔案，不存在時 found 為 false
func (a *Accounts) FindProfileByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, bool, error) {
	return a.store.FindProfileByUser(ctx, userID)
}

// Profile 取得使用者的個人檔案，不存在時回傳 ErrProfileNotFound
func (a *Accounts) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, found, err := a.store.FindProfileByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// ImportUsers 匯入使用者資料，不會建立個人檔案
func (a *Accounts) ImportUsers(ctx context.Context, users []models.User) error {
	return a.store.ImportUsers(ctx, users)
}

// ProfileForm 是編輯個人檔案的表單
type ProfileForm struct {
	Bio    string  `form:"bio" json:"bio" validate:"max=3000"`
	Avatar *Upload `form:"-" json:"-"`
}

// Upload 是通過檢查的上傳圖片
type Upload struct {
	Content     []byte
	ContentType string
	Extension   string
}

// UpdateProfile 更新自我介紹與頭像，沒有個人檔案時會先建立
// 被取代的頭像檔案不會被刪除，由清理工具處理
func (a *Accounts) UpdateProfile(ctx context.Context, userID uuid.UUID, form ProfileForm) (*models.Profile, error) {
	const op = "UpdateProfile"
	if err := validateForm(a.validate, form).Err(); err != nil {
		return nil, err
	}
	user, err := a.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	// 匯入的使用者沒有個人檔案，第一次編輯時建立
	profile, err := a.store.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to ensure profile, err=%w", op, err)
	}
	profile.Bio = sanitize(a.policy, form.Bio)
	if form.Avatar != nil {
		ref, err := a.images.Save(ctx, models.ProfileImagesDir, form.Avatar.Extension, form.Avatar.ContentType, form.Avatar.Content)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to save avatar, err=%w", op, err)
		}
		profile.Avatar = ref
	}
	if err := a.store.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("[%s] Fail to update profile, err=%w", op, err)
	}
	profile.User = user
	return profile, nil
}
