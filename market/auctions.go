package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"commerce/adapters/store"
	"commerce/models"
)

// AuctionForm 是新增與編輯拍賣商品的表單
// 編輯時 Price 會被忽略
type AuctionForm struct {
	Name        string `form:"name" json:"name" validate:"required,max=50"`
	Description string `form:"description" json:"description"`
	Price       string `form:"price" json:"price"`
	Category    string `form:"category" json:"category"`
	Status      string `form:"status" json:"status"`

	// Picture 為空時沿用原本的圖片
	Picture *Upload `form:"-" json:"-"`
}

// Auctions 處理拍賣商品的新增、編輯與留言
type Auctions struct {
	store    AuctionStore
	images   ImageStorage
	policy   *bluemonday.Policy
	validate *validator.Validate
	logger   *slog.Logger
}

type AuctionsOption func(*Auctions)

func WithAuctionsLogger(logger *slog.Logger) AuctionsOption {
	return func(a *Auctions) {
		a.logger = logger
	}
}

// WithAuctionsPolicy 設定商品描述與留言使用的 HTML 過濾規則，預設為 bluemonday.UGCPolicy
func WithAuctionsPolicy(policy *bluemonday.Policy) AuctionsOption {
	return func(a *Auctions) {
		a.policy = policy
	}
}

func NewAuctions(auctionStore AuctionStore, images ImageStorage, opts ...AuctionsOption) *Auctions {
	auctions := &Auctions{
		store:    auctionStore,
		images:   images,
		policy:   bluemonday.UGCPolicy(),
		validate: newValidator(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(auctions)
	}
	auctions.logger = auctions.logger.With("caller", "Auctions")
	return auctions
}

// parseAuctionForm 驗證表單並回傳分類與狀態，欄位為空時使用 fallback 的值
func (a *Auctions) parseAuctionForm(form AuctionForm, fallbackCategory models.Category, fallbackStatus models.Status) (models.Category, models.Status, *FormError) {
	formErr := validateForm(a.validate, form)
	category := models.Category(strings.TrimSpace(form.Category))
	if category == "" {
		category = fallbackCategory
	}
	if !category.Valid() {
		formErr.Add("category", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", category))
	}
	status := models.Status(strings.TrimSpace(form.Status))
	if status == "" {
		status = fallbackStatus
	}
	if !status.Valid() {
		formErr.Add("status", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", status))
	}
	return category, status, formErr
}

// CreateAuction 建立拍賣商品，價格必須大於 0
func (a *Auctions) CreateAuction(ctx context.Context, ownerID uuid.UUID, form AuctionForm) (*models.Auction, error) {
	const op = "CreateAuction"
	category, status, formErr := a.parseAuctionForm(form, models.CategoryOther, models.StatusActive)
	price, err := ParsePrice(form.Price)
	switch {
	case strings.TrimSpace(form.Price) == "":
		formErr.Add("price", "This field is required.")
	case err != nil:
		formErr.Add("price", "Enter a number.")
	case price <= 0:
		formErr.Add("price", "Ensure this value is greater than 0.")
	}
	if err := formErr.Err(); err != nil {
		return nil, err
	}

	auction := &models.Auction{
		Name:        strings.TrimSpace(form.Name),
		Description: sanitize(a.policy, form.Description),
		Price:       price,
		Category:    category,
		Status:      status,
		OwnerID:     ownerID,
	}
	if form.Picture != nil {
		ref, err := a.images.Save(ctx, models.AuctionImagesDir, form.Picture.Extension, form.Picture.ContentType, form.Picture.Content)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to save picture, err=%w", op, err)
		}
		auction.Picture = ref
	}
	if err := a.store.CreateAuction(ctx, auction); err != nil {
		return nil, fmt.Errorf("[%s] Fail to create auction, err=%w", op, err)
	}
	a.logger.Info("Auction created", slog.String("auction", auction.ID.String()), slog.String("owner", ownerID.String()))
	return auction, nil
}

// EditableAuction 取得可以被編輯的拍賣商品
// 商品不存在、已結束或不是擁有者時都回傳 ErrAuctionNotFound
func (a *Auctions) EditableAuction(ctx context.Context, requesterID, auctionID uuid.UUID) (*models.Auction, error) {
	const op = "EditableAuction"
	auction, err := a.store.FindAuction(ctx, auctionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to find auction, err=%w", op, err)
	}
	if auction.OwnerID != requesterID || auction.Status == models.StatusClosed {
		return nil, ErrAuctionNotFound
	}
	return auction, nil
}

// EditAuction 修改拍賣商品，價格與擁有者不能被修改
func (a *Auctions) EditAuction(ctx context.Context, requesterID, auctionID uuid.UUID, form AuctionForm) (*models.Auction, error) {
	const op = "EditAuction"
	auction, err := a.EditableAuction(ctx, requesterID, auctionID)
	if err != nil {
		return nil, err
	}
	// 沒有送出的分類與狀態維持原本的值
	category, status, formErr := a.parseAuctionForm(form, auction.Category, auction.Status)
	if err := formErr.Err(); err != nil {
		return nil, err
	}
	auction.Name = strings.TrimSpace(form.Name)
	auction.Description = sanitize(a.policy, form.Description)
	auction.Category = category
	auction.Status = status
	if form.Picture != nil {
		ref, err := a.images.Save(ctx, models.AuctionImagesDir, form.Picture.Extension, form.Picture.ContentType, form.Picture.Content)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to save picture, err=%w", op, err)
		}
		auction.Picture = ref
	}
	// 檢查之後商品可能已被結束，UpdateAuction 會再確認一次
	if err := a.store.UpdateAuction(ctx, auction); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("[%s] Fail to update auction, err=%w", op, err)
	}
	return auction, nil
}

// AddComment 在拍賣商品下新增留言
func (a *Auctions) AddComment(ctx context.Context, commenterID, auctionID uuid.UUID, text string) (*models.Comment, error) {
	const op = "AddComment"
	// 長度以實際存入的內容計算，轉義後的字元可能比原文長
	text = sanitize(a.policy, text)
	switch {
	case text == "":
		return nil, fieldError("text", "This field is required.")
	case len([]rune(text)) > models.CommentMaxLength:
		return nil, fieldError("text", fmt.Sprintf("Ensure this value has at most %d characters.", models.CommentMaxLength))
	}
	if _, err := a.store.FindAuction(ctx, auctionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("[%s] Fail to find auction, err=%w", op, err)
	}
	comment := &models.Comment{
		Text:        text,
		CommenterID: commenterID,
		AuctionID:   auctionID,
	}
	if err := a.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("[%s] Fail to create comment, err=%w", op, err)
	}
	return comment, nil
}
