package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"commerce/models"
)

// Fixture 是匯入資料的檔案格式
type Fixture struct {
	Users    []FixtureUser    `json:"users"`
	Auctions []FixtureAuction `json:"auctions"`
}

// FixtureUser 可以提供明碼 Password 或已經雜湊過的 PasswordHash
type FixtureUser struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	PasswordHash string    `json:"password_hash"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
}

// FixtureAuction 的 Owner 是同一個檔案中使用者的 username
type FixtureAuction struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Picture     string    `json:"picture"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Owner       string    `json:"owner"`
}

func DecodeFixture(r io.Reader) (*Fixture, error) {
	const op = "DecodeFixture"
	var fixture Fixture
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("[%s] Fail to decode fixture, err=%w", op, err)
	}
	return &fixture, nil
}

// Models 將檔案內容轉換為資料表紀錄，沒有指定 id 的紀錄會產生新的 id
func (f *Fixture) Models() ([]models.User, []models.Auction, error) {
	const op = "Fixture.Models"
	users := make([]models.User, 0, len(f.Users))
	owners := map[string]uuid.UUID{}
	for _, u := range f.Users {
		if u.Username == "" {
			return nil, nil, fmt.Errorf("[%s] User without username", op)
		}
		if _, ok := owners[u.Username]; ok {
			return nil, nil, fmt.Errorf("[%s] Duplicated username: %s", op, u.Username)
		}
		id, err := idOrNew(u.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("[%s] Fail to generate id, err=%w", op, err)
		}
		hash := u.PasswordHash
		if u.Password != "" {
			bytes, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, nil, fmt.Errorf("[%s] Fail to hash password of %s, err=%w", op, u.Username, err)
			}
			hash = string(bytes)
		}
		owners[u.Username] = id
		users = append(users, models.User{
			ID:           id,
			Username:     u.Username,
			PasswordHash: hash,
			Email:        u.Email,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
		})
	}

	auctions := make([]models.Auction, 0, len(f.Auctions))
	for _, a := range f.Auctions {
		ownerID, ok := owners[a.Owner]
		if !ok {
			return nil, nil, fmt.Errorf("[%s] Unknown owner of auction %q: %s", op, a.Name, a.Owner)
		}
		category := models.Category(lo.Ternary(a.Category == "", string(models.CategoryOther), a.Category))
		if !category.Valid() {
			return nil, nil, fmt.Errorf("[%s] Invalid category of auction %q: %s", op, a.Name, a.Category)
		}
		status := models.Status(lo.Ternary(a.Status == "", string(models.StatusActive), a.Status))
		if !status.Valid() {
			return nil, nil, fmt.Errorf("[%s] Invalid status of auction %q: %s", op, a.Name, a.Status)
		}
		id, err := idOrNew(a.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("[%s] Fail to generate id, err=%w", op, err)
		}
		auctions = append(auctions, models.Auction{
			ID:          id,
			Name:        a.Name,
			Description: a.Description,
			Picture:     a.Picture,
			Price:       a.Price,
			Category:    category,
			Status:      status,
			OwnerID:     ownerID,
		})
	}
	return users, auctions, nil
}

func idOrNew(id uuid.UUID) (uuid.UUID, error) {
	if id != uuid.Nil {
		return id, nil
	}
	return uuid.NewV7()
}
