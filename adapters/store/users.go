package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"commerce/models"
)

// CreateUserWithProfile 在同一個交易中建立使用者以及其個人檔案
func (s *Store) CreateUserWithProfile(ctx context.Context, user *models.User) (*models.Profile, error) {
	const op = "CreateUserWithProfile"
	var profile *models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Omit(clause.Associations).Create(user); result.Error != nil {
			return translate(result.Error)
		}
		p, err := ensureProfile(tx, user.ID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create user, err=%w", op, err)
	}
	return profile, nil
}

// EnsureProfile 確保使用者擁有個人檔案，重複呼叫不會建立第二份
func (s *Store) EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "EnsureProfile"
	profile, err := ensureProfile(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to ensure profile, user=%s, err=%w", op, userID, err)
	}
	return profile, nil
}

func ensureProfile(tx *gorm.DB, userID uuid.UUID) (*models.Profile, error) {
	candidate := models.Profile{UserID: userID}
	if result := tx.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(&candidate); result.Error != nil {
		return nil, translate(result.Error)
	}
	var profile models.Profile
	if result := tx.Where("user_id = ?", userID).First(&profile); result.Error != nil {
		return nil, translate(result.Error)
	}
	return &profile, nil
}

// ImportUsers 批次匯入使用者，不會建立個人檔案
func (s *Store) ImportUsers(ctx context.Context, users []models.User) error {
	const op = "ImportUsers"
	if len(users) == 0 {
		return nil
	}
	if result := s.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(users, 100); result.Error != nil {
		return fmt.Errorf("[%s] Fail to import users, err=%w", op, translate(result.Error))
	}
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "FindUserByID"
	user := models.User{}
	if result := s.db.WithContext(ctx).Where("id = ?", id).First(&user); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to find user, id=%s, err=%w", op, id, translate(result.Error))
	}
	return &user, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "FindUserByUsername"
	user := models.User{}
	if result := s.db.WithContext(ctx).Where("username = ?", username).First(&user); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to find user, username=%s, err=%w", op, username, translate(result.Error))
	}
	return &user, nil
}

// UsernameExists 檢查使用者名稱是否已被註冊
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	const op = "UsernameExists"
	var count int64
	if result := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count); result.Error != nil {
		return false, fmt.Errorf("[%s] Fail to count users, err=%w", op, result.Error)
	}
	return count > 0, nil
}

// FindProfileByUser 取得使用者的個人檔案，不存在時 found 為 false
func (s *Store) FindProfileByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, bool, error) {
	const op = "FindProfileByUser"
	profile := models.Profile{}
	result := s.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).Limit(1).Find(&profile)
	if result.Error != nil {
		return nil, false, fmt.Errorf("[%s] Fail to find profile, user=%s, err=%w", op, userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}
	return &profile, true, nil
}

// UpdateProfile 更新個人檔案的頭像與自我介紹
func (s *Store) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	const op = "UpdateProfile"
	result := s.db.WithContext(ctx).Model(profile).Select("avatar", "bio", "updated_at").Updates(profile)
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to update profile, err=%w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("[%s] Fail to update profile, id=%s, err=%w", op, profile.ID, ErrNotFound)
	}
	return nil
}

// DeleteUser 刪除使用者以及所有屬於該使用者的資料
//   - 個人檔案與關注清單
//   - 出價、留言
//   - 擁有的拍賣商品以及商品底下的出價與留言
//
// 被刪除的出價如果是其他商品的最高出價，該商品的 top_bid_id 會被清空
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const op = "DeleteUser"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var auctionIDs []uuid.UUID
		if result := tx.Model(&models.Auction{}).Where("owner_id = ?", id).Pluck("id", &auctionIDs); result.Error != nil {
			return result.Error
		}
		if err := deleteAuctions(tx, auctionIDs); err != nil {
			return err
		}
		var bidIDs []uuid.UUID
		if result := tx.Model(&models.Bid{}).Where("bidder_id = ?", id).Pluck("id", &bidIDs); result.Error != nil {
			return result.Error
		}
		if len(bidIDs) > 0 {
			if result := tx.Model(&models.Auction{}).Where("top_bid_id IN ?", bidIDs).Update("top_bid_id", nil); result.Error != nil {
				return result.Error
			}
			if result := tx.Where("id IN ?", bidIDs).Delete(&models.Bid{}); result.Error != nil {
				return result.Error
			}
		}
		if result := tx.Where("commenter_id = ?", id).Delete(&models.Comment{}); result.Error != nil {
			return result.Error
		}
		var profileIDs []uuid.UUID
		if result := tx.Model(&models.Profile{}).Where("user_id = ?", id).Pluck("id", &profileIDs); result.Error != nil {
			return result.Error
		}
		if len(profileIDs) > 0 {
			if result := tx.Where("profile_id IN ?", profileIDs).Delete(&models.WatchListEntry{}); result.Error != nil {
				return result.Error
			}
			if result := tx.Where("id IN ?", profileIDs).Delete(&models.Profile{}); result.Error != nil {
				return result.Error
			}
		}
		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to delete user, id=%s, err=%w", op, id, err)
	}
	return nil
}
