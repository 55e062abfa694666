package store

import (
	"context"
	"fmt"

	"commerce/models"
)

// ProfileAvatars 回傳所有非預設頭像的參照
func (s *Store) ProfileAvatars(ctx context.Context) ([]string, error) {
	const op = "ProfileAvatars"
	var refs []string
	if result := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("avatar <> ? AND avatar <> ?", models.DefaultAvatar, "").
		Pluck("avatar", &refs); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list avatars, err=%w", op, result.Error)
	}
	return refs, nil
}

// AuctionPictures 回傳所有非預設商品圖片的參照
func (s *Store) AuctionPictures(ctx context.Context) ([]string, error) {
	const op = "AuctionPictures"
	var refs []string
	if result := s.db.WithContext(ctx).
		Model(&models.Auction{}).
		Where("picture <> ? AND picture <> ?", models.DefaultPicture, "").
		Pluck("picture", &refs); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list pictures, err=%w", op, result.Error)
	}
	return refs, nil
}
