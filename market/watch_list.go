package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"commerce/adapters/store"
	"commerce/models"
)

// WatchList 管理使用者關注的拍賣商品
type WatchList struct {
	store WatchListStore
}

func NewWatchList(watchListStore WatchListStore) *WatchList {
	return &WatchList{store: watchListStore}
}

// Add 將商品加入關注清單，重複加入不會報錯
func (w *WatchList) Add(ctx context.Context, profileID, auctionID uuid.UUID) error {
	const op = "WatchList.Add"
	if _, err := w.store.FindAuction(ctx, auctionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAuctionNotFound
		}
		return fmt.Errorf("[%s] Fail to find auction, err=%w", op, err)
	}
	if err := w.store.AddToWatchList(ctx, profileID, auctionID); err != nil {
		return fmt.Errorf("[%s] Fail to add auction, err=%w", op, err)
	}
	return nil
}

// Remove 將商品移出關注清單，商品不在清單中時不做任何事
func (w *WatchList) Remove(ctx context.Context, profileID, auctionID uuid.UUID) error {
	const op = "WatchList.Remove"
	if err := w.store.RemoveFromWatchList(ctx, profileID, auctionID); err != nil {
		return fmt.Errorf("[%s] Fail to remove auction, err=%w", op, err)
	}
	return nil
}

func (w *WatchList) List(ctx context.Context, profileID uuid.UUID) ([]models.Auction, error) {
	return w.store.WatchList(ctx, profileID)
}

func (w *WatchList) Contains(ctx context.Context, profileID, auctionID uuid.UUID) (bool, error) {
	return w.store.InWatchList(ctx, profileID, auctionID)
}
