package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"commerce/models"
)

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

type ProfileResponse struct {
	ID     uuid.UUID     `json:"id"`
	User   *UserResponse `json:"user,omitempty"`
	Avatar string        `json:"avatar"`
	Bio    string        `json:"bio"`
}

type BidResponse struct {
	ID        uuid.UUID     `json:"id"`
	Price     float64       `json:"price"`
	AuctionID uuid.UUID     `json:"auction_id"`
	Bidder    *UserResponse `json:"bidder,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type AuctionResponse struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Picture     string        `json:"picture"`
	Price       float64       `json:"price"`
	Category    models.Choice `json:"category"`
	Status      models.Choice `json:"status"`
	Owner       *UserResponse `json:"owner,omitempty"`
	TopBid      *BidResponse  `json:"top_bid,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type CommentResponse struct {
	ID        uuid.UUID     `json:"id"`
	Text      string        `json:"text"`
	Commenter *UserResponse `json:"commenter,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

func (s *Server) userResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func (s *Server) profileResponse(profile *models.Profile) *ProfileResponse {
	return &ProfileResponse{
		ID:     profile.ID,
		User:   s.userResponse(profile.User),
		Avatar: s.media.URL(profile.Avatar),
		Bio:    profile.Bio,
	}
}

func (s *Server) bidResponse(bid *models.Bid) *BidResponse {
	if bid == nil {
		return nil
	}
	return &BidResponse{
		ID:        bid.ID,
		Price:     bid.Price,
		AuctionID: bid.AuctionID,
		Bidder:    s.userResponse(bid.Bidder),
		CreatedAt: bid.CreatedAt,
		UpdatedAt: bid.UpdatedAt,
	}
}

func (s *Server) auctionResponse(auction *models.Auction) *AuctionResponse {
	return &AuctionResponse{
		ID:          auction.ID,
		Name:        auction.Name,
		Description: auction.Description,
		Picture:     s.media.URL(auction.Picture),
		Price:       auction.Price,
		Category:    models.Choice{Value: string(auction.Category), Label: auction.Category.Label()},
		Status:      models.Choice{Value: string(auction.Status), Label: auction.Status.Label()},
		Owner:       s.userResponse(auction.Owner),
		TopBid:      s.bidResponse(auction.TopBid),
		CreatedAt:   auction.CreatedAt,
		UpdatedAt:   auction.UpdatedAt,
	}
}

func (s *Server) auctionsResponse(auctions []models.Auction) []*AuctionResponse {
	return lo.Map(auctions, func(auction models.Auction, _ int) *AuctionResponse {
		return s.auctionResponse(&auction)
	})
}

func (s *Server) commentsResponse(comments []models.Comment) []*CommentResponse {
	return lo.Map(comments, func(comment models.Comment, _ int) *CommentResponse {
		return &CommentResponse{
			ID:        comment.ID,
			Text:      comment.Text,
			Commenter: s.userResponse(comment.Commenter),
			CreatedAt: comment.CreatedAt,
		}
	})
}
