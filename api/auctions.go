package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"commerce/adapters/session"
	"commerce/market"
	"commerce/models"
)

const (
	WATCH_LIST_ACTION_ADD    = "add"
	WATCH_LIST_ACTION_DELETE = "delete"

	BID_PLACED_MESSAGE = "Your bid has been placed!"
	BID_FAILED_MESSAGE = "Something went wrong"
)

func (s *Server) GetIndex(c *gin.Context) {
	auctions, err := s.listing.Index(c)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"auctions": s.auctionsResponse(auctions)})
}

// parseFilter 讀取列表頁的查詢參數，空值代表不篩選
func parseFilter(c *gin.Context) (market.Filter, error) {
	var filter market.Filter
	formErr := &market.FormError{}
	if raw := c.Query("category"); raw != "" {
		category := models.Category(raw)
		if category.Valid() {
			filter.Category = &category
		} else {
			formErr.Add("category", "Select a valid choice. "+raw+" is not one of the available choices.")
		}
	}
	if raw := c.Query("status"); raw != "" {
		status := models.Status(raw)
		if status.Valid() {
			filter.Status = &status
		} else {
			formErr.Add("status", "Select a valid choice. "+raw+" is not one of the available choices.")
		}
	}
	for _, bound := range []struct {
		field string
		dst   **float64
	}{
		{"min_price", &filter.MinPrice},
		{"max_price", &filter.MaxPrice},
	} {
		raw := c.Query(bound.field)
		if raw == "" {
			continue
		}
		price, err := market.ParsePrice(raw)
		if err != nil {
			formErr.Add(bound.field, "Enter a number.")
			continue
		}
		*bound.dst = lo.ToPtr(price)
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			formErr.Add("page", "Enter a whole number greater than 0.")
		}
		filter.Page = page
	}
	return filter, formErr.Err()
}

func (s *Server) GetListing(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		s.handleError(c, err)
		return
	}
	page, err := s.listing.Query(c, filter)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{
		"auctions":  s.auctionsResponse(page.Items),
		"total":     page.Total,
		"page":      page.Page,
		"page_size": page.PageSize,
		"num_pages": page.NumPages,
	})
}

// GetAuction 回傳商品、最新的留言，登入時附上是否在關注清單中
func (s *Server) GetAuction(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	detail, err := s.listing.Detail(c, id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	body := gin.H{
		"auction":  s.auctionResponse(detail.Auction),
		"comments": s.commentsResponse(detail.Comments),
	}
	if userID, ok := s.currentUserID(c); ok {
		profile, found, err := s.accounts.FindProfileByUser(c, userID)
		if err != nil {
			s.handleError(c, err)
			return
		}
		inWatchList := false
		if found {
			if inWatchList, err = s.watchList.Contains(c, profile.ID, id); err != nil {
				s.handleError(c, err)
				return
			}
		}
		body["in_watch_list"] = inWatchList
	}
	s.respond(c, http.StatusOK, body)
}

func (s *Server) GetCategories(c *gin.Context) {
	s.respond(c, http.StatusOK, gin.H{"categories": models.CategoryChoices()})
}

func (s *Server) GetAddAuction(c *gin.Context) {
	s.respond(c, http.StatusOK, gin.H{
		"categories": models.CategoryChoices(),
		"statuses":   models.StatusChoices(),
	})
}

// bindAuctionForm 讀取商品表單與上傳的圖片
func (s *Server) bindAuctionForm(c *gin.Context) (market.AuctionForm, bool) {
	var form market.AuctionForm
	if err := c.ShouldBind(&form); err != nil {
		s.respond(c, http.StatusBadRequest, gin.H{"message": "invalid form"})
		return form, false
	}
	picture, err := readUpload(c, "picture")
	if err != nil {
		s.handleError(c, err)
		return form, false
	}
	form.Picture = picture
	return form, true
}

func (s *Server) PostAddAuction(c *gin.Context) {
	form, ok := s.bindAuctionForm(c)
	if !ok {
		return
	}
	auction, err := s.auctions.CreateAuction(c, s.userID(c), form)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.flash(c, session.FlashSuccess, "Your auction has been created!")
	s.respond(c, http.StatusCreated, gin.H{"auction": s.auctionResponse(auction)})
}

func (s *Server) GetEditAuction(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	auction, err := s.auctions.EditableAuction(c, s.userID(c), id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{
		"auction":    s.auctionResponse(auction),
		"categories": models.CategoryChoices(),
		"statuses":   models.StatusChoices(),
	})
}

func (s *Server) PostEditAuction(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	form, ok := s.bindAuctionForm(c)
	if !ok {
		return
	}
	auction, err := s.auctions.EditAuction(c, s.userID(c), id, form)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.flash(c, session.FlashSuccess, "Your auction has been updated!")
	s.respond(c, http.StatusOK, gin.H{"auction": s.auctionResponse(auction)})
}

// PostBid 出價，結果只分成成功與失敗
func (s *Server) PostBid(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	bid, err := s.bidding.SubmitBid(c, id, s.userID(c), c.PostForm("price"))
	switch {
	case err == nil:
		s.flash(c, session.FlashSuccess, BID_PLACED_MESSAGE)
		s.respond(c, http.StatusOK, gin.H{"bid": s.bidResponse(bid)})
	case errors.Is(err, market.ErrAuctionNotFound):
		s.handleError(c, err)
	case errors.Is(err, market.ErrInvalidPrice):
		s.flash(c, session.FlashError, BID_FAILED_MESSAGE)
		s.respond(c, http.StatusBadRequest, gin.H{"errors": map[string]string{"price": "Enter a number."}})
	case errors.Is(err, market.ErrBidTooLow), errors.Is(err, market.ErrAuctionNotActive):
		// 不告訴出價者失敗的原因
		s.flash(c, session.FlashError, BID_FAILED_MESSAGE)
		s.respond(c, http.StatusBadRequest, gin.H{"message": BID_FAILED_MESSAGE})
	default:
		s.flash(c, session.FlashError, BID_FAILED_MESSAGE)
		s.handleError(c, err)
	}
}

func (s *Server) PostComment(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	comment, err := s.auctions.AddComment(c, s.userID(c), id, c.PostForm("text"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	user, err := s.accounts.User(c, comment.CommenterID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	comment.Commenter = user
	s.respond(c, http.StatusCreated, gin.H{"comment": s.commentsResponse([]models.Comment{*comment})[0]})
}

func (s *Server) GetWatchList(c *gin.Context) {
	profile, err := s.accounts.EnsureProfile(c, s.userID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	auctions, err := s.watchList.List(c, profile.ID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"auctions": s.auctionsResponse(auctions)})
}

// PostWatchList 加入或移除關注清單，重複操作不會出錯
func (s *Server) PostWatchList(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	action := c.Param("action")
	if action != WATCH_LIST_ACTION_ADD && action != WATCH_LIST_ACTION_DELETE {
		s.respond(c, http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	profile, err := s.accounts.EnsureProfile(c, s.userID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	if action == WATCH_LIST_ACTION_ADD {
		err = s.watchList.Add(c, profile.ID, id)
	} else {
		err = s.watchList.Remove(c, profile.ID, id)
	}
	if err != nil {
		s.handleError(c, err)
		return
	}
	inWatchList, err := s.watchList.Contains(c, profile.ID, id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"in_watch_list": inWatchList})
}
