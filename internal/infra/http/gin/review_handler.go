package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"wayfarer/internal/app/dto"
	reviewsapp "wayfarer/internal/app/reviews"
	domaincatalog "wayfarer/internal/domain/catalog"
	domainreviews "wayfarer/internal/domain/reviews"
)

type ReviewsHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	ListByItem(c *gin.Context)
	ListMine(c *gin.Context)
	CanReview(c *gin.Context)
}

type ReviewsHandler struct {
	Service *reviewsapp.Service
	Logger  *slog.Logger
}

type createReviewRequest struct {
	ItemType string   `json:"item_type"`
	ItemID   string   `json:"item_id"`
	Rating   int      `json:"rating"`
	Comment  string   `json:"comment"`
	ImageIDs []string `json:"image_ids"`
}

type updateReviewRequest struct {
	Rating   *int     `json:"rating"`
	Comment  *string  `json:"comment"`
	ImageIDs []string `json:"image_ids"`
}

func (h ReviewsHandler) Create(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	kind, err := domaincatalog.ParseKind(req.ItemType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.Service.Create(c.Request.Context(), reviewsapp.CreateParams{
		ReviewerID: p.ID,
		Item:       domaincatalog.Ref{Kind: kind, ItemID: domaincatalog.ItemID(req.ItemID)},
		Rating:     req.Rating,
		Comment:    req.Comment,
		ImageIDs:   req.ImageIDs,
		Now:        time.Now().UTC(),
	})
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ReviewMutation{
		Review:        dto.MapReview(result.Review),
		RatingSynced:  result.RatingSynced,
		AverageRating: result.AverageRating,
	})
}

func (h ReviewsHandler) Update(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result, err := h.Service.Update(c.Request.Context(), domainreviews.ReviewID(c.Param("id")), p.ID, domainreviews.Patch{
		Rating:   req.Rating,
		Comment:  req.Comment,
		ImageIDs: req.ImageIDs,
	}, time.Now().UTC())
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReviewMutation{
		Review:        dto.MapReview(result.Review),
		RatingSynced:  result.RatingSynced,
		AverageRating: result.AverageRating,
	})
}

func (h ReviewsHandler) Delete(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := h.Service.Delete(c.Request.Context(), domainreviews.ReviewID(c.Param("id")), p.ID, time.Now().UTC())
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rating_synced":  result.RatingSynced,
		"average_rating": result.AverageRating,
	})
}

func (h ReviewsHandler) ListByItem(c *gin.Context) {
	ref, ok := itemRefParams(c)
	if !ok {
		return
	}
	all, err := h.Service.ListByItem(c.Request.Context(), ref)
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapReviews(all))
}

func (h ReviewsHandler) ListMine(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	all, err := h.Service.ListByReviewer(c.Request.Context(), p.ID)
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapReviews(all))
}

func (h ReviewsHandler) CanReview(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	ref, ok := itemRefParams(c)
	if !ok {
		return
	}
	result, err := h.Service.CanReview(c.Request.Context(), p.ID, ref)
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	out := gin.H{"can_review": result.Allowed}
	if result.Existing != nil {
		out["existing_review"] = dto.MapReview(result.Existing)
	}
	c.JSON(http.StatusOK, out)
}

func (h ReviewsHandler) respondReviewError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domainreviews.ErrInvalidRating),
		errors.Is(err, domainreviews.ErrEmptyPatch),
		errors.Is(err, domaincatalog.ErrUnknownKind):
		status = http.StatusBadRequest
	case errors.Is(err, domainreviews.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, domainreviews.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, domainreviews.ErrNotFound),
		errors.Is(err, domaincatalog.ErrNotFound):
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError && h.Logger != nil {
		h.Logger.Error("review operation failed", "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

var _ ReviewsHTTP = ReviewsHandler{}
