package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	catalogapp "wayfarer/internal/app/catalog"
	"wayfarer/internal/app/dto"
	domaincatalog "wayfarer/internal/domain/catalog"
)

type CatalogHTTP interface {
	ListItems(c *gin.Context)
	CreateItem(c *gin.Context)
	GetItem(c *gin.Context)
	UpdateItem(c *gin.Context)
	DeleteItem(c *gin.Context)
	ListDestinations(c *gin.Context)
	CreateDestination(c *gin.Context)
	GetDestination(c *gin.Context)
	DeleteDestination(c *gin.Context)
}

type CatalogHandler struct {
	Service *catalogapp.Service
	Logger  *slog.Logger
}

type createItemRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Location      string   `json:"location"`
	DestinationID string   `json:"destination_id"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Highlights    []string `json:"highlights"`
	PriceCents    int64    `json:"price_cents"`
}

type updateItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
	Highlights  []string `json:"highlights"`
	PriceCents  *int64   `json:"price_cents"`
}

func (h CatalogHandler) ListItems(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	limit := parsePositiveInt(c.Query("limit"), 20)
	offset := parsePositiveInt(c.Query("offset"), 0)
	items, err := h.Service.ListItems(c.Request.Context(), kind, limit, offset)
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapItems(items))
}

func (h CatalogHandler) CreateItem(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	item, err := h.Service.CreateItem(c.Request.Context(), catalogapp.CreateItemParams{
		Kind:          kind,
		Name:          req.Name,
		Description:   req.Description,
		Location:      req.Location,
		DestinationID: req.DestinationID,
		Category:      req.Category,
		Tags:          req.Tags,
		Highlights:    req.Highlights,
		PriceCents:    req.PriceCents,
		OwnerID:       p.ID,
		Now:           time.Now().UTC(),
	})
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapItem(item))
}

func (h CatalogHandler) GetItem(c *gin.Context) {
	ref, ok := itemRefParams(c)
	if !ok {
		return
	}
	item, err := h.Service.GetItem(c.Request.Context(), ref)
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapItem(item))
}

func (h CatalogHandler) UpdateItem(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	ref, ok := itemRefParams(c)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	item, err := h.Service.UpdateItem(c.Request.Context(), ref, p.actor(), catalogapp.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		Tags:        req.Tags,
		Highlights:  req.Highlights,
		PriceCents:  req.PriceCents,
	}, time.Now().UTC())
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapItem(item))
}

func (h CatalogHandler) DeleteItem(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	ref, ok := itemRefParams(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteItem(c.Request.Context(), ref, p.actor()); err != nil {
		h.respondCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createDestinationRequest struct {
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (h CatalogHandler) ListDestinations(c *gin.Context) {
	limit := parsePositiveInt(c.Query("limit"), 50)
	offset := parsePositiveInt(c.Query("offset"), 0)
	destinations, err := h.Service.ListDestinations(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	out := make([]dto.Destination, 0, len(destinations))
	for _, d := range destinations {
		out = append(out, dto.MapDestination(d))
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "total": len(out)})
}

func (h CatalogHandler) CreateDestination(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req createDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	destination, err := h.Service.CreateDestination(c.Request.Context(), catalogapp.CreateDestinationParams{
		Name:        req.Name,
		Country:     req.Country,
		Description: req.Description,
		Tags:        req.Tags,
		Now:         time.Now().UTC(),
	})
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapDestination(destination))
}

func (h CatalogHandler) GetDestination(c *gin.Context) {
	destination, err := h.Service.GetDestination(c.Request.Context(), domaincatalog.DestinationID(c.Param("id")))
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapDestination(destination))
}

func (h CatalogHandler) DeleteDestination(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteDestination(c.Request.Context(), domaincatalog.DestinationID(c.Param("id")), p.actor()); err != nil {
		h.respondCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h CatalogHandler) respondCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaincatalog.ErrUnknownKind),
		errors.Is(err, domaincatalog.ErrNameRequired),
		errors.Is(err, domaincatalog.ErrIDRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domaincatalog.ErrNotFound),
		errors.Is(err, domaincatalog.ErrDestinationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, catalogapp.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("catalog operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func kindParam(c *gin.Context) (domaincatalog.Kind, bool) {
	kind, err := domaincatalog.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return kind, true
}

func itemRefParams(c *gin.Context) (domaincatalog.Ref, bool) {
	kind, ok := kindParam(c)
	if !ok {
		return domaincatalog.Ref{}, false
	}
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item id is required"})
		return domaincatalog.Ref{}, false
	}
	return domaincatalog.Ref{Kind: kind, ItemID: domaincatalog.ItemID(id)}, true
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

var _ CatalogHTTP = CatalogHandler{}
