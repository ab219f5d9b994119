package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	bookingsapp "wayfarer/internal/app/bookings"
	"wayfarer/internal/app/dto"
	domainbooking "wayfarer/internal/domain/booking"
	domaincatalog "wayfarer/internal/domain/catalog"
)

type BookingsHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	ListAll(c *gin.Context)
	ListMine(c *gin.Context)
	UpdateStatus(c *gin.Context)
	Delete(c *gin.Context)
	ProcessPayment(c *gin.Context)
}

type BookingsHandler struct {
	Service *bookingsapp.Service
	Logger  *slog.Logger
}

type createBookingRequest struct {
	dto.BookingDetailsRequest
	TotalPriceCents int64  `json:"total_price_cents"`
	Status          string `json:"status"`
	PaymentMethod   string `json:"payment_method"`
	SpecialRequests string `json:"special_requests"`
	Notes           string `json:"notes"`
}

func (h BookingsHandler) Create(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	details, err := req.BuildDetails()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var status domainbooking.Status
	if req.Status != "" {
		if status, err = domainbooking.ParseStatus(req.Status); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	b, err := h.Service.Create(c.Request.Context(), bookingsapp.CreateParams{
		UserID:          p.ID,
		Details:         details,
		TotalPriceCents: req.TotalPriceCents,
		Status:          status,
		PaymentMethod:   req.PaymentMethod,
		SpecialRequests: req.SpecialRequests,
		Notes:           req.Notes,
		Now:             time.Now().UTC(),
	})
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapBooking(b))
}

func (h BookingsHandler) Get(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	b, err := h.Service.Get(c.Request.Context(), domainbooking.BookingID(c.Param("id")), p.actor())
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBooking(b))
}

func (h BookingsHandler) ListAll(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	limit := parsePositiveInt(c.Query("limit"), 50)
	offset := parsePositiveInt(c.Query("offset"), 0)
	all, err := h.Service.ListAll(c.Request.Context(), p.actor(), limit, offset)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBookings(all))
}

func (h BookingsHandler) ListMine(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	all, err := h.Service.ListByUser(c.Request.Context(), p.ID)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBookings(all))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h BookingsHandler) UpdateStatus(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	status, err := domainbooking.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.Service.UpdateStatus(c.Request.Context(), domainbooking.BookingID(c.Param("id")), p.actor(), status, time.Now().UTC())
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBooking(b))
}

func (h BookingsHandler) Delete(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), domainbooking.BookingID(c.Param("id")), p.actor()); err != nil {
		h.respondBookingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type paymentRequest struct {
	Method string `json:"method"`
}

func (h BookingsHandler) ProcessPayment(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	id := domainbooking.BookingID(c.Param("id"))
	// Ownership check before the gateway call.
	if _, err := h.Service.Get(c.Request.Context(), id, p.actor()); err != nil {
		h.respondBookingError(c, err)
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result, err := h.Service.ProcessPayment(c.Request.Context(), id, req.Method, time.Now().UTC())
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking":        dto.MapBooking(result.Booking),
		"transaction_id": result.TransactionID,
	})
}

func (h BookingsHandler) respondBookingError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domainbooking.ErrDetailsRequired),
		errors.Is(err, domainbooking.ErrItemRefRequired),
		errors.Is(err, domainbooking.ErrUserRequired),
		errors.Is(err, domainbooking.ErrInvalidPrice),
		errors.Is(err, domainbooking.ErrUnknownStatus),
		errors.Is(err, domaincatalog.ErrUnknownKind),
		errors.Is(err, dto.ErrDetailsMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, domainbooking.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, bookingsapp.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, bookingsapp.ErrAdminOnly):
		status = http.StatusForbidden
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domaincatalog.ErrNotFound):
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError && h.Logger != nil {
		h.Logger.Error("booking operation failed", "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

var _ BookingsHTTP = BookingsHandler{}
