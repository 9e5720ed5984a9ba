package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/scooter-rental/internal/booking"
)

// BookingHandler serves availability and the booking lifecycle.
type BookingHandler struct {
	bookings *booking.Service
}

type availabilityRequest struct {
	BikeID string    `json:"bike_id" binding:"required"`
	Start  time.Time `json:"start_datetime" binding:"required"`
	End    time.Time `json:"end_datetime" binding:"required"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type timeRequest struct {
	Start time.Time `json:"start_datetime" binding:"required"`
	End   time.Time `json:"end_datetime" binding:"required"`
}

// CheckAvailability answers whether a bike is free and quotes the price.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var req availabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.bookings.CheckAvailability(c.Request.Context(), req.BikeID, req.Start, req.End)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Create is the public booking form.
func (h *BookingHandler) Create(c *gin.Context) {
	var req booking.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.bookings.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// AdminCreate books from the back office.
func (h *BookingHandler) AdminCreate(c *gin.Context) {
	var req booking.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.bookings.AdminCreate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *BookingHandler) List(c *gin.Context) {
	views, err := h.bookings.List(c.Request.Context(), booking.ListFilter{Status: c.Query("status")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *BookingHandler) Get(c *gin.Context) {
	view, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *BookingHandler) UpdateDetails(c *gin.Context) {
	var req booking.DetailsRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.bookings.UpdateDetails(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.bookings.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateTime moves a booking and reprices it.
func (h *BookingHandler) UpdateTime(c *gin.Context) {
	var req timeRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.bookings.UpdateTime(c.Request.Context(), c.Param("id"), req.Start, req.End)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	if err := h.bookings.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled"})
}

func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.bookings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) ListByCustomer(c *gin.Context) {
	views, err := h.bookings.ListByCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
