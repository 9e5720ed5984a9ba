package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/scooter-rental/internal/catalog"
	"github.com/ukydev/scooter-rental/internal/models"
)

// CatalogHandler serves bikes, customers, areas and rental requests.
type CatalogHandler struct {
	bikes     *catalog.BikeService
	customers *catalog.CustomerService
	areas     *catalog.AreaService
	rentals   *catalog.RentalService
}

// Bikes

func (h *CatalogHandler) ListBikes(c *gin.Context) {
	bikes, err := h.bikes.List(c.Request.Context(), c.Query("status"), c.Query("area_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bikes)
}

func (h *CatalogHandler) GetBike(c *gin.Context) {
	bike, err := h.bikes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bike)
}

func (h *CatalogHandler) CreateBike(c *gin.Context) {
	var in models.Bike
	if !bindJSON(c, &in) {
		return
	}
	bike, err := h.bikes.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bike)
}

func (h *CatalogHandler) UpdateBike(c *gin.Context) {
	var in models.Bike
	if !bindJSON(c, &in) {
		return
	}
	bike, err := h.bikes.Update(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bike)
}

func (h *CatalogHandler) DeleteBike(c *gin.Context) {
	if err := h.bikes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Customers

func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customers.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var in models.Customer
	if !bindJSON(c, &in) {
		return
	}
	customer, err := h.customers.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *CatalogHandler) UpdateCustomer(c *gin.Context) {
	var in models.Customer
	if !bindJSON(c, &in) {
		return
	}
	customer, err := h.customers.Update(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CatalogHandler) DeleteCustomer(c *gin.Context) {
	if err := h.customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Areas

func (h *CatalogHandler) ListActiveAreas(c *gin.Context) {
	h.listAreas(c, true)
}

func (h *CatalogHandler) ListAllAreas(c *gin.Context) {
	h.listAreas(c, false)
}

func (h *CatalogHandler) listAreas(c *gin.Context, activeOnly bool) {
	areas, err := h.areas.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, areas)
}

func (h *CatalogHandler) CreateArea(c *gin.Context) {
	var in models.Area
	if !bindJSON(c, &in) {
		return
	}
	area, err := h.areas.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, area)
}

func (h *CatalogHandler) UpdateArea(c *gin.Context) {
	var in models.Area
	if !bindJSON(c, &in) {
		return
	}
	area, err := h.areas.Update(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, area)
}

func (h *CatalogHandler) DeleteArea(c *gin.Context) {
	if err := h.areas.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Rental requests

func (h *CatalogHandler) CreateRental(c *gin.Context) {
	var in models.RentalRequest
	if !bindJSON(c, &in) {
		return
	}
	r, err := h.rentals.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *CatalogHandler) ListRentals(c *gin.Context) {
	rentals, err := h.rentals.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rentals)
}

func (h *CatalogHandler) UpdateRentalStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.rentals.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
