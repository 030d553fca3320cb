package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"places-api/internal/domain"
	"places-api/internal/service"
)

type createPlaceRequest struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Address     string `form:"address"`
}

type updatePlaceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type LocationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PlaceResponse struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Address     string           `json:"address"`
	Location    LocationResponse `json:"location"`
	Image       string           `json:"image"`
	Creator     int64            `json:"creator"`
}

func (h *Handler) getPlace(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.respondError(c, service.NotFound("Could not find a place for the provided id.", nil))
		return
	}

	place, err := h.places.GetPlace(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"place": placeToResponse(*place)})
}

func (h *Handler) getPlacesByUser(c *gin.Context) {
	userID, ok := parseID(c)
	if !ok {
		h.respondError(c, service.NotFound("Could not find places for the provided user id.", nil))
		return
	}

	places, err := h.places.ListPlacesByUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]PlaceResponse, len(places))
	for i := range places {
		resp[i] = placeToResponse(places[i])
	}
	c.JSON(http.StatusOK, gin.H{"places": resp})
}

func (h *Handler) createPlace(c *gin.Context) {
	var req createPlaceRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondError(c, service.Validation("Invalid inputs passed, please check your data.", err))
		return
	}

	place, err := h.places.CreatePlace(c.Request.Context(), service.NewPlace{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
	}, uploadedPath(c), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"place": placeToResponse(*place)})
}

func (h *Handler) updatePlace(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.respondError(c, service.NotFound("Could not find place for this id.", nil))
		return
	}

	var req updatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, service.Validation("Invalid inputs passed, please check your data.", err))
		return
	}

	place, err := h.places.UpdatePlace(c.Request.Context(), id, service.PlaceChanges{
		Title:       req.Title,
		Description: req.Description,
	}, currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"place": placeToResponse(*place)})
}

func (h *Handler) deletePlace(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.respondError(c, service.NotFound("Could not find place for this id.", nil))
		return
	}

	if err := h.places.DeletePlace(c.Request.Context(), id, currentUserID(c)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted place."})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func placeToResponse(place domain.Place) PlaceResponse {
	return PlaceResponse{
		ID:          place.ID,
		Title:       place.Title,
		Description: place.Description,
		Address:     place.Address,
		Location: LocationResponse{
			Lat: place.Location.Lat,
			Lng: place.Location.Lng,
		},
		Image:   place.Image,
		Creator: place.CreatorID,
	}
}
