package listings

import (
	"errors"
	"strings"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/feed"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/middleware"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
	Feed    *feed.Service
}

type createListingRequest struct {
	Kind             string    `json:"type"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Price            int64     `json:"price"`
	Location         string    `json:"location"`
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`
	Images           []string  `json:"images"`
	Tags             []string  `json:"tags"`
	Amenities        []string  `json:"amenities"`
	GenderPreference string    `json:"gender_preference"`
	RestrictGender   bool      `json:"show_only_same_gender"`
	RoomType         string    `json:"room_type"`
}

// CreateListing POST /api/v1/listings/create-listing
func (h *Handlers) CreateListing(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req createListingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.CreateListing(c.Context(), actor.UserID, CreateListingInput{
		Kind:             req.Kind,
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		Location:         req.Location,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Images:           req.Images,
		Tags:             req.Tags,
		Amenities:        req.Amenities,
		GenderPreference: req.GenderPreference,
		RestrictGender:   req.RestrictGender,
		RoomType:         req.RoomType,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return response.SuccessCreated(c, "Listing created successfully", listing, nil)
}

// GetFeed GET /api/v1/listings/feed — filters come from the query string.
func (h *Handlers) GetFeed(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	filter := feed.Filter{
		Kind:     c.Query("type"),
		RoomType: c.Query("room_type"),
		Gender:   c.Query("gender"),
		Location: c.Query("location"),
	}
	if v := c.QueryInt("min_price", -1); v >= 0 {
		p := int64(v)
		filter.MinPrice = &p
	}
	if v := c.QueryInt("max_price", -1); v >= 0 {
		p := int64(v)
		filter.MaxPrice = &p
	}
	if tags := c.Query("tags"); tags != "" {
		filter.Tags = splitCSV(tags)
	}
	viewer := &models.Profile{ID: actor.UserID, Gender: actor.Gender}
	data, err := h.Feed.Feed(c.Context(), viewer, filter)
	if err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Feed fetched successfully", data, fiber.Map{"count": len(data)})
}

// GetMyListings GET /api/v1/listings/my-listings
func (h *Handlers) GetMyListings(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	data, err := h.Service.OwnerListings(c.Context(), actor.UserID)
	if err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Listings fetched successfully", data, nil)
}

// GetListing GET /api/v1/listings/get-listing/:listing_id — a detail view
// counts as a view.
func (h *Handlers) GetListing(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.GetListing(c.Context(), listingID)
	if err != nil {
		return h.mapError(c, err)
	}
	h.Service.RecordView(c.Context(), listingID)
	boost, err := h.Service.ActiveBoost(c.Context(), listingID)
	if err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Listing fetched successfully", fiber.Map{
		"listing":      listing,
		"active_boost": boost,
	}, nil)
}

// MarkExpired POST /api/v1/listings/mark-expired
func (h *Handlers) MarkExpired(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req struct {
		ListingID string `json:"listing_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.ListingID == "" {
		return response.Error(c, "Missing listing_id", fiber.StatusBadRequest, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.MarkExpired(c.Context(), listingID, actor.UserID); err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Listing marked expired", nil, nil)
}

type editListingRequest struct {
	ListingID        string   `json:"listing_id"`
	Title            *string  `json:"title"`
	Description      *string  `json:"description"`
	Price            *int64   `json:"price"`
	Location         *string  `json:"location"`
	Images           []string `json:"images"`
	Tags             []string `json:"tags"`
	Amenities        []string `json:"amenities"`
	GenderPreference *string  `json:"gender_preference"`
	RestrictGender   *bool    `json:"show_only_same_gender"`
	RoomType         *string  `json:"room_type"`
}

// EditListing PUT /api/v1/listings/edit-listing
func (h *Handlers) EditListing(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req editListingRequest
	if err := c.BodyParser(&req); err != nil || req.ListingID == "" {
		return response.Error(c, "Missing listing_id", fiber.StatusBadRequest, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.EditListing(c.Context(), EditListingInput{
		ListingID:        listingID,
		ActorID:          actor.UserID,
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		Location:         req.Location,
		Images:           req.Images,
		Tags:             req.Tags,
		Amenities:        req.Amenities,
		GenderPreference: req.GenderPreference,
		RestrictGender:   req.RestrictGender,
		RoomType:         req.RoomType,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Listing updated successfully", listing, nil)
}

// DeleteListing DELETE /api/v1/listings/delete-listing/:listing_id
func (h *Handlers) DeleteListing(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteListing(c.Context(), listingID, actor.UserID); err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Listing deleted", nil, nil)
}

func (h *Handlers) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrListingNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, ErrNotOwner):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, ErrQuotaExceeded), errors.Is(err, ErrBoostCreditExhausted):
		return response.Error(c, err.Error(), fiber.StatusPaymentRequired, nil)
	case errors.Is(err, ErrListingExpired), errors.Is(err, ErrInvalidListing):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, ErrBoostAlreadyActive), errors.Is(err, ErrConflict):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
