package listings

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/clock"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/database"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/entitlements"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// conflictRetries bounds the optimistic-write retry loop before ErrConflict
// surfaces to the caller.
const conflictRetries = 3

// Service owns listing state transitions and boost attachment. Active and
// boosted are computed from timestamps at read time, never stored as flags.
type Service struct {
	DB           *gorm.DB
	Clock        clock.Clock
	Entitlements *entitlements.Service
	Policy       Policy
}

type CreateListingInput struct {
	Kind             string
	Title            string
	Description      string
	Price            int64
	Location         string
	Latitude         *float64
	Longitude        *float64
	Images           []string
	Tags             []string
	Amenities        []string
	GenderPreference string
	RestrictGender   bool
	RoomType         string
}

// CreateListing counts the owner's currently-active listings against the
// entitlement quota, then persists the new listing with a fresh expiry.
func (s *Service) CreateListing(ctx context.Context, ownerID uuid.UUID, in CreateListingInput) (*models.Listing, error) {
	if in.Title == "" || in.Location == "" || in.Price <= 0 {
		return nil, ErrInvalidListing
	}
	if in.Kind != models.KindRoommate && in.Kind != models.KindHostel {
		return nil, ErrInvalidListing
	}
	ent, err := s.Entitlements.QuotaFor(ctx, ownerID)
	if err != nil {
		return nil, database.Classify(err)
	}

	now := s.Clock.Now()
	genderPref := in.GenderPreference
	if genderPref == "" {
		genderPref = models.GenderAny
	}
	listing := &models.Listing{
		ID:               uuid.New(),
		Kind:             in.Kind,
		Title:            in.Title,
		Description:      in.Description,
		Price:            in.Price,
		Location:         in.Location,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		Images:           toJSON(in.Images),
		Tags:             toJSON(in.Tags),
		Amenities:        toJSON(in.Amenities),
		OwnerID:          ownerID,
		GenderPreference: genderPref,
		RestrictGender:   in.RestrictGender,
		RoomType:         in.RoomType,
		ViewCount:        0,
		ManuallyExpired:  false,
		ExpiresAt:        now.Add(s.Policy.ListingLifetime),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Quota check and insert share a transaction so two racing creations
	// cannot both pass with one slot remaining.
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.Listing{}).
			Where("owner_id = ? AND manually_expired = ? AND expires_at > ?", ownerID, false, now).
			Count(&active).Error; err != nil {
			return err
		}
		if !ent.AllowsListings(active) {
			return ErrQuotaExceeded
		}
		return tx.Create(listing).Error
	})
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return nil, ErrQuotaExceeded
		}
		return nil, database.Classify(err)
	}
	return listing, nil
}

// GetListing fetches one listing by id.
func (s *Service) GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := s.DB.WithContext(ctx).Where("id = ?", listingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, database.Classify(err)
	}
	return &listing, nil
}

// OwnerListings returns all of an owner's listings, newest first, expired
// ones included (owners always see their own).
func (s *Service) OwnerListings(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	var out []models.Listing
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, database.Classify(err)
	}
	return out, nil
}

// MarkExpired flips manually_expired for the owner. Re-marking an already
// expired listing is a no-op success.
func (s *Service) MarkExpired(ctx context.Context, listingID, actorID uuid.UUID) error {
	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != actorID {
		return ErrNotOwner
	}
	if listing.ManuallyExpired {
		return nil
	}
	res := s.DB.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND version = ?", listingID, listing.Version).
		Updates(map[string]interface{}{
			"manually_expired": true,
			"updated_at":       s.Clock.Now(),
			"version":          listing.Version + 1,
		})
	if res.Error != nil {
		return database.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost a race with another writer; the listing may already be
		// expired now, which still counts as success.
		fresh, err := s.GetListing(ctx, listingID)
		if err != nil {
			return err
		}
		if fresh.ManuallyExpired {
			return nil
		}
		return ErrConflict
	}
	return nil
}

type EditListingInput struct {
	ListingID        uuid.UUID
	ActorID          uuid.UUID
	Title            *string
	Description      *string
	Price            *int64
	Location         *string
	Images           []string
	Tags             []string
	Amenities        []string
	GenderPreference *string
	RestrictGender   *bool
	RoomType         *string
}

// EditListing applies owner edits to mutable fields. Edits never extend expiry.
func (s *Service) EditListing(ctx context.Context, in EditListingInput) (*models.Listing, error) {
	listing, err := s.GetListing(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != in.ActorID {
		return nil, ErrNotOwner
	}

	updates := map[string]interface{}{}
	if in.Title != nil && *in.Title != "" {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, ErrInvalidListing
		}
		updates["price"] = *in.Price
	}
	if in.Location != nil && *in.Location != "" {
		updates["location"] = *in.Location
	}
	if in.Images != nil {
		updates["images"] = toJSON(in.Images)
	}
	if in.Tags != nil {
		updates["tags"] = toJSON(in.Tags)
	}
	if in.Amenities != nil {
		updates["amenities"] = toJSON(in.Amenities)
	}
	if in.GenderPreference != nil {
		updates["gender_preference"] = *in.GenderPreference
	}
	if in.RestrictGender != nil {
		updates["show_only_same_gender"] = *in.RestrictGender
	}
	if in.RoomType != nil {
		updates["room_type"] = *in.RoomType
	}
	if len(updates) == 0 {
		return listing, nil
	}
	updates["updated_at"] = s.Clock.Now()
	updates["version"] = listing.Version + 1

	res := s.DB.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND version = ?", in.ListingID, listing.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, database.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}
	return s.GetListing(ctx, in.ListingID)
}

// DeleteListing hard-deletes a listing and its boosts. Logical expiry is
// preferred; this exists only for explicit owner action.
func (s *Service) DeleteListing(ctx context.Context, listingID, actorID uuid.UUID) error {
	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != actorID {
		return ErrNotOwner
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", listingID).Delete(&models.Boost{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", listingID).Delete(&models.Listing{}).Error
	})
	if err != nil {
		return database.Classify(err)
	}
	return nil
}

// RecordView bumps view_count. Views are non-critical telemetry: persistence
// failure is logged, never surfaced to the caller flow.
func (s *Service) RecordView(ctx context.Context, listingID uuid.UUID) {
	err := s.DB.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", listingID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		log.Warn().Err(err).Str("listing_id", listingID.String()).Msg("Failed to record listing view")
	}
}

// ActiveBoost returns the listing's boost whose window contains now, or nil.
func (s *Service) ActiveBoost(ctx context.Context, listingID uuid.UUID) (*models.Boost, error) {
	now := s.Clock.Now()
	var boosts []models.Boost
	if err := s.DB.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("start_time DESC").
		Find(&boosts).Error; err != nil {
		return nil, database.Classify(err)
	}
	for i := range boosts {
		if boosts[i].ActiveAt(now) {
			return &boosts[i], nil
		}
	}
	return nil, nil
}

// AttachBoost creates a paid visibility window on the owner's listing after
// the entitlement check. At most one active boost per listing: the version
// bump on the listing row makes two racing attaches resolve to one winner.
// Amount is recorded as charged; the payment collaborator already validated it.
func (s *Service) AttachBoost(ctx context.Context, listingID, userID uuid.UUID, amount int64) (*models.Boost, error) {
	for attempt := 0; attempt < conflictRetries; attempt++ {
		boost, err := s.attachBoostOnce(ctx, listingID, userID, amount)
		if errors.Is(err, ErrConflict) {
			continue
		}
		return boost, err
	}
	return nil, ErrConflict
}

func (s *Service) attachBoostOnce(ctx context.Context, listingID, userID uuid.UUID, amount int64) (*models.Boost, error) {
	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != userID {
		return nil, ErrNotOwner
	}
	now := s.Clock.Now()
	if !listing.ActiveAt(now) {
		return nil, ErrListingExpired
	}
	active, err := s.ActiveBoost(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrBoostAlreadyActive
	}

	// Credit consumption is a count of boosts created in the current billing
	// period, not a stored running counter.
	ent, err := s.Entitlements.QuotaFor(ctx, userID)
	if err != nil {
		return nil, database.Classify(err)
	}
	if ent.BoostCreditsPerPeriod <= 0 {
		return nil, ErrBoostCreditExhausted
	}
	periodStart, periodEnd, err := s.Entitlements.BoostPeriod(ctx, userID)
	if err != nil {
		return nil, database.Classify(err)
	}
	var used int64
	if err := s.DB.WithContext(ctx).Model(&models.Boost{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, periodStart, periodEnd).
		Count(&used).Error; err != nil {
		return nil, database.Classify(err)
	}
	if used >= int64(ent.BoostCreditsPerPeriod) {
		return nil, ErrBoostCreditExhausted
	}

	boost := &models.Boost{
		ID:            uuid.New(),
		ListingID:     listingID,
		UserID:        userID,
		Amount:        amount,
		DurationHours: s.Policy.BoostDurationHours(),
		StartTime:     now,
		CreatedAt:     now,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional write on the listing row: the losing racer sees zero
		// rows affected and retries against fresh state.
		res := tx.Model(&models.Listing{}).
			Where("id = ? AND version = ?", listingID, listing.Version).
			Update("version", listing.Version+1)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return tx.Create(boost).Error
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrConflict
		}
		return nil, database.Classify(err)
	}
	return boost, nil
}

func toJSON(ss []string) datatypes.JSON {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return datatypes.JSON(b)
}
