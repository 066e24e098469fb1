package listings

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/clock"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/entitlements"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupListingsTest(t *testing.T) (*Service, *gorm.DB, *clock.Fixed) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Listing{}, &models.Boost{}, &models.Subscription{}))

	clk := &clock.Fixed{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := &Service{
		DB:           db,
		Clock:        clk,
		Entitlements: &entitlements.Service{DB: db, Clock: clk},
		Policy:       DefaultPolicy(),
	}
	return svc, db, clk
}

func createProfile(t *testing.T, db *gorm.DB, userType string) uuid.UUID {
	id := uuid.New()
	require.NoError(t, db.Create(&models.Profile{
		ID: id, Email: id.String() + "@example.com", UserType: userType,
	}).Error)
	return id
}

func validInput() CreateListingInput {
	return CreateListingInput{
		Kind:     models.KindRoommate,
		Title:    "Sunny room near metro",
		Price:    12000,
		Location: "Indiranagar, Bangalore",
		RoomType: models.RoomTypePrivate,
		Tags:     []string{"non-smoker"},
	}
}

func TestCreateListing_Validation(t *testing.T) {
	svc, db, _ := setupListingsTest(t)
	owner := createProfile(t, db, models.UserTypeIndividual)

	in := validInput()
	in.Title = ""
	_, err := svc.CreateListing(context.Background(), owner, in)
	assert.ErrorIs(t, err, ErrInvalidListing)

	in = validInput()
	in.Price = 0
	_, err = svc.CreateListing(context.Background(), owner, in)
	assert.ErrorIs(t, err, ErrInvalidListing)

	in = validInput()
	in.Kind = "houseboat"
	_, err = svc.CreateListing(context.Background(), owner, in)
	assert.ErrorIs(t, err, ErrInvalidListing)
}

func TestCreateListing_SetsExpiryAndDefaults(t *testing.T) {
	svc, db, clk := setupListingsTest(t)
	owner := createProfile(t, db, models.UserTypeIndividual)

	listing, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)
	assert.True(t, listing.ExpiresAt.Equal(clk.Now().Add(30*24*time.Hour)))
	assert.Equal(t, models.GenderAny, listing.GenderPreference)
	assert.True(t, listing.ActiveAt(clk.Now()))
	assert.False(t, listing.UpdatedAt.Before(listing.CreatedAt))
}

// Time-based expiry is derived, not stored: the same row flips to inactive
// the moment the clock passes expires_at.
func TestListingExpiry_DerivedFromClock(t *testing.T) {
	svc, db, clk := setupListingsTest(t)
	owner := createProfile(t, db, models.UserTypeIndividual)

	listing, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)

	clk.Advance(30*24*time.Hour - time.Second)
	fresh, err := svc.GetListing(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.True(t, fresh.ActiveAt(clk.Now()))

	clk.Advance(2 * time.Second)
	fresh, err = svc.GetListing(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.False(t, fresh.ActiveAt(clk.Now()))
	assert.False(t, fresh.ManuallyExpired)
}

// Active is a pure function of the two timestamps and the manual flag, at any
// instant, not just at the window edges.
func TestListingActive_RandomInstants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	expiresAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 500; i++ {
		offset := time.Duration(rng.Int63n(int64(90*24*time.Hour))) - 45*24*time.Hour
		now := expiresAt.Add(offset)
		manual := rng.Intn(2) == 0
		l := &models.Listing{ExpiresAt: expiresAt, ManuallyExpired: manual}

		want := !manual && now.Before(expiresAt)
		assert.Equal(t, want, l.ActiveAt(now), "offset=%v manual=%v", offset, manual)
	}
}

/// Basic-tier quota: three active listings, the fourth fails, and expiring one
// frees the slot because the count is over active rows, not lifetime rows.
func TestCreateListing_QuotaFreedByExpiry(t *testing.T) {
	svc, db, _ := setupListingsTest(t)
	owner := createProfile(t, db, models.UserTypeIndividual)

	var first *models.Listing
	for i := 0; i < 3; i++ {
		l, err := svc.CreateListing(context.Background(), owner, validInput())
		require.NoError(t, err)
		if first == nil {
			first = l
		}
	}
	_, err := svc.CreateListing(context.Background(), owner, validInput())
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	require.NoError(t, svc.MarkExpired(context.Background(), first.ID, owner))
	_, err = svc.CreateListing(context.Background(), owner, validInput())
	assert.NoError(t, err)
}

func TestMarkExpired_OwnerOnlyAndIdempotent(t *testing.T) {
	svc, db, clk := setupListingsTest(t)
	owner := createProfile(t, db, models.UserTypeIndividual)
	other := createProfile(t, db, models.UserTypeIndividual)

	listing, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkExpired(context.Background(), listing.ID, other), ErrNotOwner)

	require.NoError(t, svc.MarkExpired(context.Background(), listing.ID, owner))
	fresh, err := svc.GetListing(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.True(t, fresh.ManuallyExpired)
	assert.False(t, fresh.ActiveAt(clk.Now()))

	// Second call is a no-op success.
	require.NoError(t, svc.MarkExpired(context.Background(), listing.ID, owner))

	assert.ErrorIs(t, svc.MarkExpired(context.Background(), uuid.New(), owner), ErrListingNotFound)
}

func TestEditListing_DoesNotExtendExpiry(t *testing.T) {
	svc, db, clk := setupListingsTest(t)
	owner := createProfile(t, db, models.UserTypeIndividual)

	listing, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)
	originalExpiry := listing.ExpiresAt

	clk.Advance(5 * 24 * time.Hour)
	title := "Updated title"
	price := int64(13000)
	updated, err := svc.EditListing(context.Background(), EditListingInput{
		ListingID: listing.ID,
		ActorID:   owner,
		Title:     &title,
		Price:     &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated title", updated.Title)
	assert.Equal(t, int64(13000), updated.Price)
	assert.True(t, updated.ExpiresAt.Equal(originalExpiry))
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestEditListing_NotOwner(t *testing.T) {
	svc, db, _ := setupListingsTest(t)
	owner := createProfile(t, db, models.UserTypeIndividual)
	other := createProfile(t, db, models.UserTypeIndividual)

	listing, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)

	title := "Hijacked"
	_, err = svc.EditListing(context.Background(), EditListingInput{
		ListingID: listing.ID, ActorID: other, Title: &title,
	})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestEditListing_StaleVersionConflict(t *testing.T) {
	svc, db, _ := setupListingsTest(t)
	owner := createProfile(t, db, models.UserTypeIndividual)

	listing, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)

	// Another writer bumps the version between read and conditional write.
	require.NoError(t, db.Model(&models.Listing{}).
		Where("id = ?", listing.ID).
		Update("version", listing.Version+1).Error)

	res := svc.DB.Model(&models.Listing{}).
		Where("id = ? AND version = ?", listing.ID, listing.Version).
		Update("title", "stale write")
	require.NoError(t, res.Error)
	assert.Equal(t, int64(0), res.RowsAffected)
}

func TestDeleteListing_RemovesBoosts(t *testing.T) {
	svc, db, _ := setupListingsTest(t)
	owner := businessWithSubscription(t, db, svc.Clock.(*clock.Fixed), models.TierStandard)

	listing, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)
	_, err = svc.AttachBoost(context.Background(), listing.ID, owner, svc.Policy.BoostPrice)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteListing(context.Background(), listing.ID, owner))

	_, err = svc.GetListing(context.Background(), listing.ID)
	assert.ErrorIs(t, err, ErrListingNotFound)
	var boostCount int64
	require.NoError(t, db.Model(&models.Boost{}).Where("listing_id = ?", listing.ID).Count(&boostCount).Error)
	assert.Equal(t, int64(0), boostCount)
}

func TestRecordView_Increments(t *testing.T) {
	svc, db, _ := setupListingsTest(t)
	owner := createProfile(t, db, models.UserTypeIndividual)

	listing, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)

	svc.RecordView(context.Background(), listing.ID)
	svc.RecordView(context.Background(), listing.ID)
	fresh, err := svc.GetListing(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.ViewCount)
}

func businessWithSubscription(t *testing.T, db *gorm.DB, clk *clock.Fixed, tier string) uuid.UUID {
	id := createProfile(t, db, models.UserTypeBusiness)
	require.NoError(t, db.Create(&models.Subscription{
		ID: uuid.New(), UserID: id, Tier: tier,
		StartDate: clk.Now(), ExpiresAt: clk.Now().AddDate(0, 1, 0),
	}).Error)
	return id
}

func TestAttachBoost_OwnerAndActiveChecks(t *testing.T) {
	svc, db, clk := setupListingsTest(t)
	owner := businessWithSubscription(t, db, clk, models.TierStandard)
	other := businessWithSubscription(t, db, clk, models.TierStandard)

	listing, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)

	_, err = svc.AttachBoost(context.Background(), listing.ID, other, 49)
	assert.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, svc.MarkExpired(context.Background(), listing.ID, owner))
	_, err = svc.AttachBoost(context.Background(), listing.ID, owner, 49)
	assert.ErrorIs(t, err, ErrListingExpired)
}

// Two attach attempts on the same live listing: exactly one boost wins, the
// second observes the active boost and is rejected, not queued.
func TestAttachBoost_SecondAttachRejected(t *testing.T) {
	svc, db, clk := setupListingsTest(t)
	owner := businessWithSubscription(t, db, clk, models.TierPremium)

	listing, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)

	boost, err := svc.AttachBoost(context.Background(), listing.ID, owner, 49)
	require.NoError(t, err)
	assert.Equal(t, 48, boost.DurationHours)
	assert.True(t, boost.ActiveAt(clk.Now()))

	_, err = svc.AttachBoost(context.Background(), listing.ID, owner, 49)
	assert.ErrorIs(t, err, ErrBoostAlreadyActive)

	// Window elapsed: a new boost may attach with no explicit state change.
	clk.Advance(49 * time.Hour)
	_, err = svc.AttachBoost(context.Background(), listing.ID, owner, 49)
	assert.NoError(t, err)
}

func TestAttachBoost_CreditExhaustion(t *testing.T) {
	svc, db, clk := setupListingsTest(t)
	owner := businessWithSubscription(t, db, clk, models.TierStandard)

	first, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)
	second, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)

	// Standard tier grants one credit per billing period.
	_, err = svc.AttachBoost(context.Background(), first.ID, owner, 49)
	require.NoError(t, err)
	_, err = svc.AttachBoost(context.Background(), second.ID, owner, 49)
	assert.ErrorIs(t, err, ErrBoostCreditExhausted)
}

func TestAttachBoost_BasicTierHasNoCredits(t *testing.T) {
	svc, db, _ := setupListingsTest(t)
	owner := createProfile(t, db, models.UserTypeIndividual)

	listing, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)

	_, err = svc.AttachBoost(context.Background(), listing.ID, owner, 49)
	assert.ErrorIs(t, err, ErrBoostCreditExhausted)
}

// Manual expiry mid-boost: the listing leaves the feed and the boost is not
// refunded; the credit stays consumed for the period.
func TestMarkExpired_MidBoostConsumesCredit(t *testing.T) {
	svc, db, clk := setupListingsTest(t)
	owner := businessWithSubscription(t, db, clk, models.TierStandard)

	first, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)
	second, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)

	_, err = svc.AttachBoost(context.Background(), first.ID, owner, 49)
	require.NoError(t, err)
	require.NoError(t, svc.MarkExpired(context.Background(), first.ID, owner))

	_, err = svc.AttachBoost(context.Background(), second.ID, owner, 49)
	assert.ErrorIs(t, err, ErrBoostCreditExhausted)
}

func TestOwnerListings_IncludesExpired(t *testing.T) {
	svc, db, _ := setupListingsTest(t)
	owner := createProfile(t, db, models.UserTypeIndividual)

	l1, err := svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)
	_, err = svc.CreateListing(context.Background(), owner, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.MarkExpired(context.Background(), l1.ID, owner))

	all, err := svc.OwnerListings(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
