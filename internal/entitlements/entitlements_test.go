package entitlements

import (
	"context"
	"testing"
	"time"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/clock"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupEntitlementsTest(t *testing.T) (*Service, *gorm.DB, *clock.Fixed) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Subscription{}))

	clk := &clock.Fixed{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return &Service{DB: db, Clock: clk}, db, clk
}

func TestResolve_TierTable(t *testing.T) {
	tests := []struct {
		tier        string
		maxListings int
		credits     int
	}{
		{models.TierBasic, 3, 0},
		{models.TierStandard, 10, 1},
		{models.TierPremium, Unlimited, 5},
		{"", 3, 0},
		{"gold", 3, 0}, // malformed tier falls back to basic
	}
	for _, tt := range tests {
		ent := Resolve(tt.tier)
		assert.Equal(t, tt.maxListings, ent.MaxActiveListings, "tier %q", tt.tier)
		assert.Equal(t, tt.credits, ent.BoostCreditsPerPeriod, "tier %q", tt.tier)
	}
}

func TestAllowsListings_Unlimited(t *testing.T) {
	ent := Resolve(models.TierPremium)
	assert.True(t, ent.AllowsListings(0))
	assert.True(t, ent.AllowsListings(10000))

	basic := Resolve(models.TierBasic)
	assert.True(t, basic.AllowsListings(2))
	assert.False(t, basic.AllowsListings(3))
}

func TestQuotaFor_IndividualAlwaysBasic(t *testing.T) {
	svc, db, clk := setupEntitlementsTest(t)
	userID := uuid.New()
	require.NoError(t, db.Create(&models.Profile{
		ID: userID, Email: "a@example.com", UserType: models.UserTypeIndividual,
	}).Error)
	// Even with a subscription row, an individual resolves to basic.
	require.NoError(t, db.Create(&models.Subscription{
		ID: uuid.New(), UserID: userID, Tier: models.TierPremium,
		StartDate: clk.Now(), ExpiresAt: clk.Now().AddDate(0, 1, 0),
	}).Error)

	ent, err := svc.QuotaFor(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, Resolve(models.TierBasic), ent)
}

func TestQuotaFor_BusinessUsesCurrentSubscription(t *testing.T) {
	svc, db, clk := setupEntitlementsTest(t)
	userID := uuid.New()
	require.NoError(t, db.Create(&models.Profile{
		ID: userID, Email: "b@example.com", UserType: models.UserTypeBusiness,
	}).Error)

	// No subscription yet: basic.
	ent, err := svc.QuotaFor(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, Resolve(models.TierBasic), ent)

	require.NoError(t, db.Create(&models.Subscription{
		ID: uuid.New(), UserID: userID, Tier: models.TierStandard,
		StartDate: clk.Now(), ExpiresAt: clk.Now().AddDate(0, 1, 0),
	}).Error)

	ent, err = svc.QuotaFor(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, Resolve(models.TierStandard), ent)

	// Lapsed subscription falls back to basic.
	clk.Advance(32 * 24 * time.Hour)
	ent, err = svc.QuotaFor(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, Resolve(models.TierBasic), ent)
}

func TestBoostPeriod_SubscriptionWindow(t *testing.T) {
	svc, db, clk := setupEntitlementsTest(t)
	userID := uuid.New()
	start := clk.Now().Add(-10 * 24 * time.Hour)
	end := start.AddDate(0, 1, 0)
	require.NoError(t, db.Create(&models.Subscription{
		ID: uuid.New(), UserID: userID, Tier: models.TierStandard,
		StartDate: start, ExpiresAt: end,
	}).Error)

	gotStart, gotEnd, err := svc.BoostPeriod(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, gotStart.Equal(start))
	assert.True(t, gotEnd.Equal(end))
}

func TestBoostPeriod_NoSubscription(t *testing.T) {
	svc, _, _ := setupEntitlementsTest(t)
	start, end, err := svc.BoostPeriod(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, start.IsZero())
	assert.True(t, end.IsZero())
}
