package feed

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"

	"github.com/google/uuid"
)

// Filter is the viewer-supplied criteria. All predicates are AND-combined;
// the zero Filter matches everything.
type Filter struct {
	Kind     string   `json:"type,omitempty"`
	RoomType string   `json:"room_type,omitempty"`
	Gender   string   `json:"gender,omitempty"`
	MinPrice *int64   `json:"min_price,omitempty"`
	MaxPrice *int64   `json:"max_price,omitempty"`
	Location string   `json:"location,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Rank filters and orders listings for a viewer at a given instant. Active
// boosts rank first (most recently boosted leading), then creation time,
// newest first. Same inputs and clock always yield the same order.
func Rank(viewer *models.Profile, filter Filter, listings []models.Listing, boosts []models.Boost, now time.Time) []models.Listing {
	boostStart := activeBoostStarts(boosts, now)

	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if !visible(viewer, &l, now) {
			continue
		}
		if !matches(filter, &l) {
			continue
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		bi, iBoosted := boostStart[out[i].ID]
		bj, jBoosted := boostStart[out[j].ID]
		if iBoosted != jBoosted {
			return iBoosted
		}
		if iBoosted && jBoosted && !bi.Equal(bj) {
			return bi.After(bj)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out
}

// activeBoostStarts maps each listing to the start of its currently-active
// boost. At most one boost per listing is active at a time.
func activeBoostStarts(boosts []models.Boost, now time.Time) map[uuid.UUID]time.Time {
	starts := make(map[uuid.UUID]time.Time)
	for i := range boosts {
		b := &boosts[i]
		if !b.ActiveAt(now) {
			continue
		}
		if prev, ok := starts[b.ListingID]; !ok || b.StartTime.After(prev) {
			starts[b.ListingID] = b.StartTime
		}
	}
	return starts
}

// visible applies the non-negotiable visibility rules: expired listings are
// hidden from everyone but their owner, and same-gender restricted listings
// are hidden from mismatched viewers.
func visible(viewer *models.Profile, l *models.Listing, now time.Time) bool {
	isOwner := viewer != nil && viewer.ID == l.OwnerID
	if !l.ActiveAt(now) && !isOwner {
		return false
	}
	if l.RestrictGender && l.GenderPreference != models.GenderAny && !isOwner {
		if viewer == nil || viewer.Gender != l.GenderPreference {
			return false
		}
	}
	return true
}

func matches(f Filter, l *models.Listing) bool {
	if f.Kind != "" && l.Kind != f.Kind {
		return false
	}
	if f.RoomType != "" && l.RoomType != f.RoomType {
		return false
	}
	if f.Gender != "" && f.Gender != models.GenderAny && l.GenderPreference != models.GenderAny && l.GenderPreference != f.Gender {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(f.Location)) {
		return false
	}
	if len(f.Tags) > 0 && !tagsIntersect(f.Tags, l.Tags) {
		return false
	}
	return true
}

func tagsIntersect(wanted []string, stored []byte) bool {
	var tags []string
	if err := json.Unmarshal(stored, &tags); err != nil {
		return false
	}
	for _, w := range wanted {
		for _, t := range tags {
			if strings.EqualFold(w, t) {
				return true
			}
		}
	}
	return false
}
