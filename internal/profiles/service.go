package profiles

import (
	"context"
	"errors"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/clock"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/database"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service owns profile onboarding and self-service edits. Profiles are
// immutable except by the owning user; user_type is set at most once.
type Service struct {
	DB    *gorm.DB
	Clock clock.Clock
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Gender      string
	PhoneNumber string
}

// Register creates a profile with a hashed password. The user picks a type
// later during onboarding.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	if !validation.IsValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrWeakPassword
	}
	if !validation.IsValidPhone(in.PhoneNumber) {
		return nil, ErrInvalidPhone
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Profile{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, database.Classify(err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	profile := &models.Profile{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: string(hash),
		DisplayName:  in.DisplayName,
		Gender:       in.Gender,
		PhoneNumber:  in.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.DB.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, database.Classify(err)
	}
	return profile, nil
}

// Get fetches a profile by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, database.Classify(err)
	}
	return &profile, nil
}

// SetUserType records the onboarding choice. It sticks: once set it drives
// entitlements and cannot change.
func (s *Service) SetUserType(ctx context.Context, userID uuid.UUID, userType string) (*models.Profile, error) {
	if userType != models.UserTypeIndividual && userType != models.UserTypeBusiness {
		return nil, ErrInvalidUserType
	}
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.UserType != "" {
		if profile.UserType == userType {
			return profile, nil
		}
		return nil, ErrUserTypeLocked
	}
	res := s.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ? AND (user_type IS NULL OR user_type = '')", userID).
		Updates(map[string]interface{}{"user_type": userType, "updated_at": s.Clock.Now()})
	if res.Error != nil {
		return nil, database.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserTypeLocked
	}
	return s.Get(ctx, userID)
}

type UpdateInput struct {
	DisplayName *string
	Gender      *string
	PhoneNumber *string
	AvatarURL   *string
}

// Update applies self-service edits to the caller's own profile.
func (s *Service) Update(ctx context.Context, actorID, profileID uuid.UUID, in UpdateInput) (*models.Profile, error) {
	if actorID != profileID {
		return nil, ErrNotSelf
	}
	profile, err := s.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.DisplayName != nil {
		updates["display_name"] = *in.DisplayName
	}
	if in.Gender != nil {
		updates["gender"] = *in.Gender
	}
	if in.PhoneNumber != nil {
		if !validation.IsValidPhone(*in.PhoneNumber) {
			return nil, ErrInvalidPhone
		}
		updates["phone_number"] = *in.PhoneNumber
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}
	if len(updates) == 0 {
		return profile, nil
	}
	updates["updated_at"] = s.Clock.Now()
	if err := s.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", profileID).Updates(updates).Error; err != nil {
		return nil, database.Classify(err)
	}
	return s.Get(ctx, profileID)
}
