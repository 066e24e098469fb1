package auth

import (
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileFinder abstracts profile lookup by email+password (for production
// GORM or test doubles).
type ProfileFinder interface {
	FindByEmailAndPassword(email, password string) (*models.Profile, error)
}

// GormProfileFinder implements ProfileFinder using GORM and bcrypt.
type GormProfileFinder struct{ DB *gorm.DB }

func (g *GormProfileFinder) FindByEmailAndPassword(email, password string) (*models.Profile, error) {
	return LoginProfile(g.DB, LoginInput{Email: email, Password: password})
}

// LoginProfile finds a profile by email and verifies the password.
func LoginProfile(db *gorm.DB, input LoginInput) (*models.Profile, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var p models.Profile
	if err := db.Where("email = ?", input.Email).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if p.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &p, nil
}
