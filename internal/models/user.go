package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents a member of the MDT team. New registrations start
// unconfirmed and must be activated by an administrator before they can
// use the application. Consultants are users eligible to be assigned as
// the clinical owner of a case.
type User struct {
	BaseModel
	Username     string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password     string `gorm:"size:255;not null" json:"-"` // Never send password hash in JSON
	FirstName    string `gorm:"size:64" json:"firstName"`
	LastName     string `gorm:"size:64" json:"lastName"`
	Initials     string `gorm:"size:10" json:"initials"`
	IsConfirmed  bool   `gorm:"default:false" json:"isConfirmed"`
	IsConsultant bool   `gorm:"default:false" json:"isConsultant"`
	IsAdmin      bool   `gorm:"default:false" json:"isAdmin"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Initials     string    `json:"initials"`
	IsConfirmed  bool      `json:"isConfirmed"`
	IsConsultant bool      `json:"isConsultant"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Normalize lower-cases the username and upper-cases the initials.
func (u *User) Normalize() {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = strings.TrimSpace(u.Email)
	u.Initials = strings.ToUpper(strings.TrimSpace(u.Initials))
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Initials:     u.Initials,
		IsConfirmed:  u.IsConfirmed,
		IsConsultant: u.IsConsultant,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
