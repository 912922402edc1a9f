package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mdt-app-server/internal/config"
	"mdt-app-server/internal/mailer"
	"mdt-app-server/internal/models"
)

func newAuthRouter(db *gorm.DB) *gin.Engine {
	cfg := &config.Config{
		Environment:               "development",
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 24,
	}
	auth := NewAuthHandler(db, cfg, mailer.New(cfg.Mailer))

	r := gin.New()
	r.POST("/auth/register", auth.Register)
	r.POST("/auth/login", auth.Login)
	return r
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	code, resp := doJSON(t, r, http.MethodPost, "/auth/register", RegisterRequest{
		Username:  "jsmith",
		Email:     "jsmith@example.org",
		FirstName: "John",
		LastName:  "Smith",
		Password:  "correct-horse",
	})
	if code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (error: %s)", code, resp.Error)
	}

	var user models.User
	if err := db.First(&user, "username = ?", "jsmith").Error; err != nil {
		t.Fatalf("user was not created: %v", err)
	}
	if user.IsConfirmed {
		t.Error("new accounts must start unconfirmed")
	}
	if !user.CheckPassword("correct-horse") {
		t.Error("stored password does not verify")
	}
}

func TestRegisterConsultantNeedsInitials(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	code, _ := doJSON(t, r, http.MethodPost, "/auth/register", RegisterRequest{
		Username:     "drsmith",
		Email:        "drsmith@example.org",
		FirstName:    "John",
		LastName:     "Smith",
		Password:     "correct-horse",
		IsConsultant: true,
	})
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "jsmith", false)
	r := newAuthRouter(db)

	code, _ := doJSON(t, r, http.MethodPost, "/auth/register", RegisterRequest{
		Username:  "jsmith",
		Email:     "other@example.org",
		FirstName: "John",
		LastName:  "Smith",
		Password:  "correct-horse",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "jsmith", false)
	r := newAuthRouter(db)

	code, resp := doJSON(t, r, http.MethodPost, "/auth/login", LoginRequest{
		Username: "jsmith",
		Password: "correct-horse",
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (error: %s)", code, resp.Error)
	}

	var login LoginResponse
	decodeData(t, resp, &login)
	if login.AccessToken == "" || login.RefreshToken == "" {
		t.Fatal("missing tokens in login response")
	}
	if login.User.ID != user.ID {
		t.Errorf("User.ID = %s, want %s", login.User.ID, user.ID)
	}

	var stored models.RefreshToken
	if err := db.First(&stored, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("refresh token was not stored: %v", err)
	}
	if stored.IsRevoked {
		t.Error("fresh refresh token is revoked")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "jsmith", false)
	r := newAuthRouter(db)

	code, _ := doJSON(t, r, http.MethodPost, "/auth/login", LoginRequest{
		Username: "jsmith",
		Password: "wrong",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	code, _ := doJSON(t, r, http.MethodPost, "/auth/login", LoginRequest{
		Username: "nobody",
		Password: "correct-horse",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
}
