package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/promptvault/promptvault/internal/config"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	return NewAuthService(db, NewMemoryTokenStore(), config.JWTConfig{
		ExpireHour:        1,
		RefreshExpireHour: 24,
	})
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	req := &RegisterRequest{Email: "user@example.com", Password: "Password1", Name: "User"}
	result, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("registration should issue a token pair")
	}
	if result.User.Email != "user@example.com" {
		t.Errorf("Email = %q, expected %q", result.User.Email, "user@example.com")
	}

	_, err = svc.Register(ctx, req)
	assertAppError(t, err, http.StatusConflict)
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "user@example.com",
		Password: "weak",
		Name:     "User",
	})
	assertAppError(t, err, http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{
		Email: "user@example.com", Password: "Password1", Name: "User",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.Login(ctx, &LoginRequest{Email: "user@example.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.AccessToken == "" {
		t.Error("login should issue an access token")
	}

	_, err = svc.Login(ctx, &LoginRequest{Email: "user@example.com", Password: "Wrongpass1"})
	assertAppError(t, err, http.StatusUnauthorized)

	// Unknown email fails the same way as a bad password.
	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "Password1"})
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, &RegisterRequest{
		Email: "user@example.com", Password: "Password1", Name: "User",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Token claims carry second-granularity timestamps; without this the
	// rotated token can be byte-identical to the first.
	time.Sleep(1100 * time.Millisecond)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("refresh should rotate the refresh token")
	}

	// The superseded token is no longer accepted.
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestRefresh_GarbageTokenRejected(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Refresh(context.Background(), "not.a.token")
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestLogout_InvalidatesRefreshToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, &RegisterRequest{
		Email: "user@example.com", Password: "Password1", Name: "User",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.Logout(ctx, result.User.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	_, err = svc.Refresh(ctx, result.RefreshToken)
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, &RegisterRequest{
		Email: "user@example.com", Password: "Password1", Name: "User",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	updated, err := svc.UpdateProfile(result.User.ID, &UpdateProfileRequest{
		Name:      "Renamed",
		AvatarURL: "https://example.com/a.png",
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("Name = %q, expected %q", updated.Name, "Renamed")
	}
	if updated.AvatarURL != "https://example.com/a.png" {
		t.Errorf("AvatarURL = %q", updated.AvatarURL)
	}
}

func TestMemoryTokenStore_Expiry(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	if err := store.Save(ctx, "u1", "tok", -time.Second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "" {
		t.Errorf("expired token should read as empty, got %q", got)
	}
}
