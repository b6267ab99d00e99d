package service

import (
	"context"
	"testing"
	"time"

	"github.com/ideameet/backend/internal/auth"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGoogle struct {
	emails map[string]string
}

func (f *fakeGoogle) ExchangeCode(_ context.Context, code string) (string, error) {
	email, ok := f.emails[code]
	if !ok {
		return "", auth.ErrProviderRejected
	}
	return email, nil
}

type fakeFacebook struct {
	profiles map[string]*auth.FacebookProfile
}

func (f *fakeFacebook) VerifyToken(_ context.Context, accessToken string) (*auth.FacebookProfile, error) {
	profile, ok := f.profiles[accessToken]
	if !ok {
		return nil, auth.ErrProviderRejected
	}
	return profile, nil
}

func newAuthFixture(t *testing.T) (*AuthService, *repository.MemoryStore, *fakeGoogle, *fakeFacebook) {
	t.Helper()
	store := repository.NewMemoryStore()
	tokens := auth.NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	google := &fakeGoogle{emails: map[string]string{}}
	facebook := &fakeFacebook{profiles: map[string]*auth.FacebookProfile{}}
	svc := NewAuthService(testLogger(), store.Users(), tokens, google, facebook)
	return svc, store, google, facebook
}

func TestSignInWithGoogleProvisionsAccount(t *testing.T) {
	svc, store, google, _ := newAuthFixture(t)
	ctx := context.Background()
	google.emails["code-1"] = "alice@example.com"

	result, err := svc.SignInWithGoogle(ctx, "code-1")
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, domain.UserProviderGoogle, result.User.Provider)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	stored, err := store.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, result.RefreshToken, *stored.RefreshToken)
}

func TestSignInWithGoogleReusesAccount(t *testing.T) {
	svc, _, google, _ := newAuthFixture(t)
	ctx := context.Background()
	google.emails["code-1"] = "alice@example.com"

	first, err := svc.SignInWithGoogle(ctx, "code-1")
	require.NoError(t, err)
	second, err := svc.SignInWithGoogle(ctx, "code-1")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestSignInWithGoogleBadCode(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.SignInWithGoogle(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInWithFacebookProvisionsProfile(t *testing.T) {
	svc, store, _, facebook := newAuthFixture(t)
	ctx := context.Background()
	facebook.profiles["token-1"] = &auth.FacebookProfile{ID: "fb-1", Name: "Bob Example", Gender: "male"}

	result, err := svc.SignInWithFacebook(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserProviderFacebook, result.User.Provider)

	stored, err := store.Users().GetByFacebookID(ctx, "fb-1")
	require.NoError(t, err)
	require.NotNil(t, stored.Profile.FullName)
	assert.Equal(t, "Bob Example", *stored.Profile.FullName)
	require.NotNil(t, stored.Profile.Gender)
	assert.Equal(t, domain.UserGenderMale, *stored.Profile.Gender)
}

func TestRefreshTokenRotates(t *testing.T) {
	svc, _, google, _ := newAuthFixture(t)
	ctx := context.Background()
	google.emails["code-1"] = "alice@example.com"

	signedIn, err := svc.SignInWithGoogle(ctx, "code-1")
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, signedIn.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, signedIn.User.ID, refreshed.User.ID)
}

func TestRefreshTokenSingleUse(t *testing.T) {
	svc, _, google, _ := newAuthFixture(t)
	ctx := context.Background()
	google.emails["code-1"] = "alice@example.com"

	signedIn, err := svc.SignInWithGoogle(ctx, "code-1")
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, signedIn.RefreshToken)
	require.NoError(t, err)

	// the old token no longer matches the stored copy
	if refreshed.RefreshToken != signedIn.RefreshToken {
		_, err = svc.RefreshToken(ctx, signedIn.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	}
}

func TestRefreshTokenGarbageRejected(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.RefreshToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}
