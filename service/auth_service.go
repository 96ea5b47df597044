package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"tourmate.app/config"
	"tourmate.app/errors"
	"tourmate.app/models"
	"tourmate.app/storage"
)

// AuthService handles accounts, tokens and the persisted auth state
type AuthService struct {
	userRepo  UserRepositoryInterface
	tokenRepo RefreshTokenRepositoryInterface
	oauth     OAuthProviderInterface
	authState storage.AuthStateStore
	sessions  storage.SessionStore
	jwtConfig config.JWTConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepositoryInterface,
	tokenRepo RefreshTokenRepositoryInterface,
	oauth OAuthProviderInterface,
	authState storage.AuthStateStore,
	sessions storage.SessionStore,
	jwtConfig config.JWTConfig,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		oauth:     oauth,
		authState: authState,
		sessions:  sessions,
		jwtConfig: jwtConfig,
	}
}

// Register creates a new email/password account and signs the user in
func (s *AuthService) Register(req *models.RegisterRequest) (*models.TokenResponse, error) {
	log.Printf("[DEBUG] AuthService.Register called for email: %s\n", req.Email)

	existing, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to check existing account", err)
	}
	if existing != nil {
		return nil, errors.NewAlreadyExistsError("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewTokenError("failed to hash password", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Nickname:     req.Nickname,
		Provider:     "email",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, errors.NewDatabaseError("failed to create account", err)
	}

	return s.issueTokens(user)
}

// Login authenticates an email/password account
func (s *AuthService) Login(req *models.LoginRequest) (*models.TokenResponse, error) {
	log.Printf("[DEBUG] AuthService.Login called for email: %s\n", req.Email)

	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to look up account", err)
	}
	if user == nil || user.Provider != "email" {
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	return s.issueTokens(user)
}

// KakaoSignIn exchanges an OAuth authorization code for a signed-in
// session, creating the account on first sign-in
func (s *AuthService) KakaoSignIn(ctx context.Context, req *models.KakaoSignInRequest) (*models.TokenResponse, error) {
	log.Println("[DEBUG] AuthService.KakaoSignIn called")

	profile, err := s.oauth.ExchangeCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByKakaoID(profile.ID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to look up Kakao account", err)
	}

	if user == nil {
		email := profile.Email
		if email == "" {
			email = fmt.Sprintf("kakao_%s@kakao.local", profile.ID)
		}
		user = &models.User{
			Email:    email,
			Nickname: profile.Nickname,
			Provider: "kakao",
			KakaoID:  profile.ID,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, errors.NewDatabaseError("failed to create Kakao account", err)
		}
		log.Printf("[DEBUG] Created new Kakao user: id=%d\n", user.ID)
	}

	return s.issueTokens(user)
}

// Refresh rotates a refresh token and mints a new access token
func (s *AuthService) Refresh(req *models.RefreshRequest) (*models.TokenResponse, error) {
	log.Println("[DEBUG] AuthService.Refresh called")

	stored, err := s.tokenRepo.FindByToken(req.RefreshToken)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to look up refresh token", err)
	}
	if stored == nil {
		return nil, errors.NewTokenError("refresh token not found", nil)
	}
	if time.Now().After(stored.ExpiresAt) {
		if err := s.tokenRepo.Delete(stored.Token); err != nil {
			log.Printf("[WARN] Failed to remove expired refresh token: %v\n", err)
		}
		return nil, errors.NewTokenError("refresh token expired", nil)
	}

	user, err := s.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to look up account", err)
	}
	if user == nil {
		return nil, errors.NewTokenError("account no longer exists", nil)
	}

	// rotation: the presented token is single-use
	if err := s.tokenRepo.Delete(stored.Token); err != nil {
		return nil, errors.NewDatabaseError("failed to rotate refresh token", err)
	}

	return s.issueTokens(user)
}

// Logout tears down the signed-in state. Server-side invalidation is best
// effort: the persisted auth keys are cleared no matter what fails, so a
// broken network or database never leaves a half-logged-in state behind.
func (s *AuthService) Logout(userID uint, refreshToken string) {
	log.Printf("[DEBUG] AuthService.Logout called for user: %d\n", userID)

	if refreshToken != "" {
		if err := s.tokenRepo.Delete(refreshToken); err != nil {
			log.Printf("[WARN] Failed to invalidate refresh token: %v\n", err)
		}
	}

	s.clearAuthState(userID)

	if err := s.sessions.ClearSurvey(userID); err != nil {
		log.Printf("[WARN] Failed to clear survey session on logout: %v\n", err)
	}
}

// Bootstrap restores the launch state for a user. Any inconsistency in the
// persisted auth keys ends in a silent logout: keys cleared, landing
// screen, no user.
func (s *AuthService) Bootstrap(userID uint) (*models.BootstrapResult, error) {
	log.Printf("[DEBUG] AuthService.Bootstrap called for user: %d\n", userID)

	landing := &models.BootstrapResult{Screen: models.ScreenLanding}

	loggedIn, err := s.authState.Get(userID, storage.KeyIsLoggedIn)
	if err != nil {
		return nil, errors.NewStorageError("failed to read auth state", err)
	}
	if loggedIn != "true" {
		s.clearAuthState(userID)
		return landing, nil
	}

	accessToken, err := s.authState.Get(userID, storage.KeyAccessToken)
	if err != nil {
		return nil, errors.NewStorageError("failed to read auth state", err)
	}
	tokenUserID, err := s.ValidateToken(accessToken)
	if err != nil || tokenUserID != userID {
		log.Printf("[DEBUG] Bootstrap token validation failed for user %d, logging out\n", userID)
		s.clearAuthState(userID)
		return landing, nil
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to look up account", err)
	}
	if user == nil {
		s.clearAuthState(userID)
		return landing, nil
	}

	screen := models.ScreenMain
	traveling, err := s.authState.Get(userID, storage.KeyIsTraveling)
	if err != nil {
		return nil, errors.NewStorageError("failed to read auth state", err)
	}
	if traveling == "true" {
		screen = models.ScreenTravel
	}

	return &models.BootstrapResult{Screen: screen, User: user}, nil
}

// ValidateToken parses and verifies an access token, returning the user ID
func (s *AuthService) ValidateToken(tokenStr string) (uint, error) {
	if tokenStr == "" {
		return 0, errors.NewTokenError("token is empty", nil)
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.NewTokenError("invalid or expired token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.NewTokenError("invalid token claims", nil)
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.NewTokenError("token missing user_id claim", nil)
	}

	return uint(userID), nil
}

// GetUser retrieves a user profile by ID
func (s *AuthService) GetUser(userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to look up account", err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user not found")
	}
	return user, nil
}

// CompleteProfile fills in the profile fields after first sign-in
func (s *AuthService) CompleteProfile(userID uint, req *models.ProfileInfoRequest) (*models.User, error) {
	log.Printf("[DEBUG] AuthService.CompleteProfile called for user: %d\n", userID)

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	user.Nickname = req.Nickname
	user.BirthYear = req.BirthYear
	user.Gender = req.Gender
	user.HasCompletedProfile = true
	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.NewDatabaseError("failed to update profile", err)
	}

	return user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*models.TokenResponse, error) {
	accessToken, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.NewString()
	if _, err := s.tokenRepo.Save(user.ID, refreshToken, s.jwtConfig.RefreshExpiry()); err != nil {
		return nil, errors.NewDatabaseError("failed to persist refresh token", err)
	}

	s.writeAuthState(user.ID, storage.KeyAccessToken, accessToken)
	s.writeAuthState(user.ID, storage.KeyRefreshToken, refreshToken)
	s.writeAuthState(user.ID, storage.KeyIsLoggedIn, "true")

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (s *AuthService) generateAccessToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(s.jwtConfig.AccessExpiry()).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", errors.NewTokenError("failed to sign access token", err)
	}

	return signed, nil
}

// writeAuthState writes a key and verifies the write landed, correcting a
// mismatch exactly once. Storage backends occasionally drop writes during
// teardown races, and one re-write is the agreed recovery.
func (s *AuthService) writeAuthState(userID uint, key, value string) {
	if err := s.authState.Set(userID, key, value); err != nil {
		log.Printf("[WARN] Failed to write auth state %s: %v\n", key, err)
		return
	}

	got, err := s.authState.Get(userID, key)
	if err != nil {
		log.Printf("[WARN] Failed to verify auth state %s: %v\n", key, err)
		return
	}
	if got != value {
		log.Printf("[WARN] Auth state %s readback mismatch, rewriting once\n", key)
		if err := s.authState.Set(userID, key, value); err != nil {
			log.Printf("[WARN] Auth state %s rewrite failed: %v\n", key, err)
		}
	}
}

// deleteAuthState deletes a key with the same verify-and-correct-once
// recovery as writeAuthState. A dropped delete would leave a stale token
// readable after logout.
func (s *AuthService) deleteAuthState(userID uint, key string) {
	if err := s.authState.Delete(userID, key); err != nil {
		log.Printf("[WARN] Failed to clear auth state %s: %v\n", key, err)
		return
	}

	got, err := s.authState.Get(userID, key)
	if err != nil {
		log.Printf("[WARN] Failed to verify auth state %s cleared: %v\n", key, err)
		return
	}
	if got != "" {
		log.Printf("[WARN] Auth state %s survived delete, re-deleting once\n", key)
		if err := s.authState.Delete(userID, key); err != nil {
			log.Printf("[WARN] Auth state %s re-delete failed: %v\n", key, err)
		}
	}
}

func (s *AuthService) clearAuthState(userID uint) {
	s.writeAuthState(userID, storage.KeyIsLoggedIn, "false")
	s.writeAuthState(userID, storage.KeyIsTraveling, "false")
	s.deleteAuthState(userID, storage.KeyAccessToken)
	s.deleteAuthState(userID, storage.KeyRefreshToken)
}
