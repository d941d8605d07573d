package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/immersive-venue-booking/internal/config"
	"github.com/iliyamo/immersive-venue-booking/internal/middleware"
	"github.com/iliyamo/immersive-venue-booking/internal/model"
	"github.com/iliyamo/immersive-venue-booking/internal/repository"
	"github.com/iliyamo/immersive-venue-booking/internal/utils"
)

// UserStore is implemented by *repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, in repository.NewUser, cost int) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// TokenStore is implemented by *repository.TokenRepo.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Consume(ctx context.Context, tokenHash string) (uint64, error)
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Username  string  `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
}

type loginReq struct {
	Login    string `json:"login" validate:"required"` // username or email
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID             uint64  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	FirstName      *string `json:"firstName,omitempty"`
	LastName       *string `json:"lastName,omitempty"`
	Role           string  `json:"role"`
	MembershipTier string  `json:"membershipTier"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func publicUser(u *model.User) userPart {
	return userPart{
		ID: u.ID, Username: u.Username, Email: u.Email, FirstName: u.FirstName,
		LastName: u.LastName, Role: u.Role, MembershipTier: u.MembershipTier,
	}
}

// issue creates and stores a fresh access/refresh pair for u.
func (h *AuthHandler) issue(ctx context.Context, u *model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    publicUser(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register creates a customer account and returns tokens immediately.
// Admin accounts are only created by the seed tool.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c, DefaultTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, repository.NewUser{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      model.RoleCustomer,
	}, h.Cfg.BcryptCost)
	if err != nil {
		return writeError(c, err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c, DefaultTimeout)
	defer cancel()

	u, err := h.Users.GetByLogin(ctx, strings.TrimSpace(req.Login))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorJSON(c, http.StatusUnauthorized, CodeUnauthorized, "invalid credentials")
		}
		return writeError(c, err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return errorJSON(c, http.StatusUnauthorized, CodeUnauthorized, "invalid credentials")
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh consumes a refresh token and issues a new pair.  A token can be
// exchanged once; a replay gets 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return errorJSON(c, http.StatusBadRequest, CodeInvalidRequest, "refreshToken required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := requestContext(c, DefaultTimeout)
	defer cancel()

	userID, err := h.Tokens.Consume(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return errorJSON(c, http.StatusUnauthorized, CodeUnauthorized, "invalid refresh token")
	}
	if err != nil {
		return writeError(c, err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil || !u.IsActive {
		return errorJSON(c, http.StatusUnauthorized, CodeUnauthorized, "invalid refresh token")
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes one refresh token when the body carries it, otherwise every
// refresh token of the authenticated user.  Mounted behind OptionalJWT.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req) // an empty body is fine when a bearer token is present
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := requestContext(c, DefaultTimeout)
	defer cancel()

	if raw != "" {
		_, err := h.Tokens.Consume(ctx, utils.HashRefreshRaw(raw))
		if errors.Is(err, repository.ErrNotFound) {
			return errorJSON(c, http.StatusUnauthorized, CodeUnauthorized, "invalid refresh token")
		}
		if err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	if uid, ok := middleware.UserID(c); ok {
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return errorJSON(c, http.StatusBadRequest, CodeInvalidRequest, "provide an Authorization header or refreshToken")
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, CodeUnauthorized, "login required")
	}
	ctx, cancel := requestContext(c, DefaultTimeout)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, publicUser(u))
}
