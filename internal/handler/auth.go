package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/conv"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Clients *repository.ClientRepo
	Tokens  *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, clients *repository.ClientRepo, tokens *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Clients: clients, Tokens: tokens}
}

// ----- DTOs -----

type passportReq struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Country string `json:"country"`
	DoB     string `json:"dob"` // DD/MM/YYYY
	DoI     string `json:"doi"`
	DoE     string `json:"doe"`
	Sex     string `json:"sex"`
}

type registerReq struct {
	Name     string      `json:"name"`
	Passport passportReq `json:"passport"`
	Email    string      `json:"email"`
	Phone    int64       `json:"phone"`
	Username string      `json:"username"`
	Password string      `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type clientPart struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type authResp struct {
	Client  clientPart `json:"client"`
	Access  tokenPart  `json:"access"`
	Refresh tokenPart  `json:"refresh"`
}

// Register: create a client and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	passport, err := parsePassport(req.Passport, req.Name)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	client, err := h.Clients.Register(repository.RegisterParams{
		Name:     req.Name,
		Passport: passport,
		Email:    strings.TrimSpace(req.Email),
		Phone:    req.Phone,
		Username: req.Username,
		Password: req.Password,
	}, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	return h.issueTokens(c, http.StatusCreated, client)
}

// Login: verify credentials and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	client, err := h.Clients.Authenticate(req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issueTokens(c, http.StatusOK, client)
}

// Refresh: validate by hash, revoke the old refresh token, issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx := c.Request().Context()
	clientID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	client, err := h.Clients.ByID(clientID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	return h.issueTokens(c, http.StatusOK, client)
}

// Logout: revoke the session identified by the refresh token in the
// body. The route carries no JWT, so the token is the only proof of
// session ownership.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refresh := strings.TrimSpace(req.RefreshToken)
	if refresh == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx := c.Request().Context()
	hash := utils.HashRefreshRaw(refresh)
	if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"client_id": c.Get("client_id"),
		"role":      c.Get("role"),
	})
}

// issueTokens signs an access token, stores a refresh token hash and
// writes the standard auth response.
func (h *AuthHandler) issueTokens(c echo.Context, status int, client *model.Client) error {
	role := h.Cfg.Role(client.Username)

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, client.ID, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}

	resp := authResp{
		Client:  clientPart{ID: client.ID, Username: client.Username, Role: role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}
	ctx := c.Request().Context()
	switch err := h.Tokens.StoreRefresh(ctx, client.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); {
	case errors.Is(err, repository.ErrTokenStoreDown):
		// sessions still work off the access token alone
		log.Printf("auth: token store down, refresh token not issued for client %s", client.ID)
		resp.Refresh = tokenPart{}
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(status, resp)
}

// parsePassport validates the passport payload and parses its dates.
func parsePassport(p passportReq, holder string) (model.Passport, error) {
	dob, err := conv.ParseDate(p.DoB)
	if err != nil {
		return model.Passport{}, errors.New("passport dob must be DD/MM/YYYY")
	}
	doi, err := conv.ParseDate(p.DoI)
	if err != nil {
		return model.Passport{}, errors.New("passport doi must be DD/MM/YYYY")
	}
	doe, err := conv.ParseDate(p.DoE)
	if err != nil {
		return model.Passport{}, errors.New("passport doe must be DD/MM/YYYY")
	}
	return model.Passport{
		ID:      p.ID,
		Type:    p.Type,
		Name:    holder,
		Country: p.Country,
		DoB:     dob,
		DoI:     doi,
		DoE:     doe,
		Sex:     p.Sex,
	}, nil
}
