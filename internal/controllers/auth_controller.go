package controllers

import (
	"errors"
	"net/http"

	"github.com/DENNISVILL/makipartner/internal/dtos"
	"github.com/DENNISVILL/makipartner/internal/middleware"
	"github.com/DENNISVILL/makipartner/internal/services"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

type AuthController struct {
	authService services.AuthService
}

func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// ---------------------------------------------------------------------
// POST /auth/login
// ---------------------------------------------------------------------

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, user, err := c.authService.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidCredentials):
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Invalid login or password", nil,
			)
		case errors.Is(err, utils.ErrAccountDisabled):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodeAccountDisabled, "Account is disabled", nil,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal, "Login failed", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
		User:         userProfile(user),
	})
}

// ---------------------------------------------------------------------
// POST /auth/refresh
// ---------------------------------------------------------------------

func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dtos.RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	accessToken, expiresIn, err := c.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrTokenRevoked):
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeTokenRevoked, "Token has been revoked", nil,
			)
		case errors.Is(err, utils.ErrTokenExpired):
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Refresh token expired", nil,
			)
		case errors.Is(err, utils.ErrAccountDisabled):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodeAccountDisabled, "Account is disabled", nil,
			)
		case errors.Is(err, utils.ErrMalformedToken),
			errors.Is(err, utils.ErrInvalidSignature),
			errors.Is(err, utils.ErrWrongTokenType),
			errors.Is(err, utils.ErrUserNotFound):
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid refresh token", nil,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal, "Token refresh failed", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	})
}

// ---------------------------------------------------------------------
// POST /auth/logout
//
// The token is decoded without signature verification so expired tokens
// can still be invalidated. For that reason this endpoint does not sit
// behind the auth middleware.
// ---------------------------------------------------------------------

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	tokenStr, err := middleware.ExtractBearerToken(r)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil,
		)
		return
	}

	alreadyRevoked, err := c.authService.Logout(r.Context(), tokenStr)
	if err != nil {
		if errors.Is(err, utils.ErrMalformedToken) {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid token", nil,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Logout failed", nil, err,
		)
		return
	}

	if alreadyRevoked {
		utils.RespondWithMessage(w, http.StatusOK, "Token already invalidated")
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Logged out successfully")
}

// ---------------------------------------------------------------------
// GET /auth/me
// ---------------------------------------------------------------------

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing subject", nil,
		)
		return
	}

	user, err := c.authService.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, utils.ErrUserNotFound) {
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound, "User not found", nil,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load profile", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, userProfile(user))
}

// ---------------------------------------------------------------------
// POST /auth/change-password
// ---------------------------------------------------------------------

func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing subject", nil,
		)
		return
	}

	var req dtos.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := c.authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidCurrentPassword):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidCurrentPassword, "Current password is incorrect", nil,
			)
		case errors.Is(err, utils.ErrPasswordTooShort):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodePasswordTooShort, "New password must be at least 8 characters long", nil,
			)
		case errors.Is(err, utils.ErrUserNotFound):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound, "User not found", nil,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal, "Password change failed", nil, err,
			)
		}
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Password changed successfully")
}
