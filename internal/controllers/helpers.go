package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/DENNISVILL/makipartner/internal/dtos"
	"github.com/DENNISVILL/makipartner/internal/models"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

var validate = validator.New()

// decodeAndValidate decodes the JSON body into dst and runs validator tags.
// It writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Missing or invalid fields", nil, err,
		)
		return false
	}
	return true
}

func userProfile(u *models.User) dtos.UserProfile {
	profile := dtos.UserProfile{
		ID:          u.ID.String(),
		Name:        u.Name,
		Login:       u.Login,
		Email:       u.Email,
		CompanyID:   u.CompanyID.String(),
		CompanyName: u.CompanyName,
		Timezone:    u.Timezone,
		Language:    u.Language,
	}
	if u.LastLoginAt != nil {
		profile.LastLoginAt = u.LastLoginAt.UTC().Format(time.RFC3339)
	}
	return profile
}
