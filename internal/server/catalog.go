package server

import (
	"net/http"

	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"

	"github.com/shopspring/decimal"
)

type spreadProfileRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	IsDefault   bool                  `json:"is_default"`
	Spreads     []models.SymbolSpread `json:"spreads"`
}

func (req spreadProfileRequest) input() endpoints.SpreadProfileInput {
	return endpoints.SpreadProfileInput{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
		Spreads:     req.Spreads,
	}
}

type accountTypeRequest struct {
	Name            string          `json:"name"`
	MinDeposit      decimal.Decimal `json:"min_deposit"`
	MaxLeverage     int             `json:"max_leverage"`
	Commission      decimal.Decimal `json:"commission"`
	SpreadProfileId int64           `json:"spread_profile_id"`
	Active          bool            `json:"active"`
}

func (req accountTypeRequest) input() endpoints.AccountTypeInput {
	return endpoints.AccountTypeInput{
		Name:            req.Name,
		MinDeposit:      req.MinDeposit,
		MaxLeverage:     req.MaxLeverage,
		Commission:      req.Commission,
		SpreadProfileId: req.SpreadProfileId,
		Active:          req.Active,
	}
}

func (h *Handler) ListSpreadProfilesHandler(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.SpreadProfiles(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profiles)
}

func (h *Handler) GetSpreadProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := h.service.SpreadProfile(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) CreateSpreadProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req spreadProfileRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := h.service.CreateSpreadProfile(r.Context(), req.input())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, profile)
}

func (h *Handler) UpdateSpreadProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req spreadProfileRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := h.service.UpdateSpreadProfile(r.Context(), id, req.input())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) DeleteSpreadProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteSpreadProfile(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAccountTypesHandler(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.AccountTypes(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, types)
}

func (h *Handler) GetAccountTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	accountType, err := h.service.AccountType(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, accountType)
}

func (h *Handler) CreateAccountTypeHandler(w http.ResponseWriter, r *http.Request) {
	var req accountTypeRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	accountType, err := h.service.CreateAccountType(r.Context(), req.input())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, accountType)
}

func (h *Handler) UpdateAccountTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req accountTypeRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	accountType, err := h.service.UpdateAccountType(r.Context(), id, req.input())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, accountType)
}

func (h *Handler) DeleteAccountTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteAccountType(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
