package server

import (
	"net/http"

	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"

	"github.com/gorilla/mux"
)

type blockRequest struct {
	Blocked bool `json:"blocked"`
}

type accountStatusRequest struct {
	UserId int64                `json:"userId"`
	Status models.AccountStatus `json:"status"`
}

type leverageRequest struct {
	UserId   int64 `json:"userId"`
	Leverage int   `json:"leverage"`
}

type kycReviewRequest struct {
	UserId  int64  `json:"userId"`
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

type messageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) ListClientsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clients, err := h.service.ListClients(r.Context(), endpoints.UserFilter{
		Search:    q.Get("search"),
		KycStatus: q.Get("kycStatus"),
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, clients)
}

func (h *Handler) ClientProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := h.service.ClientProfile(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) SetClientBlockedHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req blockRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.SetClientBlocked(r.Context(), id, req.Blocked); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListClientMessagesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	messages, err := h.service.ClientMessages(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messages)
}

func (h *Handler) SendClientMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req messageRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.SendClientMessage(r.Context(), id, req.Message); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) SetAccountStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req accountStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = h.service.SetAccountStatus(r.Context(), endpoints.AccountStatusArgs{
		AccountId: id,
		UserId:    req.UserId,
		Status:    req.Status,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetLeverageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req leverageRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = h.service.SetLeverage(r.Context(), endpoints.LeverageArgs{
		AccountId: id,
		UserId:    req.UserId,
		Leverage:  req.Leverage,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListKycHandler(w http.ResponseWriter, r *http.Request) {
	sets, err := h.service.ListKyc(r.Context(), endpoints.KycFilter{Status: r.URL.Query().Get("status")})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sets)
}

func (h *Handler) ReviewKycHandler(w http.ResponseWriter, r *http.Request) {
	submission, err := pathId(r, "submission")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req kycReviewRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = h.service.ReviewKycDocument(r.Context(), endpoints.KycReview{
		UserId:       req.UserId,
		SubmissionId: submission,
		Document:     models.DocumentKind(mux.Vars(r)["kind"]),
		Approve:      req.Approve,
		Reason:       req.Reason,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
