package server

import (
	"context"
	"net/http"

	"broker-backoffice-go/internal/api"
	"broker-backoffice-go/internal/models"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type rejectRequest struct {
	Reason string `json:"reason"`
}

type walletOperationRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

type transactionView func(context.Context, api.TransactionQuery) ([]models.NormalizedTransaction, error)

func (h *Handler) serveTransactions(w http.ResponseWriter, r *http.Request, view transactionView) {
	backend, criteria, err := parseCriteria(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := view(r.Context(), api.TransactionQuery{Backend: backend, Filter: criteria})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) TransactionHistoryHandler(w http.ResponseWriter, r *http.Request) {
	h.serveTransactions(w, r, h.service.TransactionHistory)
}

func (h *Handler) WithdrawalQueueHandler(w http.ResponseWriter, r *http.Request) {
	h.serveTransactions(w, r, h.service.WithdrawalQueue)
}

func (h *Handler) DepositQueueHandler(w http.ResponseWriter, r *http.Request) {
	h.serveTransactions(w, r, h.service.DepositQueue)
}

func (h *Handler) ApproveTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	origin := models.Origin(mux.Vars(r)["origin"])
	if err := h.service.ApproveTransaction(r.Context(), origin, id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RejectTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req rejectRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	origin := models.Origin(mux.Vars(r)["origin"])
	if err := h.service.RejectTransaction(r.Context(), origin, id, req.Reason); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) WalletHandler(w http.ResponseWriter, r *http.Request) {
	rng, err := parseSummaryRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	overview, err := h.service.Wallet(r.Context(), rng)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, overview)
}

func (h *Handler) WalletLedgerHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := h.service.WalletLedger(r.Context(), page)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

func (h *Handler) ReplenishWalletHandler(w http.ResponseWriter, r *http.Request) {
	h.serveWalletOperation(w, r, h.service.ReplenishWallet)
}

func (h *Handler) WithdrawWalletHandler(w http.ResponseWriter, r *http.Request) {
	h.serveWalletOperation(w, r, h.service.WithdrawWallet)
}

func (h *Handler) serveWalletOperation(w http.ResponseWriter, r *http.Request, op func(context.Context, decimal.Decimal, string) (models.WalletBalances, error)) {
	var req walletOperationRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	balances, err := op(r.Context(), req.Amount, req.Note)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, balances)
}
