package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/echeque-service/internal/cheque"
	"github.com/sheikh-saqib/echeque-service/internal/models"
)

type handler struct {
	lifecycle Lifecycle
	logger    *zap.Logger
	version   string
}

type issueRequest struct {
	SenderAccount   *string          `json:"sender_account"`
	ReceiverAccount *string          `json:"receiver_account"`
	Amount          *decimal.Decimal `json:"amount"`
	ChequeDate      *string          `json:"cheque_date"`
	ExpiryDate      *string          `json:"expiry_date"`
}

type signRequest struct {
	ChequeID *string `json:"cheque_id"`
	OTP      *string `json:"otp"`
}

type statusResponse struct {
	ChequeID string        `json:"cheque_id"`
	Status   models.Status `json:"status"`
}

type chequeResponse struct {
	ChequeID        string          `json:"cheque_id"`
	SenderAccount   string          `json:"sender_account"`
	ReceiverAccount string          `json:"receiver_account"`
	Amount          decimal.Decimal `json:"amount"`
	ChequeDate      string          `json:"cheque_date"`
	ExpiryDate      string          `json:"expiry_date"`
	Status          models.Status   `json:"status"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "E-Cheque API is live",
		"version": h.version,
	})
}

func (h *handler) issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "invalid request body"})
		return
	}

	params, problems := req.params()
	if len(problems) > 0 {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: strings.Join(problems, "; ")})
		return
	}

	c, err := h.lifecycle.Issue(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statusResponse{ChequeID: c.ID, Status: c.Status})
}

// params converts the body into manager input, collecting every problem found.
func (req issueRequest) params() (cheque.IssueParams, []string) {
	var (
		p        cheque.IssueParams
		problems []string
	)
	if req.SenderAccount == nil {
		problems = append(problems, "sender_account is required")
	} else {
		p.Sender = *req.SenderAccount
	}
	if req.ReceiverAccount == nil {
		problems = append(problems, "receiver_account is required")
	} else {
		p.Receiver = *req.ReceiverAccount
	}
	if req.Amount == nil {
		problems = append(problems, "amount is required")
	} else {
		p.Amount = *req.Amount
	}

	if req.ChequeDate == nil {
		problems = append(problems, "cheque_date is required")
	} else if d, err := models.ParseDate(*req.ChequeDate); err != nil {
		problems = append(problems, "cheque_date must be an ISO-8601 date (YYYY-MM-DD)")
	} else {
		p.ChequeDate = d
	}
	if req.ExpiryDate == nil {
		problems = append(problems, "expiry_date is required")
	} else if d, err := models.ParseDate(*req.ExpiryDate); err != nil {
		problems = append(problems, "expiry_date must be an ISO-8601 date (YYYY-MM-DD)")
	} else {
		p.ExpiryDate = d
	}
	return p, problems
}

func (h *handler) sign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "invalid request body"})
		return
	}
	var problems []string
	if req.ChequeID == nil {
		problems = append(problems, "cheque_id is required")
	}
	if req.OTP == nil {
		problems = append(problems, "otp is required")
	}
	if len(problems) > 0 {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: strings.Join(problems, "; ")})
		return
	}

	c, err := h.lifecycle.Sign(r.Context(), *req.ChequeID, *req.OTP)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statusResponse{ChequeID: c.ID, Status: c.Status})
}

func (h *handler) present(w http.ResponseWriter, r *http.Request) {
	c, err := h.lifecycle.Present(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statusResponse{ChequeID: c.ID, Status: c.Status})
}

func (h *handler) revoke(w http.ResponseWriter, r *http.Request) {
	c, err := h.lifecycle.Revoke(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statusResponse{ChequeID: c.ID, Status: c.Status})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	c, err := h.lifecycle.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statusResponse{ChequeID: c.ID, Status: c.Status})
}

func (h *handler) detail(w http.ResponseWriter, r *http.Request) {
	c, err := h.lifecycle.Peek(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, chequeResponse{
		ChequeID:        c.ID,
		SenderAccount:   c.Sender,
		ReceiverAccount: c.Receiver,
		Amount:          c.Amount,
		ChequeDate:      models.FormatDate(c.ChequeDate),
		ExpiryDate:      models.FormatDate(c.ExpiryDate),
		Status:          c.Status,
	})
}

// httpStatus maps a lifecycle error kind to its transport status code.
func httpStatus(kind cheque.Kind) int {
	switch kind {
	case cheque.KindNotFound:
		return http.StatusNotFound
	case cheque.KindInvalidTransition, cheque.KindExpired:
		return http.StatusBadRequest
	case cheque.KindForbidden:
		return http.StatusForbidden
	case cheque.KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatus(cheque.KindOf(err))
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	h.writeJSON(w, code, errorResponse{Detail: cheque.MessageOf(err)})
}

// writeJSON sends v with the given status. Once the header is written the status
// cannot change, so an encoding or write failure is only logged.
func (h *handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("writing response failed", zap.Int("status", code), zap.Error(err))
	}
}
