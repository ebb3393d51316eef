package service

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/primary-sale-minter/pkg/app/errors"
	apphttp "github.com/chainsafe/primary-sale-minter/pkg/app/http"
	"github.com/chainsafe/primary-sale-minter/pkg/auth"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the sale endpoints on the given chi router. The
// router must run auth.Authenticator's middleware. limiter guards the mint
// endpoint and may be nil.
func RegisterRoutes(r chi.Router, service Service, limiter *apphttp.RateLimiter, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/roles", func(r chi.Router) {
		r.Post("/grant", apphttp.HandleError(h.grant))
		r.Post("/revoke", apphttp.HandleError(h.revoke))
		r.Get("/{role}/{address}", apphttp.HandleError(h.hasRole))
	})

	r.Post("/blacklist", apphttp.HandleError(h.setBlacklisted))
	r.Get("/blacklist/{address}", apphttp.HandleError(h.isBlacklisted))

	r.Route("/sale", func(r chi.Router) {
		r.Post("/config", apphttp.HandleError(h.configure))
		r.Get("/config", apphttp.HandleError(h.currentConfig))
		r.Get("/counts", apphttp.HandleError(h.counts))
		r.Get("/accounts/{address}", apphttp.HandleError(h.account))

		mint := http.Handler(apphttp.HandleError(h.mint))
		if limiter != nil {
			mint = limiter.Middleware(mint)
		}
		r.Method(http.MethodPost, "/mint", mint)
	})

	r.Get("/treasury", apphttp.HandleError(h.treasury))
	r.Post("/treasury/withdraw", apphttp.HandleError(h.withdraw))

	r.Get("/events", apphttp.HandleError(h.events))

	r.Get("/ledger/balance/{address}", apphttp.HandleError(h.ledgerBalance))
	r.Get("/ledger/owner/{id}", apphttp.HandleError(h.ledgerOwner))
}

func callerOf(r *http.Request) (common.Address, error) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		return common.Address{}, apperrors.UnAuthorizedError(nil, "authentication required")
	}
	return caller.Address, nil
}

func (h *HTTP) grant(w http.ResponseWriter, r *http.Request) error {
	return h.setRole(w, r, h.service.Grant)
}

func (h *HTTP) revoke(w http.ResponseWriter, r *http.Request) error {
	return h.setRole(w, r, h.service.Revoke)
}

func (h *HTTP) setRole(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, caller common.Address, req *RoleRequest) error,
) error {
	caller, err := callerOf(r)
	if err != nil {
		return err
	}
	var req RoleRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := apply(r.Context(), caller, &req); err != nil {
		return err
	}
	resp, err := h.service.HasRole(r.Context(), req.Role, req.Account)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *HTTP) hasRole(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.HasRole(r.Context(), chi.URLParam(r, "role"), chi.URLParam(r, "address"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *HTTP) setBlacklisted(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerOf(r)
	if err != nil {
		return err
	}
	var req BlacklistRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	evt, err := h.service.SetBlacklisted(r.Context(), caller, &req)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, evt)
}

func (h *HTTP) isBlacklisted(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.IsBlacklisted(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *HTTP) configure(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerOf(r)
	if err != nil {
		return err
	}
	var req ConfigRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	evt, err := h.service.Configure(r.Context(), caller, &req)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, evt)
}

func (h *HTTP) currentConfig(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.CurrentConfig(r.Context())
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *HTTP) mint(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerOf(r)
	if err != nil {
		return err
	}
	var req MintRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	resp, err := h.service.Mint(r.Context(), caller, &req)
	if err != nil {
		return err
	}
	if resp.PendingTx != "" {
		return apphttp.WriteJSON(w, http.StatusAccepted, resp)
	}
	return apphttp.WriteJSON(w, http.StatusCreated, resp)
}

func (h *HTTP) counts(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.Counts(r.Context())
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *HTTP) account(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.Account(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *HTTP) treasury(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.Treasury(r.Context())
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *HTTP) withdraw(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerOf(r)
	if err != nil {
		return err
	}
	resp, err := h.service.Withdraw(r.Context(), caller)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *HTTP) events(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	var after uint64
	if v := q.Get("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return apperrors.BadRequestError(err, "invalid after cursor")
		}
		after = n
	}
	var limit int
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return apperrors.BadRequestError(err, "invalid limit")
		}
		limit = n
	}

	resp, err := h.service.Events(r.Context(), after, limit)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *HTTP) ledgerBalance(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.LedgerBalance(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *HTTP) ledgerOwner(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.LedgerOwner(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}
