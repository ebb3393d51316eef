package service

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apphttp "github.com/chainsafe/primary-sale-minter/pkg/app/http"
	"github.com/chainsafe/primary-sale-minter/pkg/auth"
	"github.com/chainsafe/primary-sale-minter/pkg/ledger"
	"github.com/chainsafe/primary-sale-minter/pkg/sale/controller"
	"github.com/chainsafe/primary-sale-minter/pkg/salestore"
)

type httpEnv struct {
	handler http.Handler
	admin   *ecdsa.PrivateKey
	seller  *ecdsa.PrivateKey
	buyer   *ecdsa.PrivateKey
	tokens  *auth.TokenService
}

type errorBody struct {
	Error  string `json:"error"`
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

func mustKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key
}

func addressOf(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

func newHTTPEnv(t *testing.T, limiter *apphttp.RateLimiter) *httpEnv {
	t.Helper()

	env := &httpEnv{admin: mustKey(t), seller: mustKey(t), buyer: mustKey(t)}
	adminAddr := addressOf(env.admin)

	led := ledger.NewMemory(adminAddr, ledger.WithMinter())
	ctrl, err := controller.New(t.Context(), salestore.NewMemoryStore(), led, adminAddr)
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}

	env.tokens = auth.NewTokenService("test-secret", "primary-sale")
	authn := auth.NewAuthenticator(env.tokens, 5*time.Minute, zap.NewNop())

	r := chi.NewRouter()
	r.Use(authn.Middleware)
	RegisterRoutes(r, NewService(ctrl, led, nil, zap.NewNop()), limiter, zap.NewNop())
	env.handler = r
	return env
}

// do sends a request signed by key. A nil key sends it anonymously.
func (env *httpEnv) do(t *testing.T, key *ecdsa.PrivateKey, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)

	if key != nil {
		urlPath := req.URL.Path
		msg := auth.RequestMessage(method, urlPath, buf.Bytes(), auth.NewNonce(), time.Now())
		sig, err := auth.SignEIP191(key, msg)
		if err != nil {
			t.Fatalf("failed to sign request: %v", err)
		}
		req.Header.Set(auth.HeaderMessage, msg)
		req.Header.Set(auth.HeaderSignature, sig)
	}

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response JSON %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

func (env *httpEnv) setup(t *testing.T) {
	t.Helper()

	rec := env.do(t, env.admin, http.MethodPost, "/roles/grant",
		&RoleRequest{Role: "seller", Account: addressOf(env.seller).Hex()})
	expectStatus(t, rec, http.StatusOK)
	if got := decode[RoleResponse](t, rec); !got.HasRole {
		t.Fatalf("expected seller role to be granted, got %+v", got)
	}

	now := time.Now().UTC()
	rec = env.do(t, env.seller, http.MethodPost, "/sale/config", &ConfigRequest{
		StartTime:     now.Add(-time.Minute),
		EndTime:       now.Add(time.Hour),
		SupplyCap:     10,
		UnitPrice:     "0.200",
		PerAccountCap: 1,
	})
	expectStatus(t, rec, http.StatusOK)
}

func TestHTTP_MintFlow(t *testing.T) {
	env := newHTTPEnv(t, nil)
	env.setup(t)

	rec := env.do(t, env.buyer, http.MethodPost, "/sale/mint", &MintRequest{TokenID: "1", Payment: "0.2"})
	expectStatus(t, rec, http.StatusCreated)
	minted := decode[MintResponse](t, rec)
	if minted.TotalAdmitted != 1 || minted.Account != addressOf(env.buyer).Hex() {
		t.Fatalf("unexpected mint response: %+v", minted)
	}

	rec = env.do(t, env.buyer, http.MethodPost, "/sale/mint", &MintRequest{TokenID: "2", Payment: "0.2"})
	expectStatus(t, rec, http.StatusConflict)
	if got := decode[errorBody](t, rec); got.Reason != "0x4" {
		t.Fatalf("expected reason 0x4, got %+v", got)
	}

	rec = env.do(t, nil, http.MethodGet, "/sale/counts", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[CountsResponse](t, rec); got.TotalAdmitted != 1 || got.Remaining != 9 {
		t.Fatalf("unexpected counts: %+v", got)
	}

	rec = env.do(t, nil, http.MethodGet, "/ledger/owner/1", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[LedgerOwnerResponse](t, rec); got.Owner != addressOf(env.buyer).Hex() {
		t.Fatalf("unexpected owner: %+v", got)
	}

	rec = env.do(t, nil, http.MethodGet, "/ledger/owner/99", nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = env.do(t, env.buyer, http.MethodPost, "/treasury/withdraw", nil)
	expectStatus(t, rec, http.StatusForbidden)

	rec = env.do(t, env.admin, http.MethodPost, "/treasury/withdraw", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[WithdrawResponse](t, rec); got.Amount != "0.2" {
		t.Fatalf("unexpected withdrawal: %+v", got)
	}

	rec = env.do(t, env.admin, http.MethodPost, "/treasury/withdraw", nil)
	expectStatus(t, rec, http.StatusConflict)
	if got := decode[errorBody](t, rec); got.Error != "nothing to withdraw" {
		t.Fatalf("unexpected error body: %+v", got)
	}
}

func TestHTTP_BlacklistDeniesMint(t *testing.T) {
	env := newHTTPEnv(t, nil)
	env.setup(t)
	buyer := addressOf(env.buyer).Hex()

	rec := env.do(t, env.admin, http.MethodPost, "/blacklist", &BlacklistRequest{Account: buyer, Blacklisted: true})
	expectStatus(t, rec, http.StatusForbidden)

	rec = env.do(t, env.seller, http.MethodPost, "/blacklist", &BlacklistRequest{Account: buyer, Blacklisted: true})
	expectStatus(t, rec, http.StatusOK)

	rec = env.do(t, nil, http.MethodGet, "/blacklist/"+buyer, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[BlacklistResponse](t, rec); !got.Blacklisted {
		t.Fatalf("expected buyer to be blacklisted, got %+v", got)
	}

	rec = env.do(t, env.buyer, http.MethodPost, "/sale/mint", &MintRequest{TokenID: "1", Payment: "1"})
	expectStatus(t, rec, http.StatusForbidden)
	if got := decode[errorBody](t, rec); got.Reason != "0x1" || got.Code != http.StatusForbidden {
		t.Fatalf("unexpected error body: %+v", got)
	}

	rec = env.do(t, nil, http.MethodGet, "/events?after=0&limit=10", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[EventsResponse](t, rec); len(got.Events) != 2 {
		t.Fatalf("expected config and blacklist events, got %d", len(got.Events))
	}
}

func TestHTTP_MutationsRequireAuthentication(t *testing.T) {
	env := newHTTPEnv(t, nil)

	rec := env.do(t, nil, http.MethodPost, "/sale/mint", &MintRequest{TokenID: "1", Payment: "1"})
	expectStatus(t, rec, http.StatusUnauthorized)
	if got := decode[errorBody](t, rec); got.Error != "authentication required" {
		t.Fatalf("unexpected error body: %+v", got)
	}
}

func TestHTTP_BearerToken(t *testing.T) {
	env := newHTTPEnv(t, nil)

	token, err := env.tokens.Issue(addressOf(env.admin), time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	body := bytes.NewBufferString(`{"role":"seller","account":"` + addressOf(env.seller).Hex() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/roles/grant", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)

	rec = env.do(t, nil, http.MethodGet, "/roles/seller/"+addressOf(env.seller).Hex(), nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[RoleResponse](t, rec); !got.HasRole {
		t.Fatalf("expected seller role, got %+v", got)
	}
}

func TestHTTP_InvalidBody(t *testing.T) {
	env := newHTTPEnv(t, nil)

	rec := env.do(t, env.buyer, http.MethodPost, "/sale/mint", map[string]any{"token_id": "1", "payment": "1", "extra": true})
	expectStatus(t, rec, http.StatusBadRequest)
	if got := decode[errorBody](t, rec); got.Error != "invalid request body" {
		t.Fatalf("unexpected error body: %+v", got)
	}

	rec = env.do(t, nil, http.MethodGet, "/events?after=-1", nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestHTTP_MintRateLimited(t *testing.T) {
	env := newHTTPEnv(t, apphttp.NewRateLimiter(0.001, 1, auth.CallerKey))
	env.setup(t)

	rec := env.do(t, env.buyer, http.MethodPost, "/sale/mint", &MintRequest{TokenID: "1", Payment: "0.2"})
	expectStatus(t, rec, http.StatusCreated)

	rec = env.do(t, env.buyer, http.MethodPost, "/sale/mint", &MintRequest{TokenID: "2", Payment: "0.2"})
	expectStatus(t, rec, http.StatusTooManyRequests)

	// other callers have their own bucket
	rec = env.do(t, env.seller, http.MethodPost, "/sale/mint", &MintRequest{TokenID: "2", Payment: "0.2"})
	expectStatus(t, rec, http.StatusCreated)
}

func TestHTTP_NegativeAmountsRejected(t *testing.T) {
	env := newHTTPEnv(t, nil)
	env.setup(t)

	rec := env.do(t, env.buyer, http.MethodPost, "/sale/mint", &MintRequest{TokenID: "1", Payment: "-5"})
	expectStatus(t, rec, http.StatusBadRequest)

	now := time.Now().UTC()
	rec = env.do(t, env.seller, http.MethodPost, "/sale/config", &ConfigRequest{
		StartTime:     now.Add(-time.Minute),
		EndTime:       now.Add(time.Hour),
		SupplyCap:     10,
		UnitPrice:     "-1",
		PerAccountCap: 1,
	})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = env.do(t, nil, http.MethodGet, "/treasury", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[TreasuryResponse](t, rec); got.Balance != "0" {
		t.Fatalf("treasury moved on rejected amounts: %+v", got)
	}
}

func TestHTTP_SignedRequestCannotBeReplayed(t *testing.T) {
	env := newHTTPEnv(t, nil)
	env.setup(t)

	body := []byte(`{"token_id":"1","payment":"0.2"}`)
	msg := auth.RequestMessage(http.MethodPost, "/sale/mint", body, auth.NewNonce(), time.Now())
	sig, err := auth.SignEIP191(env.buyer, msg)
	if err != nil {
		t.Fatalf("failed to sign request: %v", err)
	}
	send := func(body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sale/mint", bytes.NewReader(body))
		req.Header.Set(auth.HeaderMessage, msg)
		req.Header.Set(auth.HeaderSignature, sig)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec
	}

	expectStatus(t, send(body), http.StatusCreated)
	expectStatus(t, send(body), http.StatusUnauthorized)
	expectStatus(t, send([]byte(`{"token_id":"2","payment":"0.2"}`)), http.StatusUnauthorized)

	rec := env.do(t, nil, http.MethodGet, "/sale/counts", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[CountsResponse](t, rec); got.TotalAdmitted != 1 {
		t.Fatalf("expected one admission, got %+v", got)
	}
}
