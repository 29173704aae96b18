package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	billingservice "github.com/copyadhq/copyad/internal/billing/service"
	"github.com/copyadhq/copyad/internal/generation"
	"github.com/copyadhq/copyad/internal/plan"
	profiledomain "github.com/copyadhq/copyad/internal/profile/domain"
)

func doRequest(ts *testServer, method, path, token string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(w, req)
	return w
}

func errorType(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp.Error.Type
}

func webhookBody(eventID, userID, priceID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {"object": {
			"client_reference_id": %q,
			"customer_email": "buyer@example.com",
			"line_items": {"data": [{"price": {"id": %q}}]}
		}}
	}`, eventID, userID, priceID))
}

func signedHeaders(body []byte) map[string]string {
	return map[string]string{
		"Stripe-Signature": billingservice.SignPayload(testWebhookSecret, body, time.Now()),
	}
}

func TestQuotaLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "u1", "u1@example.com")

	genBody := []byte(`{"product":"SolarKettle","description":"boils water with sunlight"}`)
	for i := 0; i < 5; i++ {
		w := doRequest(ts, http.MethodPost, "/v1/ads", token, genBody, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("generate %d: status %d body %s", i, w.Code, w.Body.String())
		}
	}

	w := doRequest(ts, http.MethodPost, "/v1/ads", token, genBody, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("6th generate: status %d body %s", w.Code, w.Body.String())
	}
	if got := errorType(t, w); got != "quota_exceeded" {
		t.Fatalf("error type = %q", got)
	}

	// A completed checkout upgrades the plan and unblocks generation.
	body := webhookBody("evt_upgrade", "u1", "price_pro_monthly")
	w = doRequest(ts, http.MethodPost, "/webhooks/stripe", "", body, signedHeaders(body))
	if w.Code != http.StatusOK {
		t.Fatalf("webhook: status %d body %s", w.Code, w.Body.String())
	}

	w = doRequest(ts, http.MethodPost, "/v1/ads", token, genBody, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("post-upgrade generate: status %d body %s", w.Code, w.Body.String())
	}

	w = doRequest(ts, http.MethodGet, "/v1/ads", token, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var listResp struct {
		Ads []json.RawMessage `json:"ads"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Ads) != 6 {
		t.Fatalf("expected 6 ads, got %d", len(listResp.Ads))
	}
}

func TestGenerationFailureMapsTo502(t *testing.T) {
	ts := newTestServer(t)
	ts.provider.err = generation.ErrGenerationFailed
	token := ts.token(t, "u1", "")

	w := doRequest(ts, http.MethodPost, "/v1/ads", token, []byte(`{"product":"X"}`), nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if got := errorType(t, w); got != "generation_failed" {
		t.Fatalf("error type = %q", got)
	}

	// Nothing persisted, quota untouched.
	w = doRequest(ts, http.MethodGet, "/v1/me", token, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status %d", w.Code)
	}
	var me struct {
		Usage struct {
			Used int64 `json:"used"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Usage.Used != 0 {
		t.Fatalf("used = %d, want 0", me.Usage.Used)
	}
}

func TestWebhookEndpointContract(t *testing.T) {
	ts := newTestServer(t)

	// Bad signature: 400 and nothing stored.
	body := webhookBody("evt_1", "u1", "price_pro_monthly")
	w := doRequest(ts, http.MethodPost, "/webhooks/stripe", "", body, map[string]string{
		"Stripe-Signature": "t=123,v1=deadbeef",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad signature: status %d", w.Code)
	}
	if got := errorType(t, w); got != "verification_failed" {
		t.Fatalf("error type = %q", got)
	}

	// Valid delivery acknowledges and a replay is a no-op 200.
	for i := 0; i < 2; i++ {
		w = doRequest(ts, http.MethodPost, "/webhooks/stripe", "", body, signedHeaders(body))
		if w.Code != http.StatusOK {
			t.Fatalf("delivery %d: status %d body %s", i, w.Code, w.Body.String())
		}
	}

	// Unknown event types are acknowledged, not errored.
	unknown := []byte(`{"id":"evt_2","type":"invoice.paid","data":{"object":{}}}`)
	w = doRequest(ts, http.MethodPost, "/webhooks/stripe", "", unknown, signedHeaders(unknown))
	if w.Code != http.StatusOK {
		t.Fatalf("unknown type: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Outcome string `json:"outcome"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Outcome != "ignored_unknown_type" {
		t.Fatalf("outcome = %q", resp.Outcome)
	}
}

func TestAuthAndRoleEnforcement(t *testing.T) {
	ts := newTestServer(t)

	// No token.
	w := doRequest(ts, http.MethodGet, "/v1/ads", "", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", w.Code)
	}

	// Garbage token.
	w = doRequest(ts, http.MethodGet, "/v1/ads", "not-a-jwt", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d", w.Code)
	}

	// Regular users cannot reach admin surfaces.
	userToken := ts.token(t, "u1", "")
	w = doRequest(ts, http.MethodGet, "/v1/admin/users", userToken, nil, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin: status %d body %s", w.Code, w.Body.String())
	}
	if got := errorType(t, w); got != "forbidden" {
		t.Fatalf("error type = %q", got)
	}

	// Promote via the store, not the token. The same token now passes.
	seedAdmin(t, ts, "admin-1")
	adminToken := ts.token(t, "admin-1", "admin@example.com")
	w = doRequest(ts, http.MethodGet, "/v1/admin/users", adminToken, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin list users: status %d body %s", w.Code, w.Body.String())
	}

	w = doRequest(ts, http.MethodGet, "/v1/admin/summary", adminToken, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin summary: status %d body %s", w.Code, w.Body.String())
	}
}

func seedAdmin(t *testing.T, ts *testServer, userID string) {
	t.Helper()
	ctx := t.Context()
	if err := ts.profiles.UpsertPlan(ctx, profiledomain.UpsertPlanRequest{UserID: userID, Plan: plan.PlanFree}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if err := ts.profiles.UpdateRole(ctx, userID, profiledomain.RoleAdmin); err != nil {
		t.Fatalf("seed role: %v", err)
	}
}

func TestAdminTemplateManagement(t *testing.T) {
	ts := newTestServer(t)
	seedAdmin(t, ts, "admin-1")
	adminToken := ts.token(t, "admin-1", "")
	userToken := ts.token(t, "u1", "")

	createBody := []byte(`{"name":"Launch Teaser","platform":"instagram","tone":"playful","content":"Tease {product}: {description}"}`)
	w := doRequest(ts, http.MethodPost, "/v1/admin/templates", adminToken, createBody, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create template: status %d body %s", w.Code, w.Body.String())
	}

	// Duplicate name conflicts.
	w = doRequest(ts, http.MethodPost, "/v1/admin/templates", adminToken, createBody, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate template: status %d", w.Code)
	}

	// Users can read but not create.
	w = doRequest(ts, http.MethodGet, "/v1/templates", userToken, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list templates: status %d", w.Code)
	}
	w = doRequest(ts, http.MethodPost, "/v1/admin/templates", userToken, createBody, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("user create template: status %d", w.Code)
	}

	// Generate against the template by slug.
	w = doRequest(ts, http.MethodPost, "/v1/ads", userToken, []byte(`{"product":"SolarKettle","template":"launch-teaser"}`), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("generate with template: status %d body %s", w.Code, w.Body.String())
	}

	w = doRequest(ts, http.MethodDelete, "/v1/admin/templates/launch-teaser", adminToken, nil, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete template: status %d", w.Code)
	}
	w = doRequest(ts, http.MethodGet, "/v1/templates/launch-teaser", userToken, nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted template lookup: status %d", w.Code)
	}
}

func TestUpdateUserRoleEndpoint(t *testing.T) {
	ts := newTestServer(t)
	seedAdmin(t, ts, "admin-1")
	adminToken := ts.token(t, "admin-1", "")

	// Target must exist.
	w := doRequest(ts, http.MethodPatch, "/v1/admin/users/ghost/role", adminToken, []byte(`{"role":"admin"}`), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing target: status %d", w.Code)
	}

	seedAdminTarget(t, ts, "u2")
	w = doRequest(ts, http.MethodPatch, "/v1/admin/users/u2/role", adminToken, []byte(`{"role":"bogus"}`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid role: status %d", w.Code)
	}

	w = doRequest(ts, http.MethodPatch, "/v1/admin/users/u2/role", adminToken, []byte(`{"role":"admin"}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("update role: status %d body %s", w.Code, w.Body.String())
	}
}

func seedAdminTarget(t *testing.T, ts *testServer, userID string) {
	t.Helper()
	if err := ts.profiles.UpsertPlan(t.Context(), profiledomain.UpsertPlanRequest{UserID: userID, Plan: plan.PlanFree}); err != nil {
		t.Fatalf("seed target: %v", err)
	}
}

func TestCheckoutEndpointValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "u1", "u1@example.com")

	// Free plan has no price.
	w := doRequest(ts, http.MethodPost, "/v1/billing/checkout", token, []byte(`{"plan":"free"}`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("free checkout: status %d body %s", w.Code, w.Body.String())
	}

	// Purchasable plan without a configured provider key is unavailable.
	w = doRequest(ts, http.MethodPost, "/v1/billing/checkout", token, []byte(`{"plan":"pro","interval":"monthly"}`), nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("pro checkout without provider: status %d body %s", w.Code, w.Body.String())
	}
}

func TestHealthAndMe(t *testing.T) {
	ts := newTestServer(t)

	w := doRequest(ts, http.MethodGet, "/health", "", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: status %d", w.Code)
	}

	token := ts.token(t, "u1", "u1@example.com")
	w = doRequest(ts, http.MethodGet, "/v1/me", token, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status %d body %s", w.Code, w.Body.String())
	}
	var me struct {
		UserID string `json:"user_id"`
		Plan   string `json:"plan"`
		Role   string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.UserID != "u1" || me.Plan != "free" || me.Role != "user" {
		t.Fatalf("unexpected me payload: %+v", me)
	}
}
