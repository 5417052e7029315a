package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"loanpicks.com/loan-picks/internal/config"
	"loanpicks.com/loan-picks/internal/core"
	"loanpicks.com/loan-picks/internal/llm"
	"loanpicks.com/loan-picks/internal/store"
)

func TestMain(m *testing.M) {
	config.AppConfig = config.Config{JWTSecret: "test-secret"}
	os.Exit(m.Run())
}

type stubGenerator struct {
	answer string
	err    error
	calls  int
}

func (g *stubGenerator) Generate(_ context.Context, _ string, _ []llm.Turn, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func (g *stubGenerator) Close() {}

func newTestServer(t *testing.T, gen llm.Generator) (http.Handler, *store.SQLiteStore) {
	t.Helper()
	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.SeedProducts()
	require.NoError(t, err)

	handler := NewAPIHandler(
		core.NewAccountService(db),
		core.NewCatalogService(db),
		core.NewAssistantService(db, gen),
	)
	return NewRouter(handler), db
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func signupAndOnboard(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/signup", "", map[string]string{
		"email": "ada@example.com", "password": "hunter22", "name": "Ada",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token := decodeBody(t, rec)["token"].(string)

	rec = doJSON(t, router, http.MethodPut, "/api/profile", token, map[string]any{
		"monthly_income": 45000, "credit_score": 760, "employment_type": "salaried",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	return token
}

func firstProductID(t *testing.T, db *store.SQLiteStore) string {
	t.Helper()
	products, err := db.GetProducts()
	require.NoError(t, err)
	return products[0].ID
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t, llm.MockClient{})
	rec := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAsk_MissingFields(t *testing.T) {
	router, _ := newTestServer(t, llm.MockClient{})

	tests := []struct {
		name string
		body map[string]any
	}{
		{"no product", map[string]any{"message": "hello"}},
		{"no message", map[string]any{"productId": "p1"}},
		{"empty body", map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/ai/ask", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAsk_UnknownProduct(t *testing.T) {
	gen := &stubGenerator{answer: "unused"}
	router, db := newTestServer(t, gen)
	token := signupAndOnboard(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/ai/ask", token, map[string]any{
		"productId": "no-such-product", "message": "am I eligible?",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["error"])
	assert.Zero(t, gen.calls)

	// No session row was created for the bogus product.
	user, err := db.GetUserByEmail("ada@example.com")
	require.NoError(t, err)
	session, err := db.GetChatSession(user.ID, "no-such-product")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestAsk_MockFallbackWithoutCredential(t *testing.T) {
	// Provider selected from an empty config, exactly as main would.
	gen, err := llm.FromConfig(config.Config{JWTSecret: "test-secret"})
	require.NoError(t, err)
	router, db := newTestServer(t, gen)

	rec := doJSON(t, router, http.MethodPost, "/api/ai/ask", "", map[string]any{
		"productId": firstProductID(t, db), "message": "what are the charges?",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	answer, ok := body["answer"].(string)
	require.True(t, ok)
	assert.Contains(t, answer, "[MOCK AI]")
}

func TestAsk_RateLimit(t *testing.T) {
	router, db := newTestServer(t, &stubGenerator{err: llm.ErrRateLimited})

	rec := doJSON(t, router, http.MethodPost, "/api/ai/ask", "", map[string]any{
		"productId": firstProductID(t, db), "message": "hello",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["isRateLimit"])
	assert.NotEmpty(t, body["error"])
}

func TestAsk_AuthenticatedTurnIsSaved(t *testing.T) {
	router, db := newTestServer(t, &stubGenerator{answer: "The APR is 10.5%."})
	token := signupAndOnboard(t, router)
	productID := firstProductID(t, db)

	rec := doJSON(t, router, http.MethodPost, "/api/ai/ask", token, map[string]any{
		"productId": productID,
		"message":   "what's the rate?",
		"history":   []map[string]string{{"role": "user", "content": "hi"}, {"role": "tool", "content": "dropped"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "The APR is 10.5%.", decodeBody(t, rec)["answer"])

	rec = doJSON(t, router, http.MethodGet, "/api/products/"+productID+"/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decodeBody(t, rec)["messages"].([]any)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "what's the rate?", first["content"])
}

func TestChatHistory_AnonymousIsEmpty(t *testing.T) {
	router, db := newTestServer(t, llm.MockClient{})

	rec := doJSON(t, router, http.MethodGet, "/api/products/"+firstProductID(t, db)+"/history", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["messages"])
}

func TestListProducts_Filtering(t *testing.T) {
	router, _ := newTestServer(t, llm.MockClient{})

	rec := doJSON(t, router, http.MethodGet, "/api/products?maxApr=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	var listed []string
	for _, raw := range body["products"].([]any) {
		listed = append(listed, raw.(map[string]any)["name"].(string))
	}
	assert.NotContains(t, listed, "Bajaj Finserv PL")
	assert.Contains(t, listed, "SBI Education Loan")
	assert.Equal(t, float64(len(store.FixtureProducts)), body["total_count"])

	rec = doJSON(t, router, http.MethodGet, "/api/products?minCreditScore=750", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, raw := range decodeBody(t, rec)["products"].([]any) {
		p := raw.(map[string]any)
		assert.GreaterOrEqual(t, p["min_credit_score"].(float64), 750.0)
	}
}

func TestDashboard(t *testing.T) {
	router, _ := newTestServer(t, llm.MockClient{})

	// Anonymous dashboard uses catalog order.
	rec := doJSON(t, router, http.MethodGet, "/api/dashboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	best := body["best_match"].(map[string]any)
	assert.Equal(t, store.FixtureProducts[0].Name, best["name"])
	assert.Len(t, body["top_picks"].([]any), 4)
	assert.Equal(t, float64(len(store.FixtureProducts)), body["total_count"])

	// Onboarded users get scored picks: everything shown is affordable for
	// a 45k/760 profile, so the 50k-income Yes Bank loan cannot appear.
	token := signupAndOnboard(t, router)
	rec = doJSON(t, router, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	shown := []any{body["best_match"]}
	shown = append(shown, body["top_picks"].([]any)...)
	for _, raw := range shown {
		assert.NotEqual(t, "Yes Bank Home Loan", raw.(map[string]any)["name"])
	}
}

func TestProfile_RequiresAuthAndFields(t *testing.T) {
	router, _ := newTestServer(t, llm.MockClient{})

	rec := doJSON(t, router, http.MethodPut, "/api/profile", "", map[string]any{
		"monthly_income": 45000, "credit_score": 760,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	recSignup := doJSON(t, router, http.MethodPost, "/api/signup", "", map[string]string{
		"email": "bob@example.com", "password": "hunter22", "name": "Bob",
	})
	require.Equal(t, http.StatusCreated, recSignup.Code)
	token := decodeBody(t, recSignup)["token"].(string)

	rec = doJSON(t, router, http.MethodPut, "/api/profile", token, map[string]any{
		"employment_type": "salaried",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "income and credit score are required")
}

func TestLogin_BadPassword(t *testing.T) {
	router, _ := newTestServer(t, llm.MockClient{})
	rec := doJSON(t, router, http.MethodPost, "/api/signup", "", map[string]string{
		"email": "ada@example.com", "password": "hunter22", "name": "Ada",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
