package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"loanpicks.com/loan-picks/internal/auth"
	"loanpicks.com/loan-picks/internal/catalog"
	"loanpicks.com/loan-picks/internal/core"
	"loanpicks.com/loan-picks/internal/llm"
	"loanpicks.com/loan-picks/internal/store"
)

type contextKey string

const userIDKey contextKey = "userID"

type APIHandler struct {
	accountService   *core.AccountService
	catalogService   *core.CatalogService
	assistantService *core.AssistantService
}

func NewAPIHandler(accounts *core.AccountService, catalogSvc *core.CatalogService, assistant *core.AssistantService) *APIHandler {
	return &APIHandler{
		accountService:   accounts,
		catalogService:   catalogSvc,
		assistantService: assistant,
	}
}

// JWTAuthMiddleware rejects requests without a valid bearer token.
func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := auth.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		user, err := h.accountService.GetUser(userID)
		if err != nil {
			log.Printf("Error in JWTAuthMiddleware for user %s: %v", userID, err)
			http.Error(w, "Failed to process user identity", http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthMiddleware attaches the user identity when a valid bearer
// token is present and lets anonymous requests through. The dashboard,
// assistant and history endpoints serve both audiences.
func (h *APIHandler) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if userID, err := auth.ValidateJWT(tokenString); err == nil {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func userIDFromContext(r *http.Request) string {
	if id, ok := r.Context().Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, token, err := h.accountService.Signup(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Printf("Error creating account for %s: %v", req.Email, err)
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"token": token, "user": user})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, token, err := h.accountService.Login(req.Email, req.Password)
	if err != nil {
		// Pass the service message through; it carries the email
		// verification hint for unconfirmed accounts.
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

type ProfileRequest struct {
	MonthlyIncome  float64 `json:"monthly_income"`
	CreditScore    int     `json:"credit_score"`
	EmploymentType string  `json:"employment_type"`
}

func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.MonthlyIncome <= 0 || req.CreditScore <= 0 {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	if err := h.accountService.UpdateProfile(userID, req.MonthlyIncome, req.CreditScore, req.EmploymentType); err != nil {
		log.Printf("Error updating profile for user %s: %v", userID, err)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func criteriaFromQuery(r *http.Request) catalog.FilterCriteria {
	criteria := catalog.DefaultCriteria()
	q := r.URL.Query()
	criteria.Search = q.Get("search")
	if v, err := strconv.ParseFloat(q.Get("maxApr"), 64); err == nil && v > 0 {
		criteria.MaxAPR = v
	}
	if v, err := strconv.ParseFloat(q.Get("minIncome"), 64); err == nil && v > 0 {
		criteria.MinIncome = v
	}
	if v, err := strconv.Atoi(q.Get("minCreditScore")); err == nil && v > 0 {
		criteria.MinCreditScore = v
	}
	return criteria
}

func (h *APIHandler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, total, err := h.catalogService.ListProducts(criteriaFromQuery(r))
	if err != nil {
		log.Printf("Error listing products: %v", err)
		http.Error(w, "Failed to list products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []store.Product{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products":    products,
		"count":       len(products),
		"total_count": total,
	})
}

func (h *APIHandler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	product, err := h.catalogService.GetProduct(productID)
	if err != nil {
		if errors.Is(err, core.ErrProductNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting product %s: %v", productID, err)
		http.Error(w, "Failed to get product", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *APIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	var user *store.User
	if userID := userIDFromContext(r); userID != "" {
		var err error
		user, err = h.accountService.GetUser(userID)
		if err != nil {
			log.Printf("Error loading user %s for dashboard, serving anonymous view: %v", userID, err)
		}
	}

	recs, err := h.catalogService.Dashboard(user)
	if err != nil {
		log.Printf("Error building dashboard: %v", err)
		http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
		return
	}
	topPicks := recs.TopPicks
	if topPicks == nil {
		topPicks = []store.Product{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"best_match":  recs.BestMatch,
		"top_picks":   topPicks,
		"total_count": recs.Total,
	})
}

func (h *APIHandler) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	turns := h.assistantService.History(userIDFromContext(r), productID)
	if turns == nil {
		turns = []store.Turn{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": turns})
}

type AskRequest struct {
	ProductID string `json:"productId"`
	Message   string `json:"message"`
	History   []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"history"`
}

// AskHandler runs one assistant turn. This route speaks JSON error bodies
// because the chat UI reads the error and isRateLimit fields.
func (h *APIHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.ProductID == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing required fields"})
		return
	}

	history := make([]llm.Turn, 0, len(req.History))
	for _, msg := range req.History {
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		history = append(history, llm.Turn{Role: msg.Role, Content: msg.Content})
	}

	answer, err := h.assistantService.Ask(r.Context(), userIDFromContext(r), req.ProductID, req.Message, history)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrProductNotFound):
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Product not found"})
		case errors.Is(err, llm.ErrRateLimited):
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":       "AI usage limit reached. Please wait a moment before trying again.",
				"isRateLimit": true,
			})
		default:
			log.Printf("Assistant error for product %s: %v", req.ProductID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal Server Error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"answer": answer})
}
