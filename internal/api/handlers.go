package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eDyablo/finance/internal/auth"
	"github.com/eDyablo/finance/internal/ledger"
	"github.com/eDyablo/finance/internal/models"
)

var log = logrus.WithField("component", "api")

// Sessions is the server-side session surface handlers need
type Sessions interface {
	Create(ctx context.Context, userID int64) (string, error)
	UserID(ctx context.Context, token string) (int64, error)
	Destroy(ctx context.Context, token string) error
}

// EventPublisher publishes ledger events after successful mutations.
// Publishing is best-effort: failures are logged, never surfaced.
type EventPublisher interface {
	PublishTradeExecuted(ctx context.Context, t *models.Transaction) error
	PublishUserRegistered(ctx context.Context, userID int64) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service    *ledger.Service
	sessions   Sessions
	producer   EventPublisher
	cookieName string
	cookieTTL  time.Duration
}

// NewHandler creates a new Handler. producer may be nil.
func NewHandler(service *ledger.Service, sessions Sessions, producer EventPublisher, cookieName string, cookieTTL time.Duration) *Handler {
	return &Handler{
		service:    service,
		sessions:   sessions,
		producer:   producer,
		cookieName: cookieName,
		cookieTTL:  cookieTTL,
	}
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Register(r.Context(),
		r.FormValue("username"),
		r.FormValue("password"),
		r.FormValue("confirmation"),
	)
	if err != nil {
		h.apologyFor(w, err)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishUserRegistered(r.Context(), user.ID); err != nil {
			log.WithError(err).Warn("failed to publish registration event")
		}
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.apologyFor(w, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.internal(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles GET /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			log.WithError(err).Warn("failed to destroy session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:    h.cookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Index handles GET /: the valued portfolio
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.service.Portfolio(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.apologyFor(w, err)
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// Quote handles POST /quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.service.Quote(r.Context(), r.FormValue("symbol"))
	if err != nil {
		h.apologyFor(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// Buy handles POST /buy
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Buy(r.Context(), userIDFrom(r.Context()), r.FormValue("symbol"), r.FormValue("shares"))
	if err != nil {
		h.apologyFor(w, err)
		return
	}

	h.publishTrade(r.Context(), t)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Sell handles POST /sell
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Sell(r.Context(), userIDFrom(r.Context()), r.FormValue("symbol"), r.FormValue("shares"))
	if err != nil {
		h.apologyFor(w, err)
		return
	}

	h.publishTrade(r.Context(), t)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// historyEntry is one rendered ledger row
type historyEntry struct {
	Action string `json:"action"`
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
	Price  string `json:"price"`
	Time   string `json:"time"`
}

// History handles GET /history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.service.History(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.apologyFor(w, err)
		return
	}

	entries := make([]historyEntry, 0, len(transactions))
	for _, t := range transactions {
		entries = append(entries, historyEntry{
			Action: t.Action(),
			Symbol: t.Symbol,
			Shares: t.Amount,
			Price:  t.Price.String(),
			Time:   t.Time.Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusOK, entries)
}

// Profile handles GET /profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.ProfileFor(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.apologyFor(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles POST /profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	err := h.service.UpdateProfile(r.Context(), userIDFrom(r.Context()),
		r.FormValue("first_name"),
		r.FormValue("last_name"),
		r.FormValue("password"),
		r.FormValue("confirmation"),
	)
	if err != nil {
		h.apologyFor(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AddCash handles POST /cash
func (h *Handler) AddCash(w http.ResponseWriter, r *http.Request) {
	if err := h.service.AddCash(r.Context(), userIDFrom(r.Context()), r.FormValue("extra")); err != nil {
		h.apologyFor(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) publishTrade(ctx context.Context, t *models.Transaction) {
	if h.producer == nil {
		return
	}
	if err := h.producer.PublishTradeExecuted(ctx, t); err != nil {
		log.WithError(err).Warn("failed to publish trade event")
	}
}

// recoverable errors and the status each maps to
var errStatuses = map[error]int{
	ledger.ErrUsernameRequired:     http.StatusBadRequest,
	ledger.ErrPasswordRequired:     http.StatusBadRequest,
	ledger.ErrConfirmationRequired: http.StatusBadRequest,
	ledger.ErrConfirmationMismatch: http.StatusBadRequest,
	ledger.ErrUserExists:           http.StatusBadRequest,
	ledger.ErrSymbolRequired:       http.StatusBadRequest,
	ledger.ErrStockNotFound:        http.StatusBadRequest,
	ledger.ErrInvalidShares:        http.StatusBadRequest,
	ledger.ErrNotOwned:             http.StatusBadRequest,
	ledger.ErrInvalidAmount:        http.StatusBadRequest,
	models.ErrInsufficientCash:     http.StatusBadRequest,
	models.ErrInsufficientShares:   http.StatusBadRequest,
	ledger.ErrQuoteFailed:          http.StatusInternalServerError,
	auth.ErrInvalidCredentials:     http.StatusForbidden,
}

// apologyFor maps an operation error onto an apology response. Anything
// outside the recoverable taxonomy is logged and reported generically.
func (h *Handler) apologyFor(w http.ResponseWriter, err error) {
	for sentinel, status := range errStatuses {
		if errors.Is(err, sentinel) {
			apology(w, sentinel.Error(), status)
			return
		}
	}

	var validation ledger.ValidationError
	if errors.As(err, &validation) {
		apology(w, validation.Error(), http.StatusBadRequest)
		return
	}

	h.internal(w, err)
}

func (h *Handler) internal(w http.ResponseWriter, err error) {
	log.WithError(err).Error("request failed")
	apology(w, "internal server error", http.StatusInternalServerError)
}

func apology(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
