package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/eDyablo/finance/internal/auth"
	"github.com/eDyablo/finance/internal/models"
)

var log = logrus.WithField("component", "ledger")

// Store is the persistence surface the service needs. database.DB
// implements it; tests substitute an in-memory store.
type Store interface {
	CreateUser(ctx context.Context, name, hash string, cash decimal.Decimal) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
	UserByName(ctx context.Context, name string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	AddCash(ctx context.Context, userID int64, delta decimal.Decimal) error
	ProfileByUser(ctx context.Context, userID int64) (*models.Profile, error)
	SaveProfile(ctx context.Context, p *models.Profile) error
	HoldingsFor(ctx context.Context, userID int64) ([]models.Holding, error)
	SharesHeld(ctx context.Context, userID int64, symbol string) (int64, error)
	TransactionsFor(ctx context.Context, userID int64) ([]*models.Transaction, error)
	ExecuteTrade(ctx context.Context, t *models.Transaction) error
}

// Quoter resolves a symbol to a current quote
type Quoter interface {
	Lookup(ctx context.Context, symbol string) (*models.Quote, error)
}

// Service implements the brokerage operations: registration, login,
// quotes, buy/sell, portfolio valuation, history, profile, cash top-up
type Service struct {
	store  Store
	quoter Quoter
}

// New creates a Service on the given store and quote collaborator
func New(store Store, quoter Quoter) *Service {
	return &Service{store: store, quoter: quoter}
}

// Position is one valued holding inside a portfolio
type Position struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

// Portfolio combines a user's cash with their valued holdings
type Portfolio struct {
	Cash      decimal.Decimal `json:"cash"`
	Positions []Position      `json:"positions"`
	Total     decimal.Decimal `json:"total"`
}

// Register creates a new user with the fixed starting cash balance
func (s *Service) Register(ctx context.Context, username, password, confirmation string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if reason := auth.ValidatePassword(password); reason != auth.PasswordOK {
		return nil, ValidationError(reason)
	}
	if password != confirmation {
		return nil, ErrConfirmationMismatch
	}

	_, err := s.store.UserByName(ctx, username)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, hash, models.StartingCash)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"user_id": user.ID, "name": user.Name}).Info("user registered")
	return user, nil
}

// Login verifies credentials. Unknown user and wrong password produce the
// same error so account names cannot be enumerated.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	user, err := s.store.UserByName(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(user.Hash, password) {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}

// Quote resolves a symbol through the external lookup service. Every
// lookup failure surfaces as a stock-not-found condition.
func (s *Service) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrSymbolRequired
	}

	quote, err := s.quoter.Lookup(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	return quote, nil
}

// Buy purchases shares at the current quoted price, debiting cash. The
// ledger append and the cash debit commit atomically in the store.
func (s *Service) Buy(ctx context.Context, userID int64, symbol, shares string) (*models.Transaction, error) {
	quote, err := s.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	count, err := parseShares(shares)
	if err != nil {
		return nil, err
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	total := quote.Price.Mul(decimal.NewFromInt(count))
	if user.Cash.LessThan(total) {
		return nil, models.ErrInsufficientCash
	}

	t := &models.Transaction{
		UserID: userID,
		Symbol: quote.Symbol,
		Amount: count,
		Price:  quote.Price,
	}
	if err := s.store.ExecuteTrade(ctx, t); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"user_id": userID,
		"symbol":  t.Symbol,
		"shares":  count,
		"price":   quote.Price.String(),
	}).Info("buy executed")
	return t, nil
}

// Sell disposes of held shares at the current quoted price, crediting
// cash. Held shares are derived from the ledger, never stored; the quote
// is resolved even though the shares are known to be held, so the trade
// always prices against current data.
func (s *Service) Sell(ctx context.Context, userID int64, symbol, shares string) (*models.Transaction, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrSymbolRequired
	}

	held, err := s.store.SharesHeld(ctx, userID, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to derive holdings: %w", err)
	}
	if held <= 0 {
		return nil, ErrNotOwned
	}

	count, err := parseShares(shares)
	if err != nil {
		return nil, err
	}
	if count > held {
		return nil, models.ErrInsufficientShares
	}

	quote, err := s.quoter.Lookup(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuoteFailed, err)
	}

	t := &models.Transaction{
		UserID: userID,
		Symbol: quote.Symbol,
		Amount: -count,
		Price:  quote.Price,
	}
	if err := s.store.ExecuteTrade(ctx, t); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"user_id": userID,
		"symbol":  t.Symbol,
		"shares":  count,
		"price":   quote.Price.String(),
	}).Info("sell executed")
	return t, nil
}

// Holdings returns the user's derived (symbol, net shares) pairs
func (s *Service) Holdings(ctx context.Context, userID int64) ([]models.Holding, error) {
	return s.store.HoldingsFor(ctx, userID)
}

// Portfolio values every holding at its current quote and totals it with
// cash. A failed lookup for any held symbol fails the whole valuation.
func (s *Service) Portfolio(ctx context.Context, userID int64) (*Portfolio, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	holdings, err := s.store.HoldingsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive holdings: %w", err)
	}

	portfolio := &Portfolio{
		Cash:      user.Cash,
		Positions: make([]Position, 0, len(holdings)),
		Total:     user.Cash,
	}
	for _, h := range holdings {
		quote, err := s.quoter.Lookup(ctx, h.Symbol)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQuoteFailed, err)
		}

		value := quote.Price.Mul(decimal.NewFromInt(h.Shares))
		portfolio.Positions = append(portfolio.Positions, Position{
			Symbol: quote.Symbol,
			Name:   quote.Name,
			Shares: h.Shares,
			Price:  quote.Price,
			Value:  value,
		})
		portfolio.Total = portfolio.Total.Add(value)
	}

	return portfolio, nil
}

// History returns the user's full ledger, newest first
func (s *Service) History(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	return s.store.TransactionsFor(ctx, userID)
}

// AddCash tops up the user's balance by a submitted decimal amount.
// Only positive amounts are accepted, so the balance cannot go negative.
func (s *Service) AddCash(ctx context.Context, userID int64, amount string) error {
	extra, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil || !extra.IsPositive() {
		return ErrInvalidAmount
	}

	if err := s.store.AddCash(ctx, userID, extra); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"user_id": userID, "amount": extra.String()}).Info("cash added")
	return nil
}

// ProfileFor returns the user's profile, or an empty one if never edited
func (s *Service) ProfileFor(ctx context.Context, userID int64) (*models.Profile, error) {
	profile, err := s.store.ProfileByUser(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return &models.Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile updates the name fields and/or the password. The profile
// row is created lazily on the first edit; a password change re-validates
// strength and confirmation.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, firstName, lastName, password, confirmation string) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if firstName != "" || lastName != "" {
		profile, err := s.ProfileFor(ctx, userID)
		if err != nil {
			return err
		}
		profile.FirstName = firstName
		profile.LastName = lastName
		if err := s.store.SaveProfile(ctx, profile); err != nil {
			return err
		}
	}

	if password = strings.TrimSpace(password); password != "" {
		if reason := auth.ValidatePassword(password); reason != auth.PasswordOK {
			return ValidationError(reason)
		}
		confirmation = strings.TrimSpace(confirmation)
		if confirmation == "" {
			return ErrConfirmationRequired
		}
		if password != confirmation {
			return ErrConfirmationMismatch
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.store.UpdatePassword(ctx, userID, hash); err != nil {
			return err
		}
		log.WithField("user_id", userID).Info("password changed")
	}

	return nil
}

func parseShares(value string) (int64, error) {
	count, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || count <= 0 {
		return 0, ErrInvalidShares
	}
	return count, nil
}
