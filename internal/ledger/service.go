package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	coreerrors "github.com/aevon-lab/eventreg/internal/core/errors"
	"github.com/aevon-lab/eventreg/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// Service is the client-facing side of the ledger: it records grants in the
// transaction log and reads balances. Balances only change when the
// Scheduler applies the log.
type Service struct {
	balances         BalanceStore
	log              CreditLog
	maxBodySizeBytes int64
	now              func() time.Time
}

func NewService(balances BalanceStore, log CreditLog, maxBodySizeMB int) *Service {
	if balances == nil {
		panic("ledger: balance store must not be nil")
	}
	if log == nil {
		panic("ledger: credit log must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1
	}
	return &Service{
		balances:         balances,
		log:              log,
		maxBodySizeBytes: int64(maxBodySizeMB) * 1024 * 1024,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRoutes registers the credit and balance routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/v1/users/:user_id")
	g.POST("/credits", s.GrantHandler)
	g.GET("/balance", s.BalanceHandler)
	g.PUT("/balance", s.OpenBalanceHandler)
}

// Grant appends a credit grant to the transaction log and returns its ID.
func (s *Service) Grant(ctx context.Context, userID string, amount int64) (string, error) {
	grant := v1.CreditGrantEvent{UserID: userID, Amount: amount, ObservedAt: s.now()}
	if err := grant.Validate(); err != nil {
		return "", coreerrors.ValidationFailed("%s", err.Error())
	}
	if amount == 0 {
		return "", coreerrors.ValidationFailed("amount must be non-zero")
	}

	id, err := s.log.Append(ctx, grant)
	if err != nil {
		return "", fmt.Errorf("append credit grant: %w", err)
	}

	slog.Info("[Ledger] Grant recorded",
		"transaction_id", id,
		"user_id", userID,
		"amount", amount)
	return id, nil
}

func (s *Service) Balance(ctx context.Context, userID string) (*v1.UserBalance, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, coreerrors.ValidationFailed("user_id is required")
	}
	bal, err := s.balances.GetBalance(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, coreerrors.NotFound("no balance for user %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return bal, nil
}

// OpenBalance creates a zero balance for userID. Existing balances are left alone.
func (s *Service) OpenBalance(ctx context.Context, userID string) (*v1.UserBalance, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, coreerrors.ValidationFailed("user_id is required")
	}
	bal, err := s.balances.OpenBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("open balance: %w", err)
	}
	return bal, nil
}
