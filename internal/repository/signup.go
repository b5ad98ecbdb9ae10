package repository

import (
	"context"
	"fmt"

	"github.com/groupclass/checkout/internal/domain"
	"github.com/groupclass/checkout/pkg/crypto"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SignupRepository stores completed checkouts for reporting. Email and phone
// are sealed before they reach the database.
type SignupRepository struct {
	db     *pgxpool.Pool
	sealer *crypto.Sealer
}

func NewSignupRepository(db *pgxpool.Pool, sealer *crypto.Sealer) *SignupRepository {
	return &SignupRepository{db: db, sealer: sealer}
}

func (r *SignupRepository) Create(ctx context.Context, s *domain.Signup) error {
	email, err := r.sealer.Seal("email", s.Email)
	if err != nil {
		return fmt.Errorf("failed to seal email: %w", err)
	}
	phone, err := r.sealer.Seal("phone", s.Phone)
	if err != nil {
		return fmt.Errorf("failed to seal phone: %w", err)
	}

	query := `
		INSERT INTO signups (id, customer_id, subscription_id, payment_intent_id, email_sealed, phone_sealed,
			membership, amount_cents, currency, billing_anchor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.Exec(ctx, query,
		s.ID, s.CustomerID, s.SubscriptionID, s.PaymentIntentID, email, phone,
		s.Membership, s.AmountCents, s.Currency, s.BillingAnchor, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create signup: %w", err)
	}
	return nil
}

func (r *SignupRepository) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Signup, error) {
	query := `
		SELECT id, customer_id, subscription_id, payment_intent_id, email_sealed, phone_sealed,
			membership, amount_cents, currency, billing_anchor, created_at
		FROM signups WHERE subscription_id = $1
	`
	var s domain.Signup
	var email, phone string
	err := r.db.QueryRow(ctx, query, subscriptionID).Scan(
		&s.ID, &s.CustomerID, &s.SubscriptionID, &s.PaymentIntentID, &email, &phone,
		&s.Membership, &s.AmountCents, &s.Currency, &s.BillingAnchor, &s.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find signup: %w", err)
	}

	if s.Email, err = r.sealer.Open("email", email); err != nil {
		return nil, err
	}
	if s.Phone, err = r.sealer.Open("phone", phone); err != nil {
		return nil, err
	}
	return &s, nil
}
