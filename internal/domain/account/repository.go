package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Repository provides access to both account partitions.
// Registered accounts live in profiles, guests in guest_accounts; the two
// tables share the credit/marker columns and differ only in the email column.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates account repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) table(p Partition) string {
	if p == PartitionRegistered {
		return "profiles"
	}
	return "guest_accounts"
}

// GetRegistered returns a registered account by id, or nil if absent
func (r *Repository) GetRegistered(ctx context.Context, id uuid.UUID) (*Account, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acct Account
	err := r.db.GetContext(ctx2, &acct, `
		SELECT id, email, credits, unlocked_chapters, settings, created_at, updated_at
		FROM profiles WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get registered account", ErrInternal)
	}
	return &acct, nil
}

// GetRegisteredByEmail returns a registered account by email, or nil if absent
func (r *Repository) GetRegisteredByEmail(ctx context.Context, email string) (*Account, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acct Account
	err := r.db.GetContext(ctx2, &acct, `
		SELECT id, email, credits, unlocked_chapters, settings, created_at, updated_at
		FROM profiles WHERE email = $1
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get registered account by email", ErrInternal)
	}
	return &acct, nil
}

// GetGuest returns a guest account by id, or nil if absent
func (r *Repository) GetGuest(ctx context.Context, id uuid.UUID) (*Account, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acct Account
	err := r.db.GetContext(ctx2, &acct, `
		SELECT id, credits, unlocked_chapters, settings, created_at, updated_at
		FROM guest_accounts WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get guest account", ErrInternal)
	}
	return &acct, nil
}

// Resolve finds the account across both partitions, registered first.
// Returns ErrNotFound when neither partition holds the id.
func (r *Repository) Resolve(ctx context.Context, id uuid.UUID) (*Account, Partition, error) {
	acct, err := r.GetRegistered(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if acct != nil {
		return acct, PartitionRegistered, nil
	}

	acct, err = r.GetGuest(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if acct != nil {
		return acct, PartitionGuest, nil
	}

	return nil, "", ErrNotFound
}

// Ensure resolves the account or lazily creates a guest row with zero
// credits. The insert is an upsert keyed by id, so concurrent calls for the
// same id never create duplicate rows.
func (r *Repository) Ensure(ctx context.Context, id uuid.UUID) (*Account, Partition, error) {
	acct, partition, err := r.Resolve(ctx, id)
	if err == nil {
		return acct, partition, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	if err := r.CreateGuest(ctx, id, 0); err != nil {
		return nil, "", err
	}

	acct, err = r.GetGuest(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if acct == nil {
		return nil, "", fmt.Errorf("%w: guest account missing after upsert", ErrInternal)
	}
	return acct, PartitionGuest, nil
}

// CreateRegistered inserts a registered account, no-op when the id exists
func (r *Repository) CreateRegistered(ctx context.Context, id uuid.UUID, email string, credits int) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO profiles (id, email, credits, unlocked_chapters, settings)
		VALUES ($1, $2, $3, '{}', '{}')
		ON CONFLICT (id) DO NOTHING
	`, id, email, credits)
	if err != nil {
		return fmt.Errorf("%w: create registered account", ErrInternal)
	}
	return nil
}

// CreateGuest inserts a guest account, no-op when the id exists
func (r *Repository) CreateGuest(ctx context.Context, id uuid.UUID, credits int) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO guest_accounts (id, credits, unlocked_chapters, settings)
		VALUES ($1, $2, '{}', '{}')
		ON CONFLICT (id) DO NOTHING
	`, id, credits)
	if err != nil {
		return fmt.Errorf("%w: create guest account", ErrInternal)
	}
	return nil
}

// Delete removes the account row from both partitions.
// Returns ErrNotFound when no row existed anywhere.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	total := int64(0)
	for _, table := range []string{"profiles", "guest_accounts"} {
		res, err := r.db.ExecContext(ctx2, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
		if err != nil {
			return fmt.Errorf("%w: delete account", ErrInternal)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: delete account rows", ErrInternal)
		}
		total += rows
	}

	if total == 0 {
		return ErrNotFound
	}
	return nil
}

// DebitUnlock applies a chapter debit: balance decrement and marker append in
// one conditional statement. The guard rejects both an insufficient balance
// and an already-recorded marker, so a no-op returns nil, nil and the caller
// re-reads to find out which case it hit.
func (r *Repository) DebitUnlock(ctx context.Context, p Partition, id uuid.UUID, amount int, marker string) (*Account, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		UPDATE %s
		SET credits = credits - $2,
		    unlocked_chapters = array_append(COALESCE(unlocked_chapters, '{}'), $3),
		    updated_at = NOW()
		WHERE id = $1
		  AND credits >= $2
		  AND NOT ($3 = ANY(COALESCE(unlocked_chapters, '{}')))
		RETURNING id, credits, unlocked_chapters, settings
	`, r.table(p))

	var acct Account
	err := r.db.QueryRowxContext(ctx2, query, id, amount, marker).StructScan(&acct)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: debit unlock", ErrInternal)
	}
	return &acct, nil
}

// CreditPurchase applies a credit grant. With a marker the statement also
// appends the product id to the purchased set inside the settings blob and
// the guard makes the whole update a no-op when the marker already exists.
func (r *Repository) CreditPurchase(ctx context.Context, p Partition, id uuid.UUID, amount int, marker *string) (*Account, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		acct Account
		err  error
	)

	if marker == nil {
		query := fmt.Sprintf(`
			UPDATE %s
			SET credits = credits + $2,
			    updated_at = NOW()
			WHERE id = $1
			RETURNING id, credits, unlocked_chapters, settings
		`, r.table(p))
		err = r.db.QueryRowxContext(ctx2, query, id, amount).StructScan(&acct)
	} else {
		query := fmt.Sprintf(`
			UPDATE %s
			SET credits = credits + $2,
			    settings = jsonb_set(
			        COALESCE(settings, '{}'::jsonb),
			        '{purchasedProducts}',
			        COALESCE(settings->'purchasedProducts', '[]'::jsonb) || to_jsonb($3::text)
			    ),
			    updated_at = NOW()
			WHERE id = $1
			  AND NOT COALESCE(settings->'purchasedProducts', '[]'::jsonb) @> to_jsonb($3::text)
			RETURNING id, credits, unlocked_chapters, settings
		`, r.table(p))
		err = r.db.QueryRowxContext(ctx2, query, id, amount, *marker).StructScan(&acct)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: credit purchase", ErrInternal)
	}
	return &acct, nil
}
