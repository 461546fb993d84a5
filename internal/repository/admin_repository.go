package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AdminRepository reads the out-of-band provisioned admin flags.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// IsAdmin reports whether the account carries an admin flag. A missing row
// counts as false, not as an error.
func (r *AdminRepository) IsAdmin(ctx context.Context, accountID string) (bool, error) {
	const query = `SELECT is_admin FROM admins WHERE account_id = $1 LIMIT 1`
	var isAdmin bool
	if err := r.db.GetContext(ctx, &isAdmin, query, accountID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("lookup admin flag: %w", err)
	}
	return isAdmin, nil
}
