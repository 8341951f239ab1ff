package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hilalbot/internal/entities"
)

type AdminRepository struct {
	db *pgxpool.Pool
}

func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(account *entities.AdminAccount) error {
	_, err := r.db.Exec(context.Background(),
		`INSERT INTO admin_users (username, password_hash, role) VALUES ($1, $2, $3)`,
		account.Username, account.PasswordHash, account.Role)
	return err
}

func (r *AdminRepository) GetByUsername(username string) (*entities.AdminAccount, error) {
	var account entities.AdminAccount
	err := r.db.QueryRow(context.Background(),
		`SELECT id, username, password_hash, role, created_at FROM admin_users WHERE username = $1`,
		username).Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Role, &account.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
