package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/coworking-reservation/internal/model"
	"github.com/iliyamo/coworking-reservation/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  Every user gets a unique
// referral code at creation; on the rare code collision the insert is
// retried with a fresh code.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, "", err
	}
	for attempt := 0; attempt < 3; attempt++ {
		code, err := utils.NewReferralCode()
		if err != nil {
			return 0, "", err
		}
		res, err := r.DB.ExecContext(ctx,
			"INSERT INTO users (email, password_hash, role, referral_code) VALUES (?,?,?,?)",
			email, hash, role, code)
		if err != nil {
			low := strings.ToLower(err.Error())
			if strings.Contains(low, "1062") {
				if strings.Contains(low, "referral_code") {
					continue // code collision, retry with a new one
				}
				return 0, "", ErrEmailExists
			}
			return 0, "", err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, "", err
		}
		return uint64(id), code, nil
	}
	return 0, "", errors.New("could not allocate referral code")
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,referral_code,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.ReferralCode, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,referral_code,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.ReferralCode, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByReferralCode fetches the user owning a referral code.  Used at
// registration to credit the referrer.
func (r *UserRepo) GetByReferralCode(ctx context.Context, code string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,referral_code,is_active,created_at,updated_at FROM users WHERE referral_code=? LIMIT 1",
		strings.ToUpper(strings.TrimSpace(code))).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.ReferralCode, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
