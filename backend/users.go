package backend

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users stores admin accounts
type Users struct {
	db *bun.DB
}

// NewUsers returns a store over db
func NewUsers(db *bun.DB) *Users {
	return &Users{db: db}
}

// CreateTable creates admin_users if it does not exist
func (u *Users) CreateTable(ctx context.Context) error {
	_, err := u.db.NewCreateTable().
		Model((*AdminUser)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Create hashes password and stores a new account
func (u *Users) Create(ctx context.Context, username, password string, role Role) (*AdminUser, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &AdminUser{
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}

	if _, err := u.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "unable to create admin user "+user.Username)
	}
	return user, nil
}

// GetByUsername loads an account, ErrIdentityNotFound if there is none
func (u *Users) GetByUsername(ctx context.Context, username string) (*AdminUser, error) {
	user := new(AdminUser)
	err := u.db.NewSelect().
		Model(user).
		Where("?TableAlias.username = ?", strings.TrimSpace(username)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to load admin user")
	}
	return user, nil
}

// VerifyIdentity returns the active account matching username and password
func (u *Users) VerifyIdentity(ctx context.Context, username, password string) (*AdminUser, error) {
	user, err := u.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, ErrIdentityNotFound
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, err
	}
	return user, nil
}

// TrackLogin records the time of a successful login
func (u *Users) TrackLogin(ctx context.Context, user *AdminUser) error {
	now := time.Now().UTC()
	user.LoggedInAt = &now
	_, err := u.db.NewUpdate().
		Model(user).
		Column("logged_in_at", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

// SetPassword replaces the password of username
func (u *Users) SetPassword(ctx context.Context, username, password string) error {
	user, err := u.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	_, err = u.db.NewUpdate().
		Model(user).
		Column("password_hash", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}
