package repository

import (
	"context"
	"fmt"
	"strings"

	"dealhub/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserRepository owns tenant-scoped account creation and lookup. Email is
// unique per tenant, never globally.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Register creates a user under the tenant with a bcrypt-hashed password.
// The (email, tenant_id) unique index is the authority; a duplicate-key
// error surfaces as ErrDuplicateEmail.
func (r *UserRepository) Register(ctx context.Context, tenantID uint, email, name, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		TenantID:          tenantID,
		Email:             strings.ToLower(email),
		Name:              name,
		Password:          string(hash),
		Role:              model.RoleUser,
		ShowOnLeaderboard: true,
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// ByEmail finds a user by email within the tenant.
func (r *UserRepository) ByEmail(ctx context.Context, tenantID uint, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND email = ?", tenantID, strings.ToLower(email)).
		First(&user).Error
	if notFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ByID finds a user by primary key.
func (r *UserRepository) ByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if notFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks the password for the tenant-scoped email and returns
// the user on success.
func (r *UserRepository) Authenticate(ctx context.Context, tenantID uint, email, password string) (*model.User, error) {
	user, err := r.ByEmail(ctx, tenantID, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
