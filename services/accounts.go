package services

import (
	"context"
	"strings"

	"restaurant-pos-api/models"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength applies to registration, admin-created users and password changes
const MinPasswordLength = 6

type RegisterInput struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.UserRole `json:"role" binding:"omitempty,role"`
}

// NewUserInput is the admin-side create; IsActive overrides the role default
type NewUserInput struct {
	RegisterInput
	IsActive *bool `json:"isActive"`
}

// SelfPatch is what a user may send about themselves. Role and IsActive
// exist only so attempts to change them can be rejected.
type SelfPatch struct {
	Name     *string          `json:"name"`
	Email    *string          `json:"email" binding:"omitempty,email"`
	Password *string          `json:"password"`
	Role     *models.UserRole `json:"role"`
	IsActive *bool            `json:"isActive"`
}

type UserPatch struct {
	Name     *string          `json:"name"`
	Email    *string          `json:"email" binding:"omitempty,email"`
	Role     *models.UserRole `json:"role" binding:"omitempty,role"`
	IsActive *bool            `json:"isActive"`
	Password *string          `json:"password"`
}

// AccountService owns users and credentials
type AccountService struct {
	db   *gorm.DB
	cost int
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db, cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost, for tests
func (s *AccountService) WithHashCost(cost int) *AccountService {
	s.cost = cost
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. Only customers start active.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}
	return s.create(ctx, in, role, role.ActiveByDefault())
}

// CreateUser is the admin-side create
func (s *AccountService) CreateUser(ctx context.Context, in NewUserInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}
	active := role.ActiveByDefault()
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return s.create(ctx, in.RegisterInput, role, active)
}

func (s *AccountService) create(ctx context.Context, in RegisterInput, role models.UserRole, active bool) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, validationf("Please add a name and email")
	}
	if !role.Valid() {
		return nil, validationf("Invalid role '%s'", role)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, validationf("Password must be at least %d characters", MinPasswordLength)
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     active,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return &user, nil
}

// Authenticate checks credentials. Inactive accounts are refused before the
// password is compared.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "find user")
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AccountService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "load user")
	}
	return &user, nil
}

// UpdateSelf applies a self-service profile change
func (s *AccountService) UpdateSelf(ctx context.Context, id uint, in SelfPatch) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role != nil && *in.Role != user.Role {
		return nil, ErrSelfRoleChange
	}
	if in.IsActive != nil && *in.IsActive != user.IsActive {
		return nil, ErrSelfDeactivate
	}
	return s.apply(ctx, user, UserPatch{Name: in.Name, Email: in.Email, Password: in.Password})
}

// ListUsers returns users newest first, optionally filtered by role
func (s *AccountService) ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	q := s.db.WithContext(ctx)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	users := []models.User{}
	err := q.Order("created_at desc, id desc").Find(&users).Error
	return users, errors.Wrap(err, "list users")
}

// UpdateUser is the admin-side update. Admins cannot change their own role
// or deactivate themselves.
func (s *AccountService) UpdateUser(ctx context.Context, actor Caller, id uint, in UserPatch) (*models.User, error) {
	if id == actor.ID {
		if in.Role != nil && *in.Role != actor.Role {
			return nil, ErrSelfRoleChange
		}
		if in.IsActive != nil && !*in.IsActive {
			return nil, ErrSelfDeactivate
		}
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, in)
}

// DeleteUser removes another user's account
func (s *AccountService) DeleteUser(ctx context.Context, actor Caller, id uint) error {
	if id == actor.ID {
		return ErrSelfDelete
	}
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete user")
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *AccountService) apply(ctx context.Context, user *models.User, in UserPatch) (*models.User, error) {
	changes := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationf("Name cannot be empty")
		}
		changes["name"] = name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return nil, validationf("Email cannot be empty")
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			changes["email"] = email
		}
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, validationf("Invalid role '%s'", *in.Role)
		}
		changes["role"] = *in.Role
	}
	if in.IsActive != nil {
		changes["is_active"] = *in.IsActive
	}
	if in.Password != nil && strings.TrimSpace(*in.Password) != "" {
		if len(*in.Password) < MinPasswordLength {
			return nil, validationf("Password must be at least %d characters", MinPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.cost)
		if err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
		changes["password_hash"] = string(hash)
	}

	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{ID: user.ID}).Updates(changes).Error; err != nil {
			return nil, errors.Wrap(err, "update user")
		}
	}
	return s.Get(ctx, user.ID)
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string, except uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, except).
		Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "check email")
	}
	if count > 0 {
		return ErrUserExists
	}
	return nil
}
