package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	msgEmailExists       = "Email already exists"
	msgUserNotFound      = "User not found"
	msgCannotDeleteAdmin = "Cannot delete admin user"
	msgWrongPassword     = "Current password is incorrect"
)

// UserService manages accounts of every role
type UserService interface {
	// CreateUser validates and stores a new account, role defaults to user
	CreateUser(ctx context.Context, input NewUserInput) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	// ListUsers returns every user with the average rating of the stores they own
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.UserListItem, error)
	// DeleteUser removes a non admin user together with their stores and ratings
	DeleteUser(ctx context.Context, id uint) error
	ChangePassword(ctx context.Context, userID uint, input ChangePasswordInput) error
	// EnsureAdmin creates the admin account unless a user with that email already exists
	EnsureAdmin(ctx context.Context, input NewUserInput) (*models.User, bool, error)
}

type userService struct {
	db     *gorm.DB
	hasher PasswordHasher
}

func NewUserService(db *gorm.DB, hasher PasswordHasher) UserService {
	return &userService{db: db, hasher: hasher}
}

func (s *userService) CreateUser(ctx context.Context, input NewUserInput) (*models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Address = strings.TrimSpace(input.Address)
	if input.Role == "" {
		input.Role = models.RoleUser
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return nil, models.NewConflictError(msgEmailExists, nil)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hash,
		Address:  input.Address,
		Role:     input.Role,
	}
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, models.NewConflictError(msgEmailExists, err)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError(msgUserNotFound)
		}
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError(msgUserNotFound)
		}
		return nil, fmt.Errorf("finding user %d: %w", id, err)
	}
	return &user, nil
}

func (s *userService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.UserListItem, error) {
	query := s.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.name, users.email, users.address, users.role, users.created_at, AVG(ratings.rating) AS store_rating").
		Joins("LEFT JOIN stores ON stores.owner_id = users.id").
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id")

	if filter.Name != "" {
		query = query.Where("LOWER(users.name) LIKE ?", likePattern(filter.Name))
	}
	if filter.Email != "" {
		query = query.Where("LOWER(users.email) LIKE ?", likePattern(filter.Email))
	}
	if filter.Address != "" {
		query = query.Where("LOWER(users.address) LIKE ?", likePattern(filter.Address))
	}
	if filter.Role != "" {
		query = query.Where("users.role = ?", strings.TrimSpace(filter.Role))
	}

	users := []models.UserListItem{}
	err := query.
		Group("users.id, users.name, users.email, users.address, users.role, users.created_at").
		Order("users.created_at DESC, users.id DESC").
		Scan(&users).Error
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if isNotFound(err) {
				return models.NewNotFoundError(msgUserNotFound)
			}
			return fmt.Errorf("finding user %d: %w", id, err)
		}
		if user.Role == models.RoleAdmin {
			return models.NewValidationError(msgCannotDeleteAdmin)
		}

		ownedStores := tx.Model(&models.Store{}).Select("id").Where("owner_id = ?", id)
		if err := tx.Where("user_id = ? OR store_id IN (?)", id, ownedStores).Delete(&models.Rating{}).Error; err != nil {
			return fmt.Errorf("deleting ratings of user %d: %w", id, err)
		}
		if err := tx.Where("owner_id = ?", id).Delete(&models.Store{}).Error; err != nil {
			return fmt.Errorf("deleting stores of user %d: %w", id, err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("deleting user %d: %w", id, err)
		}
		return nil
	})
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, input ChangePasswordInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(user.Password, input.CurrentPassword) {
		return models.NewValidationError(msgWrongPassword)
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", hash).Error; err != nil {
		return fmt.Errorf("updating password of user %d: %w", userID, err)
	}
	return nil
}

func (s *userService) EnsureAdmin(ctx context.Context, input NewUserInput) (*models.User, bool, error) {
	existing, err := s.GetUserByEmail(ctx, strings.TrimSpace(input.Email))
	if err == nil {
		if existing.Role != models.RoleAdmin {
			logrus.WithField("email", existing.Email).Warn("Seed admin email belongs to a non-admin user, leaving it untouched")
		}
		return existing, false, nil
	}
	if models.KindOf(err) != models.KindNotFound {
		return nil, false, err
	}

	input.Role = models.RoleAdmin
	user, err := s.CreateUser(ctx, input)
	if err != nil {
		return nil, false, err
	}
	logrus.WithField("email", user.Email).Info("Seeded admin user")
	return user, true, nil
}
