package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"gorm.io/gorm"
)

const (
	msgStoreEmailExists = "Store email already exists"
	msgStoreNotFound    = "Store not found"
	msgOwnerNotFound    = "Store owner not found"
	msgNoOwnedStore     = "No store found for this user"
)

const storeColumns = "stores.id, stores.name, stores.email, stores.address, stores.owner_id, stores.created_at"

// StoreService manages stores and the rating aggregates shown for them
type StoreService interface {
	CreateStore(ctx context.Context, input NewStoreInput) (*models.Store, error)
	// ListStores returns every store with its average rating, ordered by id
	ListStores(ctx context.Context, filter models.StoreFilter) ([]models.StoreSummary, error)
	// ListStoresForUser is ListStores plus the rating userID gave each store
	ListStoresForUser(ctx context.Context, userID uint, filter models.StoreFilter) ([]models.UserStoreView, error)
	DeleteStore(ctx context.Context, id uint) error
	// OwnerDashboard describes the lowest id store owned by ownerID and every rating it received
	OwnerDashboard(ctx context.Context, ownerID uint) (*models.OwnerDashboard, error)
}

type storeService struct {
	db *gorm.DB
}

func NewStoreService(db *gorm.DB) StoreService {
	return &storeService{db: db}
}

func (s *storeService) CreateStore(ctx context.Context, input NewStoreInput) (*models.Store, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Address = strings.TrimSpace(input.Address)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var owners int64
	if err := db.Model(&models.User{}).Where("id = ?", input.OwnerID).Count(&owners).Error; err != nil {
		return nil, fmt.Errorf("checking store owner: %w", err)
	}
	if owners == 0 {
		return nil, models.NewValidationError(msgOwnerNotFound)
	}

	var count int64
	if err := db.Model(&models.Store{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking store email: %w", err)
	}
	if count > 0 {
		return nil, models.NewConflictError(msgStoreEmailExists, nil)
	}

	store := &models.Store{
		Name:    input.Name,
		Email:   input.Email,
		Address: input.Address,
		OwnerID: input.OwnerID,
	}
	if err := db.Create(store).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, models.NewConflictError(msgStoreEmailExists, err)
		}
		return nil, fmt.Errorf("creating store: %w", err)
	}
	return store, nil
}

func (s *storeService) ListStores(ctx context.Context, filter models.StoreFilter) ([]models.StoreSummary, error) {
	query := s.db.WithContext(ctx).
		Table("stores").
		Select(storeColumns + ", AVG(ratings.rating) AS average_rating").
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id")
	query = applyStoreFilter(query, filter)

	stores := []models.StoreSummary{}
	err := query.
		Group(storeColumns).
		Order("stores.id").
		Scan(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	return stores, nil
}

func (s *storeService) ListStoresForUser(ctx context.Context, userID uint, filter models.StoreFilter) ([]models.UserStoreView, error) {
	query := s.db.WithContext(ctx).
		Table("stores").
		Select(storeColumns+", AVG(ratings.rating) AS average_rating, own.rating AS user_rating").
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Joins("LEFT JOIN ratings own ON own.store_id = stores.id AND own.user_id = ?", userID)
	query = applyStoreFilter(query, filter)

	stores := []models.UserStoreView{}
	err := query.
		Group(storeColumns + ", own.rating").
		Order("stores.id").
		Scan(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("listing stores for user %d: %w", userID, err)
	}
	return stores, nil
}

func applyStoreFilter(query *gorm.DB, filter models.StoreFilter) *gorm.DB {
	if filter.Name != "" {
		query = query.Where("LOWER(stores.name) LIKE ?", likePattern(filter.Name))
	}
	if filter.Email != "" {
		query = query.Where("LOWER(stores.email) LIKE ?", likePattern(filter.Email))
	}
	if filter.Address != "" {
		query = query.Where("LOWER(stores.address) LIKE ?", likePattern(filter.Address))
	}
	return query
}

func (s *storeService) DeleteStore(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var store models.Store
		if err := tx.First(&store, id).Error; err != nil {
			if isNotFound(err) {
				return models.NewNotFoundError(msgStoreNotFound)
			}
			return fmt.Errorf("finding store %d: %w", id, err)
		}
		if err := tx.Where("store_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return fmt.Errorf("deleting ratings of store %d: %w", id, err)
		}
		if err := tx.Delete(&store).Error; err != nil {
			return fmt.Errorf("deleting store %d: %w", id, err)
		}
		return nil
	})
}

func (s *storeService) OwnerDashboard(ctx context.Context, ownerID uint) (*models.OwnerDashboard, error) {
	db := s.db.WithContext(ctx)

	var store models.Store
	if err := db.Where("owner_id = ?", ownerID).Order("id").First(&store).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError(msgNoOwnedStore)
		}
		return nil, fmt.Errorf("finding store of owner %d: %w", ownerID, err)
	}

	var average float64
	if err := db.Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("store_id = ?", store.ID).
		Scan(&average).Error; err != nil {
		return nil, fmt.Errorf("averaging ratings of store %d: %w", store.ID, err)
	}

	ratings := []models.OwnerRatingView{}
	err := db.Table("ratings").
		Select("ratings.id, ratings.user_id, ratings.store_id, ratings.rating, ratings.created_at, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = ratings.user_id").
		Where("ratings.store_id = ?", store.ID).
		Order("ratings.created_at DESC, ratings.id DESC").
		Scan(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("listing ratings of store %d: %w", store.ID, err)
	}

	return &models.OwnerDashboard{
		Store:         store,
		AverageRating: average,
		Ratings:       ratings,
	}, nil
}
