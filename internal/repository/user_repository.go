package repository

import (
	"context"
	"errors"

	"pingup/backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no record matches
var ErrNotFound = errors.New("record not found")

const uniqueViolation = "23505"

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	// CreateIfAbsent inserts user keyed by its ID. A record that already
	// exists, including one inserted concurrently, is not an error.
	CreateIfAbsent(ctx context.Context, user *models.User) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) CreateIfAbsent(ctx context.Context, user *models.User) error {
	err := insertIfAbsent(r.db.WithContext(ctx), user).Error
	if err != nil && IsDuplicateKey(err) {
		return nil
	}
	return err
}

// insertIfAbsent issues INSERT ... ON CONFLICT (id) DO NOTHING
func insertIfAbsent(db *gorm.DB, user *models.User) *gorm.DB {
	return db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).Create(user)
}

// IsDuplicateKey reports whether err is a unique-key violation, either as
// translated by gorm or as the raw postgres error.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
