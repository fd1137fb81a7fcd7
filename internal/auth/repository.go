package auth

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	RegisterUser(ctx context.Context, u Users) error
	FindByIdentifier(ctx context.Context, role Role, identifier string) (Users, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (Users, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]Users, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (s *userRepository) RegisterUser(ctx context.Context, u Users) error {
	// Уникальность email обеспечивает constraint в БД, ошибку пробрасываем наверх
	return s.db.WithContext(ctx).Create(&u).Error
}

// FindByIdentifier ищет пользователя по гибкому идентификатору:
// админ входит по username или email, сотрудник по email или табельному номеру.
func (s *userRepository) FindByIdentifier(ctx context.Context, role Role, identifier string) (Users, error) {
	var user Users
	tx := s.db.WithContext(ctx).Where("role = ?", role)
	switch role {
	case RoleAdmin:
		tx = tx.Where("username = ? OR email = ?", identifier, identifier)
	default:
		tx = tx.Where("email = ? OR employee_code = ?", identifier, identifier)
	}
	if err := tx.First(&user).Error; err != nil {
		return Users{}, err
	}
	return user, nil
}

func (s *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (Users, error) {
	var user Users
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return Users{}, err
	}
	return user, nil
}

func (s *userRepository) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]Users, error) {
	var users []Users
	if len(ids) == 0 {
		return users, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
