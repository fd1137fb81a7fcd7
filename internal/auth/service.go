package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	Register(ctx context.Context, u Users) error
	Login(ctx context.Context, role Role, identifier string, password string) (Users, Claims, error)
	Profile(ctx context.Context, userID uuid.UUID) (Users, error)
	Reissue(ctx context.Context, userID uuid.UUID) (Users, Claims, error)
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is deactivated")
)

type userService struct {
	repo          UserRepository
	jwtSecret     []byte
	jwtTTLSeconds int64
}

func NewUserService(repo UserRepository, jwtSecret []byte, jwtTTLSeconds int64) UserService {
	return &userService{
		repo:          repo,
		jwtSecret:     jwtSecret,
		jwtTTLSeconds: jwtTTLSeconds,
	}
}

func (r *userService) Register(ctx context.Context, u Users) error {

	hashed, err := HashPassword(u.Password_hash)
	if err != nil {
		return err
	}
	u.Password_hash = hashed
	return r.repo.RegisterUser(ctx, u)
}

func (r *userService) Login(ctx context.Context, role Role, identifier string, password string) (Users, Claims, error) {
	user, err := r.repo.FindByIdentifier(ctx, role, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Users{}, Claims{}, ErrInvalidCredentials
		}
		return Users{}, Claims{}, err
	}
	if !user.Is_active {
		return Users{}, Claims{}, ErrAccountDisabled
	}
	if err := CheckPassword(user.Password_hash, password); err != nil {
		return Users{}, Claims{}, ErrInvalidCredentials
	}
	user.Password_hash = ""
	claims := BuildJWTClaims(user, r.jwtTTLSeconds)
	return user, claims, nil
}

func (r *userService) Profile(ctx context.Context, userID uuid.UUID) (Users, error) {
	user, err := r.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Users{}, ErrUserNotFound
		}
		return Users{}, err
	}
	user.Password_hash = ""
	return user, nil
}

// Reissue выпускает новый токен для уже известного пользователя (silent refresh).
func (r *userService) Reissue(ctx context.Context, userID uuid.UUID) (Users, Claims, error) {
	user, err := r.Profile(ctx, userID)
	if err != nil {
		return Users{}, Claims{}, err
	}
	if !user.Is_active {
		return Users{}, Claims{}, ErrAccountDisabled
	}
	claims := BuildJWTClaims(user, r.jwtTTLSeconds)
	return user, claims, nil
}
