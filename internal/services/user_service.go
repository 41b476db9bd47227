package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gatherly/api/internal/helpers"
	"github.com/gatherly/api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo  models.UserRepo
	jwtSecret []byte
}

func NewUserService(userRepo models.UserRepo, jwtSecret []byte) *UserService {
	return &UserService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

func (us *UserService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("please fill in all fields")
	}
	if !helpers.IsValidEmail(email) {
		return nil, "", fmt.Errorf("invalid email format")
	}
	if !helpers.IsPasswordStrong(password) {
		return nil, "", fmt.Errorf("password must be at least 8 characters long and include 1 uppercase, 1 lowercase, 1 number, and 1 special character")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %v", err)
	}

	user, err := us.userRepo.CreateUser(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, "", err
	}

	token, err := helpers.GenerateToken(user.ID.Hex(), us.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %v", err)
	}
	return user, token, nil
}

func (us *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, "", models.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", models.ErrInvalidCredentials
	}

	token, err := helpers.GenerateToken(user.ID.Hex(), us.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %v", err)
	}
	return user, token, nil
}

func (us *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("invalid user ID")
	}
	return us.userRepo.GetUserByID(ctx, id)
}

func (us *UserService) ValidateToken(tokenStr string) (*helpers.CustomClaims, error) {
	return helpers.ValidateToken(tokenStr, us.jwtSecret)
}
