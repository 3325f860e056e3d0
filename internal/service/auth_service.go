package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/user"
	rep "taskBoard/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "taskboard-api"

type TokenPair struct {
	Access  string
	Refresh string
}

type AuthService struct {
	users      UserRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(users UserRepository, secret string, accessTTL, refreshTTL time.Duration) AuthService {
	return AuthService{
		users:      users,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// EnsureAdmin создаёт администратора, если ни одного ещё нет
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	exists, err := s.users.HasAdmin(ctx)
	if err != nil {
		return fmt.Errorf("проверка администратора: %w", err)
	}
	if exists {
		logger.Info("Service: Администратор уже существует, пропускаем создание")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("хеширование пароля: %w", err)
	}

	admin := &user.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}

	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, rep.ErrUniqueViolation) {
			return nil
		}
		return fmt.Errorf("создание администратора: %w", err)
	}

	logger.Info("Service: Администратор создан", zap.String("username", username))
	return nil
}

func (s *AuthService) issueTokens(u *user.User) (*TokenPair, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"user_id":  u.ID,
		"username": u.Username,
		"type":     "access",
		"iat":      now.Unix(),
		"exp":      now.Add(s.accessTTL).Unix(),
		"iss":      tokenIssuer,
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("подпись access токена: %w", err)
	}

	refreshClaims := jwt.MapClaims{
		"user_id":  u.ID,
		"username": u.Username,
		"type":     "refresh",
		"iat":      now.Unix(),
		"exp":      now.Add(s.refreshTTL).Unix(),
		"iss":      tokenIssuer,
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("подпись refresh токена: %w", err)
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Login выдаёт пару токенов по логину и паролю
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Warn("Service: Неизвестный пользователь", zap.String("username", username))
			return nil, NewUnauthorized("неверные логин или пароль")
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.Warn("Service: Неверный пароль", zap.String("username", username))
		return nil, NewUnauthorized("неверные логин или пароль")
	}

	return s.issueTokens(u)
}

func (s *AuthService) parseToken(tokenString, wantType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, NewUnauthorized("невалидный или истёкший токен")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, NewUnauthorized("невалидный токен")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != wantType {
		return nil, NewUnauthorized("неверный тип токена")
	}

	return claims, nil
}

// Refresh выдаёт новую пару токенов по refresh токену
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken, "refresh")
	if err != nil {
		return nil, err
	}

	username, ok := claims["username"].(string)
	if !ok {
		return nil, NewUnauthorized("в токене отсутствует username")
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewUnauthorized("пользователь не существует")
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	return s.issueTokens(u)
}

// Validate проверяет access токен и возвращает принципала запроса
func (s *AuthService) Validate(ctx context.Context, accessToken string) (*user.Principal, error) {
	claims, err := s.parseToken(accessToken, "access")
	if err != nil {
		return nil, err
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, NewUnauthorized("в токене отсутствует user_id")
	}
	username, ok := claims["username"].(string)
	if !ok {
		return nil, NewUnauthorized("в токене отсутствует username")
	}

	return &user.Principal{
		UserID:   int64(userID),
		Username: username,
	}, nil
}
