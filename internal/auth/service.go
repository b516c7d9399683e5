package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/radieske/bet-ledger-engine/internal/domain"
)

// Users define a persistência de usuários usada pelo serviço
type Users interface {
	CreateUser(ctx context.Context, email, passwordHash, role string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

// Service cuida de registro e login
type Service struct {
	log   *zap.Logger
	users Users
	jwt   *JWTService
}

func NewService(log *zap.Logger, users Users, jwt *JWTService) *Service {
	return &Service{log: log, users: users, jwt: jwt}
}

// Register cria o usuário com senha bcrypt e carteira zerada.
// O papel nunca vem do cliente: todo registro nasce como user comum.
func (s *Service) Register(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.users.CreateUser(ctx, email, string(hash), domain.RoleUser)
	if err != nil {
		return domain.User{}, err
	}

	s.log.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

// Login valida as credenciais e devolve um token de sessão
func (s *Service) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", domain.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := s.jwt.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, u, nil
}
