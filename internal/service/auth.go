package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/chrolluash/rentconnect/internal/model"
	"github.com/chrolluash/rentconnect/internal/repository"
	"github.com/chrolluash/rentconnect/internal/utils"
)

// UserStore is the slice of the user repository the services need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	TouchLastLogin(ctx context.Context, id uint64) error
	SetProfilePicture(ctx context.Context, id uint64, path string) (*string, error)
}

// SessionStarter opens a login session for a user and returns the cookie token.
type SessionStarter interface {
	Start(ctx context.Context, u *model.User) (*model.Session, string, error)
}

// LoginInput is a sign-in request.  RequestedRole is optional and comes from
// which login button the user picked.
type LoginInput struct {
	Email         string
	Password      string
	RequestedRole string
}

// AuthService registers users and logs them in.
type AuthService struct {
	users      UserStore
	sessions   SessionStarter
	bcryptCost int
	log        logrus.FieldLogger
}

func NewAuthService(users UserStore, sessions SessionStarter, bcryptCost int, log logrus.FieldLogger) *AuthService {
	return &AuthService{users: users, sessions: sessions, bcryptCost: bcryptCost, log: log}
}

// Register validates in, rejects taken emails and stores the new account.
// No session is created; the user logs in afterwards.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validateRegistration(&in); err != nil {
		return nil, err
	}
	l := s.log.WithField("email", repository.NormalizeEmail(in.Email))

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, Internal(err)
	}
	if exists {
		return nil, Conflict("This email already exists. Please login instead.")
	}

	u := &model.User{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		ContactNumber: in.ContactNumber,
		Role:          in.Role,
		AuthProvider:  in.AuthProvider,
	}
	if in.AuthProvider == model.AuthProviderEmail {
		if u.PasswordHash, err = utils.HashPassword(in.Password, s.bcryptCost); err != nil {
			return nil, Internal(err)
		}
	}
	if err := s.users.Create(ctx, u); err != nil {
		// The unique index catches a racing sign-up with the same email.
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, Conflict("This email already exists. Please login instead.")
		}
		return nil, Internal(err)
	}
	l.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")
	return u, nil
}

// Login checks credentials and the requested role, stamps last_login and
// opens a session.  The password is verified before the role, so a wrong
// password never reveals the account's role.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*model.User, *model.Session, string, error) {
	email := strings.TrimSpace(in.Email)
	if !validEmail(email) {
		return nil, nil, "", Validation("Valid email is required")
	}
	if in.Password == "" {
		return nil, nil, "", Validation("Password is required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil, "", NotFound("User not found with this email")
	}
	if err != nil {
		return nil, nil, "", Internal(err)
	}
	l := s.log.WithField("user_id", u.ID)

	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		l.Info("login rejected: bad password")
		return nil, nil, "", Unauthorized("Incorrect password")
	}
	if role := strings.TrimSpace(in.RequestedRole); role != "" && role != u.Role {
		return nil, nil, "", RoleMismatch("This account is registered as a " + u.Role + ". Please use the correct login option.")
	}

	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, nil, "", Internal(err)
	}
	sess, token, err := s.sessions.Start(ctx, u)
	if err != nil {
		return nil, nil, "", Internal(err)
	}
	l.WithField("role", u.Role).Info("login ok")
	return u, sess, token, nil
}

// EmailRegistered reports whether an account exists for email.
func (s *AuthService) EmailRegistered(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, Validation("Email is required")
	}
	ok, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return false, Internal(err)
	}
	return ok, nil
}

// CurrentUser loads the account behind a session.
func (s *AuthService) CurrentUser(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, Unauthorized("Please log in first")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return u, nil
}
