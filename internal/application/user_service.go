package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/postboard/internal/domain/entity"
	repo "github.com/oksasatya/postboard/internal/domain/repository"
	"github.com/oksasatya/postboard/pkg/apperror"
	"github.com/oksasatya/postboard/pkg/helpers"
	"github.com/oksasatya/postboard/pkg/mailer"
	tpl "github.com/oksasatya/postboard/pkg/mailer/templates"
)

var errInvalidCredentials = apperror.New(apperror.KindInvalidCredentials, "invalid credentials")

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

type UserService struct {
	Repo      repo.UserRepository
	Tokens    TokenIssuer
	Publisher JobPublisher
	Logger    *logrus.Logger
	AppName   string
}

func NewUserService(users repo.UserRepository, tokens TokenIssuer, pub JobPublisher, logger *logrus.Logger) *UserService {
	return &UserService{Repo: users, Tokens: tokens, Publisher: pub, Logger: logger}
}

// AccessToken is a signed bearer token and its expiry.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an account and returns a token for it. Emails are
// unique case-insensitively.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, AccessToken, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, AccessToken{}, apperror.New(apperror.KindDuplicateIdentity, "user already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, AccessToken{}, s.internal(err, "lookup user failed", logrus.Fields{"email": email})
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, AccessToken{}, s.internal(err, "hash password failed", nil)
	}
	u := &entity.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Password:  hash,
		AvatarURL: helpers.GravatarURL(email),
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, AccessToken{}, apperror.New(apperror.KindDuplicateIdentity, "user already exists")
		}
		return nil, AccessToken{}, s.internal(err, "create user failed", logrus.Fields{"email": email})
	}

	tok, err := s.issue(u)
	if err != nil {
		return nil, AccessToken{}, err
	}
	s.sendWelcome(ctx, u)
	return u, tok, nil
}

// Login checks credentials. Unknown email and wrong password fail the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, AccessToken, error) {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, AccessToken{}, errInvalidCredentials
		}
		return nil, AccessToken{}, s.internal(err, "lookup user failed", nil)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, AccessToken{}, errInvalidCredentials
	}
	tok, err := s.issue(u)
	if err != nil {
		return nil, AccessToken{}, err
	}
	return u, tok, nil
}

// Me returns the caller's profile.
func (s *UserService) Me(ctx context.Context, callerID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, s.internal(err, "load user failed", logrus.Fields{"user_id": callerID})
	}
	return u, nil
}

func (s *UserService) issue(u *entity.User) (AccessToken, error) {
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return AccessToken{}, s.internal(err, "issue token failed", logrus.Fields{"user_id": u.ID})
	}
	return AccessToken{Token: token, ExpiresAt: exp}, nil
}

func (s *UserService) sendWelcome(ctx context.Context, u *entity.User) {
	if s.Publisher == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tpl.Welcome,
		Data:     tpl.ToMap(tpl.EmailData{AppName: s.AppName, Name: u.Name, Email: u.Email}),
	}
	if err := s.Publisher.PublishJSON(ctx, job); err != nil {
		helpers.LogError(s.Logger, "welcome email: publish failed", err, logrus.Fields{"user_id": u.ID})
	}
}

func (s *UserService) internal(err error, msg string, fields logrus.Fields) error {
	helpers.LogError(s.Logger, msg, err, fields)
	return apperror.Internal(fmt.Errorf("%s: %w", msg, err))
}
