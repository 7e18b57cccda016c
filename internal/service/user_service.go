package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/policy"
	"yatube/internal/repository/redis"
	"yatube/internal/repository/sqldb"
)

const (
	msgBadCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	msgUsernameTaken  = "A user with that username already exists."
	msgEmailTaken     = "A user with that email already exists."
	msgOldPassword    = "Your old password was entered incorrectly. Please enter it again."
	msgBadResetCode   = "The code is invalid or has expired."
)

type UserService struct {
	repo     *sqldb.UserRepository
	sessions *redis.SessionRepository
	tokens   *pkg.TokenIssuer
	emailSvc *EmailService
	hashCost int
}

func NewUserService(db *gorm.DB, sessions *redis.SessionRepository, tokens *pkg.TokenIssuer, emailSvc *EmailService) *UserService {
	return &UserService{
		repo:     &sqldb.UserRepository{DB: db},
		sessions: sessions,
		tokens:   tokens,
		emailSvc: emailSvc,
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *UserService) Get(ctx context.Context, id uint64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *UserService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	return string(h), err
}

func (s *UserService) exists(ctx context.Context, find func(context.Context, string) (*model.User, error), v string) (bool, error) {
	_, err := find(ctx, v)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// Register creates an account; it does not sign the user in.
func (s *UserService) Register(ctx context.Context, in *form.SignupInput) (*model.User, error) {
	errs := in.Validate()
	if errs == nil {
		errs = form.Errors{}
	}
	if !errs.Has("username") {
		taken, err := s.exists(ctx, s.repo.FindByUsername, in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("username", msgUsernameTaken)
		}
	}
	if !errs.Has("email") {
		taken, err := s.exists(ctx, s.repo.FindByEmail, in.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("email", msgEmailTaken)
		}
	}
	if !errs.Empty() {
		return nil, errs
	}

	hash, err := s.hash(in.Password1)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err = s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.Add(form.NonField, msgUsernameTaken)
			return nil, errs
		}
		return nil, err
	}
	return user, nil
}

// openSession issues a token and makes it the user's only live session.
func (s *UserService) openSession(ctx context.Context, user *model.User) (string, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", err
	}
	if err = s.sessions.AddUserToken(ctx, user.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Login checks credentials and returns a session token.
func (s *UserService) Login(ctx context.Context, in *form.LoginInput) (*model.User, string, error) {
	if errs := in.Validate(); errs != nil {
		return nil, "", errs
	}
	user, err := s.repo.FindByLogin(ctx, in.Username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		errs := form.Errors{}
		errs.Add(form.NonField, msgBadCredentials)
		return nil, "", errs
	}
	token, err := s.openSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	return s.sessions.DeleteUserToken(ctx, userID)
}

// ChangePassword replaces the password and returns a fresh session token;
// any other session of the user ends.
func (s *UserService) ChangePassword(ctx context.Context, actor policy.Actor, in *form.PasswordChangeInput) (string, error) {
	if !actor.IsAuthenticated() {
		return "", ErrUnauthorized
	}
	errs := in.Validate()
	if errs == nil {
		errs = form.Errors{}
	}
	user, err := s.Get(ctx, actor.ID)
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)) != nil {
		errs.Add("old_password", msgOldPassword)
	}
	if !errs.Empty() {
		return "", errs
	}

	hash, err := s.hash(in.NewPassword1)
	if err != nil {
		return "", err
	}
	if err = s.repo.UpdatePassword(ctx, user, hash); err != nil {
		return "", err
	}
	return s.openSession(ctx, user)
}

// RequestPasswordReset mails a reset code when the address belongs to an
// account. Unknown addresses succeed silently.
func (s *UserService) RequestPasswordReset(ctx context.Context, in *form.PasswordResetInput) error {
	if errs := in.Validate(); errs != nil {
		return errs
	}
	if _, err := s.repo.FindByEmail(ctx, in.Email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.emailSvc.SendResetCode(ctx, in.Email)
}

// ResetPassword sets a new password after the emailed code checks out and
// ends the user's session.
func (s *UserService) ResetPassword(ctx context.Context, in *form.PasswordResetConfirmInput) error {
	if errs := in.Validate(); errs != nil {
		return errs
	}
	ok, err := s.emailSvc.VerifyCode(ctx, in.Email, in.Code)
	if err != nil {
		return err
	}
	if !ok {
		errs := form.Errors{}
		errs.Add("code", msgBadResetCode)
		return errs
	}

	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return notFound(err)
	}
	hash, err := s.hash(in.NewPassword1)
	if err != nil {
		return err
	}
	if err = s.repo.UpdatePassword(ctx, user, hash); err != nil {
		return err
	}
	return s.Logout(ctx, user.ID)
}
