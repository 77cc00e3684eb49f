/*
Package user contains the account model and the credential check.

Registered usernames double as chat identities, so they follow the same rules as an
announced identity. Passwords are stored as bcrypt hashes.
*/
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"livechat/internal/app/room"
	"livechat/internal/app/store"
	"livechat/internal/pkg/errs"
	"livechat/internal/pkg/logx"
)

// User represents the public identity of an account.
// Fields use JSON tags for serialization in HTTP responses.
type User struct {
	// Username is the account name and the identity announced in chat.
	Username string `json:"username"`

	// CreatedAt is the registration time.
	CreatedAt time.Time `json:"createdAt"`
}

// Credentials is the input of Register and Authenticate.
type Credentials struct {
	Username string `json:"username" validate:"required,identity"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("identity", func(fl validator.FieldLevel) bool {
		return room.ValidIdentity(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("user: register identity validation: %v", err))
	}
	return v
}

// Service registers accounts and checks credentials against a UserStore.
type Service struct {
	users store.UserStore
	cost  int
}

// NewService constructs a Service hashing with bcrypt.DefaultCost.
func NewService(users store.UserStore) *Service {
	return &Service{users: users, cost: bcrypt.DefaultCost}
}

// Register validates creds and creates the account.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	if err := checkCredentials(creds); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return User{}, errs.Wrap(errs.ErrUnknown, err)
	}

	account := store.User{
		Username:     creds.Username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, account); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			logx.Warn("registration conflict: username already exists", "username", creds.Username)
			return User{}, errs.NewError(errs.ErrUserAlreadyExists)
		}
		logx.Error(err, "failed to create user", "username", creds.Username)
		return User{}, errs.Wrap(errs.ErrPersistenceFailure, err)
	}

	return User{Username: account.Username, CreatedAt: account.CreatedAt}, nil
}

// Authenticate reports whether creds match a registered account.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	if creds.Username == "" || creds.Password == "" {
		return User{}, errs.NewError(errs.ErrInvalidCredentials)
	}

	account, err := s.users.GetUser(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logx.Warn("login: unknown username", "username", creds.Username)
			return User{}, errs.NewError(errs.ErrInvalidCredentials)
		}
		logx.Error(err, "login: user fetch failed", "username", creds.Username)
		return User{}, errs.Wrap(errs.ErrPersistenceFailure, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)); err != nil {
		logx.Warn("login: password mismatch", "username", creds.Username)
		return User{}, errs.NewError(errs.ErrInvalidCredentials)
	}

	return User{Username: account.Username, CreatedAt: account.CreatedAt}, nil
}

// checkCredentials maps validation failures onto account error codes.
func checkCredentials(creds Credentials) error {
	err := validate.Struct(creds)
	if err == nil {
		if len(creds.Password) > maxPasswordBytes {
			return errs.NewError(errs.ErrInvalidPassword)
		}
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Field() == "Username" {
		return errs.NewError(errs.ErrInvalidUsername)
	}
	return errs.NewError(errs.ErrInvalidPassword)
}
