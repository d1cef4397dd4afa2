package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Common validation errors
var (
	ErrEmptyUserName       = errors.New("user name cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
)

// User is a registered account listed by the users endpoint.
// Credential and verification fields never leave the server.
type User struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	EmailVerifiedAt *time.Time `json:"-"`
	Password        string     `json:"-"` // Plaintext, only set while creating a user
	HashedPassword  string     `json:"-"`
	RememberToken   *string    `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PublicUser is the only user shape exposed over the API.
type PublicUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a User with the given name, email and plaintext password.
// The caller is responsible for hashing the password before storing the user.
func NewUser(name, email, password string, now time.Time) (*User, error) {
	ts := Timestamp(now)
	user := &User{
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  password,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.Name == "" {
		return ErrEmptyUserName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if err := validate.Var(u.Email, "email"); err != nil {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if len(u.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}

	return nil
}

// Public returns the exposed projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
