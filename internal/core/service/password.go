package service

import (
	"encoding/base64"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/kompu/storefront/internal/core/domain"
)

// Password schemes selectable through configuration.
const (
	PasswordBase64 = "base64"
	PasswordBcrypt = "bcrypt"
)

// PasswordHasher encodes stored credentials. Verify accepts values produced
// by either scheme so a store can be migrated gradually.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// NewPasswordHasher returns the hasher for scheme, defaulting to base64.
func NewPasswordHasher(scheme string) PasswordHasher {
	if strings.EqualFold(scheme, PasswordBcrypt) {
		return bcryptPasswords{cost: bcrypt.DefaultCost}
	}
	return base64Passwords{}
}

// base64Passwords stores base64(password). This is an encoding, not a hash.
type base64Passwords struct{}

func (base64Passwords) Hash(password string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(password)), nil
}

func (base64Passwords) Verify(stored, password string) bool {
	return verifyPassword(stored, password)
}

type bcryptPasswords struct {
	cost int
}

func (b bcryptPasswords) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (bcryptPasswords) Verify(stored, password string) bool {
	return verifyPassword(stored, password)
}

func verifyPassword(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return stored == base64.StdEncoding.EncodeToString([]byte(password))
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgEmailInvalid    = "Por favor, ingresa un email válido"
	msgPasswordPolicy  = "La contraseña debe tener al menos 6 caracteres, incluyendo mayúsculas, minúsculas, números y caracteres especiales"
	msgPasswordsDiffer = "Las contraseñas no coinciden"
)

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return domain.Invalid(msgEmailInvalid)
	}
	return nil
}

// validatePassword requires at least six characters with a lowercase and an
// uppercase ASCII letter, a digit and a character outside [A-Za-z0-9].
func validatePassword(password string) error {
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	if utf8.RuneCountInString(password) < 6 || !lower || !upper || !digit || !special {
		return domain.Invalid(msgPasswordPolicy)
	}
	return nil
}
