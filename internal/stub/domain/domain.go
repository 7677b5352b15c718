package domain

import "time"

// Status values shared by every resource type.
const (
	StatusEnabled    = "ENABLED"
	StatusDisabled   = "DISABLED"
	StatusUnverified = "UNVERIFIED"
)

type Application struct {
	ID          string
	Name        string
	Description string
	Status      string
	DirectoryID string // default account store
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Directory struct {
	ID          string
	Name        string
	Description string
	Status      string
	CreatedAt   time.Time
}

type Account struct {
	ID           string
	DirectoryID  string
	Username     string
	Email        string
	GivenName    string
	Surname      string
	PasswordHash string // argon2 encoded
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Account) IsEnabled() bool { return a.Status == StatusEnabled }

// APIKey is a credential owned by an account. The secret is stored
// encrypted because clients read it back when verifying tokens.
type APIKey struct {
	ID              string
	AccountID       string
	SecretEncrypted []byte
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PasswordResetToken is looked up by the fingerprint of the opaque token
// mailed to the user.
type PasswordResetToken struct {
	TokenHash     string
	ApplicationID string
	AccountID     string
	Email         string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

type BootstrapData struct {
	ApplicationName string
	Description     string
	DirectoryName   string
}
