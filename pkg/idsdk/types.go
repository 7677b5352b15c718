package idsdk

// ============================================================================
// Resource Status Values
// ============================================================================

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusEnabled    AccountStatus = "ENABLED"
	AccountStatusDisabled   AccountStatus = "DISABLED"
	AccountStatusUnverified AccountStatus = "UNVERIFIED"
)

// APIKeyStatus is the lifecycle state of an API key.
type APIKeyStatus string

const (
	APIKeyStatusEnabled  APIKeyStatus = "ENABLED"
	APIKeyStatusDisabled APIKeyStatus = "DISABLED"
)

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

const (
	ApplicationStatusEnabled  ApplicationStatus = "ENABLED"
	ApplicationStatusDisabled ApplicationStatus = "DISABLED"
)

// ============================================================================
// Shared Wire Types
// ============================================================================

// Link is a reference to another resource by href.
type Link struct {
	Href string `json:"href"`
}

// Collection is the envelope for list endpoints.
type Collection[T any] struct {
	Href   string `json:"href"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Size   int    `json:"size"`
	Items  []T    `json:"items"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains component-level status (only in readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}

// ============================================================================
// Request Types
// ============================================================================

// AccountRequest creates an account under an application's default account
// store.
type AccountRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	GivenName string `json:"givenName" validate:"max=64"`
	Surname   string `json:"surname" validate:"max=64"`

	// Status defaults to ENABLED when empty.
	Status AccountStatus `json:"status,omitempty" validate:"omitempty,oneof=ENABLED DISABLED UNVERIFIED"`
}

// LoginAttemptRequest is the body of POST {application}/loginAttempts.
// Value is base64("username:password").
type LoginAttemptRequest struct {
	Type         string `json:"type" validate:"required,eq=basic"`
	Value        string `json:"value" validate:"required,base64"`
	AccountStore *Link  `json:"accountStore,omitempty"`
}

// PasswordResetRequest is the body used to create a reset token (Email set)
// or to consume one (Password set).
type PasswordResetRequest struct {
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Password     string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	AccountStore *Link  `json:"accountStore,omitempty"`
}

// StatusUpdateRequest changes the status of an account or API key.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=ENABLED DISABLED UNVERIFIED"`
}

// BootstrapRequest seeds a fresh service with one application and its
// default directory.
type BootstrapRequest struct {
	ApplicationName string `json:"applicationName" validate:"required,min=1,max=64"`
	Description     string `json:"description" validate:"max=256"`
	DirectoryName   string `json:"directoryName" validate:"required,min=1,max=64"`
}

// BootstrapResponse lists what a bootstrap created.
type BootstrapResponse struct {
	Application Application `json:"application"`
	Directory   Directory   `json:"directory"`
}

// ValidationErrorResponse is returned with HTTP 400 when a request body
// fails validation. Details maps field names to the failed rule.
type ValidationErrorResponse struct {
	ResourceError

	Details map[string]string `json:"details,omitempty"`
}
