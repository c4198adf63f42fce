package stepAuth

import "errors"

var (
	// ErrInvalidInput is an exported constant or variable used by the registration engine.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingFields is an exported constant or variable used by the registration engine.
	ErrMissingFields = errors.New("missing required fields")
	// ErrAccountNotFound is an exported constant or variable used by the registration engine.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateEmail is an exported constant or variable used by the registration engine.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrRoleInvalid is an exported constant or variable used by the registration engine.
	ErrRoleInvalid = errors.New("invalid account role")
	// ErrPasswordPolicy is an exported constant or variable used by the registration engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrAlreadyConfirmed is an exported constant or variable used by the registration engine.
	ErrAlreadyConfirmed = errors.New("account already confirmed")
	// ErrNotConfirmed is an exported constant or variable used by the registration engine.
	ErrNotConfirmed = errors.New("account not confirmed")
	// ErrInvalidCredentials is an exported constant or variable used by the registration engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidCode is an exported constant or variable used by the registration engine.
	ErrInvalidCode = errors.New("invalid code")
	// ErrCodeExpired is an exported constant or variable used by the registration engine.
	ErrCodeExpired = errors.New("code expired")
	// ErrNoPendingCode is an exported constant or variable used by the registration engine.
	ErrNoPendingCode = errors.New("no pending code")
	// ErrMissingStudentFields is an exported constant or variable used by the registration engine.
	ErrMissingStudentFields = errors.New("student profile requires major and classification")
	// ErrStoreUnavailable is an exported constant or variable used by the registration engine.
	ErrStoreUnavailable = errors.New("account store unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the registration engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
