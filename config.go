package stepAuth

import (
	"errors"
	"time"
)

// Environment defines a public type used by stepAuth APIs.
//
// Environment instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Environment string

const (
	// EnvDevelopment is an exported constant or variable used by the registration engine.
	EnvDevelopment Environment = "development"
	// EnvProduction is an exported constant or variable used by the registration engine.
	EnvProduction Environment = "production"
)

// Config defines a public type used by stepAuth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Environment Environment
	JWT         JWTConfig
	Signup      SignupConfig
	Login       LoginConfig
	Password    PasswordConfig
	Store       StoreConfig
	Notifier    NotifierConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by stepAuth APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	SessionTTL    time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

/*
====================================
SIGNUP CONFIG
====================================
*/

// SignupConfig defines a public type used by stepAuth APIs.
//
// SignupConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignupConfig struct {
	DefaultRole string
	CodeDigits  int
	// ConfirmationTTL bounds how long a confirmation code stays valid.
	// Zero means confirmation codes never expire.
	ConfirmationTTL time.Duration
}

// LoginConfig defines a public type used by stepAuth APIs.
//
// LoginConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginConfig struct {
	CodeDigits int
	CodeTTL    time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by stepAuth APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	MinLength      int
	UpgradeOnLogin bool
}

// StoreConfig defines a public type used by stepAuth APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	RedisPrefix string
	MaxRetries  int
}

// NotifierConfig defines a public type used by stepAuth APIs.
//
// NotifierConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NotifierConfig struct {
	Timeout time.Duration
}

// AuditConfig defines a public type used by stepAuth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by stepAuth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Environment: EnvProduction,
		JWT: JWTConfig{
			SessionTTL:    24 * time.Hour,
			SigningMethod: "ed25519",
		},
		Signup: SignupConfig{
			DefaultRole:     RoleStudent,
			CodeDigits:      6,
			ConfirmationTTL: 0,
		},
		Login: LoginConfig{
			CodeDigits: 6,
			CodeTTL:    10 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			MinLength:      6,
			UpgradeOnLogin: true,
		},
		Store: StoreConfig{
			RedisPrefix: "acct",
			MaxRetries:  4,
		},
		Notifier: NotifierConfig{
			Timeout: 5 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// DefaultConfig returns the engine defaults. Callers adjust the returned
// value and pass it to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
		// valid
	default:
		return errors.New("Environment must be development or production")
	}

	// JWT
	if c.JWT.SessionTTL <= 0 {
		return errors.New("JWT SessionTTL must be > 0")
	}
	if c.JWT.SigningMethod != "ed25519" && c.JWT.SigningMethod != "hs256" {
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PrivateKey) == 0 {
		return errors.New("ed25519 requires PrivateKey")
	}
	if c.JWT.SigningMethod == "ed25519" && len(c.JWT.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}
	if c.JWT.SigningMethod == "hs256" && len(c.JWT.PrivateKey) == 0 {
		return errors.New("hs256 requires PrivateKey")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	// Signup
	if !validRole(c.Signup.DefaultRole) {
		return errors.New("Signup DefaultRole is not a known role")
	}
	if c.Signup.CodeDigits < 6 || c.Signup.CodeDigits > 10 {
		return errors.New("Signup CodeDigits must be between 6 and 10")
	}
	if c.Signup.ConfirmationTTL < 0 {
		return errors.New("Signup ConfirmationTTL must be >= 0")
	}

	// Login
	if c.Login.CodeDigits < 6 || c.Login.CodeDigits > 10 {
		return errors.New("Login CodeDigits must be between 6 and 10")
	}
	if c.Login.CodeTTL <= 0 {
		return errors.New("Login CodeTTL must be > 0")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MinLength < 6 {
		return errors.New("Password MinLength must be >= 6")
	}

	// Store
	if c.Store.RedisPrefix == "" {
		return errors.New("Store RedisPrefix must not be empty")
	}
	if c.Store.MaxRetries <= 0 {
		return errors.New("Store MaxRetries must be > 0")
	}

	// Notifier
	if c.Notifier.Timeout <= 0 {
		return errors.New("Notifier Timeout must be > 0")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	if c.Environment == EnvProduction {
		if c.JWT.SigningMethod == "hs256" && len(c.JWT.PrivateKey) < 32 {
			return errors.New("production requires hs256 key length >= 256 bits")
		}
		if c.Login.CodeTTL > 15*time.Minute {
			return errors.New("production requires Login CodeTTL <= 15m")
		}
		if c.Password.Memory < 64*1024 {
			return errors.New("production requires Password Memory >= 65536 KB")
		}
		if c.Password.Time < 2 {
			return errors.New("production requires Password Time >= 2")
		}
		if c.Password.KeyLength < 32 {
			return errors.New("production requires Password KeyLength >= 32")
		}
	}

	return nil
}
