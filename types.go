package stepAuth

import (
	"context"

	"github.com/MrEthical07/stepAuth/account"
)

const (
	// RoleStudent is an exported constant or variable used by the registration engine.
	RoleStudent = "student"
	// RolePeerMentor is an exported constant or variable used by the registration engine.
	RolePeerMentor = "peer_mentor"
	// RoleFYETeacher is an exported constant or variable used by the registration engine.
	RoleFYETeacher = "fye_teacher"
	// RoleAdmin is an exported constant or variable used by the registration engine.
	RoleAdmin = "admin"
)

func validRole(role string) bool {
	switch role {
	case RoleStudent, RolePeerMentor, RoleFYETeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// Account is the persisted account record managed by the engine.
//
//	Docs: account/doc.go
type Account = account.Account

// AccountStore is the persistence interface consumed by the engine.
// [account.RedisStore] and [account.MemoryStore] implement it.
type AccountStore = account.Store

// Notifier delivers one-time codes to account holders. Implementations live
// in notify/ (SMTP, log writer, func adapter). Delivery is best-effort: the
// engine never fails a flow because a Notifier returned an error.
type Notifier interface {
	SendConfirmationCode(ctx context.Context, email, code string) error
	SendLoginCode(ctx context.Context, email, code string) error
}

// SignupRequest is the input for [Engine.BeginSignup]. Email and Password
// are required; Role defaults to [SignupConfig.DefaultRole] when empty.
type SignupRequest struct {
	Email    string
	Password string
	Role     string
}

// SignupResult is returned by [Engine.BeginSignup]. ConfirmationCode is
// populated only when [Config.Environment] is [EnvDevelopment]; in
// production the code travels exclusively through the Notifier.
type SignupResult struct {
	AccountID        string
	Email            string
	Role             string
	ConfirmationCode string
}

// ProfileRequest is the input for [Engine.CompleteProfile]. Major and
// Classification are required for student accounts and ignored for every
// other role.
type ProfileRequest struct {
	AccountID      string
	FullName       string
	School         string
	Major          string
	Classification string
}

// ProfileResult is returned by [Engine.CompleteProfile]. It carries the
// first session token together with the sanitized profile.
type ProfileResult struct {
	Token   string
	Profile Profile
}

// LoginChallenge is returned by [Engine.BeginLogin]. LoginCode is populated
// only in [EnvDevelopment]. ExpiresAt is the unix time after which
// [Engine.ConfirmLogin] rejects the code.
type LoginChallenge struct {
	AccountID string
	LoginCode string
	ExpiresAt int64
}

// LoginResult is returned by [Engine.ConfirmLogin].
type LoginResult struct {
	Token   string
	Profile Profile
}

// Profile is the outward-facing account view. It never includes the
// password hash or any pending code. Major and Classification are set only
// for student accounts.
type Profile struct {
	AccountID       string `json:"accountId"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	FullName        string `json:"fullName,omitempty"`
	School          string `json:"school,omitempty"`
	Major           string `json:"major,omitempty"`
	Classification  string `json:"classification,omitempty"`
	Confirmed       bool   `json:"confirmed"`
	ProfileComplete bool   `json:"profileComplete"`
}

func sanitizeProfile(acct *Account) Profile {
	p := Profile{
		AccountID:       acct.ID,
		Email:           acct.Email,
		Role:            acct.Role,
		FullName:        acct.FullName,
		School:          acct.School,
		Confirmed:       acct.Confirmed,
		ProfileComplete: acct.ProfileComplete,
	}
	if acct.Role == RoleStudent {
		p.Major = acct.Major
		p.Classification = acct.Classification
	}
	return p
}
