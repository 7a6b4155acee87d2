package account

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Field limits.
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	MaxEmailLength    = 254
)

// Role constants
const (
	RoleAdmin = "admin"
	RoleCoach = "coach"
	RoleUser  = "user"
)

// Account status constants
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Coach verification states. Non-coach accounts carry CoachStatusNone.
const (
	CoachStatusNone     = ""
	CoachStatusPending  = "pending"
	CoachStatusVerified = "verified"
	CoachStatusRevoked  = "revoked"
)

// Admin actions on a user.
const (
	ActionSuspend   = "suspend"
	ActionActivate  = "activate"
	ActionApprove   = "approve"
	ActionReject    = "reject"
	ActionRevoke    = "revoke"
	ActionReapprove = "reapprove"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleCoach, RoleUser}

// PasswordCost is the bcrypt cost for new hashes. Tests lower it.
var PasswordCost = 12

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Domain errors
var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrInvalidEmail     = errors.New("please enter a valid email address")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrInvalidRole      = errors.New("role must be one of: admin, coach, user")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrSuspended        = errors.New("this account has been suspended")
	ErrCoachNotVerified = errors.New("coach account is awaiting admin approval")
	ErrUnknownAction    = errors.New("unknown user action")
	ErrActionNotAllowed = errors.New("action does not apply to this account")
)

// User is one registered account.
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CoachStatus  string    `json:"coachStatus"`
	CoachTier    string    `json:"coachTier,omitempty"`
	HeadCoach    string    `json:"headCoach,omitempty"`
	JoinDate     time.Time `json:"joinDate"`
}

// ValidateSignup checks the signup form fields and reports every failing field.
// PRE: username and email are already trimmed
// POST: Returns nil or a joined error of field failures
func ValidateSignup(username, email, password string) error {
	var errs []error
	if len([]rune(username)) < MinUsernameLength {
		errs = append(errs, ErrUsernameTooShort)
	}
	if !ValidEmail(email) {
		errs = append(errs, ErrInvalidEmail)
	}
	if len(password) < MinPasswordLength {
		errs = append(errs, ErrPasswordTooShort)
	}
	return errors.Join(errs...)
}

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool {
	return len(email) <= MaxEmailLength && emailPattern.MatchString(email)
}

// Validate checks if the User has valid data.
// PRE: User struct is populated
// POST: Returns nil if valid, error otherwise
func (u *User) Validate() error {
	if len([]rune(u.Username)) < MinUsernameLength {
		return ErrUsernameTooShort
	}
	if !ValidEmail(u.Email) {
		return ErrInvalidEmail
	}
	if !isValidRole(u.Role) {
		return ErrInvalidRole
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is >= 6 characters
// POST: PasswordHash is set to bcrypt hash
func (u *User) SetPassword(plaintext string) error {
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: User fields are not mutated
func (u *User) CheckPassword(plaintext string) error {
	if u.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// CanLogin reports why the account may not sign in, or nil.
// INVARIANT: User fields are not mutated
func (u *User) CanLogin() error {
	if u.Status == StatusSuspended {
		return ErrSuspended
	}
	if u.Role == RoleCoach && u.CoachStatus != CoachStatusVerified {
		return ErrCoachNotVerified
	}
	return nil
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsCoach returns true if the user has coach role.
func (u *User) IsCoach() bool { return u.Role == RoleCoach }

// IsVerifiedCoach returns true for coaches an admin has approved.
func (u *User) IsVerifiedCoach() bool {
	return u.Role == RoleCoach && u.CoachStatus == CoachStatusVerified
}

// ApplyAction performs an admin action on the user.
// PRE: action is one of the Action constants
// POST: Status or CoachStatus updated; coach-only actions reject non-coaches
func (u *User) ApplyAction(action string) error {
	switch action {
	case ActionSuspend:
		u.Status = StatusSuspended
	case ActionActivate:
		u.Status = StatusActive
	case ActionApprove, ActionReapprove:
		if !u.IsCoach() {
			return fmt.Errorf("%w: %s on %s", ErrActionNotAllowed, action, u.Role)
		}
		u.CoachStatus = CoachStatusVerified
	case ActionReject, ActionRevoke:
		if !u.IsCoach() {
			return fmt.Errorf("%w: %s on %s", ErrActionNotAllowed, action, u.Role)
		}
		u.CoachStatus = CoachStatusRevoked
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}

// Find returns the index of username in users, or -1. Matching is exact.
func Find(users []User, username string) int {
	for i := range users {
		if users[i].Username == username {
			return i
		}
	}
	return -1
}

// FindByEmail returns the index of the user with email, or -1. Matching is exact.
func FindByEmail(users []User, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}

// Conflict returns the index of a user whose username or email matches
// case-insensitively, or -1.
func Conflict(users []User, username, email string) int {
	for i := range users {
		if strings.EqualFold(users[i].Username, username) || strings.EqualFold(users[i].Email, email) {
			return i
		}
	}
	return -1
}

// Coaches returns the verified coaches in users.
func Coaches(users []User) []User {
	var out []User
	for _, u := range users {
		if u.IsVerifiedCoach() {
			out = append(out, u)
		}
	}
	return out
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
