package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRoleRequired indicates an operation that needs an assigned role.
	ErrRoleRequired = errors.New("role required")
)

// UserSafeMessage maps internal errors onto messages safe to show callers.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found"
	case errors.Is(err, ErrInvalidCredentials):
		return "Email or password is incorrect"
	case errors.Is(err, ErrRoleRequired):
		return "No role has been assigned to this account"
	default:
		return "Something went wrong, please try again"
	}
}
