// Package status defines the account-status vocabulary for users.
package status

// Account statuses. Disabled users keep their records but cannot sign in.
const (
	Active   = "active"
	Disabled = "disabled"
)

// IsValid reports whether s is a known account status.
func IsValid(s string) bool {
	return s == Active || s == Disabled
}
