package models

import "strings"

// DisplayName resolves the name shown for a user in interest and candidate
// listings: the stored name when the user opted in and one exists, else the
// account email.
func DisplayName(displayRealName bool, storedName, email string) string {
	if displayRealName && strings.TrimSpace(storedName) != "" {
		return storedName
	}
	return email
}

// SenderName is the name snapshot written onto a message at send time.
func SenderName(profile *Profile, email string) string {
	if name := profile.FullName(); name != "" {
		return name
	}
	return email
}
