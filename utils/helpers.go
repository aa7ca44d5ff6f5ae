package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// IsValidRole checks if a role is valid
func IsValidRole(role string) bool {
	switch role {
	case "admin", "staff":
		return true
	}
	return false
}

// IsValidFileExtension checks if file extension is allowed
func IsValidFileExtension(filename string, allowedExtensions []string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return false
	}
	ext := strings.ToLower(filename[i+1:])
	for _, allowedExt := range allowedExtensions {
		if ext == strings.ToLower(strings.TrimSpace(allowedExt)) {
			return true
		}
	}
	return false
}

// SanitizeString removes null bytes and surrounding whitespace
func SanitizeString(input string) string {
	return strings.TrimSpace(strings.ReplaceAll(input, "\x00", ""))
}

var unsafeIDChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// SafeID strips everything outside [a-zA-Z0-9-_] so an identifier can be
// used as a filename prefix.
func SafeID(id string) string {
	return unsafeIDChars.ReplaceAllString(id, "")
}

// FormatFileSize renders a byte count as "12.34 KB" below one megabyte and
// "1.50 MB" above.
func FormatFileSize(size int64) string {
	mb := float64(size) / (1024 * 1024)
	if mb < 1 {
		return fmt.Sprintf("%.2f KB", float64(size)/1024)
	}
	return fmt.Sprintf("%.2f MB", mb)
}

// SplitPrograms accepts a comma separated list and returns trimmed,
// non-empty, de-duplicated entries in first-seen order.
func SplitPrograms(raw ...string) []string {
	var parts []string
	for _, r := range raw {
		parts = append(parts, strings.Split(r, ",")...)
	}
	return CleanPrograms(parts, "")
}

// CleanPrograms trims, de-duplicates and drops empty entries as well as
// any entry equal to remove.
func CleanPrograms(list []string, remove string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, p := range list {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] || (remove != "" && p == remove) {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// ParseOptionalUint returns nil for "", "null", "undefined" and "0".
func ParseOptionalUint(s string) (*uint, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "null", "undefined", "0":
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", s)
	}
	v := uint(n)
	return &v, nil
}

// StringPtr returns nil for blank strings.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
