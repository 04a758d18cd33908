package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 10
	MaxTags           = 20
	MaxTagLength      = 40
	MaxNotesLength    = 10000
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)
	docIDRe    = regexp.MustCompile(`^\d{1,20}$`)
	caseIDRe   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func ValidateUsername(username string) bool {
	return usernameRe.MatchString(strings.TrimSpace(username))
}

func ValidatePassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// ValidDocID accepts the provider's numeric document ids.
func ValidDocID(id string) bool {
	return docIDRe.MatchString(id)
}

func ValidCaseID(id string) bool {
	return caseIDRe.MatchString(id)
}

// TrimAndLimit trims whitespace and cuts s to at most max runes.
func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping first-seen
// order. Empty tags are dropped and the result is capped at MaxTags.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(TrimAndLimit(tag, MaxTagLength))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}
