package campus

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/cupidworks/valentine-backend/pkg/logger"
)

// Roster answers whether an email belongs to the campus population that is
// auto-approved at registration time. The allow-list is read once at
// construction and treated as immutable for the process lifetime.
type Roster struct {
	emails map[string]struct{}
}

// NewRoster loads the allow-list from path. The file holds email addresses
// separated by commas and/or newlines. A missing or unreadable file yields an
// empty roster: nobody is auto-approved and everyone falls through to manual
// review.
func NewRoster(path string) *Roster {
	roster := &Roster{emails: make(map[string]struct{})}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.WithModule("campus").Warn("roster unavailable, treating all registrants as outsiders",
			zap.String("path", path),
			zap.Error(err),
		)
		return roster
	}

	for _, chunk := range strings.FieldsFunc(string(content), func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	}) {
		email := strings.ToLower(strings.TrimSpace(chunk))
		if email == "" {
			continue
		}
		roster.emails[email] = struct{}{}
	}

	logger.WithModule("campus").Info("roster loaded", zap.Int("entries", len(roster.emails)))
	return roster
}

// NewRosterFromEmails builds a roster directly, primarily for tests.
func NewRosterFromEmails(emails ...string) *Roster {
	roster := &Roster{emails: make(map[string]struct{}, len(emails))}
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			roster.emails[email] = struct{}{}
		}
	}
	return roster
}

// Contains reports whether the email is on the campus allow-list.
// The input is trimmed and lowercased before lookup.
func (r *Roster) Contains(email string) bool {
	if r == nil {
		return false
	}
	_, ok := r.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Size reports how many distinct emails are on the roster.
func (r *Roster) Size() int {
	if r == nil {
		return 0
	}
	return len(r.emails)
}
