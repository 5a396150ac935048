package user

import (
	"fmt"
	"regexp"
	"slices"

	"signage-user-service/pkg/password"
)

const (
	// NameGrammar is the pattern every user name must match.
	NameGrammar = `^[A-Za-z0-9_]+$`
	// GroupGrammar is the pattern every group name must match.
	GroupGrammar = `^[A-Za-z0-9_]+$`

	MaxNameLength  = 64 // MaxNameLength is the longest accepted user name
	MaxGroupLength = 64 // MaxGroupLength is the longest accepted group name
	MaxGroups      = 32 // MaxGroups is the maximum number of groups per user

	// AdminGroup is the group whose members may manage other users.
	AdminGroup = "admin"
)

var (
	namePattern  = regexp.MustCompile(NameGrammar)
	groupPattern = regexp.MustCompile(GroupGrammar)

	reservedNames = []string{"root", "system"}
)

// User represents a user account in the system.
// The cleartext password is never held here, only its bcrypt hash.
type User struct {
	Name         string   // Name is the unique account name
	Groups       []string // Groups the user is a member of, never nil
	PasswordHash string   // PasswordHash is the bcrypt hash of the password
}

// Export is the public representation of a user.
type Export struct {
	Name   string
	Groups []string
}

// ValidName reports whether name matches the user name grammar.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// ValidGroup reports whether group matches the group name grammar.
func ValidGroup(group string) bool {
	return groupPattern.MatchString(group)
}

// SetName validates and assigns the user name.
func (u *User) SetName(name string) error {
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxNameLength)
	}
	if !ValidName(name) {
		return fmt.Errorf("%w: %q does not match %s", ErrInvalidName, name, NameGrammar)
	}
	if slices.Contains(reservedNames, name) {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	u.Name = name
	return nil
}

// SetGroups validates and assigns the group set. A nil slice clears the groups.
func (u *User) SetGroups(groups []string) error {
	if len(groups) > MaxGroups {
		return fmt.Errorf("%w: more than %d groups", ErrInvalidGroups, MaxGroups)
	}

	set := make([]string, 0, len(groups))
	for _, g := range groups {
		if len(g) > MaxGroupLength {
			return fmt.Errorf("%w: group longer than %d characters", ErrInvalidGroups, MaxGroupLength)
		}
		if !ValidGroup(g) {
			return fmt.Errorf("%w: %q does not match %s", ErrInvalidGroups, g, GroupGrammar)
		}
		if slices.Contains(set, g) {
			return fmt.Errorf("%w: duplicate group %q", ErrInvalidGroups, g)
		}
		set = append(set, g)
	}

	u.Groups = set
	return nil
}

// SetPassword hashes cleartext with the given bcrypt cost and stores the hash.
func (u *User) SetPassword(cleartext string, cost int) error {
	hash, err := password.Hash(cleartext, cost)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPasswordHash, err)
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword reports whether cleartext matches the stored hash.
func (u *User) CheckPassword(cleartext string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return password.Verify(u.PasswordHash, cleartext)
}

// IsInGroup reports whether the user is a member of group.
func (u *User) IsInGroup(group string) bool {
	return slices.Contains(u.Groups, group)
}

// IsAdmin reports whether the user is a member of AdminGroup.
func (u *User) IsAdmin() bool {
	return u.IsInGroup(AdminGroup)
}

// Export returns the public representation without credentials.
func (u *User) Export() Export {
	groups := make([]string, len(u.Groups))
	copy(groups, u.Groups)
	return Export{Name: u.Name, Groups: groups}
}
