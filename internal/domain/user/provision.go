package user

import (
	"fmt"
	"slices"

	"signage-user-service/pkg/password"
)

// Draft holds the requested attributes of a new account.
type Draft struct {
	Name   string
	Groups []string // nil when the caller did not supply groups
}

// Policy controls how new accounts are provisioned.
type Policy struct {
	PasswordLength int      // length of the generated cleartext password
	HashCost       int      // bcrypt cost
	KnownGroups    []string // when non-empty, groups must be listed here
}

// Provisioned is a new user in its persisted form together with the
// generated cleartext password. The cleartext can be taken exactly once.
type Provisioned struct {
	User *User

	password string
	taken    bool
}

// TakePassword returns the cleartext password and forgets it.
// Subsequent calls return an empty string.
func (p *Provisioned) TakePassword() string {
	if p.taken {
		return ""
	}
	pass := p.password
	p.password = ""
	p.taken = true
	return pass
}

// Provision builds a new user from d: the name and groups are validated,
// a password is generated with gen and only its hash is kept on the user.
func Provision(d Draft, gen password.Generator, p Policy) (*Provisioned, error) {
	u := &User{Groups: []string{}}

	if err := u.SetName(d.Name); err != nil {
		return nil, err
	}

	if d.Groups != nil {
		if err := u.SetGroups(d.Groups); err != nil {
			return nil, err
		}
		if len(p.KnownGroups) > 0 {
			for _, g := range u.Groups {
				if !slices.Contains(p.KnownGroups, g) {
					return nil, fmt.Errorf("%w: unknown group %q", ErrInvalidGroups, g)
				}
			}
		}
	}

	cleartext, err := gen.Generate(p.PasswordLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPasswordGeneration, err)
	}
	if err := u.SetPassword(cleartext, p.HashCost); err != nil {
		return nil, err
	}

	return &Provisioned{User: u, password: cleartext}, nil
}
