package authz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingClaim   = errors.New("missing claim")
	ErrMalformedClaim = errors.New("malformed claim")
)

// Claims is the subset of an identity-provider token this service trusts
// once the signature has been verified.
type Claims struct {
	Subject    string
	Email      string
	GivenName  string
	Nickname   string
	FamilyName string

	// client id -> role names, from resource_access.<client>.roles
	ResourceRoles map[string][]string
}

// FromMap converts verified token claims into Claims. Only "sub" is mandatory;
// every other claim must have the expected shape when present.
func FromMap(raw map[string]interface{}) (*Claims, error) {
	c := &Claims{ResourceRoles: map[string][]string{}}

	sub, err := optionalString(raw, "sub")
	if err != nil {
		return nil, err
	}
	if sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	c.Subject = sub

	for key, dst := range map[string]*string{
		"email":       &c.Email,
		"given_name":  &c.GivenName,
		"nickname":    &c.Nickname,
		"family_name": &c.FamilyName,
	} {
		v, err := optionalString(raw, key)
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	access, ok := raw["resource_access"]
	if !ok || access == nil {
		return c, nil
	}
	clients, ok := access.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: resource_access is %T", ErrMalformedClaim, access)
	}
	for client, v := range clients {
		entry, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: resource_access.%s is %T", ErrMalformedClaim, client, v)
		}
		rolesRaw, ok := entry["roles"]
		if !ok {
			continue
		}
		list, ok := rolesRaw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: resource_access.%s.roles is %T", ErrMalformedClaim, client, rolesRaw)
		}
		roles := make([]string, 0, len(list))
		for i, r := range list {
			s, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("%w: resource_access.%s.roles[%d] is %T", ErrMalformedClaim, client, i, r)
			}
			roles = append(roles, s)
		}
		c.ResourceRoles[client] = roles
	}
	return c, nil
}

func optionalString(raw map[string]interface{}, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T", ErrMalformedClaim, key, v)
	}
	return strings.TrimSpace(s), nil
}

// FirstName prefers given_name and falls back to nickname.
func (c *Claims) FirstName() string {
	if c.GivenName != "" {
		return c.GivenName
	}
	return c.Nickname
}

// Authorities maps the roles of one client to ROLE_ names, hyphens become underscores.
func (c *Claims) Authorities(clientID string) []string {
	roles := c.ResourceRoles[clientID]
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, "ROLE_"+strings.ReplaceAll(r, "-", "_"))
	}
	return out
}

func (c *Claims) HasRole(clientID, role string) bool {
	for _, r := range c.ResourceRoles[clientID] {
		if r == role {
			return true
		}
	}
	return false
}
