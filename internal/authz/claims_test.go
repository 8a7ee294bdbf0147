package authz

import (
	"errors"
	"reflect"
	"testing"
)

func TestFromMapFull(t *testing.T) {
	raw := map[string]interface{}{
		"sub":         "abc-123",
		"email":       "ana@example.com",
		"given_name":  "Ana",
		"family_name": "Lopez",
		"resource_access": map[string]interface{}{
			"account": map[string]interface{}{
				"roles": []interface{}{"manage-account", "view-profile"},
			},
		},
	}
	c, err := FromMap(raw)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if c.Subject != "abc-123" || c.Email != "ana@example.com" || c.FirstName() != "Ana" || c.FamilyName != "Lopez" {
		t.Fatalf("unexpected claims: %+v", c)
	}
	want := []string{"ROLE_manage_account", "ROLE_view_profile"}
	if got := c.Authorities("account"); !reflect.DeepEqual(got, want) {
		t.Fatalf("authorities: got %v want %v", got, want)
	}
	if !c.HasRole("account", "view-profile") || c.HasRole("account", "admin") {
		t.Fatalf("HasRole mismatch")
	}
}

func TestFromMapNicknameFallback(t *testing.T) {
	c, err := FromMap(map[string]interface{}{"sub": "x", "nickname": "nick"})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if c.FirstName() != "nick" {
		t.Fatalf("expected nickname fallback, got %q", c.FirstName())
	}
	if len(c.Authorities("account")) != 0 {
		t.Fatalf("expected no authorities without resource_access")
	}
}

func TestFromMapErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]interface{}
		want error
	}{
		{"no sub", map[string]interface{}{"email": "a@b.c"}, ErrMissingClaim},
		{"empty sub", map[string]interface{}{"sub": "  "}, ErrMissingClaim},
		{"sub not string", map[string]interface{}{"sub": 42.0}, ErrMalformedClaim},
		{"email not string", map[string]interface{}{"sub": "x", "email": []interface{}{"a"}}, ErrMalformedClaim},
		{"resource_access not map", map[string]interface{}{"sub": "x", "resource_access": "nope"}, ErrMalformedClaim},
		{"client not map", map[string]interface{}{"sub": "x", "resource_access": map[string]interface{}{"account": 1.0}}, ErrMalformedClaim},
		{"roles not list", map[string]interface{}{"sub": "x", "resource_access": map[string]interface{}{
			"account": map[string]interface{}{"roles": "admin"},
		}}, ErrMalformedClaim},
		{"role not string", map[string]interface{}{"sub": "x", "resource_access": map[string]interface{}{
			"account": map[string]interface{}{"roles": []interface{}{true}},
		}}, ErrMalformedClaim},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromMap(tc.raw)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
