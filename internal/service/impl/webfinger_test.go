package impl

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/gosocial/internal/federation"
	"github.com/sidereusnuntius/gosocial/internal/service"
	"github.com/sidereusnuntius/gosocial/internal/storage"
	"go.uber.org/mock/gomock"
)

func TestWebfinger(t *testing.T) {
	s, m := newTestService(t, testConfig("https://social.example/", "example.com"))
	m.users.EXPECT().UserExists(gomock.Any(), "alice").Return(true, nil).Times(2)

	expected := federation.Webfinger{
		Subject: "acct:alice@example.com",
		Links: []federation.WebfingerLink{
			{Rel: "self", Type: "application/activity+json", Href: "https://social.example/users/alice"},
		},
	}

	wf, err := s.Webfinger(ctx, "acct:alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff := cmp.Diff(expected, wf); diff != "" {
		t.Error(diff)
	}

	again, err := s.Webfinger(ctx, "acct:alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff := cmp.Diff(wf, again); diff != "" {
		t.Errorf("repeated resolution differs:\n%s", diff)
	}
}

func TestWebfinger_RejectedBeforeLookup(t *testing.T) {
	cases := []struct {
		name     string
		resource string
	}{
		{"empty", ""},
		{"no scheme", "alice@example.com"},
		{"malformed", "%zz"},
		{"http scheme", "https://example.com/users/alice"},
		{"mailto scheme", "mailto:alice@example.com"},
		{"no at", "acct:alice"},
		{"empty local", "acct:@example.com"},
		{"empty host", "acct:alice@"},
		{"two ats", "acct:alice@evil@example.com"},
		{"trailing at", "acct:alice@example.com@"},
		{"other domain", "acct:alice@other.com"},
		{"domain case differs", "acct:alice@EXAMPLE.COM"},
		{"domain with port", "acct:alice@example.com:443"},
		{"hierarchical form", "acct://alice@example.com"},
		{"query", "acct:alice@example.com?rel=self"},
		{"fragment", "acct:alice@example.com#main"},
		{"traversal local", "acct:..@example.com"},
		{"separator local", "acct:a/b@example.com"},
		{"encoded local", "acct:%2e%2e@example.com"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// No expectations: reaching the user directory fails the test.
			s, _ := newTestService(t, testConfig("https://social.example/", "example.com"))
			if _, err := s.Webfinger(ctx, c.resource); !errors.Is(err, service.ErrNotFound) {
				t.Errorf("expected %q, got %v", service.ErrNotFound, err)
			}
		})
	}
}

func TestWebfinger_DomainMismatch(t *testing.T) {
	s, _ := newTestService(t, testConfig("https://social.example/", "other.com"))
	if _, err := s.Webfinger(ctx, "acct:alice@example.com"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected %q, got %v", service.ErrNotFound, err)
	}
}

func TestWebfinger_Directory(t *testing.T) {
	cases := []struct {
		name     string
		exists   bool
		dirErr   error
		expected error
	}{
		{"unknown user", false, nil, service.ErrNotFound},
		{"directory failure", false, storage.ErrInternal, service.ErrInternal},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, m := newTestService(t, testConfig("https://social.example/", "example.com"))
			m.users.EXPECT().UserExists(gomock.Any(), "alice").Return(c.exists, c.dirErr)

			if _, err := s.Webfinger(ctx, "acct:alice@example.com"); !errors.Is(err, c.expected) {
				t.Errorf("expected %q, got %v", c.expected, err)
			}
		})
	}
}
