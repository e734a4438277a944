package impl

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/gosocial/internal/federation"
	"github.com/sidereusnuntius/gosocial/internal/service"
	"github.com/sidereusnuntius/gosocial/internal/validate"
)

const AcctScheme = "acct"

// Webfinger answers only for acct: handles on the configured domain that name an existing user. Every
// rejection is reported as service.ErrNotFound, whatever stage rejected it.
func (s *AppService) Webfinger(ctx context.Context, resource string) (wf federation.Webfinger, err error) {
	defer func() { observe("webfinger", err) }()

	local, ok := s.parseAcct(resource)
	if !ok {
		log.Debug().Str("resource", resource).Msg("rejected webfinger resource")
		return wf, service.ErrNotFound
	}

	exists, err := s.Users.UserExists(ctx, local)
	if err != nil {
		return wf, handleStorageErr(err, "webfinger", local)
	}
	if !exists {
		return wf, service.ErrNotFound
	}

	return federation.Webfinger{
		Subject: AcctScheme + ":" + local + "@" + s.Identity.Domain,
		Links: []federation.WebfingerLink{
			{
				Rel:  "self",
				Type: federation.ActivityJSON,
				Href: s.Identity.ActorIRI(local).String(),
			},
		},
	}, nil
}

// parseAcct extracts the local part of acct:local@host, requiring host to be this server's domain and local to
// be a valid username.
func (s *AppService) parseAcct(resource string) (local string, ok bool) {
	u, err := url.Parse(resource)
	if err != nil || u.Scheme != AcctScheme || u.Opaque == "" {
		return "", false
	}
	if u.RawQuery != "" || u.Fragment != "" || u.ForceQuery {
		return "", false
	}

	local, host, found := strings.Cut(u.Opaque, "@")
	if !found || local == "" || host == "" || strings.Contains(host, "@") {
		return "", false
	}

	if host != s.Identity.Domain {
		return "", false
	}

	if validate.Username(local) != nil {
		return "", false
	}
	return local, true
}
