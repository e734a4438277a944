package impl

import (
	"context"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/gosocial/internal/federation"
	"github.com/sidereusnuntius/gosocial/internal/service"
	"github.com/sidereusnuntius/gosocial/internal/validate"
)

var keyFragment = &url.URL{Fragment: federation.MainKeyFragment}

func (s *AppService) Actor(ctx context.Context, username string) (a federation.Actor, err error) {
	defer func() { observe("actor", err) }()

	if err = validate.Username(username); err != nil {
		log.Debug().Err(err).Str("user", username).Msg("rejected username")
		return a, service.ErrNotFound
	}

	key, err := s.Keys.PublicKey(ctx, username)
	if err != nil {
		return a, handleStorageErr(err, "actor", username)
	}

	id := s.Identity.ActorIRI(username)
	return federation.Actor{
		Context:           federation.ActorContext,
		Type:              federation.PersonType,
		ID:                id.String(),
		PreferredUsername: username,
		Inbox:             s.Identity.InboxIRI().String(),
		Outbox:            id.JoinPath("outbox").String(),
		PublicKey: federation.PublicKey{
			ID:           id.ResolveReference(keyFragment).String(),
			Owner:        id.String(),
			PublicKeyPem: key,
		},
	}, nil
}
