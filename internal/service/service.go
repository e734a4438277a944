package service

import (
	"context"
	"errors"

	"github.com/sidereusnuntius/gosocial/internal/federation"
)

var (
	// ErrNotFound means the requested identity does not exist or the request failed validation. The two cases
	// are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrInternal means a storage collaborator failed. Its details are logged, never shown to clients.
	ErrInternal = errors.New("internal error")
)

type Service interface {
	// Actor builds the actor document of a local user from their username and public key.
	Actor(ctx context.Context, username string) (federation.Actor, error)
	// Webfinger resolves an acct: resource on this server's domain to a discovery document pointing at the
	// actor.
	Webfinger(ctx context.Context, resource string) (federation.Webfinger, error)
	// Outbox collects every post of a local user into an ordered collection, newest first.
	Outbox(ctx context.Context, username string) (federation.OrderedCollection, error)
}
