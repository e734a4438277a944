//go:generate mockgen -source=storage.go -destination=../mocks/mock_storage.go -package=mock_storage

package storage

import (
	"context"
	"errors"

	"github.com/sidereusnuntius/gosocial/internal/domain"
)

var (
	ErrNotDir    = errors.New("given root is not a directory")
	ErrInternal  = errors.New("internal error")
	ErrNotExist  = errors.New("does not exist")
	ErrMalformed = errors.New("malformed stored data")
)

// PostHandle identifies a stored post. Only the store that returned it knows how to interpret it.
type PostHandle string

type KeyStore interface {
	// PublicKey returns the PEM encoded public key of a user. It fails with ErrNotExist if the user has no key
	// material, and with ErrInternal if the key cannot be read or is corrupt.
	PublicKey(ctx context.Context, username string) (string, error)
}

type UserDirectory interface {
	UserExists(ctx context.Context, username string) (bool, error)
}

type PostStore interface {
	// ListPosts enumerates a user's posts. It fails with ErrNotExist if the user has no outbox at all; a user
	// with an empty outbox gets an empty slice.
	ListPosts(ctx context.Context, username string) ([]PostHandle, error)
	// LoadPost reads and decodes a single post, failing with ErrMalformed if its content cannot be parsed.
	LoadPost(ctx context.Context, handle PostHandle) (domain.Post, error)
}

type Store interface {
	KeyStore
	UserDirectory
	PostStore
	Close() error
}
