package impl

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/gosocial/internal/domain"
	"github.com/sidereusnuntius/gosocial/internal/federation"
	"github.com/sidereusnuntius/gosocial/internal/service"
	"github.com/sidereusnuntius/gosocial/internal/storage"
	"github.com/sidereusnuntius/gosocial/internal/validate"
	"golang.org/x/sync/errgroup"
)

// Outbox loads every post listed for the user. A post that fails to load fails the whole request; a post that
// disappeared between listing and loading is left out.
func (s *AppService) Outbox(ctx context.Context, username string) (c federation.OrderedCollection, err error) {
	defer func() { observe("outbox", err) }()

	if err = validate.Username(username); err != nil {
		log.Debug().Err(err).Str("user", username).Msg("rejected username")
		return c, service.ErrNotFound
	}

	handles, err := s.Posts.ListPosts(ctx, username)
	if err != nil {
		return c, handleStorageErr(err, "outbox", username)
	}

	posts, err := s.loadPosts(ctx, handles)
	if err != nil {
		return c, handleStorageErr(err, "outbox", username)
	}
	SortPosts(posts)

	actor := s.Identity.ActorIRI(username)
	items := make([]federation.Note, len(posts))
	for i, p := range posts {
		items[i] = toNote(p, actor.String())
	}

	return federation.OrderedCollection{
		Context:      federation.ActivityStreamsContext,
		ID:           actor.JoinPath("outbox").String(),
		Type:         federation.OrderedCollectionType,
		TotalItems:   len(items),
		OrderedItems: items,
	}, nil
}

func (s *AppService) loadPosts(ctx context.Context, handles []storage.PostHandle) ([]domain.Post, error) {
	var mu sync.Mutex
	posts := make([]domain.Post, 0, len(handles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.OutboxConcurrency)
	for _, h := range handles {
		g.Go(func() error {
			p, err := s.Posts.LoadPost(gctx, h)
			if errors.Is(err, storage.ErrNotExist) {
				log.Debug().Str("handle", string(h)).Msg("post vanished before it could be loaded")
				return nil
			}
			if err != nil {
				log.Error().Err(err).Str("handle", string(h)).Msg("failed to load post")
				return err
			}

			mu.Lock()
			posts = append(posts, p)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return posts, nil
}

// SortPosts orders posts newest first. Undated posts come after dated ones, and ties are broken by handle so
// the order never depends on how the store enumerated them.
func SortPosts(posts []domain.Post) {
	slices.SortFunc(posts, func(a, b domain.Post) int {
		switch {
		case a.Published.IsZero() && !b.Published.IsZero():
			return 1
		case !a.Published.IsZero() && b.Published.IsZero():
			return -1
		}
		if c := b.Published.Compare(a.Published); c != 0 {
			return c
		}
		return strings.Compare(a.Handle, b.Handle)
	})
}

func toNote(p domain.Post, actor string) federation.Note {
	n := federation.Note{
		Type:         federation.NoteType,
		AttributedTo: actor,
		Content:      p.Content,
	}
	if p.ID != nil {
		n.ID = p.ID.String()
	}
	if !p.Published.IsZero() {
		published := p.Published.UTC()
		n.Published = &published
	}
	return n
}
