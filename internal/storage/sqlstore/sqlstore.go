// Package sqlstore serves users' keys and posts from a SQLite database whose schema lives in the migrations
// folder.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/gosocial/internal/conversions"
	"github.com/sidereusnuntius/gosocial/internal/domain"
	"github.com/sidereusnuntius/gosocial/internal/storage"
	"github.com/sidereusnuntius/gosocial/internal/utils"
)

type sqlStore struct {
	db *sql.DB
}

func New(d *sql.DB) storage.Store {
	return &sqlStore{db: d}
}

// HandleError takes a database error and returns a storage error that hides the implementation details.
// Context errors are passed through so callers can tell an abandoned request from a broken database.
func (s *sqlStore) HandleError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return storage.ErrNotExist
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		log.Error().Err(err).Msg("database error")
		return storage.ErrInternal
	}
}

func (s *sqlStore) PublicKey(ctx context.Context, username string) (string, error) {
	var key sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT public_key FROM users WHERE username = ?", username).Scan(&key)
	if err != nil {
		return "", s.HandleError(err)
	}

	if !key.Valid || key.String == "" {
		return "", storage.ErrNotExist
	}

	if err = utils.CheckPublicKeyPem(key.String); err != nil {
		log.Error().Err(err).Str("user", username).Msg("corrupt public key")
		return "", storage.ErrInternal
	}
	return key.String, nil
}

func (s *sqlStore) UserExists(ctx context.Context, username string) (exists bool, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT TRUE FROM users WHERE username = ?)", username).Scan(&exists)
	return exists, s.HandleError(err)
}

// ListPosts returns the ids of the user's posts. Every existing user has an outbox, possibly empty.
func (s *sqlStore) ListPosts(ctx context.Context, username string) ([]storage.PostHandle, error) {
	exists, err := s.UserExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, storage.ErrNotExist
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM posts WHERE username = ? ORDER BY id", username)
	if err != nil {
		return nil, s.HandleError(err)
	}
	defer rows.Close()

	handles := []storage.PostHandle{}
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, s.HandleError(err)
		}
		handles = append(handles, storage.PostHandle(strconv.FormatInt(id, 10)))
	}
	return handles, s.HandleError(rows.Err())
}

// LoadPost decodes the stored object. Posts whose object carries no published date are dated by the time the
// row was created.
func (s *sqlStore) LoadPost(ctx context.Context, handle storage.PostHandle) (p domain.Post, err error) {
	id, err := strconv.ParseInt(string(handle), 10, 64)
	if err != nil {
		return p, storage.ErrNotExist
	}

	var raw string
	var created int64
	err = s.db.QueryRowContext(ctx, "SELECT raw_json, created FROM posts WHERE id = ?", id).Scan(&raw, &created)
	if err != nil {
		return p, s.HandleError(err)
	}

	if p, err = conversions.ParsePost(ctx, []byte(raw)); err != nil {
		return
	}
	if p.Published.IsZero() {
		p.Published = time.Unix(created, 0).UTC()
	}
	p.Handle = string(handle)
	return
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
