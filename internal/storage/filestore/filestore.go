package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/gosocial/internal/conversions"
	"github.com/sidereusnuntius/gosocial/internal/domain"
	"github.com/sidereusnuntius/gosocial/internal/storage"
	"github.com/sidereusnuntius/gosocial/internal/utils"
	"github.com/sidereusnuntius/gosocial/internal/validate"
)

const (
	UsersDir = "users"
	PostsDir = "posts"
	KeyFile  = "public.pem"
	PostExt  = ".json"
)

// FileStore serves users' keys and posts from a directory tree:
//
//	<root>/users/<username>/public.pem
//	<root>/users/<username>/posts/<post>.json
//
// A user exists if and only if their directory exists.
type FileStore struct {
	Root string
}

func New(root string) (store storage.Store, err error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Error().Str("root", root).Msg("storage root does not exist")
			return nil, storage.ErrNotExist
		}
		log.Error().Err(err).Msg("internal error when setting up storage")
		return nil, storage.ErrInternal
	}

	if !info.IsDir() {
		log.Error().Str("root", root).Msg("not a directory")
		return nil, storage.ErrNotDir
	}

	return &FileStore{Root: root}, nil
}

func (s *FileStore) userDir(username string) (string, error) {
	if err := validate.Username(username); err != nil {
		return "", storage.ErrNotExist
	}
	return filepath.Join(s.Root, UsersDir, username), nil
}

func (s *FileStore) PublicKey(ctx context.Context, username string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir, err := s.userDir(username)
	if err != nil {
		return "", err
	}

	p := filepath.Join(dir, KeyFile)
	content, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", storage.ErrNotExist
		}
		log.Error().Err(err).Str("path", p).Msg("failed to read public key")
		return "", storage.ErrInternal
	}

	key := string(content)
	if err = utils.CheckPublicKeyPem(key); err != nil {
		log.Error().Err(err).Str("path", p).Msg("corrupt public key")
		return "", storage.ErrInternal
	}
	return key, nil
}

func (s *FileStore) UserExists(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	dir, err := s.userDir(username)
	if err != nil {
		return false, nil
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil:
		return info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		log.Error().Err(err).Str("path", dir).Msg("failed to stat user directory")
		return false, storage.ErrInternal
	}
}

// ListPosts returns one handle per .json file in the user's posts directory. Handles are slash separated
// paths relative to the store's root.
func (s *FileStore) ListPosts(ctx context.Context, username string) ([]storage.PostHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := s.userDir(username)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(dir, PostsDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotExist
		}
		log.Error().Err(err).Str("user", username).Msg("failed to list posts")
		return nil, storage.ErrInternal
	}

	handles := make([]storage.PostHandle, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), PostExt) {
			continue
		}
		handles = append(handles, storage.PostHandle(path.Join(UsersDir, username, PostsDir, e.Name())))
	}
	return handles, nil
}

func (s *FileStore) LoadPost(ctx context.Context, handle storage.PostHandle) (p domain.Post, err error) {
	if err = ctx.Err(); err != nil {
		return
	}

	rel := filepath.FromSlash(string(handle))
	if !filepath.IsLocal(rel) {
		return p, storage.ErrNotExist
	}

	full := filepath.Join(s.Root, rel)
	content, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, storage.ErrNotExist
		}
		log.Error().Err(err).Str("path", full).Msg("failed to read post")
		return p, storage.ErrInternal
	}

	if p, err = conversions.ParsePost(ctx, content); err != nil {
		return
	}
	p.Handle = string(handle)
	return
}

func (s *FileStore) Close() error {
	return nil
}
