package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/gosocial/internal/storage"
	"github.com/sidereusnuntius/gosocial/internal/utils"
)

var store storage.Store
var root string
var pubKey string
var ctx = context.Background()

func TestMain(m *testing.M) {
	var err error
	root, err = os.MkdirTemp("", "filestore")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup tests")
		return
	}

	if pubKey, _, err = utils.GenerateKeysPem(1024); err != nil {
		log.Fatal().Err(err).Msg("failed to generate keys")
	}

	files := map[string]string{
		"users/alice/public.pem":        pubKey,
		"users/alice/posts/1.json":      `{"type": "Note", "content": "first"}`,
		"users/alice/posts/2.json":      `{"type": "Note", "content": "second"}`,
		"users/alice/posts/notes.txt":   "ignored",
		"users/alice/posts/broken.json": `{"type": "Note"`,
		"users/carol/public.pem":        "-----BEGIN PUBLIC KEY-----\ngarbage\n-----END PUBLIC KEY-----\n",
		"users/carol/posts/only.json":   `{"type": "Article", "content": "only"}`,
		"users/dave/posts/.keep":        "",
		"secret.json":                   `{"type": "Note", "content": "outside"}`,
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			log.Fatal().Err(err).Msg("failed to create fixture directory")
		}
		if err = os.WriteFile(p, []byte(content), 0o644); err != nil {
			log.Fatal().Err(err).Msg("failed to write fixture")
		}
	}
	if err = os.MkdirAll(filepath.Join(root, "users", "alice", "posts", "drafts.json"), 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create fixture directory")
	}
	if err = os.MkdirAll(filepath.Join(root, "users", "erin"), 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create fixture directory")
	}

	if store, err = New(root); err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}

	code := m.Run()
	if err = os.RemoveAll(root); err != nil {
		log.Fatal().Err(err).Msg("removal of temporary directory failed")
	}
	os.Exit(code)
}

func TestNew(t *testing.T) {
	if _, err := New(filepath.Join(root, "missing")); !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("expected %q, got %v", storage.ErrNotExist, err)
	}
	if _, err := New(filepath.Join(root, "secret.json")); !errors.Is(err, storage.ErrNotDir) {
		t.Errorf("expected %q, got %v", storage.ErrNotDir, err)
	}
}

func TestPublicKey(t *testing.T) {
	cases := []struct {
		name     string
		username string
		key      string
		err      error
	}{
		{"present", "alice", pubKey, nil},
		{"corrupt", "carol", "", storage.ErrInternal},
		{"no key material", "dave", "", storage.ErrNotExist},
		{"unknown user", "zed", "", storage.ErrNotExist},
		{"traversal", "..", "", storage.ErrNotExist},
		{"separator", "alice/posts", "", storage.ErrNotExist},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			key, err := store.PublicKey(ctx, c.username)
			if c.err != nil {
				if !errors.Is(err, c.err) {
					t.Errorf("expected error %q, got %v", c.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if key != c.key {
				t.Errorf("expected key %q, got %q", c.key, key)
			}
		})
	}
}

func TestUserExists(t *testing.T) {
	cases := map[string]bool{
		"alice":    true,
		"erin":     true,
		"zed":      false,
		"..":       false,
		"../users": false,
		"":         false,
	}

	for name, expected := range cases {
		exists, err := store.UserExists(ctx, name)
		if err != nil {
			t.Errorf("%q: unexpected error: %s", name, err)
			continue
		}
		if exists != expected {
			t.Errorf("%q: expected %t, got %t", name, expected, exists)
		}
	}
}

func TestListPosts(t *testing.T) {
	cases := []struct {
		name     string
		username string
		expected []storage.PostHandle
		err      error
	}{
		{
			name:     "json files only",
			username: "alice",
			expected: []storage.PostHandle{
				"users/alice/posts/1.json",
				"users/alice/posts/2.json",
				"users/alice/posts/broken.json",
			},
		},
		{name: "empty outbox", username: "dave", expected: []storage.PostHandle{}},
		{name: "no outbox", username: "erin", err: storage.ErrNotExist},
		{name: "unknown user", username: "zed", err: storage.ErrNotExist},
		{name: "traversal", username: "..", err: storage.ErrNotExist},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			handles, err := store.ListPosts(ctx, c.username)
			if c.err != nil {
				if !errors.Is(err, c.err) {
					t.Errorf("expected error %q, got %v", c.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
			if diff := cmp.Diff(c.expected, handles); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestLoadPost(t *testing.T) {
	p, err := store.LoadPost(ctx, "users/alice/posts/1.json")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if p.Content != "first" || p.Handle != "users/alice/posts/1.json" {
		t.Errorf("unexpected post %+v", p)
	}

	cases := []struct {
		name   string
		handle storage.PostHandle
		err    error
	}{
		{"malformed", "users/alice/posts/broken.json", storage.ErrMalformed},
		{"missing", "users/alice/posts/3.json", storage.ErrNotExist},
		{"escapes root", "../secret.json", storage.ErrNotExist},
		{"absolute", storage.PostHandle(filepath.Join(root, "secret.json")), storage.ErrNotExist},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := store.LoadPost(ctx, c.handle); !errors.Is(err, c.err) {
				t.Errorf("expected error %q, got %v", c.err, err)
			}
		})
	}
}

func TestCancelledContext(t *testing.T) {
	cctx, cancel := context.WithCancel(ctx)
	cancel()

	if _, err := store.PublicKey(cctx, "alice"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected %q, got %v", context.Canceled, err)
	}
	if _, err := store.ListPosts(cctx, "alice"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected %q, got %v", context.Canceled, err)
	}
}
