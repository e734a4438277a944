package domain

import (
	"net/url"
	"time"
)

// Post is one unit of content published by a local user.
type Post struct {
	// Handle is the storage key of the post. It is opaque outside the store that issued it.
	Handle string
	// ID is the post's IRI, if the stored object declares one.
	ID        *url.URL
	Content   string
	Published time.Time
}
