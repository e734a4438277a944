package conversions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"code.superseriousbusiness.org/activity/streams"
	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/sidereusnuntius/gosocial/internal/domain"
	"github.com/sidereusnuntius/gosocial/internal/storage"
)

var (
	ErrMissingProperty = errors.New("missing property")
	ErrUnsupportedType = errors.New("unsupported object type")
)

// contentObject is satisfied by the ActivityStreams types a post may be stored as.
type contentObject interface {
	vocab.Type
	GetActivityStreamsContent() vocab.ActivityStreamsContentProperty
	GetActivityStreamsPublished() vocab.ActivityStreamsPublishedProperty
}

// ParsePost decodes a stored ActivityStreams Note or Article. Every failure wraps storage.ErrMalformed.
func ParsePost(ctx context.Context, raw []byte) (p domain.Post, err error) {
	var m map[string]any
	if err = json.Unmarshal(raw, &m); err != nil {
		return p, fmt.Errorf("%w: %w", storage.ErrMalformed, err)
	}

	t, err := streams.ToType(ctx, m)
	if err != nil {
		return p, fmt.Errorf("%w: %w", storage.ErrMalformed, err)
	}

	obj, ok := t.(contentObject)
	if !ok || (t.GetTypeName() != streams.ActivityStreamsNoteName && t.GetTypeName() != streams.ActivityStreamsArticleName) {
		return p, fmt.Errorf("%w: %w: %s", storage.ErrMalformed, ErrUnsupportedType, t.GetTypeName())
	}

	if id := obj.GetJSONLDId(); id != nil && id.IsIRI() {
		p.ID = id.Get()
	}

	content := obj.GetActivityStreamsContent()
	if content == nil || content.Len() == 0 || !content.Begin().IsXMLSchemaString() {
		return domain.Post{}, fmt.Errorf("%w: %w: content", storage.ErrMalformed, ErrMissingProperty)
	}
	p.Content = content.Begin().GetXMLSchemaString()

	if published := obj.GetActivityStreamsPublished(); published != nil && published.IsXMLSchemaDateTime() {
		p.Published = published.Get()
	}

	return p, nil
}
