package federation

import (
	"time"
)

const (
	ActivityStreamsContext = "https://www.w3.org/ns/activitystreams"
	SecurityContext        = "https://w3id.org/security/v1"

	ActivityJSON = "application/activity+json"
	JRDJSON      = "application/jrd+json"

	PersonType            = "Person"
	NoteType              = "Note"
	OrderedCollectionType = "OrderedCollection"

	MainKeyFragment = "main-key"
)

// ActorContext is the JSON-LD context of actor documents.
var ActorContext = []string{ActivityStreamsContext, SecurityContext}

type PublicKey struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

type Actor struct {
	Context           []string  `json:"@context"`
	Type              string    `json:"type"`
	ID                string    `json:"id"`
	PreferredUsername string    `json:"preferredUsername"`
	Inbox             string    `json:"inbox"`
	Outbox            string    `json:"outbox,omitempty"`
	PublicKey         PublicKey `json:"publicKey"`
}

type WebfingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

type Webfinger struct {
	Subject string          `json:"subject"`
	Links   []WebfingerLink `json:"links"`
}

// Note is a post as it appears inside an outbox.
type Note struct {
	Type         string     `json:"type"`
	ID           string     `json:"id,omitempty"`
	AttributedTo string     `json:"attributedTo,omitempty"`
	Content      string     `json:"content"`
	Published    *time.Time `json:"published,omitempty"`
}

type OrderedCollection struct {
	Context      string `json:"@context"`
	ID           string `json:"id,omitempty"`
	Type         string `json:"type"`
	TotalItems   int    `json:"totalItems"`
	OrderedItems []Note `json:"orderedItems"`
}
