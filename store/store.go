package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Sentinel errors for the adapter contract. Callers match with errors.Is.
var (
	// ErrNotFound: the document does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrUnavailable: transient backend failure (network, timeout).
	ErrUnavailable = errors.New("store: backend unavailable")
	// ErrInconsistent: a batch could not be applied atomically.
	ErrInconsistent = errors.New("store: batch applied partially")
)

// Document is one stored record: a slash-separated path and named fields.
type Document struct {
	Path string
	Data map[string]any
}

type OpKind int

const (
	// OpSet writes the full document, creating or replacing it.
	OpSet OpKind = iota
	// OpUpdate merges fields into an existing document.
	OpUpdate
	// OpDelete removes the document. Deleting a missing document is a no-op.
	OpDelete
)

// WriteOp is one mutation inside a batch.
type WriteOp struct {
	Kind OpKind
	Path string
	Data map[string]any // full document for Set, changed fields for Update
}

// Snapshot is the full state of a subscribed path at one point in time.
// For a document path Docs holds at most one element; for a collection
// path it holds every document directly under it.
type Snapshot struct {
	Path   string
	Exists bool
	Docs   []Document
}

// Store is the narrow contract the engine consumes. Batches are atomic:
// all ops apply together or none do. Subscribe delivers an immediate
// snapshot followed by one per remote change, until cancelled.
type Store interface {
	Get(ctx context.Context, path string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	QueryWhere(ctx context.Context, collection, field string, equals any) ([]Document, error)
	BatchWrite(ctx context.Context, ops []WriteOp) error
	Subscribe(path string) (*Subscription, error)
}

// Path layout: users/{uid} documents with a users/{uid}/friends/{fid}
// subcollection. A path with an even number of segments addresses a
// document, an odd number a collection.

const UsersCollection = "users"

func UserPath(uid string) string {
	return UsersCollection + "/" + uid
}

func FriendsPath(uid string) string {
	return UserPath(uid) + "/friends"
}

func FriendPath(uid, friendID string) string {
	return FriendsPath(uid) + "/" + friendID
}

// IsCollection reports whether path addresses a collection.
func IsCollection(path string) bool {
	return strings.Count(path, "/")%2 == 0
}

// Collection returns the collection a document path belongs to.
func Collection(docPath string) string {
	i := strings.LastIndex(docPath, "/")
	if i < 0 {
		return ""
	}
	return docPath[:i]
}

// DocID returns the last path segment.
func DocID(path string) string {
	i := strings.LastIndex(path, "/")
	return path[i+1:]
}

// Encode converts a typed value into document fields via JSON.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Decode fills a typed value from document fields.
func Decode(doc Document, out any) error {
	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
