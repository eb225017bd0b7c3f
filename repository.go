package searchkit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// IDFunc assigns the ID of the document at ordinal within one Insert call.
// encoded is the document source as it will be sent. Returning "" lets the
// engine assign the ID.
type IDFunc[T any] func(doc T, ordinal int, encoded []byte) string

// ContentHashIDs derives IDs from the SHA-256 of the encoded document plus its
// ordinal, so equal documents at different positions never collide.
func ContentHashIDs[T any]() IDFunc[T] {
	return func(_ T, ordinal int, encoded []byte) string {
		sum := sha256.Sum256(encoded)
		return hex.EncodeToString(sum[:12]) + "_" + strconv.Itoa(ordinal)
	}
}

// UUIDIDs assigns a random UUID to every document.
func UUIDIDs[T any]() IDFunc[T] {
	return func(T, int, []byte) string { return uuid.NewString() }
}

// EngineIDs lets the engine assign every ID.
func EngineIDs[T any]() IDFunc[T] {
	return func(T, int, []byte) string { return "" }
}

// Repository binds a document type to a default index.
type Repository[T any] struct {
	client  *Client
	index   string
	codec   Codec[T]
	ids     IDFunc[T]
	refresh RefreshPolicy
	meta    *schemaMeta // nil when T is not a tagged struct
}

// RepositoryOption configures a Repository.
type RepositoryOption[T any] func(*Repository[T])

// WithCodec replaces the default JSON codec.
func WithCodec[T any](c Codec[T]) RepositoryOption[T] {
	return func(r *Repository[T]) { r.codec = c }
}

// WithIDs replaces the ID strategy.
func WithIDs[T any](f IDFunc[T]) RepositoryOption[T] {
	return func(r *Repository[T]) { r.ids = f }
}

// WithInsertRefresh sets the refresh policy of every Insert.
func WithInsertRefresh[T any](p RefreshPolicy) RepositoryOption[T] {
	return func(r *Repository[T]) { r.refresh = p }
}

// NewRepository returns a Repository for index.
//
// By default a document whose struct carries a `searchkit:",id"` field keeps
// that ID when it is not empty; every other document gets a content-hash ID.
func NewRepository[T any](client *Client, index string, opts ...RepositoryOption[T]) *Repository[T] {
	r := &Repository[T]{
		client: client,
		index:  index,
		codec:  JSONCodec[T]{},
	}
	if meta, err := parseSchema[T](); err == nil {
		r.meta = meta
	}
	for _, o := range opts {
		o(r)
	}
	r.codec = codecOrDefault(r.codec)
	if r.ids == nil {
		r.ids = r.defaultIDs()
	}
	return r
}

func (r *Repository[T]) defaultIDs() IDFunc[T] {
	hash := ContentHashIDs[T]()
	return func(doc T, ordinal int, encoded []byte) string {
		if id := r.meta.idOf(doc); id != "" {
			return id
		}
		return hash(doc, ordinal, encoded)
	}
}

// Index returns the default index.
func (r *Repository[T]) Index() string { return r.index }

// Ensure creates the default index from T's tagged mapping, with an optional
// alias. An existing index is not an error.
func (r *Repository[T]) Ensure(ctx context.Context, alias string) error {
	var m *Mapping
	if r.meta != nil {
		m = r.meta.mapping()
	}
	res, err := r.client.Indices().CreateWithMapping(ctx, IndexCoordinates{Name: r.index, Alias: alias}, m)
	if err != nil {
		return fmt.Errorf("ensure %q: %w", r.index, err)
	}
	switch v := res.(type) {
	case *IndexSuccess:
		return nil
	case *IndexError:
		if errors.Is(&v.Failure, ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("ensure %q: %w", r.index, &v.Failure)
	default:
		return fmt.Errorf("ensure %q: unexpected result %T", r.index, res)
	}
}

// Insert indexes docs into the default index.
func (r *Repository[T]) Insert(ctx context.Context, docs []T) ([]BulkResponseItem, error) {
	return r.InsertInto(ctx, r.index, docs)
}

// InsertInto indexes docs into index in one bulk call. Items come back in
// submission order and may individually have failed; a *BulkError is
// returned only when the call as a whole failed.
func (r *Repository[T]) InsertInto(ctx context.Context, index string, docs []T) ([]BulkResponseItem, error) {
	envelopes := make([]Document[[]byte], len(docs))
	for i, doc := range docs {
		src, err := r.codec.Encode(doc)
		if err != nil {
			f := classify(fmt.Errorf("encode document %d: %w", i, err))
			return nil, &BulkError{DocumentCount: len(docs), Failure: *f}
		}
		envelopes[i] = Document[[]byte]{ID: r.ids(doc, i, src), Payload: src}
	}

	res := BulkUpsert[[]byte](ctx, r.client, index, envelopes, encodedCodec{}, WithRefresh(r.refresh))
	switch v := res.(type) {
	case *BulkSuccess:
		return v.Items, nil
	case *BulkError:
		return nil, v
	default:
		return nil, fmt.Errorf("searchkit: unexpected bulk result %T", res)
	}
}

// Search queries the default index.
func (r *Repository[T]) Search(ctx context.Context, req SearchRequest) (*SearchResult[T], error) {
	return r.SearchIn(ctx, r.index, req)
}

// SearchIn queries index, which may be an alias or pattern.
func (r *Repository[T]) SearchIn(ctx context.Context, index string, req SearchRequest) (*SearchResult[T], error) {
	return Search(ctx, r.client, index, req, r.codec)
}

// Count counts documents of the default index matching q.
func (r *Repository[T]) Count(ctx context.Context, q Query) (int64, error) {
	return r.CountIn(ctx, r.index, q)
}

// CountIn counts documents of index matching q.
func (r *Repository[T]) CountIn(ctx context.Context, index string, q Query) (int64, error) {
	return r.client.Count(ctx, index, q)
}

// Query returns a fluent search builder over the default index.
func (r *Repository[T]) Query() *SearchBuilder[T] {
	return &SearchBuilder[T]{repo: r, index: r.index}
}

// encodedCodec passes already encoded sources through.
type encodedCodec struct{}

func (encodedCodec) Encode(src []byte) ([]byte, error) { return src, nil }
func (encodedCodec) Decode(src []byte) ([]byte, error) { return src, nil }
