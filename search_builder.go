package searchkit

import "context"

// SearchBuilder is a fluent builder for typed search queries.
type SearchBuilder[T any] struct {
	repo  *Repository[T]
	index string

	must    []Query
	filter  []Query
	mustNot []Query

	from, size int
}

// In targets another index, alias or pattern instead of the repository default.
func (b *SearchBuilder[T]) In(index string) *SearchBuilder[T] {
	b.index = index
	return b
}

// Where adds an exact-match filter on field.
func (b *SearchBuilder[T]) Where(field string, value any) *SearchBuilder[T] {
	b.filter = append(b.filter, Term(field, value))
	return b
}

// Match adds a full-text condition on field.
func (b *SearchBuilder[T]) Match(field, text string) *SearchBuilder[T] {
	b.must = append(b.must, Match(field, text))
	return b
}

// Phrase adds an exact-phrase condition on field.
func (b *SearchBuilder[T]) Phrase(field, phrase string) *SearchBuilder[T] {
	b.must = append(b.must, MatchPhrase(field, phrase))
	return b
}

// Filter adds an arbitrary non-scoring clause.
func (b *SearchBuilder[T]) Filter(q Query) *SearchBuilder[T] {
	b.filter = append(b.filter, q)
	return b
}

// Not excludes documents matching q.
func (b *SearchBuilder[T]) Not(q Query) *SearchBuilder[T] {
	b.mustNot = append(b.mustNot, q)
	return b
}

// From sets the zero-based offset of the first hit.
func (b *SearchBuilder[T]) From(n int) *SearchBuilder[T] {
	b.from = n
	return b
}

// Limit sets the maximum number of results.
func (b *SearchBuilder[T]) Limit(n int) *SearchBuilder[T] {
	b.size = n
	return b
}

// Query returns the combined clause, or nil when no condition was added.
func (b *SearchBuilder[T]) Query() Query {
	if len(b.must) == 0 && len(b.filter) == 0 && len(b.mustNot) == 0 {
		return nil
	}
	if len(b.must) == 1 && len(b.filter) == 0 && len(b.mustNot) == 0 {
		return b.must[0]
	}
	return Bool{Must: b.must, Filter: b.filter, MustNot: b.mustNot}
}

// Do executes the search and returns typed results.
func (b *SearchBuilder[T]) Do(ctx context.Context) (*SearchResult[T], error) {
	return b.repo.SearchIn(ctx, b.index, SearchRequest{
		Query: b.Query(),
		From:  b.from,
		Size:  b.size,
	})
}

// Count returns the number of documents matching the conditions.
func (b *SearchBuilder[T]) Count(ctx context.Context) (int64, error) {
	return b.repo.CountIn(ctx, b.index, b.Query())
}
