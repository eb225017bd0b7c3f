package health

import "context"

// EnginePinger checks search engine availability.
type EnginePinger interface {
	Ping(ctx context.Context) error
}

// MappingFetcher reads index mappings; a successful read proves the index exists.
type MappingFetcher interface {
	GetMapping(ctx context.Context, index string) (map[string][]byte, error)
}
