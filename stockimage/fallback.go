package stockimage

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Fallback asks each provider in turn; the first non-empty URL wins
type Fallback struct {
	providers []Searcher
}

func NewFallback(providers ...Searcher) *Fallback {
	return &Fallback{providers: providers}
}

// Search returns "" with a nil error when every provider answered but none matched.
// Provider errors only surface when no provider produced a URL.
func (f *Fallback) Search(ctx context.Context, query string) (string, error) {
	var errs []error
	for _, p := range f.providers {
		url, err := p.Search(ctx, query)
		if err != nil {
			log.Printf("Image search via %v failed for %q: %v", p, query, err)
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if url != "" {
			return url, nil
		}
	}
	if len(errs) == len(f.providers) && len(errs) > 0 {
		return "", fmt.Errorf("all image providers failed: %w", errors.Join(errs...))
	}
	return "", nil
}
