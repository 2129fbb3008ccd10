package service

import "context"

// MediaFetcher downloads the bytes behind a transport file locator.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
