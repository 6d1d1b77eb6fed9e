package services

import (
	"context"

	"github.com/desertthunder/mixfeed/internal/models"
)

// Service fetches pages of the paginated track feed.
type Service interface {
	// FetchPage retrieves the given 1-based page.
	FetchPage(ctx context.Context, page int) (*models.FeedPage, error)

	// Name returns a short label used in log output.
	Name() string
}

var _ Service = (*FeedClient)(nil)
