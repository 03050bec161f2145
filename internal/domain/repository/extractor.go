package repository

import (
	"context"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
)

// Extractor resolves share links through the downstream media-extraction API.
type Extractor interface {
	// Resolve returns the stable content ID and media locations for a link.
	Resolve(ctx context.Context, url string) (*model.Resolution, error)

	// FetchMetadata returns the full description used to build captions.
	FetchMetadata(ctx context.Context, url string) (*model.Metadata, error)
}

// VideoAnalyzer measures technical details of a video reachable by URL.
type VideoAnalyzer interface {
	Analyze(ctx context.Context, videoURL string) (*model.VideoStats, error)
}
