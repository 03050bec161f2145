package model

import "errors"

var (
	ErrIncompleteResolution = errors.New("extraction API returned incomplete data")
	ErrUnsupportedContent   = errors.New("unsupported content type")
)

// Resolution is the minimal answer of the extraction API: a stable content
// identity plus where to fetch the media from.
type Resolution struct {
	ContentID string
	Platform  string
	Kind      MediaKind
	VideoURL  string
	ImageURLs []string
}

// Validate reports whether the resolution carries enough to upload something.
func (r *Resolution) Validate() error {
	if r == nil || r.ContentID == "" {
		return ErrIncompleteResolution
	}
	switch r.Kind {
	case KindVideo:
		if r.VideoURL == "" {
			return ErrIncompleteResolution
		}
	case KindPhotoAlbum:
		if len(r.ImageURLs) == 0 {
			return ErrIncompleteResolution
		}
	default:
		return ErrUnsupportedContent
	}
	return nil
}

// Author describes the creator of a piece of content.
// Follower and like totals are only known when the API enriched the profile.
type Author struct {
	UniqueID       string
	Nickname       string
	FollowerCount  *int64
	TotalFavorited *int64
}

// Statistics are engagement counters of a piece of content.
type Statistics struct {
	Likes    int64
	Comments int64
	Shares   int64
	Plays    int64
}

// Metadata is the full description returned by the extraction API.
type Metadata struct {
	Author      Author
	Description string
	Stats       Statistics
	DurationMS  int64
	Width       int
	Height      int
	CreateTime  int64
	Region      string
	MusicTitle  string
	MusicURL    string
}

// VideoStats are technical details measured on the video file itself.
type VideoStats struct {
	FPS    int
	SizeMB string
}
