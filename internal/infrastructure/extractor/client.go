// Package extractor is the HTTP client of the media-extraction API.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
	"github.com/hszk-dev/cliprelay/internal/domain/repository"
)

const (
	videoDataPath = "/api/hybrid/video_data"
	analyzerPath  = "/api/analyzer/video_extra_data"

	// maxErrorBody bounds how much of a failed response is read for the error message.
	maxErrorBody = 4 << 10
)

// APIError is a non-2xx answer of the extraction API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("extraction API returned status %d", e.StatusCode)
	}
	return e.Detail
}

// ClientConfig holds configuration for the extraction API client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultClientConfig returns a ClientConfig with the timeout the API needs
// for cold links.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 60 * time.Second,
	}
}

// Client calls the extraction API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var (
	_ repository.Extractor     = (*Client)(nil)
	_ repository.VideoAnalyzer = (*Client)(nil)
)

// NewClient creates a new extraction API client.
func NewClient(cfg ClientConfig) *Client {
	return newClientWithHTTPClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
}

// newClientWithHTTPClient is used for dependency injection in tests.
func newClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// minimalJSON is the answer of video_data in minimal mode.
type minimalJSON struct {
	Type      string `json:"type"`
	Platform  string `json:"platform"`
	VideoID   string `json:"video_id"`
	VideoData *struct {
		URL string `json:"nwm_video_url_HQ"`
	} `json:"video_data"`
	ImageData *struct {
		URLs []string `json:"no_watermark_image_list"`
	} `json:"image_data"`
}

// metadataJSON is the subset of the full platform record used for captions.
type metadataJSON struct {
	Author struct {
		UniqueID       string `json:"unique_id"`
		Nickname       string `json:"nickname"`
		FollowerCount  *int64 `json:"follower_count"`
		TotalFavorited *int64 `json:"total_favorited"`
	} `json:"author"`
	Desc       string `json:"desc"`
	Statistics struct {
		DiggCount    int64 `json:"digg_count"`
		CommentCount int64 `json:"comment_count"`
		ShareCount   int64 `json:"share_count"`
		PlayCount    int64 `json:"play_count"`
	} `json:"statistics"`
	Video struct {
		Duration int64 `json:"duration"`
		Width    int   `json:"width"`
		Height   int   `json:"height"`
	} `json:"video"`
	CreateTime int64  `json:"create_time"`
	Region     string `json:"region"`
	Music      *struct {
		Title   string `json:"title"`
		PlayURL struct {
			URLList []string `json:"url_list"`
		} `json:"play_url"`
	} `json:"music"`
}

type extraDataJSON struct {
	FPS    int    `json:"fps"`
	SizeMB string `json:"size_mb"`
}

// Resolve asks for the minimal record of a link: its content ID and media URLs.
func (c *Client) Resolve(ctx context.Context, link string) (*model.Resolution, error) {
	var data *minimalJSON
	if err := c.getVideoData(ctx, link, true, &data); err != nil {
		return nil, err
	}
	if data == nil || data.Type == "" || (data.VideoData == nil && data.ImageData == nil) {
		return nil, model.ErrIncompleteResolution
	}

	res := &model.Resolution{
		ContentID: data.VideoID,
		Platform:  data.Platform,
	}
	switch data.Type {
	case "video":
		res.Kind = model.KindVideo
		if data.VideoData != nil {
			res.VideoURL = data.VideoData.URL
		}
	case "image":
		res.Kind = model.KindPhotoAlbum
		if data.ImageData != nil {
			res.ImageURLs = data.ImageData.URLs
		}
	default:
		res.Kind = model.MediaKind(data.Type)
	}

	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

// FetchMetadata asks for the full record of a link.
func (c *Client) FetchMetadata(ctx context.Context, link string) (*model.Metadata, error) {
	var data *metadataJSON
	if err := c.getVideoData(ctx, link, false, &data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, model.ErrIncompleteResolution
	}

	md := &model.Metadata{
		Author: model.Author{
			UniqueID:       data.Author.UniqueID,
			Nickname:       data.Author.Nickname,
			FollowerCount:  data.Author.FollowerCount,
			TotalFavorited: data.Author.TotalFavorited,
		},
		Description: data.Desc,
		Stats: model.Statistics{
			Likes:    data.Statistics.DiggCount,
			Comments: data.Statistics.CommentCount,
			Shares:   data.Statistics.ShareCount,
			Plays:    data.Statistics.PlayCount,
		},
		DurationMS: data.Video.Duration,
		Width:      data.Video.Width,
		Height:     data.Video.Height,
		CreateTime: data.CreateTime,
		Region:     data.Region,
	}
	if data.Music != nil {
		md.MusicTitle = data.Music.Title
		if len(data.Music.PlayURL.URLList) > 0 {
			md.MusicURL = data.Music.PlayURL.URLList[0]
		}
	}
	return md, nil
}

// Analyze has the API download the video and measure its frame rate and size.
func (c *Client) Analyze(ctx context.Context, videoURL string) (*model.VideoStats, error) {
	body, err := json.Marshal(map[string]string{"url": videoURL})
	if err != nil {
		return nil, fmt.Errorf("marshal analyzer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzerPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create analyzer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var extra extraDataJSON
	if err := c.do(req, &extra); err != nil {
		return nil, err
	}
	return &model.VideoStats{FPS: extra.FPS, SizeMB: extra.SizeMB}, nil
}

func (c *Client) getVideoData(ctx context.Context, link string, minimal bool, out any) error {
	q := url.Values{}
	q.Set("url", link)
	q.Set("minimal", fmt.Sprintf("%t", minimal))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+videoDataPath+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create video_data request: %w", err)
	}

	envelope := struct {
		Data any `json:"data"`
	}{Data: out}
	return c.do(req, &envelope)
}

// do sends req and decodes a 2xx JSON body into out.
// Error bodies carry FastAPI's {"detail": ...} and become an *APIError.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call extraction API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode extraction API response: %w", err)
	}
	return nil
}

// errorDetail extracts the "detail" field, which is a string for handled
// errors and a list for request validation errors.
func errorDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return strings.TrimSpace(string(raw))
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	return string(body.Detail)
}
