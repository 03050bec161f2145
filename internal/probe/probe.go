// Package probe measures technical details of video files with ffprobe.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
	"github.com/hszk-dev/cliprelay/internal/domain/repository"
)

// FFprobeConfig holds configuration for the ffprobe analyzer.
type FFprobeConfig struct {
	// FFprobePath is the path to the ffprobe binary.
	// If empty, "ffprobe" will be used (assumes it's in PATH).
	FFprobePath string

	// TempDir is where videos are downloaded before probing.
	// Default: os.TempDir()
	TempDir string

	// DownloadTimeout bounds fetching the video.
	// Default: 2m
	DownloadTimeout time.Duration
}

// DefaultFFprobeConfig returns an FFprobeConfig with production-ready defaults.
func DefaultFFprobeConfig() FFprobeConfig {
	return FFprobeConfig{
		FFprobePath:     "ffprobe",
		TempDir:         os.TempDir(),
		DownloadTimeout: 2 * time.Minute,
	}
}

// FFprobeAnalyzer implements repository.VideoAnalyzer by downloading the
// video and running the ffprobe CLI on it.
type FFprobeAnalyzer struct {
	config     FFprobeConfig
	httpClient *http.Client
}

// Compile-time verification that FFprobeAnalyzer implements VideoAnalyzer.
var _ repository.VideoAnalyzer = (*FFprobeAnalyzer)(nil)

// NewFFprobeAnalyzer creates a new ffprobe-based analyzer.
func NewFFprobeAnalyzer(cfg FFprobeConfig) *FFprobeAnalyzer {
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &FFprobeAnalyzer{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.DownloadTimeout},
	}
}

// Analyze downloads videoURL to a temporary file and probes it.
func (a *FFprobeAnalyzer) Analyze(ctx context.Context, videoURL string) (*model.VideoStats, error) {
	path, size, err := a.download(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}
	defer func() { _ = os.Remove(path) }()

	fps, err := a.ProbeFrameRate(ctx, path)
	if err != nil {
		return nil, err
	}

	return &model.VideoStats{
		FPS:    fps,
		SizeMB: formatSize(size),
	}, nil
}

// ProbeFrameRate returns the rounded frame rate of the first video stream in inputPath.
func (a *FFprobeAnalyzer) ProbeFrameRate(ctx context.Context, inputPath string) (int, error) {
	if err := validateInput(inputPath); err != nil {
		return 0, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.config.FFprobePath, buildFFprobeArgs(inputPath)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("probe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("ffprobe execution failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseFrameRate(stdout.Bytes())
}

// download stores the body of videoURL in a temp file and returns its path and size.
func (a *FFprobeAnalyzer) download(ctx context.Context, videoURL string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	file, err := os.CreateTemp(a.config.TempDir, "cliprelay-*.mp4")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}

	size, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(file.Name())
		return "", 0, fmt.Errorf("write temp file: %w", err)
	}

	return file.Name(), size, nil
}

// validateInput checks if the input file exists and is a regular file.
func validateInput(inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", inputPath)
		}
		return fmt.Errorf("failed to access input file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("input path is a directory, expected a file: %s", inputPath)
	}

	return nil
}

// buildFFprobeArgs constructs the ffprobe command arguments.
func buildFFprobeArgs(inputPath string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "json",
		inputPath,
	}
}

// parseFrameRate reads r_frame_rate ("30000/1001") from ffprobe's JSON output.
// A zero denominator yields 0.
func parseFrameRate(output []byte) (int, error) {
	var probe struct {
		Streams []struct {
			RFrameRate string `json:"r_frame_rate"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return 0, fmt.Errorf("no video stream found")
	}

	numStr, denStr, ok := strings.Cut(probe.Streams[0].RFrameRate, "/")
	if !ok {
		denStr = "1"
	}
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", probe.Streams[0].RFrameRate, err)
	}
	den, err := strconv.Atoi(denStr)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", probe.Streams[0].RFrameRate, err)
	}
	if den == 0 {
		return 0, nil
	}

	return int(math.RoundToEven(float64(num) / float64(den))), nil
}

// formatSize renders a byte count as megabytes with two decimals.
func formatSize(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}
