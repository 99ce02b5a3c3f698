package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/magda-reaper-mcp/chart"
	"github.com/Conceptual-Machines/magda-reaper-mcp/config"
	"github.com/Conceptual-Machines/magda-reaper-mcp/metrics"
	"github.com/Conceptual-Machines/magda-reaper-mcp/models"
	"github.com/getsentry/sentry-go"
)

// ErrChartNotFound is returned when no usable chord chart could be found online
var ErrChartNotFound = errors.New("chord chart not found")

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client looks up chord charts on Ultimate Guitar
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.SentryMetrics
}

// NewClient creates a lookup client from config
func NewClient(cfg *config.Config) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.LookupTimeout},
		baseURL:    strings.TrimRight(cfg.UltimateGuitarURL, "/"),
		metrics:    metrics.NewSentryMetrics(),
	}

	log.Printf("🎸 SONG LOOKUP INITIALIZED:")
	log.Printf("   Source: %s", c.baseURL)
	log.Printf("   Timeout: %v", cfg.LookupTimeout)

	return c
}

// LookupSong runs the full pipeline: search, scrape and parse.
//
// BPM precedence is the explicit bpm, then the tempo published with the chart,
// then the genre's typical tempo, then 120. The key comes from the published
// tonality when present and is otherwise detected from the chords.
func (c *Client) LookupSong(ctx context.Context, song, artist string, bpm int, genre string) (*models.SongChart, error) {
	startTime := time.Now()

	url, err := c.SearchUltimateGuitar(ctx, song, artist)
	if err != nil {
		c.metrics.RecordChartLookup(ctx, "ultimate-guitar", time.Since(startTime), false, 0)
		return nil, err
	}

	content, meta, err := c.ScrapeChordPage(ctx, url)
	if err != nil {
		c.metrics.RecordChartLookup(ctx, "ultimate-guitar", time.Since(startTime), false, 0)
		return nil, err
	}

	if bpm <= 0 {
		bpm = meta.BPM
	}
	if bpm <= 0 && genre != "" {
		bpm = chart.EstimateTempo(genre)
	}

	songChart := chart.ParseChordChart(content, chart.Options{
		Title:  song,
		Artist: artist,
		BPM:    bpm,
		Key:    meta.Tonality,
	})

	log.Printf("✅ CHART FOUND: %q by %s (%d sections, key %s, %d BPM) in %v",
		song, artist, len(songChart.Sections), songChart.Key, songChart.BPM, time.Since(startTime))
	c.metrics.RecordChartLookup(ctx, "ultimate-guitar", time.Since(startTime), true, len(songChart.Sections))

	return songChart, nil
}

// fetchPage GETs url and returns the body of a 200 response
func (c *Client) fetchPage(ctx context.Context, url string) (string, error) {
	span := sentry.StartSpan(ctx, "http.client")
	span.Description = "GET " + url
	defer span.Finish()

	req, err := http.NewRequestWithContext(span.Context(), http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.Status = sentry.SpanStatusUnavailable
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		span.Status = sentry.SpanStatusNotFound
		return "", fmt.Errorf("HTTP error fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	span.Status = sentry.SpanStatusOK
	return string(body), nil
}
