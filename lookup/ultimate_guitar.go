package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	tabMarkup      = strings.NewReplacer("[ch]", "", "[/ch]", "", "[tab]", "", "[/tab]", "", `\n`, "\n", "\r\n", "\n")
)

// Meta is the song metadata published alongside a chord chart
type Meta struct {
	Tonality string
	BPM      int
}

type searchResult struct {
	URL    string  `json:"url"`
	Type   string  `json:"type"`
	Rating float64 `json:"rating"`
	Votes  int     `json:"votes"`
}

type searchStore struct {
	Store struct {
		Page struct {
			Data struct {
				Results []searchResult `json:"results"`
			} `json:"data"`
		} `json:"page"`
	} `json:"store"`
}

type tabStore struct {
	Store struct {
		Page struct {
			Data struct {
				TabView *struct {
					WikiTab *struct {
						Content string `json:"content"`
					} `json:"wiki_tab"`
					Meta tabMeta `json:"meta"`
				} `json:"tab_view"`
			} `json:"data"`
		} `json:"page"`
	} `json:"store"`
}

type tabMeta struct {
	Tonality string `json:"tonality"`
	BPM      any    `json:"bpm"`
}

// SearchUltimateGuitar returns the URL of the best rated chord chart for a song
func (c *Client) SearchUltimateGuitar(ctx context.Context, song, artist string) (string, error) {
	query := url.QueryEscape(strings.TrimSpace(artist + " " + song))
	searchURL := fmt.Sprintf("%s/search.php?search_type=title&value=%s", c.baseURL, query)

	html, err := c.fetchPage(ctx, searchURL)
	if err != nil {
		log.Printf("❌ UG SEARCH FAILED: %v", err)
		return "", fmt.Errorf("%w: search for %q by %s: %v", ErrChartNotFound, song, artist, err)
	}

	var store searchStore
	if err := extractStore(html, &store); err != nil {
		return "", fmt.Errorf("%w: search for %q by %s: %v", ErrChartNotFound, song, artist, err)
	}

	chordTabs := make([]searchResult, 0, len(store.Store.Page.Data.Results))
	for _, r := range store.Store.Page.Data.Results {
		if r.Type == "Chords" && r.URL != "" {
			chordTabs = append(chordTabs, r)
		}
	}
	if len(chordTabs) == 0 {
		return "", fmt.Errorf("%w: no chord tabs for %q by %s", ErrChartNotFound, song, artist)
	}

	sort.SliceStable(chordTabs, func(i, j int) bool {
		return chordTabs[i].Rating > chordTabs[j].Rating
	})

	log.Printf("🔍 UG SEARCH: %d chord tabs for %q by %s, best rated %.1f", len(chordTabs), song, artist, chordTabs[0].Rating)
	return chordTabs[0].URL, nil
}

// ScrapeChordPage fetches a chord page and returns its plain chord text and metadata
func (c *Client) ScrapeChordPage(ctx context.Context, pageURL string) (string, Meta, error) {
	html, err := c.fetchPage(ctx, pageURL)
	if err != nil {
		log.Printf("❌ UG SCRAPE FAILED: %v", err)
		return "", Meta{}, fmt.Errorf("%w: %v", ErrChartNotFound, err)
	}

	var store tabStore
	if err := extractStore(html, &store); err != nil {
		return "", Meta{}, fmt.Errorf("%w: %s: %v", ErrChartNotFound, pageURL, err)
	}

	tabView := store.Store.Page.Data.TabView
	if tabView == nil || tabView.WikiTab == nil {
		return "", Meta{}, fmt.Errorf("%w: %s has no chord content", ErrChartNotFound, pageURL)
	}

	return CleanChordContent(tabView.WikiTab.Content), tabView.Meta.toMeta(), nil
}

// CleanChordContent strips HTML tags and chord/tab markup and decodes escaped newlines
func CleanChordContent(content string) string {
	content = htmlTagPattern.ReplaceAllString(content, "")
	return tabMarkup.Replace(content)
}

func (m tabMeta) toMeta() Meta {
	meta := Meta{Tonality: strings.TrimSpace(m.Tonality)}
	switch bpm := m.BPM.(type) {
	case float64:
		meta.BPM = int(bpm)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(bpm), 64); err == nil {
			meta.BPM = int(f)
		}
	}
	if meta.BPM < 0 {
		meta.BPM = 0
	}
	return meta
}

// extractStore decodes the JSON page state held in the js-store div
func extractStore(html string, v any) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	content, ok := doc.Find("div.js-store").Attr("data-content")
	if !ok || content == "" {
		return fmt.Errorf("page state not found")
	}

	if err := json.Unmarshal([]byte(content), v); err != nil {
		return fmt.Errorf("failed to decode page state: %w", err)
	}
	return nil
}
