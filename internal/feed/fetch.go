package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hxkterminal/taskboard-api/internal/config"
	"github.com/hxkterminal/taskboard-api/internal/constants"
)

// ErrFeedNotConfigured is returned when the vendor cookie or uid is unset.
var ErrFeedNotConfigured = errors.New("feed cookie or uid not configured")

// Dynamic is the flattened projection of one feed entry. Fields that do not
// apply to an entry type are left at their zero value and omitted.
type Dynamic struct {
	Cover        string `json:"cover,omitempty"`
	Title        string `json:"title,omitempty"`
	Text         string `json:"text,omitempty"`
	PlayCount    string `json:"play_count,omitempty"`
	DanmakuCount string `json:"danmaku_count,omitempty"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
	ForwardCount int64  `json:"forward_count"`
	PublishTime  int64  `json:"publish_time"`
}

// Fetcher polls the vendor feed API. The upstream payload is undocumented
// and inconsistently shaped, so every lookup is defensive.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	uid       string
	cookie    string
	userAgent string
	referer   string
	logger    *slog.Logger
}

// NewFetcher creates a Fetcher from configuration.
func NewFetcher(cfg *config.Config, logger *slog.Logger) *Fetcher {
	timeout := cfg.FeedFetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		baseURL:   cfg.FeedBaseURL,
		uid:       cfg.FeedUID,
		cookie:    cfg.FeedCookie,
		userAgent: cfg.FeedUserAgent,
		referer:   cfg.FeedReferer,
		logger:    logger,
	}
}

// Fetch retrieves the latest entries from the vendor API.
func (f *Fetcher) Fetch(ctx context.Context) ([]Dynamic, error) {
	if f.cookie == "" || f.uid == "" {
		return nil, ErrFeedNotConfigured
	}

	u, err := url.Parse(f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url: %w", err)
	}
	q := u.Query()
	q.Set("host_mid", f.uid)
	q.Set("type", "all")
	q.Set("platform", "web")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Cookie", f.cookie)
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Referer", f.referer)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed request failed: status %d", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	if code := asInt64(payload["code"]); code != 0 {
		msg := asString(payload["message"])
		return nil, fmt.Errorf("feed API error: code=%d message=%q", code, msg)
	}

	items := asSlice(asMap(payload["data"])["items"])

	dynamics := make([]Dynamic, 0, constants.FeedSnapshotSize)
	for _, raw := range items {
		if len(dynamics) >= constants.FeedSnapshotSize {
			break
		}
		item := asMap(raw)
		if item == nil {
			continue
		}
		dynamics = append(dynamics, extractDynamic(item))
	}

	return dynamics, nil
}

// extractDynamic flattens one raw feed item.
func extractDynamic(item map[string]any) Dynamic {
	modules := asMap(item["modules"])
	moduleAuthor := asMap(modules["module_author"])
	moduleDynamic := asMap(modules["module_dynamic"])
	moduleStat := asMap(modules["module_stat"])

	// A forwarded entry carries its media in orig; the description stays on
	// the outer entry.
	major := asMap(moduleDynamic["major"])
	if orig := asMap(item["orig"]); orig != nil {
		origDynamic := asMap(asMap(orig["modules"])["module_dynamic"])
		major = asMap(origDynamic["major"])
	}

	majorType := asString(major["type"])
	itemType := asString(item["type"])

	isWord := itemType == "DYNAMIC_TYPE_WORD" || itemType == "17"
	isOpus := majorType == "MAJOR_TYPE_OPUS" || major["opus"] != nil
	isDraw := majorType == "MAJOR_TYPE_DRAW" || itemType == "DYNAMIC_TYPE_DRAW" || itemType == "11"

	d := Dynamic{
		LikeCount:    asInt64(asMap(moduleStat["like"])["count"]),
		CommentCount: asInt64(asMap(moduleStat["comment"])["count"]),
		ForwardCount: asInt64(asMap(moduleStat["forward"])["count"]),
		PublishTime:  asInt64(moduleAuthor["pub_ts"]),
		Text:         extractText(asMap(moduleDynamic["desc"])),
	}

	switch {
	case isWord:
		// text-only entry, no cover
	case isOpus:
		d.Cover = firstPicURL(asSlice(asMap(major["opus"])["pics"]))
		if d.Text == "" {
			summary := asMap(major["opus"])["summary"]
			if s, ok := summary.(string); ok {
				d.Text = s
			} else {
				d.Text = extractText(asMap(summary))
			}
		}
	case isDraw:
		d.Cover = firstPicURL(asSlice(asMap(major["draw"])["items"]))
	default:
		d.Cover, d.Title = mediaCoverTitle(major, majorType)
		stat := mediaStat(major, majorType)
		d.PlayCount = asString(stat["play"])
		d.DanmakuCount = asString(stat["danmaku"])
	}

	return d
}

// mediaCoverTitle handles the media entry types that carry a cover and title
// under the major-type key.
func mediaCoverTitle(major map[string]any, majorType string) (cover, title string) {
	keys := map[string]string{
		"MAJOR_TYPE_ARCHIVE":    "archive",
		"MAJOR_TYPE_PGC":        "pgc",
		"MAJOR_TYPE_LIVE":       "live",
		"MAJOR_TYPE_MUSIC":      "music",
		"MAJOR_TYPE_COURSES":    "courses",
		"MAJOR_TYPE_UGC_SEASON": "ugc_season",
		"MAJOR_TYPE_COMMON":     "common",
	}
	if key, ok := keys[majorType]; ok {
		m := asMap(major[key])
		return asString(m["cover"]), asString(m["title"])
	}
	if majorType == "MAJOR_TYPE_ARTICLE" {
		article := asMap(major["article"])
		covers := asSlice(article["covers"])
		if len(covers) > 0 {
			cover = asString(covers[0])
		}
		return cover, asString(article["title"])
	}
	return "", ""
}

// mediaStat returns the stat block for entry types that expose play counts.
func mediaStat(major map[string]any, majorType string) map[string]any {
	switch majorType {
	case "MAJOR_TYPE_ARCHIVE", "MAJOR_TYPE_PGC", "MAJOR_TYPE_UGC_SEASON":
		key := map[string]string{
			"MAJOR_TYPE_ARCHIVE":    "archive",
			"MAJOR_TYPE_PGC":        "pgc",
			"MAJOR_TYPE_UGC_SEASON": "ugc_season",
		}[majorType]
		return asMap(asMap(major[key])["stat"])
	}
	return nil
}

// extractText pulls the description text, falling back to concatenating
// rich_text_nodes when the plain text field is missing.
func extractText(desc map[string]any) string {
	if desc == nil {
		return ""
	}
	if text := asString(desc["text"]); text != "" {
		return text
	}

	var out string
	for _, raw := range asSlice(desc["rich_text_nodes"]) {
		switch node := raw.(type) {
		case map[string]any:
			if t := asString(node["text"]); t != "" {
				out += t
			} else {
				out += asString(node["orig_text"])
			}
		case string:
			out += node
		}
	}
	return out
}

// firstPicURL returns the URL of the first picture in a list whose elements
// may be objects with several possible URL fields, or bare strings.
func firstPicURL(pics []any) string {
	if len(pics) == 0 {
		return ""
	}
	switch pic := pics[0].(type) {
	case map[string]any:
		for _, key := range []string{"url", "src", "src_small"} {
			if u := asString(pic[key]); u != "" {
				return u
			}
		}
	case string:
		return pic
	}
	return ""
}

// Loose-typed accessors for the vendor payload.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	case json.Number:
		return t.String()
	}
	return ""
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	case json.Number:
		n, _ := t.Int64()
		return n
	}
	return 0
}
