package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hxkterminal/taskboard-api/internal/config"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFetcher(baseURL string) *Fetcher {
	return NewFetcher(&config.Config{
		FeedBaseURL:      baseURL,
		FeedUID:          "12345",
		FeedCookie:       "SESSDATA=test",
		FeedUserAgent:    "test-agent",
		FeedReferer:      "https://example.com",
		FeedFetchTimeout: 5 * time.Second,
	}, testLogger())
}

const archivePayload = `{
	"code": 0,
	"data": {
		"items": [
			{
				"type": "DYNAMIC_TYPE_AV",
				"modules": {
					"module_author": {"pub_ts": 1756600000},
					"module_dynamic": {
						"desc": {"text": "new video is up"},
						"major": {
							"type": "MAJOR_TYPE_ARCHIVE",
							"archive": {
								"cover": "https://cdn.example.com/cover.jpg",
								"title": "Episode 12",
								"stat": {"play": "10432", "danmaku": "87"}
							}
						}
					},
					"module_stat": {
						"like": {"count": 321},
						"comment": {"count": 45},
						"forward": {"count": 6}
					}
				}
			}
		]
	}
}`

func TestFetchArchiveEntry(t *testing.T) {
	var gotQuery, gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(archivePayload))
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)

	dynamics, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, dynamics, 1)

	d := dynamics[0]
	require.Equal(t, "https://cdn.example.com/cover.jpg", d.Cover)
	require.Equal(t, "Episode 12", d.Title)
	require.Equal(t, "new video is up", d.Text)
	require.Equal(t, "10432", d.PlayCount)
	require.Equal(t, "87", d.DanmakuCount)
	require.EqualValues(t, 321, d.LikeCount)
	require.EqualValues(t, 45, d.CommentCount)
	require.EqualValues(t, 6, d.ForwardCount)
	require.EqualValues(t, 1756600000, d.PublishTime)

	require.Contains(t, gotQuery, "host_mid=12345")
	require.Contains(t, gotQuery, "type=all")
	require.Equal(t, "SESSDATA=test", gotCookie)
}

func TestFetchOpusWithRichTextFallback(t *testing.T) {
	payload := `{
		"code": 0,
		"data": {
			"items": [
				{
					"type": "DYNAMIC_TYPE_DRAW",
					"modules": {
						"module_author": {"pub_ts": 1756600001},
						"module_dynamic": {
							"desc": {
								"rich_text_nodes": [
									{"text": "part one "},
									{"orig_text": "part two"}
								]
							},
							"major": {
								"type": "MAJOR_TYPE_OPUS",
								"opus": {
									"pics": [{"url": "https://cdn.example.com/pic.png"}]
								}
							}
						},
						"module_stat": {}
					}
				}
			]
		}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	dynamics, err := newTestFetcher(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, dynamics, 1)
	require.Equal(t, "https://cdn.example.com/pic.png", dynamics[0].Cover)
	require.Equal(t, "part one part two", dynamics[0].Text)
}

func TestFetchForwardedEntryUsesOrig(t *testing.T) {
	payload := `{
		"code": 0,
		"data": {
			"items": [
				{
					"type": "DYNAMIC_TYPE_FORWARD",
					"modules": {
						"module_author": {"pub_ts": 1756600002},
						"module_dynamic": {"desc": {"text": "check this out"}},
						"module_stat": {"like": {"count": 1}}
					},
					"orig": {
						"modules": {
							"module_dynamic": {
								"major": {
									"type": "MAJOR_TYPE_ARCHIVE",
									"archive": {"cover": "https://cdn.example.com/orig.jpg", "title": "Original"}
								}
							}
						}
					}
				}
			]
		}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	dynamics, err := newTestFetcher(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, dynamics, 1)
	require.Equal(t, "https://cdn.example.com/orig.jpg", dynamics[0].Cover)
	require.Equal(t, "Original", dynamics[0].Title)
	require.Equal(t, "check this out", dynamics[0].Text)
}

func TestFetchCapsSnapshotSize(t *testing.T) {
	payload := `{"code": 0, "data": {"items": [{}, {}, {}, {}, {}, {}, {}, {}]}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	dynamics, err := newTestFetcher(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, dynamics, 5)
}

func TestFetchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": -352, "message": "risk control"}`))
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "-352")
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background())
	require.Error(t, err)
}

func TestFetchNotConfigured(t *testing.T) {
	fetcher := NewFetcher(&config.Config{FeedBaseURL: "https://example.com"}, testLogger())

	_, err := fetcher.Fetch(context.Background())
	require.ErrorIs(t, err, ErrFeedNotConfigured)
}
