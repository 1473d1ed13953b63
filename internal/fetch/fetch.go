// Package fetch retrieves source pages and locates the embedded JSON
// payload modern salary sites ship inside a script tag.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/saswatsam786/raise.info/internal/apperrors"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NextDataID is the script tag Next.js sites embed their page payload
// in. Every source this scraper knows about is a Next.js site.
const NextDataID = "__NEXT_DATA__"

type Fetcher struct {
	client        *http.Client
	logger        *zap.Logger
	respectRobots bool

	mu     sync.Mutex
	robots map[string]*robotstxt.Group
}

func New(timeout time.Duration, respectRobots bool, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:        &http.Client{Timeout: timeout},
		logger:        logger,
		respectRobots: respectRobots,
		robots:        make(map[string]*robotstxt.Group),
	}
}

// Document fetches a page and parses it into a goquery document. All
// failures come back as transport errors for the caller to downgrade
// into a failed attempt.
func (f *Fetcher) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.Transport("invalid url "+rawURL, err)
	}

	if !f.allowedByRobots(u) {
		return nil, apperrors.Transport(fmt.Sprintf("blocked by robots.txt: %s", u.Path), nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.Transport("creating request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.Transport("executing request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Transport(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, apperrors.Transport("decoding response body", err)
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, apperrors.Transport("parsing HTML", err)
	}
	return doc, nil
}

// allowedByRobots checks the host's robots.txt, fetching and caching it
// on first use. Any error fetching or parsing robots.txt allows the
// request; politeness must not block the batch.
func (f *Fetcher) allowedByRobots(u *url.URL) bool {
	if !f.respectRobots {
		return true
	}

	f.mu.Lock()
	group, ok := f.robots[u.Host]
	f.mu.Unlock()

	if !ok {
		group = f.fetchRobots(u)
		f.mu.Lock()
		f.robots[u.Host] = group
		f.mu.Unlock()
	}

	if group == nil {
		return true
	}
	return group.Test(u.Path)
}

func (f *Fetcher) fetchRobots(u *url.URL) *robotstxt.Group {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	resp, err := f.client.Get(robotsURL)
	if err != nil {
		f.logger.Warn("failed to load robots.txt, ignoring", zap.String("url", robotsURL), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		f.logger.Warn("failed to parse robots.txt, ignoring", zap.String("url", robotsURL), zap.Error(err))
		return nil
	}
	return data.FindGroup(userAgent)
}

// NextData returns the raw JSON from the page's __NEXT_DATA__ script
// tag. Absence means the site has no data for this company (or changed
// its structure); callers record it as a failed attempt with that
// reason rather than an error.
func NextData(doc *goquery.Document) (json.RawMessage, error) {
	raw := strings.TrimSpace(doc.Find("script#" + NextDataID).First().Text())
	if raw == "" {
		return nil, apperrors.NoPayload("No __NEXT_DATA__ found")
	}
	return json.RawMessage(raw), nil
}
