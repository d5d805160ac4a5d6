package transfermarkt

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/go-resty/resty/v2"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type statusError struct {
	url    string
	status int
}

func (e statusError) Error() string {
	return e.url + ": " + http.StatusText(e.status)
}

func retryable(err error) bool {
	var status statusError
	if errors.As(err, &status) {
		return status.status == http.StatusTooManyRequests || status.status >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

type HTTPFetcher struct {
	client *resty.Client

	Retries  int
	Delay    time.Duration
	MaxDelay time.Duration
}

// NewHTTPFetcher sends headers with every request.
func NewHTTPFetcher(headers map[string]string, retries int) *HTTPFetcher {
	return &HTTPFetcher{
		client:   resty.New().SetHeaders(headers).SetTimeout(30 * time.Second),
		Retries:  retries,
		Delay:    time.Second,
		MaxDelay: 20 * time.Second,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	attempts := uint(1)
	if f.Retries > 0 {
		attempts += uint(f.Retries)
	}

	var body string
	err := retry.Do(
		func() error {
			res, err := f.client.R().SetContext(ctx).Get(url)
			if err != nil {
				return err
			}
			if res.IsError() {
				return statusError{url: url, status: res.StatusCode()}
			}
			body = res.String()
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(f.Delay),
		retry.MaxDelay(f.MaxDelay),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			slog.WarnContext(ctx, "fetch failed, retrying", "url", url, "attempt", n+1, "err", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", errors.Wrapf(err, "could not fetch %s", url)
	}
	return body, nil
}

// BrowserFetcher loads pages in a headless browser, for when plain requests
// get blocked.
type BrowserFetcher struct {
	browser *rod.Browser
	headers []string

	// One slot per page that may be open, nil until a fetch needs it
	pages  chan *rod.Page
	create func() (*rod.Page, error)
}

// NewBrowserFetcher connects to the browser at controlURL, or launches one when
// it is empty. size bounds the number of open pages.
func NewBrowserFetcher(controlURL string, headers map[string]string, size int) (*BrowserFetcher, error) {
	browser := rod.New()
	if controlURL != "" {
		browser = browser.ControlURL(controlURL)
	}
	if err := browser.Connect(); err != nil {
		return nil, errors.Wrap(err, "could not connect to browser")
	}

	dict := make([]string, 0, 2*len(headers))
	for k, v := range headers {
		dict = append(dict, k, v)
	}

	f := &BrowserFetcher{
		browser: browser,
		headers: dict,
		pages:   newPageSlots(size),
	}
	f.create = f.newPage
	return f, nil
}

func newPageSlots(size int) chan *rod.Page {
	if size < 1 {
		size = 1
	}
	pages := make(chan *rod.Page, size)
	for i := 0; i < size; i++ {
		pages <- nil
	}
	return pages
}

func (f *BrowserFetcher) newPage() (*rod.Page, error) {
	incognito, err := f.browser.Incognito()
	if err != nil {
		return nil, errors.Wrap(err, "could not open incognito context")
	}
	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, errors.Wrap(err, "could not open page")
	}
	if len(f.headers) > 0 {
		if _, err := page.SetExtraHeaders(f.headers); err != nil {
			page.Close()
			return nil, errors.Wrap(err, "could not set headers")
		}
	}
	return page, nil
}

// acquire waits for a free slot and opens its page on first use. The slot is
// handed back when the page cannot be opened.
func (f *BrowserFetcher) acquire(ctx context.Context) (*rod.Page, error) {
	var page *rod.Page
	select {
	case page = <-f.pages:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if page != nil {
		return page, nil
	}

	page, err := f.create()
	if err != nil {
		f.pages <- nil
		return nil, err
	}
	return page, nil
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	page, err := f.acquire(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "could not fetch %s", url)
	}
	defer func() { f.pages <- page }()

	p := page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return "", errors.Wrapf(err, "could not navigate to %s", url)
	}
	if err := p.WaitLoad(); err != nil {
		return "", errors.Wrapf(err, "could not load %s", url)
	}
	html, err := p.HTML()
	if err != nil {
		return "", errors.Wrapf(err, "could not read %s", url)
	}
	return html, nil
}

// Close waits for running fetches to hand their pages back.
func (f *BrowserFetcher) Close() error {
	for i := 0; i < cap(f.pages); i++ {
		if page := <-f.pages; page != nil {
			page.Close()
		}
	}
	if f.browser == nil {
		return nil
	}
	return f.browser.Close()
}
