// Package chartlinks locates the price-history chart page for each
// profitable card on the reference chart site and remembers the mapping.
package chartlinks

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"regexp"
	"strings"
	"time"

	"cardarb-backend/lib/cardtext"
	"cardarb-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("services/chartlinks")

// NotFoundOnSite marks a card the chart site explicitly reported missing.
// It is a sentinel, not a URL.
const NotFoundOnSite = "NOT_FOUND"

type Client struct {
	baseUrl string
	http    *resty.Client
	limiter *rate.Limiter

	retryDelay time.Duration

	// detail-page slugs: the standard form ends in -NNN-NNN mirroring the
	// printed code; the special form is the code itself slugified, used for
	// promo codes with a letter block after the slash (001/S-P -> 001-s-p)
	stdLinkRegex     *regexp.Regexp
	specialLinkRegex *regexp.Regexp
}

type ClientOptions struct {
	BaseUrl    string
	Delay      time.Duration
	RetryDelay time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Delay == 0 {
		opts.Delay = 1500 * time.Millisecond
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 4 * time.Second
	}
	base := strings.TrimSuffix(opts.BaseUrl, "/")

	client := resty.New()
	client.SetBaseURL(base)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	client.SetHeader("accept-language", "ja,en;q=0.9")
	client.SetTimeout(time.Second * 20)

	telemetry.InstrumentResty(client, "chartlinks/http")

	quoted := regexp.QuoteMeta(base)
	return &Client{
		baseUrl:          base,
		http:             client,
		limiter:          rate.NewLimiter(rate.Every(opts.Delay), 1),
		retryDelay:       opts.RetryDelay,
		stdLinkRegex:     regexp.MustCompile(fmt.Sprintf(`^%s/([a-z0-9]+(?:-[a-z0-9]+)*-\d+-\d+)/?$`, quoted)),
		specialLinkRegex: regexp.MustCompile(fmt.Sprintf(`^%s/(\d+-[a-z0-9]+(?:-[a-z0-9]+)*)/?$`, quoted)),
	}, nil
}

// hasLetterSuffix reports whether the code's block after the slash carries
// letters, e.g. 001/S-P.
func hasLetterSuffix(code string) bool {
	idx := strings.Index(code, "/")
	if idx < 0 {
		return false
	}
	for _, r := range code[idx+1:] {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// extractLink scans a results page for a detail link whose slug encodes the
// target code.
func (c *Client) extractLink(body []byte, code string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return "", false
	}

	expSlug := strings.ToLower(strings.ReplaceAll(code, "/", "-"))
	specialApplies := hasLetterSuffix(code)

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href := strings.TrimSpace(anchor.AttrOr("href", ""))
		if strings.HasPrefix(href, "//") {
			href = "https:" + href
		} else if strings.HasPrefix(href, "/") {
			href = c.baseUrl + href
		}

		if m := c.stdLinkRegex.FindStringSubmatch(href); m != nil {
			parts := strings.Split(m[1], "-")
			numPart := parts[len(parts)-2] + "/" + parts[len(parts)-1]
			if numPart == code {
				found = strings.TrimSuffix(href, "/") + "/"
				return false
			}
		}
		if specialApplies {
			if m := c.specialLinkRegex.FindStringSubmatch(href); m != nil && m[1] == expSlug {
				found = strings.TrimSuffix(href, "/") + "/"
				return false
			}
		}
		return true
	})
	return found, found != ""
}

func pageSaysNotFound(body []byte) bool {
	return bytes.Contains(bytes.ToUpper(body), []byte("NOT FOUND"))
}

func (c *Client) fetchSearch(ctx context.Context, query string) ([]byte, error) {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return nil, err
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("s", query).
		Get("/")
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

// searchOnce runs one query and parses the result, optionally re-issuing the
// search after a delay. The chart site lazily renders results, a second
// identical request often succeeds where the first came back empty.
func (c *Client) searchOnce(ctx context.Context, query, code string, reSearch bool) (link string, notFound bool, err error) {
	body, err := c.fetchSearch(ctx, query)
	if err != nil {
		return "", false, err
	}
	if link, ok := c.extractLink(body, code); ok {
		return link, false, nil
	}
	sawNotFound := pageSaysNotFound(body)

	attempts := 1
	if reSearch {
		attempts = 2
	}
	for i := 0; i < attempts; i++ {
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
		body, err = c.fetchSearch(ctx, query)
		if err != nil {
			return "", false, err
		}
		if link, ok := c.extractLink(body, code); ok {
			return link, false, nil
		}
		sawNotFound = sawNotFound || pageSaysNotFound(body)
	}
	return "", sawNotFound, nil
}

// FindLink searches the chart site for a card's detail page. With a name,
// the queries run in order "code name" then name only (with a re-search
// retry); without one, the code alone is the query. Returns NotFoundOnSite
// when every query misses.
func (c *Client) FindLink(ctx context.Context, code, name string) (string, error) {
	ctx, span := tracer.Start(ctx, "FindLink")
	defer span.End()

	span.SetAttributes(attribute.String("code", code), attribute.String("name", name))

	type attempt struct {
		query    string
		reSearch bool
	}
	var attempts []attempt
	if name != "" {
		searchName := cardtext.NormalizeForSearch(name)
		attempts = []attempt{
			{query: code + " " + searchName},
			{query: searchName, reSearch: true},
		}
	} else {
		attempts = []attempt{{query: code}}
	}

	for _, a := range attempts {
		link, _, err := c.searchOnce(ctx, a.query, code, a.reSearch)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search failed")
			return "", err
		}
		if link != "" {
			return link, nil
		}
	}
	return NotFoundOnSite, nil
}
