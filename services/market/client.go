package market

import (
	"bytes"
	"context"
	"net/http/cookiejar"
	"net/url"
	"time"

	"cardarb-backend/lib/htmlutil"
	"cardarb-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("services/market")

type Client struct {
	baseUrl *url.URL
	http    *resty.Client

	// one limiter paces all searches regardless of caller, the storefront
	// rate-limits by origin not by goroutine
	limiter    *rate.Limiter
	jitter     time.Duration
	retryDelay time.Duration
}

type ClientOptions struct {
	BaseUrl string
	// MinDelay is the guaranteed spacing between searches; Jitter is an
	// additional random sleep on top of it.
	MinDelay   time.Duration
	Jitter     time.Duration
	RetryDelay time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.MinDelay == 0 {
		opts.MinDelay = 1500 * time.Millisecond
	}
	if opts.Jitter == 0 {
		opts.Jitter = 3500 * time.Millisecond
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 15 * time.Second
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "market/http")

	return &Client{
		baseUrl:    baseUrl,
		http:       client,
		limiter:    rate.NewLimiter(rate.Every(opts.MinDelay), 1),
		jitter:     opts.Jitter,
		retryDelay: opts.RetryDelay,
	}, nil
}

func (c *Client) pace(ctx context.Context) error {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return err
	}
	if c.jitter <= 0 {
		return nil
	}
	ms, err := random.IntRange(0, int(c.jitter.Milliseconds())+1)
	if err != nil {
		ms = int(c.jitter.Milliseconds())
	}
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isChallengePage(body []byte) bool {
	return bytes.Contains(body, []byte("Just a moment")) ||
		bytes.Contains(body, []byte("Verify you are human"))
}

// SearchResult carries the parsed listings of one keyword search.
// FallbackImage holds the first product image found on the page; it is only
// meant for searches that failed partway, a matched listing always uses its
// own image.
type SearchResult struct {
	Listings      []CardListing
	FallbackImage string
}

// Search runs one keyword search against the storefront. A challenge
// interstitial with no product anchors triggers a single delayed retry.
func (c *Client) Search(ctx context.Context, keyword string) (SearchResult, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()

	span.SetAttributes(attribute.String("keyword", keyword))

	err := c.pace(ctx)
	if err != nil {
		return SearchResult{}, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("keyword", keyword).
		Get("/product-list")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search request failed")
		return SearchResult{}, err
	}

	result, err := c.parseSearchPage(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse search page")
		return SearchResult{}, err
	}

	// challenge pages appear more often from the second search onward
	if len(result.Listings) == 0 && isChallengePage(res.Body()) {
		span.AddEvent("challenge page detected, retrying")
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			return SearchResult{}, ctx.Err()
		}

		res, err = c.http.R().
			SetContext(ctx).
			SetQueryParam("keyword", keyword).
			Get("/product-list")
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search retry failed")
			// keep the first parse, its fallback image is still usable
			return result, err
		}
		retried, err := c.parseSearchPage(res.Body())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse search page after retry")
			return result, err
		}
		result = retried
	}

	span.SetAttributes(attribute.Int("listings", len(result.Listings)))
	return result, nil
}

func (c *Client) parseSearchPage(body []byte) (SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return SearchResult{}, err
	}

	var out SearchResult
	seen := map[string]bool{}

	doc.Find("a[href*='/product/']").Each(func(_ int, anchor *goquery.Selection) {
		href := anchor.AttrOr("href", "")
		if href == "" {
			return
		}
		productUrl := htmlutil.AbsoluteURL(c.baseUrl.String(), href)
		if seen[productUrl] {
			return
		}
		seen[productUrl] = true

		image := htmlutil.ListingImage(anchor)
		if image != "" {
			image = htmlutil.AbsoluteURL(c.baseUrl.String(), image)
			if out.FallbackImage == "" {
				out.FallbackImage = image
			}
		}

		fullText := htmlutil.CleanText(htmlutil.Text(anchor))
		if len([]rune(fullText)) < 5 {
			return
		}
		price, ok := ParsePrice(fullText)
		if !ok {
			return
		}

		inStock, quantity := ParseStockText(fullText)
		out.Listings = append(out.Listings, CardListing{
			Name:     listingName(fullText),
			Price:    price,
			InStock:  inStock,
			Quantity: quantity,
			URL:      productUrl,
			ImageURL: image,
		})
	})

	return out, nil
}
