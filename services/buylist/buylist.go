// Package buylist scrapes the buy-side PSA10 purchase price tables and
// parses them into card rows keyed by set code and name.
package buylist

import (
	"bytes"
	"context"
	"net/http/cookiejar"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cardarb-backend/lib/cardtext"
	"cardarb-backend/lib/htmlutil"
	"cardarb-backend/lib/telemetry"
	"cardarb-backend/services/cards"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/buylist")

type Client struct {
	http *resty.Client
	url  string
}

func NewClient(pageUrl string) (*Client, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "buylist/http")

	return &Client{http: client, url: pageUrl}, nil
}

// Fetch downloads the buylist page and parses every price table on it.
func (c *Client) Fetch(ctx context.Context) ([]cards.Record, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch buylist page")
		return nil, err
	}

	rows, err := ParseTables(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse buylist tables")
		return nil, err
	}

	span.SetAttributes(attribute.Int("rows", len(rows)))
	return rows, nil
}

// CleanPrice converts a displayed buy price like "¥12,000円" to an integer.
// Unparseable prices become 0 and the row is dropped by the caller.
func CleanPrice(price string) int {
	cleaned := strings.NewReplacer("¥", "", ",", "", "円", "").Replace(price)
	n, err := strconv.Atoi(strings.TrimSpace(cleaned))
	if err != nil {
		return 0
	}
	return n
}

var headerKeywords = []string{"弾", "Ｎｏ", "No", "レア", "カード名", "買取金額", "更新"}

var numberColRegex = regexp.MustCompile(`^\d+/\d+`)

func isHeaderRow(cellTexts []string) bool {
	joined := strings.Join(cellTexts, " ")
	for _, kw := range headerKeywords {
		if strings.Contains(joined, kw) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseTables walks every table on the page. Rows come in three shapes:
// a full 6-cell row [set, no, rarity, name, price, date], a 5-cell row
// missing either the set or the date, and a single-cell set-name row whose
// value carries over to the following rows.
func ParseTables(body []byte) ([]cards.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	var out []cards.Record
	currentSetName := ""

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cellTexts []string
			row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cellTexts = append(cellTexts, htmlutil.CleanText(htmlutil.Text(cell)))
			})

			if len(cellTexts) == 1 {
				name := cellTexts[0]
				if name != "" && !strings.ContainsAny(name, "¥円/") {
					currentSetName = name
				}
				return
			}
			// anything besides the 6 and 5-cell layouts is a layout
			// drift, mapping columns by position would mangle it
			if len(cellTexts) < 5 || len(cellTexts) > 6 || isHeaderRow(cellTexts) {
				return
			}

			var setName, no, rarity, cardName, price, updateDate string
			switch {
			case len(cellTexts) == 6:
				setName = cellTexts[0]
				if setName == "" {
					setName = currentSetName
				}
				no, rarity, cardName, price, updateDate =
					cellTexts[1], cellTexts[2], cellTexts[3], cellTexts[4], cellTexts[5]
			default:
				// the leading cell is the number when it looks like one,
				// otherwise it is the set name and the date column is absent
				if numberColRegex.MatchString(cellTexts[0]) || isDigits(cellTexts[0]) {
					setName = currentSetName
					no, rarity, cardName, price, updateDate =
						cellTexts[0], cellTexts[1], cellTexts[2], cellTexts[3], cellTexts[4]
				} else {
					setName = cellTexts[0]
					if setName == "" {
						setName = currentSetName
					}
					no, rarity, cardName, price =
						cellTexts[1], cellTexts[2], cellTexts[3], cellTexts[4]
				}
			}

			if cardName == "" || !strings.Contains(price, "¥") {
				return
			}
			priceInt := CleanPrice(price)
			if priceInt == 0 {
				return
			}

			code := no
			if code == "" {
				code = cardtext.ExtractCode(cardName)
			}

			out = append(out, cards.Record{
				No:         no,
				Code:       code,
				Name:       cardName,
				Rarity:     rarity,
				SetName:    setName,
				BuyPrice:   priceInt,
				UpdateDate: updateDate,
			})
		})
	})

	return out, nil
}
