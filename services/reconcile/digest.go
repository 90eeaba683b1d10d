package reconcile

import (
	"context"
	"fmt"
	"net/smtp"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/codes"

	"github.com/jordan-wright/email"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
	Recipient    string `json:"recipient"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && c.Recipient != ""
}

// SendDigest emails the top filtered cards by net profit after a reconcile
// run. At most limit cards are included.
func SendDigest(ctx context.Context, config SmtpConfig, filtered []FilteredCard, limit int) error {
	_, span := tracer.Start(ctx, "SendDigest")
	defer span.End()

	ranked := make([]FilteredCard, len(filtered))
	copy(ranked, filtered)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].NetProfit > ranked[j].NetProfit
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Top %d cards by net profit:\n\n", len(ranked))
	for _, fc := range ranked {
		fmt.Fprintf(&body, "%s %s: buy %d / sell %d / net %d (rate %.1f%%)\n%s\n\n",
			fc.Code, fc.Name, fc.BuyPrice, fc.SellPrice, fc.NetProfit, fc.ProfitRate, fc.ListingURL)
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Card Arbitrage <%s>", config.EmailAddress)
	mail.To = []string{config.Recipient}
	mail.Subject = fmt.Sprintf("Profit digest: %d cards", len(ranked))
	mail.Text = []byte(body.String())

	err := mail.Send(
		fmt.Sprintf("%s:%d", config.Server, config.Port),
		smtp.PlainAuth("", config.EmailAddress, config.Password, config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(fmt.Sprintf("%s:%d", config.Server, config.Port), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send digest email")
		return err
	}
	return nil
}
