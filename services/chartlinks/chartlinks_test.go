package chartlinks

import (
	"context"
	"testing"

	"cardarb-backend/lib/testutil"
	"cardarb-backend/services/cards"
	"cardarb-backend/services/chartlinks/db"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	client, err := NewClient(ClientOptions{BaseUrl: "https://pokeca-chart.com"})
	require.NoError(t, err)
	return client
}

func TestExtractLinkStandardSlug(t *testing.T) {
	client := newTestClient(t)

	page := []byte(`<html><body>
		<a href="/s6a-093-069/">ゲンガー</a>
		<a href="https://pokeca-chart.com/sv6a-091-064/">カシオペア</a>
		<a href="/about/">about</a>
	</body></html>`)

	link, ok := client.extractLink(page, "091/064")
	require.True(t, ok)
	require.Equal(t, "https://pokeca-chart.com/sv6a-091-064/", link)

	link, ok = client.extractLink(page, "093/069")
	require.True(t, ok)
	require.Equal(t, "https://pokeca-chart.com/s6a-093-069/", link)

	_, ok = client.extractLink(page, "999/999")
	require.False(t, ok)
}

func TestExtractLinkSpecialSlug(t *testing.T) {
	client := newTestClient(t)

	page := []byte(`<html><body>
		<a href="/001-sv-p/">ピカチュウ</a>
	</body></html>`)

	// letter block after the slash switches on the special slug form
	link, ok := client.extractLink(page, "001/SV-P")
	require.True(t, ok)
	require.Equal(t, "https://pokeca-chart.com/001-sv-p/", link)

	// all-numeric codes never match the special form
	_, ok = client.extractLink(page, "001/030")
	require.False(t, ok)
}

func TestHasLetterSuffix(t *testing.T) {
	require.True(t, hasLetterSuffix("001/SV-P"))
	require.True(t, hasLetterSuffix("227/S-P"))
	require.False(t, hasLetterSuffix("091/064"))
	require.False(t, hasLetterSuffix("SV2a"))
}

func TestEntriesFromRecords(t *testing.T) {
	entries := EntriesFromRecords([]cards.Record{
		{Code: "055/050", Name: "ミュウ"},
		{Code: "055/050", Name: "ミュウ"},
		{Code: "055/050", Name: "セレビィ"},
		{Code: "091/064", Name: "カシオペア"},
		{Code: "", Name: "nameless"},
	})
	require.Len(t, entries, 3)

	require.Equal(t, "055/050|セレビィ", entries[0].Key())
	require.Equal(t, "055/050|ミュウ", entries[1].Key())
	require.Equal(t, "091/064", entries[2].Key())
}

func TestLookup(t *testing.T) {
	links := map[string]string{
		"091/064":      "https://pokeca-chart.com/sv6a-091-064/",
		"055/050|ミュウ": "https://pokeca-chart.com/s8-055-050/",
		"001/SV-P":     NotFoundOnSite,
	}
	require.Equal(t, "https://pokeca-chart.com/sv6a-091-064/", Lookup(links, "091/064", "カシオペア"))
	require.Equal(t, "https://pokeca-chart.com/s8-055-050/", Lookup(links, "055/050", "ミュウ"))
	require.Empty(t, Lookup(links, "001/SV-P", "ピカチュウ"))
	require.Empty(t, Lookup(links, "999/999", "unknown"))
}

func TestStoreRoundtrip(t *testing.T) {
	database := testutil.SetupDB(t, db.Schema)
	store := NewStore(database)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "091/064", "https://pokeca-chart.com/sv6a-091-064/"))
	require.NoError(t, store.Put(ctx, "091/064", "https://pokeca-chart.com/updated/"))

	links, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "https://pokeca-chart.com/updated/", links["091/064"])
}
