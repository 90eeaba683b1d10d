package chartlinks

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"

	"cardarb-backend/services/cards"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func (s Store) Put(ctx context.Context, key, url string) error {
	_, err := s.db.ExecContext(ctx,
		"insert into chart_links (key, url) values (?, ?) on conflict (key) do update set url = excluded.url",
		key, url,
	)
	return err
}

func (s Store) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "select key, url from chart_links")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var key, url string
		err = rows.Scan(&key, &url)
		if err != nil {
			return nil, err
		}
		out[key] = url
	}
	return out, rows.Err()
}

// Entry is one card to look up, keyed by code alone unless several distinct
// names share the code.
type Entry struct {
	Code      string
	Name      string
	Duplicate bool
}

func (e Entry) Key() string {
	if e.Duplicate {
		return e.Code + "|" + e.Name
	}
	return e.Code
}

// EntriesFromRecords collapses records into unique (code, name) pairs,
// sorted, with the duplicate flag set for codes shared by several names.
func EntriesFromRecords(records []cards.Record) []Entry {
	type pair struct{ code, name string }
	seen := map[pair]bool{}
	codeNames := map[string]int{}
	for _, r := range records {
		if r.Code == "" || r.Name == "" {
			continue
		}
		p := pair{r.Code, r.Name}
		if seen[p] {
			continue
		}
		seen[p] = true
		codeNames[r.Code]++
	}

	var out []Entry
	for p := range seen {
		out = append(out, Entry{
			Code:      p.code,
			Name:      p.name,
			Duplicate: codeNames[p.code] > 1,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type Service struct {
	client *Client
	store  Store
}

func NewService(client *Client, store Store) Service {
	return Service{client: client, store: store}
}

// Run looks up chart links for every entry not already stored. Entries the
// site reports missing are recorded under the sentinel so later runs skip
// them too. Per-entry failures are logged and skipped.
func (s Service) Run(ctx context.Context, entries []Entry) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	existing, err := s.store.All(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load existing links")
		return err
	}

	var pending []Entry
	for _, e := range entries {
		if _, ok := existing[e.Key()]; !ok {
			pending = append(pending, e)
		}
	}
	span.SetAttributes(
		attribute.Int("entries", len(entries)),
		attribute.Int("pending", len(pending)),
	)
	if len(pending) < len(entries) {
		slog.Info("skipping already-known chart links",
			"known", len(entries)-len(pending), "pending", len(pending))
	}

	for idx, e := range pending {
		slog.Info("fetching chart link", "progress", idx+1, "total", len(pending), "key", e.Key())

		// non-duplicate codes search by code alone, the name query order
		// only matters when several cards share the code
		name := ""
		if e.Duplicate {
			name = e.Name
		}
		link, err := s.client.FindLink(ctx, e.Code, name)
		if err != nil {
			if ctx.Err() != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "run canceled")
				return err
			}
			slog.Warn("chart link lookup failed", "key", e.Key(), "err", err)
			continue
		}

		err = s.store.Put(ctx, e.Key(), link)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to store chart link")
			return err
		}
	}
	return nil
}

// Lookup resolves a record's chart URL from stored links, trying the
// composite key first. The sentinel for missing cards yields "".
func Lookup(links map[string]string, code, name string) string {
	url, ok := links[code+"|"+name]
	if !ok {
		url = links[code]
	}
	if url == NotFoundOnSite {
		return ""
	}
	return url
}
