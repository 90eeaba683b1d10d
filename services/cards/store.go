package cards

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/cards")

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

const upsertQuery = `
insert into card_records
	(code, name, no, rarity, set_name, buy_price, sell_price,
	 stock_status, update_date, expected_profit, image_url, listing_url)
values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (code, name) do update set
	no = excluded.no,
	rarity = excluded.rarity,
	set_name = excluded.set_name,
	buy_price = excluded.buy_price,
	sell_price = excluded.sell_price,
	stock_status = excluded.stock_status,
	update_date = excluded.update_date,
	expected_profit = excluded.expected_profit,
	image_url = excluded.image_url,
	listing_url = excluded.listing_url
`

func (s Store) Upsert(ctx context.Context, r Record) error {
	ctx, span := tracer.Start(ctx, "Upsert")
	defer span.End()

	span.SetAttributes(attribute.String("key", r.Key()))

	_, err := s.db.ExecContext(ctx, upsertQuery,
		r.Code, r.Name, r.No, r.Rarity, r.SetName, r.BuyPrice, r.SellPrice,
		r.StockStatus, r.UpdateDate, r.ExpectedProfit, r.ImageURL, r.ListingURL,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

const upsertBuySideQuery = `
insert into card_records
	(code, name, no, rarity, set_name, buy_price, update_date,
	 sell_price, stock_status, expected_profit, image_url, listing_url)
values (?, ?, ?, ?, ?, ?, ?, 0, '', '', '', '')
on conflict (code, name) do update set
	no = excluded.no,
	rarity = excluded.rarity,
	set_name = excluded.set_name,
	buy_price = excluded.buy_price,
	update_date = excluded.update_date
`

// UpsertBuySide writes the buy-side columns of a record, leaving any
// previously scraped sell-side data intact.
func (s Store) UpsertBuySide(ctx context.Context, r Record) error {
	ctx, span := tracer.Start(ctx, "UpsertBuySide")
	defer span.End()

	span.SetAttributes(attribute.String("key", r.Key()))

	_, err := s.db.ExecContext(ctx, upsertBuySideQuery,
		r.Code, r.Name, r.No, r.Rarity, r.SetName, r.BuyPrice, r.UpdateDate,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// ReplaceAll swaps the entire table for the given records in one
// transaction, so readers never observe a half-written batch.
func (s Store) ReplaceAll(ctx context.Context, records []Record) error {
	ctx, span := tracer.Start(ctx, "ReplaceAll")
	defer span.End()

	span.SetAttributes(attribute.Int("count", len(records)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "delete from card_records")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err = stmt.ExecContext(ctx,
			r.Code, r.Name, r.No, r.Rarity, r.SetName, r.BuyPrice, r.SellPrice,
			r.StockStatus, r.UpdateDate, r.ExpectedProfit, r.ImageURL, r.ListingURL,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

const selectColumns = `
select code, name, no, rarity, set_name, buy_price, sell_price,
	stock_status, update_date, expected_profit, image_url, listing_url
from card_records
`

func (s Store) scan(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		err := rows.Scan(
			&r.Code, &r.Name, &r.No, &r.Rarity, &r.SetName,
			&r.BuyPrice, &r.SellPrice, &r.StockStatus, &r.UpdateDate,
			&r.ExpectedProfit, &r.ImageURL, &r.ListingURL,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s Store) List(ctx context.Context) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, selectColumns+"order by code, name")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	records, err := s.scan(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return records, nil
}

func (s Store) Get(ctx context.Context, code, name string) (Record, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()

	row := s.db.QueryRowContext(ctx, selectColumns+"where code = ? and name = ?", code, name)
	var r Record
	err := row.Scan(
		&r.Code, &r.Name, &r.No, &r.Rarity, &r.SetName,
		&r.BuyPrice, &r.SellPrice, &r.StockStatus, &r.UpdateDate,
		&r.ExpectedProfit, &r.ImageURL, &r.ListingURL,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Record{}, err
	}
	return r, nil
}
