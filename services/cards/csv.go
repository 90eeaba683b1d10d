package cards

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// utf8Bom makes exported files open cleanly in spreadsheet software that
// sniffs encodings.
var utf8Bom = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"no", "code", "name", "rarity", "set_name",
	"buy_price", "sell_price", "stock_status", "update_date",
	"expected_profit", "image_url", "listing_url",
}

// WriteCSV exports records with a UTF-8 BOM prefix.
func WriteCSV(w io.Writer, records []Record) error {
	_, err := w.Write(utf8Bom)
	if err != nil {
		return err
	}
	out := csv.NewWriter(w)
	err = out.Write(csvHeader)
	if err != nil {
		return err
	}
	for _, r := range records {
		err = out.Write([]string{
			r.No, r.Code, r.Name, r.Rarity, r.SetName,
			strconv.Itoa(r.BuyPrice), strconv.Itoa(r.SellPrice),
			r.StockStatus, r.UpdateDate, r.ExpectedProfit,
			r.ImageURL, r.ListingURL,
		})
		if err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// ReadCSV imports records written by WriteCSV, tolerating a missing BOM.
func ReadCSV(r io.Reader) ([]Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, utf8Bom)

	in := csv.NewReader(bytes.NewReader(raw))
	in.FieldsPerRecord = len(csvHeader)

	rows, err := in.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}

	var out []Record
	for _, row := range rows[1:] {
		buy, _ := strconv.Atoi(row[5])
		sell, _ := strconv.Atoi(row[6])
		out = append(out, Record{
			No: row[0], Code: row[1], Name: row[2], Rarity: row[3], SetName: row[4],
			BuyPrice: buy, SellPrice: sell,
			StockStatus: row[7], UpdateDate: row[8], ExpectedProfit: row[9],
			ImageURL: row[10], ListingURL: row[11],
		})
	}
	return out, nil
}
