// Package export renders the order history in formats consumable outside
// the service.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/quentinlb/cocktaild/core/model"
)

// WriteJSON writes the orders to w in JSON format.
func WriteJSON(w io.Writer, orders []model.Order) error {
	enc := json.NewEncoder(w)
	return enc.Encode(orders)
}

// WriteCSV writes the orders to w as one row per order.
func WriteCSV(w io.Writer, orders []model.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"order_id", "recipe", "status", "steps", "progress", "created_at"}); err != nil {
		return err
	}
	for _, o := range orders {
		rec := []string{
			o.ID,
			o.Recipe.Name,
			string(o.Status),
			strconv.Itoa(len(o.Steps)),
			strconv.FormatFloat(o.Progress, 'f', -1, 64),
			o.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
