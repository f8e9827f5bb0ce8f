package journal

import (
	"encoding/csv"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rustyeddy/mt5bridge/event"
	"github.com/rustyeddy/mt5bridge/market"
)

// CSV appends one row per trade fill. Prices render through decimal so the
// file never carries float artifacts.
type CSV struct {
	event.Nop
	w   *csv.Writer
	f   *os.File
	log *zap.Logger
}

func NewCSV(path string, log *zap.Logger) (*CSV, error) {
	if log == nil {
		log = zap.NewNop()
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"fill_id", "order_id", "symbol", "side", "price", "volume", "time"}); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSV{w: w, f: f, log: log}, nil
}

func (j *CSV) OnTrade(t market.Trade) {
	err := j.w.Write([]string{
		t.FillID,
		t.OrderID,
		t.Symbol,
		t.Side.String(),
		decimal.NewFromFloat(t.Price).String(),
		decimal.NewFromFloat(t.Volume).String(),
		t.Time.Format(time.RFC3339),
	})
	if err != nil {
		j.log.Warn("journal csv write failed", zap.Error(err))
		return
	}
	j.w.Flush()
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}
