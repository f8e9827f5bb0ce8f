package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/rustyeddy/mt5bridge/event"
	"github.com/rustyeddy/mt5bridge/market"
)

// SQLite records orders, trades and position snapshots. Write failures are
// logged, never propagated into the event stream.
type SQLite struct {
	event.Nop
	db  *sql.DB
	log *zap.Logger
}

func NewSQLite(path string, log *zap.Logger) (*SQLite, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, log: log}, nil
}

// OnOrder upserts the latest state of the order, keyed by client id.
func (j *SQLite) OnOrder(o market.Order) {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(client_id, venue_id, symbol, side, kind, price, volume, traded, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
		venue_id=excluded.venue_id, traded=excluded.traded,
		status=excluded.status, created_at=excluded.created_at`,
		o.ClientID, o.VenueID, o.Symbol, o.Side.String(), o.Kind.String(),
		o.Price, o.Volume, o.Traded, o.Status.String(), o.Created,
	)
	if err != nil {
		j.log.Warn("journal order write failed", zap.Error(err))
	}
}

// OnTrade inserts the fill. The fill id is the primary key, so a repeated
// record is refused by the schema as well as by the deriver.
func (j *SQLite) OnTrade(t market.Trade) {
	_, err := j.db.Exec(`
		INSERT OR IGNORE INTO trades
		(fill_id, order_id, symbol, side, price, volume, time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.FillID, t.OrderID, t.Symbol, t.Side.String(), t.Price, t.Volume, t.Time,
	)
	if err != nil {
		j.log.Warn("journal trade write failed", zap.Error(err))
	}
}

// OnPosition appends the snapshot row.
func (j *SQLite) OnPosition(p market.Position) {
	_, err := j.db.Exec(`
		INSERT INTO positions (time, symbol, volume, price, pnl)
		VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC(), p.Symbol, p.Volume, p.Price, p.PnL,
	)
	if err != nil {
		j.log.Warn("journal position write failed", zap.Error(err))
	}
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
