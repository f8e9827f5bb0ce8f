package journal

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	client_id TEXT PRIMARY KEY,
	venue_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	kind TEXT NOT NULL,
	price REAL NOT NULL,
	volume REAL NOT NULL,
	traded REAL NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME
);

CREATE TABLE IF NOT EXISTS trades (
	fill_id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	volume REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	volume REAL NOT NULL,
	price REAL NOT NULL,
	pnl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_order ON trades(order_id);
CREATE INDEX IF NOT EXISTS idx_positions_time ON positions(time);
`
