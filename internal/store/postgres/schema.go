package postgres

const schema = `
CREATE TABLE IF NOT EXISTS inventory (
	id          BIGSERIAL PRIMARY KEY,
	branch_id   TEXT NOT NULL,
	fuel_type   TEXT NOT NULL,
	unit_price  NUMERIC(14,2) NOT NULL CHECK (unit_price >= 0),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (branch_id, fuel_type)
);

CREATE TABLE IF NOT EXISTS fuel_sales (
	id                    BIGSERIAL PRIMARY KEY,
	branch_id             TEXT NOT NULL,
	fuel_type             TEXT NOT NULL,
	liters                NUMERIC(14,3) NOT NULL CHECK (liters > 0),
	sale_price_per_liter  NUMERIC(14,2) NOT NULL CHECK (sale_price_per_liter >= 0),
	sale_date             DATE NOT NULL,
	payment_mode          TEXT NOT NULL,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS fuel_sales_branch_idx ON fuel_sales (branch_id, id);

CREATE TABLE IF NOT EXISTS users (
	id             BIGSERIAL PRIMARY KEY,
	login          TEXT NOT NULL UNIQUE,
	password_hash  TEXT NOT NULL,
	role           TEXT NOT NULL,
	branch_id      TEXT NOT NULL,
	active         BOOLEAN NOT NULL DEFAULT true,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
