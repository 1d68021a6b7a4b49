package pricing

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteSchema creates the tables read by LoadSQLite.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS destinations (
	id                INTEGER PRIMARY KEY,
	name              TEXT    NOT NULL UNIQUE,
	currency          TEXT    NOT NULL,
	exchange_rate     REAL    NOT NULL DEFAULT 1,
	flight_cost       INTEGER NOT NULL DEFAULT 0,
	tips              TEXT    NOT NULL DEFAULT '',
	food_budget       INTEGER NOT NULL,
	food_mid          INTEGER NOT NULL,
	food_luxury       INTEGER NOT NULL,
	activities_budget INTEGER NOT NULL,
	activities_mid    INTEGER NOT NULL,
	activities_luxury INTEGER NOT NULL,
	transport_local   INTEGER NOT NULL,
	transport_city    INTEGER NOT NULL DEFAULT 0,
	transport_country INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS destination_aliases (
	destination_id INTEGER NOT NULL REFERENCES destinations(id),
	alias          TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS accommodation_prices (
	destination_id INTEGER NOT NULL REFERENCES destinations(id),
	lodging_type   TEXT    NOT NULL,
	budget         INTEGER NOT NULL,
	mid            INTEGER NOT NULL,
	luxury         INTEGER NOT NULL,
	PRIMARY KEY (destination_id, lodging_type)
);`

// LoadSQLite reads a price table from a SQLite database opened read-only.
// Rows are read once; the database is closed before returning.
func LoadSQLite(ctx context.Context, path string, opts ...TableOption) (*Table, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open price database %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	profiles, err := readProfiles(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to read price database %s: %w", path, err)
	}
	return NewTable(profiles, opts...)
}

func readProfiles(ctx context.Context, db *sql.DB) ([]DestinationProfile, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, currency, exchange_rate, flight_cost, tips,
		       food_budget, food_mid, food_luxury,
		       activities_budget, activities_mid, activities_luxury,
		       transport_local, transport_city, transport_country
		FROM destinations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var profiles []DestinationProfile
	byID := make(map[int64]int)
	for rows.Next() {
		var (
			id int64
			p  DestinationProfile
		)
		if err := rows.Scan(&id, &p.Name, &p.Currency, &p.ExchangeRate, &p.FlightCostEstimate, &p.Tips,
			&p.Food.Budget, &p.Food.Mid, &p.Food.Luxury,
			&p.Activities.Budget, &p.Activities.Mid, &p.Activities.Luxury,
			&p.Transport.Local, &p.Transport.City, &p.Transport.Country); err != nil {
			return nil, err
		}
		p.Accommodation = make(AccommodationPrices, len(LodgingTypes))
		byID[id] = len(profiles)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := readAccommodation(ctx, db, profiles, byID); err != nil {
		return nil, err
	}
	if err := readAliases(ctx, db, profiles, byID); err != nil {
		return nil, err
	}
	return profiles, nil
}

func readAccommodation(ctx context.Context, db *sql.DB, profiles []DestinationProfile, byID map[int64]int) error {
	rows, err := db.QueryContext(ctx, `SELECT destination_id, lodging_type, budget, mid, luxury FROM accommodation_prices`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id      int64
			lodging string
			p       CategoryPrices
		)
		if err := rows.Scan(&id, &lodging, &p.Budget, &p.Mid, &p.Luxury); err != nil {
			return err
		}
		pos, ok := byID[id]
		if !ok {
			return fmt.Errorf("accommodation row references unknown destination id %d", id)
		}
		lt, err := ParseLodgingType(lodging)
		if err != nil {
			return fmt.Errorf("%s: %w", profiles[pos].Name, err)
		}
		profiles[pos].Accommodation[lt] = p
	}
	return rows.Err()
}

func readAliases(ctx context.Context, db *sql.DB, profiles []DestinationProfile, byID map[int64]int) error {
	rows, err := db.QueryContext(ctx, `SELECT destination_id, alias FROM destination_aliases ORDER BY rowid`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id    int64
			alias string
		)
		if err := rows.Scan(&id, &alias); err != nil {
			return err
		}
		pos, ok := byID[id]
		if !ok {
			return fmt.Errorf("alias %q references unknown destination id %d", alias, id)
		}
		profiles[pos].Aliases = append(profiles[pos].Aliases, alias)
	}
	return rows.Err()
}

// ExportSQLite writes the table into a new SQLite database at path, creating
// the schema first. The file must not already contain destinations.
func ExportSQLite(ctx context.Context, path string, t *Table) error {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, p := range t.profiles {
		id := int64(i + 1)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO destinations (id, name, currency, exchange_rate, flight_cost, tips,
				food_budget, food_mid, food_luxury,
				activities_budget, activities_mid, activities_luxury,
				transport_local, transport_city, transport_country)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, p.Name, p.Currency, p.ExchangeRate, p.FlightCostEstimate, p.Tips,
			p.Food.Budget, p.Food.Mid, p.Food.Luxury,
			p.Activities.Budget, p.Activities.Mid, p.Activities.Luxury,
			p.Transport.Local, p.Transport.City, p.Transport.Country); err != nil {
			return fmt.Errorf("insert %s: %w", p.Name, err)
		}
		for _, lt := range LodgingTypes {
			acc := p.Accommodation[lt]
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO accommodation_prices (destination_id, lodging_type, budget, mid, luxury) VALUES (?, ?, ?, ?, ?)`,
				id, string(lt), acc.Budget, acc.Mid, acc.Luxury); err != nil {
				return fmt.Errorf("insert %s/%s: %w", p.Name, lt, err)
			}
		}
		for _, alias := range p.Aliases {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO destination_aliases (destination_id, alias) VALUES (?, ?)`, id, alias); err != nil {
				return fmt.Errorf("insert alias %s: %w", alias, err)
			}
		}
	}
	return tx.Commit()
}
