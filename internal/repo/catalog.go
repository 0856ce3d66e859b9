// Package repo serves the catalog from Postgres. Queries narrow the rows by
// city, day, mode and price; connection search runs in memory on the result.
package repo

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" for database/sql
	"github.com/pressly/goose/v3"

	"github.com/dharmasatrya/holitrip/internal/filter"
	"github.com/dharmasatrya/holitrip/internal/models"
	"github.com/dharmasatrya/holitrip/internal/pathsearch"
	"github.com/dharmasatrya/holitrip/internal/timezone"
	"github.com/dharmasatrya/holitrip/migrations"
)

// db is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx, so tests can run
// against a transaction that is rolled back afterwards.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgCatalog struct {
	db     db
	logger *slog.Logger
}

func NewPgCatalog(db db, logger *slog.Logger) *PgCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &PgCatalog{db: db, logger: logger}
}

func (c *PgCatalog) Name() string {
	return "postgres"
}

// FindTransports loads the legs that could take part in a journey starting
// on q.Date and hands them to the path search.
func (c *PgCatalog) FindTransports(ctx context.Context, q pathsearch.Query) (models.TransportLookup, error) {
	const query = `
		SELECT origin, destination, departure, arrival, mode, price
		FROM transports
		WHERE (@from::timestamptz IS NULL OR departure >= @from)
		  AND (@mode::text = '' OR mode = @mode)
		ORDER BY id`

	from := pgtype.Timestamptz{}
	if !q.Date.IsZero() {
		y, m, d := q.Date.Date()
		from = pgtype.Timestamptz{Time: time.Date(y, m, d, 0, 0, 0, 0, q.Date.Location()), Valid: true}
	}

	rows, err := c.db.Query(ctx, query, pgx.NamedArgs{
		"from": from,
		"mode": string(q.Mode),
	})
	if err != nil {
		return models.NoTransport(), fmt.Errorf("repo.PgCatalog.FindTransports: %w", err)
	}
	defer rows.Close()

	var legs []models.TransportLeg
	for rows.Next() {
		l, err := c.scanLeg(rows)
		if err != nil {
			return models.NoTransport(), fmt.Errorf("repo.PgCatalog.FindTransports: scan: %w", err)
		}
		if err := l.Validate(); err != nil {
			c.logger.Warn("skipping transport", "origin", l.Origin, "destination", l.Destination, "error", err)
			continue
		}
		legs = append(legs, l)
	}
	if err := rows.Err(); err != nil {
		return models.NoTransport(), fmt.Errorf("repo.PgCatalog.FindTransports: rows: %w", err)
	}

	return pathsearch.Find(legs, q), nil
}

func (c *PgCatalog) FindLodgings(ctx context.Context, q filter.LodgingQuery) ([]models.Lodging, error) {
	const query = `
		SELECT name, address, city, rating, price_per_night
		FROM hotels
		WHERE (@city::text = '' OR lower(city) = lower(@city))
		  AND rating >= @min_rating
		  AND (@max_price::float8 IS NULL OR price_per_night <= @max_price)
		ORDER BY id`

	rows, err := c.db.Query(ctx, query, pgx.NamedArgs{
		"city":       strings.TrimSpace(q.City),
		"min_rating": q.MinRating,
		"max_price":  q.MaxPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.PgCatalog.FindLodgings: %w", err)
	}
	defer rows.Close()

	var lodgings []models.Lodging
	for rows.Next() {
		var h models.Lodging
		if err := rows.Scan(&h.Name, &h.Address, &h.City, &h.Rating, &h.PricePerNight); err != nil {
			return nil, fmt.Errorf("repo.PgCatalog.FindLodgings: scan: %w", err)
		}
		lodgings = append(lodgings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PgCatalog.FindLodgings: rows: %w", err)
	}
	return lodgings, nil
}

func (c *PgCatalog) FindActivities(ctx context.Context, q filter.ActivityQuery) ([]models.Activity, error) {
	const query = `
		SELECT name, address, city, category, date, price
		FROM activities
		WHERE (@city::text = '' OR lower(city) = lower(@city))
		  AND (coalesce(cardinality(@categories::text[]), 0) = 0 OR upper(category) = ANY(@categories))
		  AND (@date::date IS NULL OR date = @date)
		  AND (@max_price::float8 IS NULL OR price <= @max_price)
		ORDER BY id`

	categories := make([]string, 0, len(q.Categories))
	for _, cat := range q.Categories {
		if cat = strings.TrimSpace(cat); cat != "" {
			categories = append(categories, strings.ToUpper(cat))
		}
	}
	date := pgtype.Date{}
	if q.Date != nil {
		date = pgtype.Date{Time: q.Date.Time, Valid: true}
	}

	rows, err := c.db.Query(ctx, query, pgx.NamedArgs{
		"city":       strings.TrimSpace(q.City),
		"categories": categories,
		"date":       date,
		"max_price":  q.MaxPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.PgCatalog.FindActivities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var (
			a models.Activity
			d pgtype.Date
		)
		if err := rows.Scan(&a.Name, &a.Address, &a.City, &a.Category, &d, &a.Price); err != nil {
			return nil, fmt.Errorf("repo.PgCatalog.FindActivities: scan: %w", err)
		}
		if d.Valid {
			day := models.DateOf(d.Time)
			a.Date = &day
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PgCatalog.FindActivities: rows: %w", err)
	}
	return activities, nil
}

// scanLeg reads a transport row. Timestamps come back in UTC and are moved to
// the local time of their city so calendar-day matching sees local days.
func (c *PgCatalog) scanLeg(rows pgx.Rows) (models.TransportLeg, error) {
	var (
		l    models.TransportLeg
		mode string
	)
	if err := rows.Scan(&l.Origin, &l.Destination, &l.Departure, &l.Arrival, &mode, &l.Price); err != nil {
		return models.TransportLeg{}, err
	}

	m, err := models.ParseMode(mode)
	if err != nil {
		c.logger.Warn("unknown transport mode", "mode", mode)
	}
	l.Mode = m
	l.Departure = l.Departure.In(timezone.GetLocationByCity(l.Origin))
	l.Arrival = l.Arrival.In(timezone.GetLocationByCity(l.Destination))
	return l, nil
}

// Migrate applies the embedded schema migrations to the database at dsn.
func Migrate(ctx context.Context, dsn string, logger *slog.Logger) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("repo.Migrate: open: %w", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("repo.Migrate: provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("repo.Migrate: up: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}
