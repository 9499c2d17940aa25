package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the SQL used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Ride is the rides table row.
type Ride struct {
	ID            string
	UserID        string
	Date          string
	DistanceMiles float64
	Notes         sql.NullString
	LocationName  sql.NullString
	Latitude      sql.NullFloat64
	Longitude     sql.NullFloat64
	WeatherCode   sql.NullInt64
	Temperature   sql.NullFloat64
	BuddyID       sql.NullString
	CreatedAt     sql.NullTime
}

// Buddy is the buddies table row.
type Buddy struct {
	ID        string
	UserID    string
	Name      string
	Notes     sql.NullString
	CreatedAt sql.NullTime
}

const rideColumns = `id, user_id, date, distance_miles, notes, location_name, latitude, longitude,
	weather_code, temperature, buddy_id, created_at`

func scanRide(row interface{ Scan(...any) error }) (Ride, error) {
	var r Ride
	err := row.Scan(
		&r.ID, &r.UserID, &r.Date, &r.DistanceMiles, &r.Notes, &r.LocationName,
		&r.Latitude, &r.Longitude, &r.WeatherCode, &r.Temperature, &r.BuddyID, &r.CreatedAt,
	)
	return r, err
}

const createRide = `INSERT INTO rides (` + rideColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateRide(ctx context.Context, r Ride) error {
	_, err := q.db.ExecContext(ctx, createRide,
		r.ID, r.UserID, r.Date, r.DistanceMiles, r.Notes, r.LocationName,
		r.Latitude, r.Longitude, r.WeatherCode, r.Temperature, r.BuddyID, r.CreatedAt,
	)
	return err
}

const listRidesByUser = `SELECT ` + rideColumns + ` FROM rides WHERE user_id = ? ORDER BY date DESC, created_at DESC`

func (q *Queries) ListRidesByUser(ctx context.Context, userID string) ([]Ride, error) {
	rows, err := q.db.QueryContext(ctx, listRidesByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getRide = `SELECT ` + rideColumns + ` FROM rides WHERE user_id = ? AND id = ?`

func (q *Queries) GetRide(ctx context.Context, userID, id string) (Ride, error) {
	return scanRide(q.db.QueryRowContext(ctx, getRide, userID, id))
}

const updateRideWeather = `UPDATE rides SET weather_code = ?, temperature = ? WHERE user_id = ? AND id = ?`

func (q *Queries) UpdateRideWeather(ctx context.Context, userID, id string, code int64, temperature float64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateRideWeather, code, temperature, userID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countRides = `SELECT COUNT(*) FROM rides`

func (q *Queries) CountRides(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRides).Scan(&n)
	return n, err
}

const createBuddy = `INSERT INTO buddies (id, user_id, name, notes, created_at) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateBuddy(ctx context.Context, b Buddy) error {
	_, err := q.db.ExecContext(ctx, createBuddy, b.ID, b.UserID, b.Name, b.Notes, b.CreatedAt)
	return err
}

const listBuddiesByUser = `SELECT id, user_id, name, notes, created_at FROM buddies WHERE user_id = ? ORDER BY name COLLATE NOCASE`

func (q *Queries) ListBuddiesByUser(ctx context.Context, userID string) ([]Buddy, error) {
	rows, err := q.db.QueryContext(ctx, listBuddiesByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Buddy
	for rows.Next() {
		var b Buddy
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Notes, &b.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteBuddy = `DELETE FROM buddies WHERE user_id = ? AND id = ?`

func (q *Queries) DeleteBuddy(ctx context.Context, userID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBuddy, userID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
