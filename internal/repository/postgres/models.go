package postgres

import (
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/land-registry-map/internal/domain"
)

// titleRow - строка land_registry_title.
// В point/polygon X - долгота, Y - широта.
type titleRow struct {
	ID          string         `db:"id"`
	TitleNumber sql.NullString `db:"title_number"`
	Polygon     pgtype.Polygon `db:"polygon"`
	Centroid    pgtype.Point   `db:"centroid"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
}

func (r titleRow) toDomain() *domain.LandRegistryTitle {
	title := &domain.LandRegistryTitle{
		ID:          r.ID,
		TitleNumber: r.TitleNumber.String,
		UpdatedAt:   r.UpdatedAt.Time,
	}

	if r.Polygon.Valid {
		title.Polygon = make(domain.GeographicPolygon, len(r.Polygon.P))
		for i, v := range r.Polygon.P {
			title.Polygon[i] = domain.GeographicPoint{Longitude: v.X, Latitude: v.Y}
		}
	}

	if r.Centroid.Valid {
		title.Centroid = domain.GeographicPoint{Longitude: r.Centroid.P.X, Latitude: r.Centroid.P.Y}
	}

	return title
}

func titleRowFromDomain(t *domain.LandRegistryTitle) titleRow {
	row := titleRow{
		ID:          t.ID,
		TitleNumber: sql.NullString{String: t.TitleNumber, Valid: true},
		Centroid: pgtype.Point{
			P:     pgtype.Vec2{X: t.Centroid.Longitude, Y: t.Centroid.Latitude},
			Valid: true,
		},
	}

	if len(t.Polygon) > 0 {
		row.Polygon = pgtype.Polygon{P: make([]pgtype.Vec2, len(t.Polygon)), Valid: true}
		for i, p := range t.Polygon {
			row.Polygon.P[i] = pgtype.Vec2{X: p.Longitude, Y: p.Latitude}
		}
	}

	updatedAt := t.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	row.UpdatedAt = sql.NullTime{Time: updatedAt, Valid: true}

	return row
}
