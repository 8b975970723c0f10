package db

import (
	"database/sql"
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/munimap/munimap/internal/service"
)

// ReplaceLayerAttributes mirrors a layer's coercible numeric attributes into
// the layer_attributes table, one row per (feature, attribute). Existing
// rows for the layer are replaced, so reloading a layer never duplicates.
func ReplaceLayerAttributes(db *sql.DB, layerID string, fc *geojson.FeatureCollection) error {
	if db == nil {
		return nil
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS layer_attributes (
		layer VARCHAR NOT NULL,
		feature INTEGER NOT NULL,
		attribute VARCHAR NOT NULL,
		value DOUBLE NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating layer_attributes: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM layer_attributes WHERE layer = ?`, layerID); err != nil {
		return fmt.Errorf("clearing layer %q attributes: %w", layerID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO layer_attributes (layer, feature, attribute, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, f := range fc.Features {
		for name := range f.Properties {
			if v, ok := service.NumericValue(f.Properties, name); ok {
				if _, err := stmt.Exec(layerID, i, name, v); err != nil {
					return fmt.Errorf("inserting %s/%s: %w", layerID, name, err)
				}
			}
		}
	}

	return tx.Commit()
}

// AttributeStats is a summary of one numeric attribute across a layer.
type AttributeStats struct {
	Attribute string  `json:"attribute" doc:"Attribute name"`
	Count     int     `json:"count" doc:"Features with a usable value"`
	Min       float64 `json:"min" doc:"Minimum value"`
	Max       float64 `json:"max" doc:"Maximum value"`
	Mean      float64 `json:"mean" doc:"Arithmetic mean"`
}

// Stats summarizes one attribute of a mirrored layer.
func Stats(db *sql.DB, layerID, attribute string) (AttributeStats, error) {
	if db == nil {
		return AttributeStats{}, fmt.Errorf("database not available")
	}

	row := db.QueryRow(`SELECT COUNT(*), COALESCE(MIN(value), 0), COALESCE(MAX(value), 0), COALESCE(AVG(value), 0)
		FROM layer_attributes WHERE layer = ? AND attribute = ?`, layerID, attribute)

	stats := AttributeStats{Attribute: attribute}
	if err := row.Scan(&stats.Count, &stats.Min, &stats.Max, &stats.Mean); err != nil {
		return AttributeStats{}, fmt.Errorf("querying stats for %s/%s: %w", layerID, attribute, err)
	}
	return stats, nil
}
