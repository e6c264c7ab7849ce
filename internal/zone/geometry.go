package zone

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
)

// Geometry converts the stored [lat, lng] rings into a go-geom polygon with
// x = lng and y = lat.
func (p *Polygon) Geometry() (*geom.Polygon, error) {
	rings := make([][]geom.Coord, 0, len(p.Coordinates))
	for i, ring := range p.Coordinates {
		coords := make([]geom.Coord, 0, len(ring))
		for j, pair := range ring {
			if len(pair) < 2 {
				return nil, eris.Errorf("zone: ring %d point %d has %d values", i, j, len(pair))
			}
			coords = append(coords, geom.Coord{pair[1], pair[0]})
		}
		rings = append(rings, coords)
	}

	g, err := geom.NewPolygon(geom.XY).SetCoords(rings)
	if err != nil {
		return nil, eris.Wrap(err, "zone: build polygon")
	}
	return g.SetSRID(4326), nil
}

// Feature renders z as a GeoJSON feature with its boundary as geometry.
// The zone must have a linked polygon.
func (z *Zone) Feature() (*geojson.Feature, error) {
	if z.Location == nil {
		return nil, apperr.NotFound("Zone has no boundary")
	}
	g, err := z.Location.Geometry()
	if err != nil {
		return nil, err
	}
	return &geojson.Feature{
		ID:       z.ID.String(),
		Geometry: g,
		Properties: map[string]any{
			"name":               z.Name,
			"description":        z.Description,
			"risk_level":         z.RiskLevel,
			"is_under_premises":  z.IsUnderPremises,
			"population_density": z.PopulationDensity,
			"polygon_id":         z.Location.ID.String(),
		},
	}, nil
}
