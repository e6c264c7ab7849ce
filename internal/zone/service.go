package zone

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
	"github.com/EmpoweredVote/zone-incidents/internal/db"
	"github.com/EmpoweredVote/zone-incidents/internal/models"
)

// Service manages zones and the polygons they own.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateInput struct {
	Name              string
	Description       string
	RiskLevel         int
	IsUnderPremises   bool
	PopulationDensity float64
	Coordinates       Coordinates
}

// UpdateInput carries the fields to change. Nil fields are left alone;
// non-empty Coordinates replace the zone's boundary.
type UpdateInput struct {
	Name              *string
	Description       *string
	RiskLevel         *int
	IsUnderPremises   *bool
	PopulationDensity *float64
	Coordinates       Coordinates
}

func (s *Service) CreatePolygon(ctx context.Context, coords Coordinates) (*Polygon, error) {
	p := Polygon{Coordinates: coords}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, db.Translate(err, "polygon")
	}
	return &p, nil
}

// Create stores a zone, creating its polygon first when coordinates are
// given. Names are unique; a taken name fails with ErrConflict and nothing
// is written.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Zone, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Invalid("name is required")
	}

	z := Zone{
		Name:              in.Name,
		Description:       in.Description,
		RiskLevel:         in.RiskLevel,
		IsUnderPremises:   in.IsUnderPremises,
		PopulationDensity: in.PopulationDensity,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var polygon *Polygon
		if len(in.Coordinates) > 0 {
			polygon = &Polygon{Coordinates: in.Coordinates}
			if err := tx.Create(polygon).Error; err != nil {
				return err
			}
			z.PolygonID = &polygon.ID
		}

		var existing Zone
		err := tx.Where("name = ?", in.Name).First(&existing).Error
		if err == nil {
			return apperr.Conflict("Zone already exists")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Omit("Location").Create(&z).Error; err != nil {
			return err
		}
		z.Location = polygon
		return nil
	})
	if err != nil {
		return nil, db.Translate(err, "zone")
	}
	return &z, nil
}

// Update applies in to the zone with the given id. New coordinates rewrite
// the linked polygon in place, or create and link one if the zone had none.
func (s *Service) Update(ctx context.Context, id models.ID, in UpdateInput) (*Zone, error) {
	var z Zone
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Location").First(&z, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Zone not found")
			}
			return err
		}

		updates := map[string]any{}
		if len(in.Coordinates) > 0 {
			if z.PolygonID != nil {
				if err := tx.Model(&Polygon{}).Where("id = ?", *z.PolygonID).
					Update("coordinates", in.Coordinates).Error; err != nil {
					return err
				}
			} else {
				polygon := Polygon{Coordinates: in.Coordinates}
				if err := tx.Create(&polygon).Error; err != nil {
					return err
				}
				updates["polygon_id"] = polygon.ID
			}
		}

		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.RiskLevel != nil {
			updates["risk_level"] = *in.RiskLevel
		}
		if in.IsUnderPremises != nil {
			updates["is_under_premises"] = *in.IsUnderPremises
		}
		if in.PopulationDensity != nil {
			updates["population_density"] = *in.PopulationDensity
		}

		if len(updates) > 0 {
			if err := tx.Model(&Zone{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		z = Zone{}
		return tx.Preload("Location").First(&z, "id = ?", id).Error
	})
	if err != nil {
		return nil, db.Translate(err, "zone")
	}
	return &z, nil
}

// FindOneByID returns nil, nil when no zone has the id.
func (s *Service) FindOneByID(ctx context.Context, id models.ID) (*Zone, error) {
	var z Zone
	err := s.db.WithContext(ctx).Preload("Location").First(&z, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Translate(err, "zone")
	}
	return &z, nil
}

func (s *Service) FindAll(ctx context.Context) ([]Zone, error) {
	zones := []Zone{}
	if err := s.db.WithContext(ctx).Preload("Location").Order("id").Find(&zones).Error; err != nil {
		return nil, db.Translate(err, "zones")
	}
	return zones, nil
}

// Delete removes the zone and then its polygon, and returns the zone as it
// was. A zone still referenced by incidents cannot be deleted.
func (s *Service) Delete(ctx context.Context, id models.ID) (*Zone, error) {
	var z Zone
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Location").First(&z, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Zone not found")
			}
			return err
		}

		if err := tx.Delete(&Zone{}, "id = ?", id).Error; err != nil {
			return err
		}
		if z.PolygonID != nil {
			if err := tx.Delete(&Polygon{}, "id = ?", *z.PolygonID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		err = db.Translate(err, "zone")
		if errors.Is(err, apperr.ErrInvalidReference) {
			return nil, apperr.Conflict("zone %s still has incidents", id)
		}
		return nil, err
	}
	return &z, nil
}
