package zone

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/EmpoweredVote/zone-incidents/internal/models"
)

// Coordinates is a list of rings, each ring a list of [lat, lng] pairs.
// It is stored verbatim as JSON; nothing checks closure or ranges.
type Coordinates [][][]float64

func (c Coordinates) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Coordinates) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*c = nil
		return nil
	default:
		return fmt.Errorf("zone: cannot scan %T into Coordinates", src)
	}
	return json.Unmarshal(raw, c)
}

// GormDBDataType stores coordinates as jsonb on postgres and text elsewhere.
func (Coordinates) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

// Polygon is the boundary of at most one zone.
type Polygon struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Coordinates Coordinates `gorm:"not null" json:"coordinates"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (p *Polygon) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Zone is a named area of interest. Location is the linked polygon, loaded
// eagerly by every read.
type Zone struct {
	ID                models.ID  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string     `gorm:"not null;uniqueIndex" json:"name"`
	Description       string     `json:"description"`
	RiskLevel         int        `gorm:"not null;default:0" json:"risk_level"`
	IsUnderPremises   bool       `gorm:"not null;default:false" json:"is_under_premises"`
	PopulationDensity float64    `gorm:"not null;default:0" json:"population_density"`
	PolygonID         *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"polygon_id"`
	Location          *Polygon   `gorm:"foreignKey:PolygonID" json:"location"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
