package incident

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
	"github.com/EmpoweredVote/zone-incidents/internal/models"
	"github.com/EmpoweredVote/zone-incidents/internal/zone"
)

type Type string

const (
	TypeTheft              Type = "THEFT"
	TypeAssault            Type = "ASSAULT"
	TypeVandalism          Type = "VANDALISM"
	TypeAccident           Type = "ACCIDENT"
	TypeFire               Type = "FIRE"
	TypeFlood              Type = "FLOOD"
	TypeSuspiciousActivity Type = "SUSPICIOUS_ACTIVITY"
	TypeOther              Type = "OTHER"
)

var knownTypes = map[Type]struct{}{
	TypeTheft:              {},
	TypeAssault:            {},
	TypeVandalism:          {},
	TypeAccident:           {},
	TypeFire:               {},
	TypeFlood:              {},
	TypeSuspiciousActivity: {},
	TypeOther:              {},
}

// ParseType normalizes s ("fire", "suspicious activity", "Suspicious-Activity")
// to one of the known incident types.
func ParseType(s string) (Type, error) {
	norm := strings.TrimSpace(s)
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	t := Type(cases.Upper(language.Und).String(norm))
	if _, ok := knownTypes[t]; !ok {
		return "", apperr.Invalid("unknown incident type %q", s)
	}
	return t, nil
}

// Incident is a report attached to exactly one zone. A zone with incidents
// cannot be deleted.
type Incident struct {
	ID                     models.ID  `gorm:"primaryKey;autoIncrement" json:"id"`
	Description            string     `json:"description"`
	Severity               int        `gorm:"not null;default:0;index" json:"severity"`
	IsValidatedByAuthority bool       `gorm:"not null;default:false" json:"is_validated_by_authority"`
	Type                   Type       `gorm:"size:32;not null;index" json:"type"`
	ReportTime             time.Time  `gorm:"not null;index" json:"report_time"`
	ZoneID                 models.ID  `gorm:"not null;index" json:"zone_id"`
	Zone                   *zone.Zone `gorm:"constraint:OnDelete:RESTRICT" json:"zone,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}
