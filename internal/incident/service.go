package incident

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
	"github.com/EmpoweredVote/zone-incidents/internal/db"
	"github.com/EmpoweredVote/zone-incidents/internal/models"
	"github.com/EmpoweredVote/zone-incidents/internal/zone"
)

// Service stores incidents. Every read returns the incident with its zone
// attached.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput is a new report. ReportTime defaults to now.
type CreateInput struct {
	ZoneID                 models.ID
	Description            string
	Severity               int
	IsValidatedByAuthority bool
	Type                   Type
	ReportTime             *time.Time
}

// UpdateInput carries the fields to change. Nil fields are left alone.
type UpdateInput struct {
	ZoneID                 *models.ID
	Description            *string
	Severity               *int
	IsValidatedByAuthority *bool
	Type                   *Type
	ReportTime             *time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Incident, error) {
	if in.ZoneID == 0 {
		return nil, apperr.Invalid("zone id is required")
	}
	if in.Type == "" {
		return nil, apperr.Invalid("type is required")
	}

	inc := Incident{
		ZoneID:                 in.ZoneID,
		Description:            in.Description,
		Severity:               in.Severity,
		IsValidatedByAuthority: in.IsValidatedByAuthority,
		Type:                   in.Type,
		ReportTime:             time.Now().UTC(),
	}
	if in.ReportTime != nil {
		inc.ReportTime = in.ReportTime.UTC()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireZone(tx, in.ZoneID); err != nil {
			return err
		}
		if err := tx.Omit("Zone").Create(&inc).Error; err != nil {
			return err
		}
		return tx.Preload("Zone").First(&inc, "id = ?", inc.ID).Error
	})
	if err != nil {
		return nil, db.Translate(err, "incident")
	}
	return &inc, nil
}

// Update applies in to the incident with the given id, including moving it
// to another zone.
func (s *Service) Update(ctx context.Context, id models.ID, in UpdateInput) (*Incident, error) {
	updates := map[string]any{}
	if in.ZoneID != nil {
		updates["zone_id"] = *in.ZoneID
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Severity != nil {
		updates["severity"] = *in.Severity
	}
	if in.IsValidatedByAuthority != nil {
		updates["is_validated_by_authority"] = *in.IsValidatedByAuthority
	}
	if in.Type != nil {
		updates["type"] = *in.Type
	}
	if in.ReportTime != nil {
		updates["report_time"] = in.ReportTime.UTC()
	}

	var inc Incident
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, id); err != nil {
			return err
		}
		if in.ZoneID != nil {
			if err := requireZone(tx, *in.ZoneID); err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&Incident{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Zone").First(&inc, "id = ?", id).Error
	})
	if err != nil {
		return nil, db.Translate(err, "incident")
	}
	return &inc, nil
}

// FindOneByID returns nil, nil when no incident has the id.
func (s *Service) FindOneByID(ctx context.Context, id models.ID) (*Incident, error) {
	var inc Incident
	err := s.db.WithContext(ctx).Preload("Zone").First(&inc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Translate(err, "incident")
	}
	return &inc, nil
}

func (s *Service) FindAll(ctx context.Context) ([]Incident, error) {
	return s.find(ctx, nil)
}

// Delete removes the incident and returns it as it was.
func (s *Service) Delete(ctx context.Context, id models.ID) (*Incident, error) {
	var inc Incident
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Zone").First(&inc, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Incident not found")
			}
			return err
		}
		return tx.Delete(&Incident{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, db.Translate(err, "incident")
	}
	return &inc, nil
}

func (s *Service) FindByZone(ctx context.Context, zoneID models.ID) ([]Incident, error) {
	return s.find(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("zone_id = ?", zoneID)
	})
}

func (s *Service) FindByType(ctx context.Context, t Type) ([]Incident, error) {
	return s.find(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("type = ?", t)
	})
}

// FindBySeverity returns incidents with severity >= minSeverity.
func (s *Service) FindBySeverity(ctx context.Context, minSeverity int) ([]Incident, error) {
	return s.find(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("severity >= ?", minSeverity)
	})
}

// FindByDateRange returns incidents reported in [start, end].
func (s *Service) FindByDateRange(ctx context.Context, start, end time.Time) ([]Incident, error) {
	return s.find(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("report_time >= ? AND report_time <= ?", start.UTC(), end.UTC())
	})
}

// ValidateIncident marks the incident as confirmed by an authority. Calling
// it again on a validated incident changes nothing.
func (s *Service) ValidateIncident(ctx context.Context, id models.ID) (*Incident, error) {
	return s.Update(ctx, id, UpdateInput{IsValidatedByAuthority: ptr(true)})
}

func (s *Service) find(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]Incident, error) {
	q := s.db.WithContext(ctx).Preload("Zone")
	if scope != nil {
		q = q.Scopes(scope)
	}
	incidents := []Incident{}
	if err := q.Order("id").Find(&incidents).Error; err != nil {
		return nil, db.Translate(err, "incidents")
	}
	return incidents, nil
}

// requireZone fails with ErrInvalidReference unless the zone exists.
func requireZone(tx *gorm.DB, id models.ID) error {
	var n int64
	if err := tx.Model(&zone.Zone{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.InvalidReference("zone %s does not exist", id)
	}
	return nil
}

func mustExist(tx *gorm.DB, id models.ID) error {
	var n int64
	if err := tx.Model(&Incident{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Incident not found")
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
