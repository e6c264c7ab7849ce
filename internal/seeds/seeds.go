// Package seeds loads sample zones, incidents and users through the domain
// services. Rows that already exist are skipped, so seeding can be rerun.
package seeds

import (
	"context"
	_ "embed"
	"errors"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
	"github.com/EmpoweredVote/zone-incidents/internal/incident"
	"github.com/EmpoweredVote/zone-incidents/internal/user"
	"github.com/EmpoweredVote/zone-incidents/internal/zone"
)

//go:embed data/campinas.yaml
var defaultFixture []byte

type Fixture struct {
	Zones     []ZoneSeed     `yaml:"zones"`
	Incidents []IncidentSeed `yaml:"incidents"`
	Users     []UserSeed     `yaml:"users"`
}

type ZoneSeed struct {
	Name              string           `yaml:"name"`
	Description       string           `yaml:"description"`
	RiskLevel         int              `yaml:"risk_level"`
	IsUnderPremises   bool             `yaml:"is_under_premises"`
	PopulationDensity float64          `yaml:"population_density"`
	Coordinates       zone.Coordinates `yaml:"coordinates"`
}

// IncidentSeed names its zone instead of carrying an id.
type IncidentSeed struct {
	Zone                   string    `yaml:"zone"`
	Type                   string    `yaml:"type"`
	Severity               int       `yaml:"severity"`
	Description            string    `yaml:"description"`
	ReportTime             time.Time `yaml:"report_time"`
	IsValidatedByAuthority bool      `yaml:"is_validated_by_authority"`
}

type UserSeed struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	UserType string `yaml:"user_type"`
}

// Report counts what a run created and skipped.
type Report struct {
	ZonesCreated     int
	ZonesSkipped     int
	IncidentsCreated int
	UsersCreated     int
	UsersSkipped     int
}

// Default returns the embedded Campinas fixture.
func Default() (*Fixture, error) {
	return Parse(defaultFixture)
}

// Load reads a fixture from path.
func Load(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "seeds: read %s", path)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrap(err, "seeds: parse fixture")
	}
	return &f, nil
}

// SeedAll seeds zones, then incidents, then users. Incidents are only added
// to zones created in this run, so a rerun does not duplicate reports.
func SeedAll(ctx context.Context, d *gorm.DB, f *Fixture) (Report, error) {
	var rep Report
	zones := zone.NewService(d)
	incidents := incident.NewService(d)
	users := user.NewService(d)

	created := map[string]*zone.Zone{}
	for _, zs := range f.Zones {
		z, err := zones.Create(ctx, zone.CreateInput{
			Name:              zs.Name,
			Description:       zs.Description,
			RiskLevel:         zs.RiskLevel,
			IsUnderPremises:   zs.IsUnderPremises,
			PopulationDensity: zs.PopulationDensity,
			Coordinates:       zs.Coordinates,
		})
		if errors.Is(err, apperr.ErrConflict) {
			zap.L().Info("zone exists, skipping", zap.String("zone", zs.Name))
			rep.ZonesSkipped++
			continue
		}
		if err != nil {
			return rep, eris.Wrapf(err, "seeds: zone %s", zs.Name)
		}
		created[zs.Name] = z
		rep.ZonesCreated++
	}

	for _, is := range f.Incidents {
		z, ok := created[is.Zone]
		if !ok {
			continue
		}
		t, err := incident.ParseType(is.Type)
		if err != nil {
			return rep, eris.Wrapf(err, "seeds: incident in %s", is.Zone)
		}
		in := incident.CreateInput{
			ZoneID:                 z.ID,
			Description:            is.Description,
			Severity:               is.Severity,
			IsValidatedByAuthority: is.IsValidatedByAuthority,
			Type:                   t,
		}
		if !is.ReportTime.IsZero() {
			in.ReportTime = &is.ReportTime
		}
		if _, err := incidents.Create(ctx, in); err != nil {
			return rep, eris.Wrapf(err, "seeds: incident in %s", is.Zone)
		}
		rep.IncidentsCreated++
	}

	for _, us := range f.Users {
		ut, err := user.ParseUserType(us.UserType)
		if err != nil {
			return rep, eris.Wrapf(err, "seeds: user %s", us.Email)
		}
		exists, err := userExists(ctx, d, us.Email, ut)
		if err != nil {
			return rep, err
		}
		if exists {
			zap.L().Info("user exists, skipping", zap.String("email", us.Email))
			rep.UsersSkipped++
			continue
		}

		in := user.CreateInput{
			Email:    us.Email,
			Username: us.Username,
			Password: us.Password,
			UserType: ut,
		}
		if us.Name != "" {
			in.Name = &us.Name
		}
		if _, err := users.Create(ctx, in); err != nil {
			return rep, eris.Wrapf(err, "seeds: user %s", us.Email)
		}
		rep.UsersCreated++
	}

	zap.L().Info("seeding finished",
		zap.Int("zones_created", rep.ZonesCreated),
		zap.Int("zones_skipped", rep.ZonesSkipped),
		zap.Int("incidents_created", rep.IncidentsCreated),
		zap.Int("users_created", rep.UsersCreated),
		zap.Int("users_skipped", rep.UsersSkipped),
	)
	return rep, nil
}

// userExists checks (email, user_type). The signup rule only guards USER
// emails, so authority accounts would otherwise be inserted again.
func userExists(ctx context.Context, d *gorm.DB, email string, t user.UserType) (bool, error) {
	var n int64
	err := d.WithContext(ctx).Model(&user.User{}).
		Where("email = ? AND user_type = ?", email, t).
		Count(&n).Error
	if err != nil {
		return false, eris.Wrap(err, "seeds: look up user")
	}
	return n > 0, nil
}
