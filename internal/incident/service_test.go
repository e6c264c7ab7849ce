package incident

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
	"github.com/EmpoweredVote/zone-incidents/internal/dbtest"
	"github.com/EmpoweredVote/zone-incidents/internal/models"
	"github.com/EmpoweredVote/zone-incidents/internal/zone"
)

type fixture struct {
	svc   *Service
	zones *zone.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d := dbtest.Open(t, &zone.Polygon{}, &zone.Zone{}, &Incident{})
	return &fixture{svc: NewService(d), zones: zone.NewService(d)}
}

func (f *fixture) newZone(t *testing.T, name string) *zone.Zone {
	t.Helper()
	z, err := f.zones.Create(context.Background(), zone.CreateInput{Name: name})
	require.NoError(t, err)
	return z
}

func (f *fixture) newIncident(t *testing.T, in CreateInput) *Incident {
	t.Helper()
	if in.Type == "" {
		in.Type = TypeOther
	}
	inc, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	return inc
}

func ids(incidents []Incident) []models.ID {
	out := make([]models.ID, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, inc.ID)
	}
	return out
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"FIRE", TypeFire, false},
		{"fire", TypeFire, false},
		{" theft ", TypeTheft, false},
		{"suspicious activity", TypeSuspiciousActivity, false},
		{"Suspicious-Activity", TypeSuspiciousActivity, false},
		{"", "", true},
		{"alien abduction", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreate_Defaults(t *testing.T) {
	f := newFixture(t)
	z := f.newZone(t, "Centro")

	before := time.Now().UTC().Add(-time.Second)
	inc := f.newIncident(t, CreateInput{ZoneID: z.ID, Description: "bike stolen", Severity: 2, Type: TypeTheft})

	assert.NotZero(t, inc.ID)
	assert.False(t, inc.IsValidatedByAuthority)
	assert.True(t, inc.ReportTime.After(before), "report time defaults to now")
	require.NotNil(t, inc.Zone)
	assert.Equal(t, "Centro", inc.Zone.Name)
}

func TestCreate_KeepsSuppliedReportTime(t *testing.T) {
	f := newFixture(t)
	z := f.newZone(t, "Centro")
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	inc := f.newIncident(t, CreateInput{ZoneID: z.ID, ReportTime: &at, IsValidatedByAuthority: true})

	found, err := f.svc.FindOneByID(context.Background(), inc.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(found.ReportTime))
	assert.True(t, found.IsValidatedByAuthority)
}

func TestCreate_ZoneReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{Type: TypeFire})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = f.svc.Create(ctx, CreateInput{ZoneID: 999, Type: TypeFire})
	assert.ErrorIs(t, err, apperr.ErrInvalidReference)

	all, err := f.svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdate_PartialAndReassign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newZone(t, "A")
	b := f.newZone(t, "B")
	inc := f.newIncident(t, CreateInput{ZoneID: a.ID, Description: "smoke", Severity: 1, Type: TypeFire})

	updated, err := f.svc.Update(ctx, inc.ID, UpdateInput{ZoneID: &b.ID, Severity: ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, b.ID, updated.ZoneID)
	require.NotNil(t, updated.Zone)
	assert.Equal(t, "B", updated.Zone.Name)
	assert.Equal(t, 4, updated.Severity)
	assert.Equal(t, "smoke", updated.Description)
	assert.Equal(t, TypeFire, updated.Type)
}

func TestUpdate_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	z := f.newZone(t, "A")
	inc := f.newIncident(t, CreateInput{ZoneID: z.ID})

	_, err := f.svc.Update(ctx, 404, UpdateInput{Severity: ptr(1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	missing := models.ID(999)
	_, err = f.svc.Update(ctx, inc.ID, UpdateInput{ZoneID: &missing})
	assert.ErrorIs(t, err, apperr.ErrInvalidReference)

	found, err := f.svc.FindOneByID(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, z.ID, found.ZoneID, "failed reassignment leaves the zone alone")
}

func TestFindOneByID_Missing(t *testing.T) {
	f := newFixture(t)
	inc, err := f.svc.FindOneByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, inc)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	z := f.newZone(t, "A")
	inc := f.newIncident(t, CreateInput{ZoneID: z.ID, Description: "gone"})

	deleted, err := f.svc.Delete(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, "gone", deleted.Description)

	found, err := f.svc.FindOneByID(ctx, inc.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	still, err := f.zones.FindOneByID(ctx, z.ID)
	require.NoError(t, err)
	assert.NotNil(t, still, "deleting an incident leaves its zone")

	_, err = f.svc.Delete(ctx, inc.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestZoneWithIncidentsCannotBeDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	z := f.newZone(t, "A")
	f.newIncident(t, CreateInput{ZoneID: z.ID})

	_, err := f.zones.Delete(ctx, z.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	still, err := f.zones.FindOneByID(ctx, z.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestFindByZoneAndType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newZone(t, "A")
	b := f.newZone(t, "B")
	fire := f.newIncident(t, CreateInput{ZoneID: a.ID, Type: TypeFire})
	theft := f.newIncident(t, CreateInput{ZoneID: a.ID, Type: TypeTheft})
	flood := f.newIncident(t, CreateInput{ZoneID: b.ID, Type: TypeFlood})

	inA, err := f.svc.FindByZone(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{fire.ID, theft.ID}, ids(inA))
	for _, inc := range inA {
		require.NotNil(t, inc.Zone)
		assert.Equal(t, "A", inc.Zone.Name)
	}

	floods, err := f.svc.FindByType(ctx, TypeFlood)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{flood.ID}, ids(floods))

	none, err := f.svc.FindByType(ctx, TypeAssault)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFindBySeverity_InclusiveThreshold(t *testing.T) {
	f := newFixture(t)
	z := f.newZone(t, "A")
	bySeverity := map[int]models.ID{}
	for s := 1; s <= 5; s++ {
		bySeverity[s] = f.newIncident(t, CreateInput{ZoneID: z.ID, Severity: s}).ID
	}

	got, err := f.svc.FindBySeverity(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{bySeverity[3], bySeverity[4], bySeverity[5]}, ids(got))
}

func TestFindByDateRange_InclusiveBounds(t *testing.T) {
	f := newFixture(t)
	z := f.newZone(t, "A")
	day := func(d int) *time.Time {
		at := time.Date(2024, 5, d, 10, 0, 0, 0, time.UTC)
		return &at
	}
	f.newIncident(t, CreateInput{ZoneID: z.ID, ReportTime: day(1)})
	second := f.newIncident(t, CreateInput{ZoneID: z.ID, ReportTime: day(2)})
	third := f.newIncident(t, CreateInput{ZoneID: z.ID, ReportTime: day(3)})
	f.newIncident(t, CreateInput{ZoneID: z.ID, ReportTime: day(4)})

	got, err := f.svc.FindByDateRange(context.Background(), *day(2), *day(3))
	require.NoError(t, err)
	assert.Equal(t, []models.ID{second.ID, third.ID}, ids(got))
}

func TestValidateIncident_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	z := f.newZone(t, "A")
	inc := f.newIncident(t, CreateInput{ZoneID: z.ID})

	first, err := f.svc.ValidateIncident(ctx, inc.ID)
	require.NoError(t, err)
	assert.True(t, first.IsValidatedByAuthority)

	second, err := f.svc.ValidateIncident(ctx, inc.ID)
	require.NoError(t, err)
	assert.True(t, second.IsValidatedByAuthority)

	_, err = f.svc.ValidateIncident(ctx, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
