package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
	"github.com/EmpoweredVote/zone-incidents/internal/dbtest"
	"github.com/EmpoweredVote/zone-incidents/internal/models"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(dbtest.Open(t, &User{}))
}

func TestCreate_HashesPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateInput{
		Name:     ptr("Ana"),
		Email:    "ana@example.com",
		Username: "ana",
		Password: "s3cret",
		UserType: TypeUser,
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.True(t, VerifyPassword(u.PasswordHash, "s3cret"))
	assert.False(t, VerifyPassword(u.PasswordHash, "wrong"))

	saved, err := svc.FindOneByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, u.PasswordHash, saved.PasswordHash)
	assert.Equal(t, "Ana", *saved.Name)
	assert.Equal(t, TypeUser, saved.UserType)
}

func TestCreate_DefaultsToUserType(t *testing.T) {
	svc := newTestService(t)

	u, err := svc.Create(context.Background(), CreateInput{Email: "b@example.com", Username: "b", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, TypeUser, u.UserType)
}

func TestCreate_DuplicateUserEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Email: "dup@example.com", Username: "one", Password: "pw", UserType: TypeUser})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Email: "dup@example.com", Username: "two", Password: "pw", UserType: TypeUser})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "dup@example.com")
	assert.Contains(t, err.Error(), "USER")

	users, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestCreate_ExistingUserBlocksAuthoritySignup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Email: "x@example.com", Username: "x", Password: "pw", UserType: TypeUser})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Email: "x@example.com", Username: "x-gov", Password: "pw", UserType: TypeAuthority})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "AUTHORITY")
}

func TestCreate_AuthorityEmailsMayRepeat(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Email: "desk@city.gov", Username: "desk1", Password: "pw", UserType: TypeAuthority})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Email: "desk@city.gov", Username: "desk2", Password: "pw", UserType: TypeAuthority})
	require.NoError(t, err)

	// a USER signup with that email is still allowed: only USER rows are checked
	_, err = svc.Create(ctx, CreateInput{Email: "desk@city.gov", Username: "citizen", Password: "pw", UserType: TypeUser})
	require.NoError(t, err)
}

func TestCreate_RequiresFields(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Email: "a@example.com", Username: "a"})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestUpdate_RehashesPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateInput{Email: "c@example.com", Username: "c", Password: "old"})
	require.NoError(t, err)
	oldHash := u.PasswordHash

	updated, err := svc.Update(ctx, u.ID, UpdateInput{Password: ptr("new"), Phone: ptr("+55 19 99999-0000")})
	require.NoError(t, err)

	assert.NotEqual(t, oldHash, updated.PasswordHash)
	assert.NotEqual(t, "new", updated.PasswordHash)
	assert.True(t, VerifyPassword(updated.PasswordHash, "new"))
	assert.False(t, VerifyPassword(updated.PasswordHash, "old"))
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "+55 19 99999-0000", *updated.Phone)
	assert.Equal(t, "c", updated.Username)
}

func TestUpdate_WithoutPasswordKeepsHash(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateInput{Email: "d@example.com", Username: "d", Password: "pw"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, u.ID, UpdateInput{Username: ptr("dee")})
	require.NoError(t, err)
	assert.Equal(t, "dee", updated.Username)
	assert.Equal(t, u.PasswordHash, updated.PasswordHash)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Update(context.Background(), models.ID(999), UpdateInput{Username: ptr("ghost")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFindOneByID_Missing(t *testing.T) {
	svc := newTestService(t)

	u, err := svc.FindOneByID(context.Background(), models.ID(42))
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFindAll_Empty(t *testing.T) {
	svc := newTestService(t)

	users, err := svc.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestParseUserType(t *testing.T) {
	got, err := ParseUserType(" authority ")
	require.NoError(t, err)
	assert.Equal(t, TypeAuthority, got)

	got, err = ParseUserType("")
	require.NoError(t, err)
	assert.Equal(t, TypeUser, got)

	_, err = ParseUserType("mayor")
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}
