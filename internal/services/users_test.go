package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Users.Register(ctx, RegisterInput{Name: "Ayse", Email: " Ayse@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ayse@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = f.svc.Users.Register(ctx, RegisterInput{Name: "Dup", Email: "ayse@example.com", Password: "secret1"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.Users.Register(ctx, RegisterInput{Name: "Short", Email: "short@example.com", Password: "123"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	result, err := f.svc.Users.Login(ctx, "AYSE@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, result.User.LastLogin)
	assert.True(t, result.User.LastLogin.Equal(testNow))

	tokens := auth.NewTokenIssuer("test-secret", 0)
	identity, err := tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.ID)
	assert.Equal(t, models.RoleUser, identity.Role)

	_, err = f.svc.Users.Login(ctx, "ayse@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.KindOf(err).HTTPStatus())

	_, err = f.svc.Users.Login(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.EqualError(t, err, "User not found")
}

func TestRehberAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rehber := f.user(t, models.RoleRehber)
	plain := f.user(t, models.RoleUser)

	worker, err := f.svc.Users.Create(ctx, UserInput{
		Name:     ptr("Worker"),
		Email:    ptr("worker@example.com"),
		Password: ptr("secret1"),
		Role:     ptr(models.RoleIsci),
		RehberID: &rehber.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, worker.RehberID)
	assert.Equal(t, rehber.ID, *worker.RehberID)

	_, err = f.svc.Users.Update(ctx, worker.ID, UserInput{RehberID: &plain.ID})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "rehber must hold the REHBER role")

	_, err = f.svc.Users.Update(ctx, rehber.ID, UserInput{RehberID: &rehber.ID})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "no self-supervision")

	_, err = f.svc.Users.Update(ctx, worker.ID, UserInput{RehberID: ptr(uint(9999))})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	updated, err := f.svc.Users.Update(ctx, worker.ID, UserInput{RehberID: ptr(uint(0))})
	require.NoError(t, err)
	assert.Nil(t, updated.RehberID, "zero clears the supervisor")
}

func TestDeleteUserClearsSubordinates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rehber := f.user(t, models.RoleRehber)
	worker := f.user(t, models.RoleIsci)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", worker.ID).Update("rehber_id", rehber.ID).Error)
	require.NoError(t, f.db.Create(&models.Notification{UserID: rehber.ID, Message: "hello"}).Error)

	require.NoError(t, f.svc.Users.Delete(ctx, rehber.ID))

	var stored models.User
	require.NoError(t, f.db.First(&stored, worker.ID).Error)
	assert.Nil(t, stored.RehberID)
	assert.EqualValues(t, 0, count(t, f.db, &models.User{}, "id = ?", rehber.ID))
	assert.EqualValues(t, 0, count(t, f.db, &models.Notification{}, "user_id = ?", rehber.ID))

	err := f.svc.Users.Delete(ctx, rehber.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteUserWithIssuesConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, models.RoleAdmin)
	worker := f.user(t, models.RoleIsci)
	project := f.project(t, admin)
	f.issue(t, project.ID, nil, admin, worker)

	err := f.svc.Users.Delete(ctx, worker.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.EqualValues(t, 1, count(t, f.db, &models.User{}, "id = ?", worker.ID))
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Users.Register(ctx, RegisterInput{Name: "Old", Email: "me@example.com", Password: "secret1"})
	require.NoError(t, err)
	caller := auth.Identity{ID: user.ID, Email: user.Email, Role: user.Role}

	updated, err := f.svc.Users.UpdateProfile(ctx, caller, ProfileInput{Name: ptr("New"), Password: ptr("secret2")})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, models.RoleUser, updated.Role)

	_, err = f.svc.Users.Login(ctx, "me@example.com", "secret2")
	assert.NoError(t, err)
}
