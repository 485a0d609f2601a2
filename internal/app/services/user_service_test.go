package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/pkg/apperrors"
)

func newTestUserService(t *testing.T) (UserService, *fakeUserRepo) {
	users := newFakeUserRepo(
		storedUser(t, 1, "admin@eston.edu.gh", "secret1", models.RoleAdmin, true),
		storedUser(t, 2, "ama@example.com", "secret2", models.RoleStudent, true),
	)
	return NewUserService(users, zerolog.Nop()), users
}

func TestUserService_List(t *testing.T) {
	svc, _ := newTestUserService(t)

	users, total, err := svc.List(context.Background(), dto.UserFilter{Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "admin@eston.edu.gh", users[0].Email)

	_, _, err = svc.List(context.Background(), dto.UserFilter{Role: "staff"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     dto.CreateUserRequest
		wantErr error
	}{
		{name: "admin account", req: dto.CreateUserRequest{Email: "Yaw@Eston.edu.gh", FirstName: "Yaw", LastName: "Boateng", Role: "admin", Password: "secret9"}},
		{name: "unknown role", req: dto.CreateUserRequest{Email: "yaw@eston.edu.gh", Role: "dean", Password: "secret9"}, wantErr: apperrors.ErrValidationFailed},
		{name: "short password", req: dto.CreateUserRequest{Email: "yaw@eston.edu.gh", Role: "student", Password: "123"}, wantErr: apperrors.ErrValidationFailed},
		{name: "taken email", req: dto.CreateUserRequest{Email: "AMA@example.com", Role: "student", Password: "secret9"}, wantErr: apperrors.ErrEmailAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestUserService(t)
			user, err := svc.Create(ctx, &tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "yaw@eston.edu.gh", user.Email)
			assert.Equal(t, models.RoleAdmin, user.Role)
			assert.True(t, user.IsActive)
		})
	}
}

func TestUserService_UpdateRole(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.UpdateRole(context.Background(), 2, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = svc.UpdateRole(context.Background(), 2, "superuser")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.UpdateRole(context.Background(), 50, "student")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_SelfProtection(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestUserService(t)

	assert.ErrorIs(t, svc.Delete(ctx, 1, 1), apperrors.ErrCannotDeleteSelf)
	_, err := svc.ToggleStatus(ctx, 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrCannotDisableSelf)

	user, err := svc.ToggleStatus(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	require.NoError(t, svc.Delete(ctx, 1, 2))
	_, err = users.GetByID(ctx, 2)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
