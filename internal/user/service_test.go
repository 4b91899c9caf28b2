package user

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/memoapp/internal/model"
	"github.com/hitoshi/memoapp/internal/repository"
)

type mockUserRepo struct {
	deleteByIDFn func(ctx context.Context, id string) (bool, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return true, nil
}

type mockSessionRepo struct {
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) UpdateIdentity(ctx context.Context, session *model.Session) error {
	return nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	return nil
}

func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

var (
	_ repository.UserRepository    = (*mockUserRepo)(nil)
	_ repository.SessionRepository = (*mockSessionRepo)(nil)
)

// セッション削除がユーザー削除より先に行われる
func TestDeleteAccount_DeletesSessionsBeforeUser(t *testing.T) {
	var order []string
	users := &mockUserRepo{
		deleteByIDFn: func(ctx context.Context, id string) (bool, error) {
			order = append(order, "user")
			return true, nil
		},
	}
	sessions := &mockSessionRepo{
		deleteByUserIDFn: func(ctx context.Context, userID string) error {
			order = append(order, "sessions")
			return nil
		},
	}

	svc := NewService(users, sessions)
	if err := svc.DeleteAccount(context.Background(), "u-1"); err != nil {
		t.Fatalf("DeleteAccount returned error: %v", err)
	}

	if len(order) != 2 || order[0] != "sessions" || order[1] != "user" {
		t.Errorf("order = %v, want [sessions user]", order)
	}
}

func TestDeleteAccount_UserNotFound(t *testing.T) {
	users := &mockUserRepo{
		deleteByIDFn: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}

	svc := NewService(users, &mockSessionRepo{})
	err := svc.DeleteAccount(context.Background(), "u-x")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("error = %v, want APIError %s", err, model.ErrCodeUserNotFound)
	}
}

func TestDeleteAccount_SessionDeleteFailure_AbortsUserDelete(t *testing.T) {
	userDeleted := false
	users := &mockUserRepo{
		deleteByIDFn: func(ctx context.Context, id string) (bool, error) {
			userDeleted = true
			return true, nil
		},
	}
	sessions := &mockSessionRepo{
		deleteByUserIDFn: func(ctx context.Context, userID string) error {
			return errors.New("connection reset")
		},
	}

	svc := NewService(users, sessions)
	if err := svc.DeleteAccount(context.Background(), "u-1"); err == nil {
		t.Fatal("expected error")
	}
	if userDeleted {
		t.Error("user must not be deleted when session cleanup fails")
	}
}

func TestDeleteAccount_EmptyUserID(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{})
	if err := svc.DeleteAccount(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty user ID")
	}
}
