// Package admin holds the privileged back-office actions.
package admin

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
)

// ListUsersFailedMessage is shown to operators when the identity provider
// cannot produce the user list.
const ListUsersFailedMessage = "사용자 목록을 불러오는 중 서버 오류가 발생했습니다."

// UserLister is the privileged identity-administration client. It must be
// built with service credentials, never from a visitor's session.
type UserLister interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// UserListResult is either a UserList or a ListFailure. Callers switch on the
// concrete type.
type UserListResult interface {
	userListResult()
}

// UserList is the provider's user sequence, passed through untouched.
type UserList []domain.User

// ListFailure replaces the user sequence when the provider call failed.
type ListFailure struct {
	Message string        `json:"message"`
	Data    []domain.User `json:"data"`
}

func (UserList) userListResult()    {}
func (ListFailure) userListResult() {}

type UseCase struct {
	logger *zap.Logger
	onFail func()
}

func New(logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{logger: logger}
}

// OnFailure registers a hook run each time the provider call fails.
func (uc *UseCase) OnFailure(fn func()) {
	uc.onFail = fn
}

// GetAllUsers asks the provider for every registered user. Any provider error
// is logged and folded into a ListFailure; it is never returned or retried.
func (uc *UseCase) GetAllUsers(ctx context.Context, lister UserLister) UserListResult {
	if lister == nil {
		return uc.fail(domain.NewError(domain.ErrCodeInternal, "identity admin client is not configured"))
	}
	users, err := lister.ListUsers(ctx)
	if err != nil {
		return uc.fail(err)
	}
	return UserList(users)
}

func (uc *UseCase) fail(err error) ListFailure {
	uc.logger.Error("listing users failed", zap.Error(err))
	if uc.onFail != nil {
		uc.onFail()
	}
	return ListFailure{Message: ListUsersFailedMessage, Data: []domain.User{}}
}
