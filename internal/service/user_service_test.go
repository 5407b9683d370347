package service

import (
	"context"
	"testing"

	"sortify/internal/model"
	"sortify/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) TakenDiscriminators(ctx context.Context, nickname string) ([]int, error) {
	args := m.Called(ctx, nickname)
	if d, ok := args.Get(0).([]int); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

func validInput() RegisterInput {
	return RegisterInput{
		Email:    "john@example.com",
		Password: "Str0ng!pass",
		FullName: "John Doe",
		Nickname: "john",
	}
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	svc := NewUserService(m)

	t.Run("ok when email free", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "john@example.com").Return((*model.User)(nil), gorm.ErrRecordNotFound).Once()
		m.On("TakenDiscriminators", mock.Anything, "john").Return([]int{1, 2}, nil).Once()
		created := &model.User{ID: 10, Email: "john@example.com", Nickname: "john", Discriminator: 7}
		m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			// пароль захеширован, суффикс выбран из свободных
			return u.Email == "john@example.com" &&
				u.Password != "Str0ng!pass" && u.Password != "" &&
				u.Discriminator >= 1 && u.Discriminator <= maxDiscriminator &&
				u.Discriminator != 1 && u.Discriminator != 2
		})).Return(created, nil).Once()

		user, err := svc.Register(ctx, validInput())
		assert.NoError(t, err)
		assert.Equal(t, int64(10), user.ID)
		m.AssertExpectations(t)
	})

	t.Run("conflict when email taken", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "john@example.com").Return(&model.User{ID: 1}, nil).Once()

		user, err := svc.Register(ctx, validInput())
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrEmailTaken)
		m.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		cases := map[string]func(*RegisterInput){
			"bad email":       func(in *RegisterInput) { in.Email = "nope" },
			"weak password":   func(in *RegisterInput) { in.Password = "password" },
			"short password":  func(in *RegisterInput) { in.Password = "S1!a" },
			"digits in name":  func(in *RegisterInput) { in.FullName = "John 2" },
			"short nickname":  func(in *RegisterInput) { in.Nickname = "j" },
			"spaced nickname": func(in *RegisterInput) { in.Nickname = "jo hn" },
			"bad mobile":      func(in *RegisterInput) { in.Mobile = "call me" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				m.ExpectedCalls = nil
				in := validInput()
				mutate(&in)
				_, err := svc.Register(ctx, in)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})
}

func TestPickDiscriminator(t *testing.T) {
	t.Run("skips taken", func(t *testing.T) {
		taken := make([]int, 0, maxDiscriminator-1)
		for i := 1; i < maxDiscriminator; i++ {
			taken = append(taken, i)
		}
		d, err := pickDiscriminator(taken)
		assert.NoError(t, err)
		assert.Equal(t, maxDiscriminator, d)
	})

	t.Run("exhausted", func(t *testing.T) {
		taken := make([]int, 0, maxDiscriminator)
		for i := 1; i <= maxDiscriminator; i++ {
			taken = append(taken, i)
		}
		_, err := pickDiscriminator(taken)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	svc := NewUserService(m)

	// готовим хеш для пароля "secret"
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)

	t.Run("ok with valid credentials", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(&model.User{ID: 2, Email: "alice@example.com", Password: string(hash)}, nil).Once()

		user, err := svc.Login(ctx, "alice@example.com", "secret")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), user.ID)
		m.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(&model.User{ID: 2, Password: string(hash)}, nil).Once()

		user, err := svc.Login(ctx, "alice@example.com", "wrong")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrBadCredentials)
		m.AssertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return((*model.User)(nil), gorm.ErrRecordNotFound).Once()

		_, err := svc.Login(ctx, "ghost@example.com", "secret")
		assert.ErrorIs(t, err, ErrBadCredentials)
		m.AssertExpectations(t)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	svc := NewUserService(m)

	t.Run("updates only provided fields", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByID", mock.Anything, int64(5)).Return(&model.User{ID: 5, FullName: "Old Name", Job: "analyst"}, nil).Once()
		m.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.FullName == "New Name" && u.Job == "analyst" && u.Mobile == "+7 999 111-22-33"
		})).Return(nil).Once()

		u, err := svc.UpdateProfile(ctx, 5, UpdateProfileInput{FullName: "New Name", Mobile: "+7 999 111-22-33"})
		assert.NoError(t, err)
		assert.Equal(t, "New Name", u.FullName)
		m.AssertExpectations(t)
	})

	t.Run("invalid name", func(t *testing.T) {
		m.ExpectedCalls = nil
		_, err := svc.UpdateProfile(ctx, 5, UpdateProfileInput{FullName: "x1!"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown user", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByID", mock.Anything, int64(6)).Return((*model.User)(nil), gorm.ErrRecordNotFound).Once()
		_, err := svc.UpdateProfile(ctx, 6, UpdateProfileInput{Job: "dev"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
