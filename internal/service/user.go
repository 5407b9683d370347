package service

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"unicode"

	"sortify/internal/model"
	"sortify/internal/repo"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const maxDiscriminator = 9999

var (
	fullNameRe = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ-]+(?: [A-Za-zÀ-ÖØ-öø-ÿ-]+)*$`)
	nicknameRe = regexp.MustCompile(`^[A-Za-z0-9_]{2,20}$`)
	mobileRe   = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
)

// UserService — регистрация, вход и профиль.
type UserService struct {
	repo repo.UserRepository
}

func NewUserService(r repo.UserRepository) *UserService {
	return &UserService{repo: r}
}

// RegisterInput — данные регистрации. CAPTCHA и подтверждение пароля
// остаются на внешнем слое.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Nickname string
	Mobile   string
	Job      string
}

// UpdateProfileInput — изменяемые поля профиля. Менять профиль может только
// его владелец: идентификатор берётся из доверенного контекста сессии.
type UpdateProfileInput struct {
	FullName   string
	Mobile     string
	Job        string
	ProfilePic string
}

// validPassword: минимум 7 символов, строчная, прописная, цифра и спецсимвол.
func validPassword(p string) bool {
	if len(p) < 7 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}

func validateRegister(in RegisterInput) error {
	switch {
	case !emailRe.MatchString(in.Email),
		!fullNameRe.MatchString(in.FullName),
		!nicknameRe.MatchString(in.Nickname),
		!validPassword(in.Password):
		return ErrInvalidInput
	}
	if in.Mobile != "" && !mobileRe.MatchString(in.Mobile) {
		return ErrInvalidInput
	}
	return nil
}

// Register создаёт учётную запись. Никнейм дискриминируется случайным
// свободным числовым суффиксом 1..9999; пара (nickname, суффикс) глобально
// уникальна.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validateRegister(in); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	taken, err := s.repo.TakenDiscriminators(ctx, in.Nickname)
	if err != nil {
		return nil, err
	}
	disc, err := pickDiscriminator(taken)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:         in.Email,
		Password:      string(hash),
		FullName:      in.FullName,
		Nickname:      in.Nickname,
		Discriminator: disc,
		Mobile:        in.Mobile,
		Job:           in.Job,
	}
	created, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// pickDiscriminator — случайный свободный суффикс из 1..9999.
func pickDiscriminator(taken []int) (int, error) {
	used := make(map[int]bool, len(taken))
	for _, t := range taken {
		used[t] = true
	}
	free := make([]int, 0, maxDiscriminator)
	for i := 1; i <= maxDiscriminator; i++ {
		if !used[i] {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		return 0, ErrConflict
	}
	return free[rand.Intn(len(free))], nil
}

// Login проверяет пару email/пароль.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// Get возвращает профиль по идентификатору.
func (s *UserService) Get(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile меняет изменяемые поля профиля владельца.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*model.User, error) {
	if in.FullName != "" && !fullNameRe.MatchString(in.FullName) {
		return nil, ErrInvalidInput
	}
	if in.Mobile != "" && !mobileRe.MatchString(in.Mobile) {
		return nil, ErrInvalidInput
	}

	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FullName != "" {
		u.FullName = in.FullName
	}
	if in.Mobile != "" {
		u.Mobile = in.Mobile
	}
	if in.Job != "" {
		u.Job = in.Job
	}
	if in.ProfilePic != "" {
		u.ProfilePic = in.ProfilePic
	}
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
