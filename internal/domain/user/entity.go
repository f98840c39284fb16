// Package user содержит доменную модель пользователя автошколы DriveLog.
// Все поля профиля проходят через синтаксические проверки пакета validation
// до того, как запись попадает в хранилище.
package user

import (
	"errors"
	"time"

	"github.com/drivelog-hub/drivelog/internal/domain/validation"
)

// ══════════════════════════════════════════════════════════════════════════════
// ДОМЕННЫЕ ОШИБКИ
// Каждая ошибка соответствует одному невалидному полю формы: UI подсвечивает
// именно то поле, которое нужно исправить.
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidUsername - имя пользователя не прошло проверку.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidFirstName - имя содержит недопустимые символы.
	ErrInvalidFirstName = errors.New("invalid first name: letters only")

	// ErrInvalidLastName - фамилия содержит недопустимые символы.
	ErrInvalidLastName = errors.New("invalid last name: letters only")

	// ErrInvalidPhone - телефон должен быть восемью цифрами.
	ErrInvalidPhone = errors.New("invalid phone: must be 8 digits")

	// ErrInvalidEmail - адрес электронной почты некорректен.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidCPR - CPR не прошёл проверку контрольной суммы.
	ErrInvalidCPR = errors.New("invalid cpr number")

	// ErrInvalidAddress - адрес не соответствует виду "улица номер [этаж]".
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidPostalCode - почтовый индекс должен быть четырьмя цифрами.
	ErrInvalidPostalCode = errors.New("invalid postal code: must be 4 digits")

	// ErrInvalidCity - город содержит недопустимые символы.
	ErrInvalidCity = errors.New("invalid city: letters only")

	// ErrInvalidPassword - пароль не прошёл проверку.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound - пользователь не найден.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists - пользователь с таким username, email или CPR
	// уже существует.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrNotInstructor - операция доступна только инструкторам.
	ErrNotInstructor = errors.New("user is not an instructor")
)

// ══════════════════════════════════════════════════════════════════════════════
// СУЩНОСТЬ ПОЛЬЗОВАТЕЛЯ
// ══════════════════════════════════════════════════════════════════════════════

// User - пользователь автошколы: студент или инструктор.
type User struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Username - имя для входа.
	Username string

	// FirstName - имя.
	FirstName string

	// LastName - фамилия.
	LastName string

	// Phone - телефон (8 цифр).
	Phone string

	// Email - адрес электронной почты.
	Email string

	// CPR - датский персональный номер.
	CPR string

	// Address - адрес вида "улица номер [этаж]".
	Address string

	// PostalCode - почтовый индекс (4 цифры).
	PostalCode string

	// City - город.
	City string

	// PasswordHash - bcrypt-хеш пароля. Сырой пароль не хранится.
	PasswordHash string

	// PictureURL - ссылка на фото профиля (опционально).
	PictureURL string

	// Instructor - true для инструкторов (доступ к чужим журналам).
	Instructor bool

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// FullName возвращает полное имя для заголовков журнала вождения.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// Profile - сырые строки полей профиля, как их прислала форма.
type Profile struct {
	Username   string
	FirstName  string
	LastName   string
	Phone      string
	Email      string
	CPR        string
	Address    string
	PostalCode string
	City       string
	PictureURL string
}

// Validate прогоняет каждое поле через свой валидатор.
// Возвращается ошибка первого невалидного поля.
func (p Profile) Validate() error {
	if !validation.Username(p.Username) {
		return ErrInvalidUsername
	}
	if !validation.PersonalName(p.FirstName) {
		return ErrInvalidFirstName
	}
	if !validation.PersonalName(p.LastName) {
		return ErrInvalidLastName
	}
	if !validation.Phone(p.Phone) {
		return ErrInvalidPhone
	}
	if !validation.Email(p.Email) {
		return ErrInvalidEmail
	}
	if !validation.CPR(p.CPR) {
		return ErrInvalidCPR
	}
	if !validation.Address(p.Address) {
		return ErrInvalidAddress
	}
	if !validation.PostalCode(p.PostalCode) {
		return ErrInvalidPostalCode
	}
	if !validation.PersonalName(p.City) {
		return ErrInvalidCity
	}
	return nil
}

// NewUser создаёт нового пользователя из валидированного профиля.
// Пароль к этому моменту уже захеширован вызывающей стороной.
func NewUser(id string, profile Profile, passwordHash string, instructor bool) (*User, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, ErrInvalidPassword
	}

	now := time.Now().UTC()

	return &User{
		ID:           id,
		Username:     profile.Username,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Phone:        profile.Phone,
		Email:        profile.Email,
		CPR:          profile.CPR,
		Address:      profile.Address,
		PostalCode:   profile.PostalCode,
		City:         profile.City,
		PasswordHash: passwordHash,
		PictureURL:   profile.PictureURL,
		Instructor:   instructor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ApplyProfile обновляет поля профиля существующего пользователя.
func (u *User) ApplyProfile(profile Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	u.Username = profile.Username
	u.FirstName = profile.FirstName
	u.LastName = profile.LastName
	u.Phone = profile.Phone
	u.Email = profile.Email
	u.CPR = profile.CPR
	u.Address = profile.Address
	u.PostalCode = profile.PostalCode
	u.City = profile.City
	if profile.PictureURL != "" {
		u.PictureURL = profile.PictureURL
	}
	u.UpdatedAt = time.Now().UTC()

	return nil
}
