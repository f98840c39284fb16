// Package validation содержит чистые проверки полей профиля DriveLog.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
//
// Каждая функция принимает одну сырую строку и возвращает bool.
// "Невалидно" - это нормальный результат, а не ошибка: формы показывают
// пользователю подсказку и просят ввести поле заново.
package validation

import (
	"strings"
	"unicode"
)

// ══════════════════════════════════════════════════════════════════════════════
// КОНСТАНТЫ
// ══════════════════════════════════════════════════════════════════════════════

// usernameSpecials - спецсимволы, разрешённые внутри имени пользователя.
const usernameSpecials = "_-."

// PhoneLength - длина датского телефонного номера без кода страны.
const PhoneLength = 8

// PostalCodeLength - длина датского почтового индекса.
const PostalCodeLength = 4

// MinPasswordLength - минимальная длина пароля.
const MinPasswordLength = 3

// cprWeights - позиционные веса контрольной суммы CPR (modulus 11).
var cprWeights = [10]int{4, 3, 2, 7, 6, 5, 4, 3, 2, 1}

// ══════════════════════════════════════════════════════════════════════════════
// ВАЛИДАТОРЫ ПОЛЕЙ
// ══════════════════════════════════════════════════════════════════════════════

// Username проверяет имя пользователя.
// Правила: непустое; символы - буквы, цифры или {_, -, .};
// спецсимвол не может стоять первым, последним или рядом с другим спецсимволом.
func Username(s string) bool {
	if s == "" {
		return false
	}

	runes := []rune(s)

	if isUsernameSpecial(runes[0]) || isUsernameSpecial(runes[len(runes)-1]) {
		return false
	}

	for i, r := range runes {
		if !isAlphanumeric(r) && !isUsernameSpecial(r) {
			return false
		}
		if i > 0 && isUsernameSpecial(r) && isUsernameSpecial(runes[i-1]) {
			return false
		}
	}

	return true
}

// PersonalName проверяет имя, фамилию или город: непустое, только буквы.
// Цифры, знаки препинания и пробелы не допускаются.
func PersonalName(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

// Address проверяет адрес вида "улица номер [этаж]".
// Токены разделяются одиночными пробелами: улица - только буквы,
// номер дома - только цифры, опциональный этаж - буквы и цифры.
// Один токен или больше трёх - отказ.
func Address(s string) bool {
	if s == "" || !strings.Contains(s, " ") {
		return false
	}

	tokens := strings.Split(s, " ")
	if len(tokens) < 2 || len(tokens) > 3 {
		return false
	}

	street, houseNumber := tokens[0], tokens[1]

	if !PersonalName(street) {
		return false
	}

	if !allDigits(houseNumber) {
		return false
	}

	if len(tokens) == 3 {
		floor := tokens[2]
		if floor == "" {
			return false
		}
		for _, r := range floor {
			if !isAlphanumeric(r) {
				return false
			}
		}
	}

	return true
}

// Email проверяет адрес электронной почты.
// Ровно один символ @; локальная часть - буквы, цифры и {_, ., -};
// домен - буквы, цифры и {., -}, не начинается и не заканчивается
// на точку или дефис и содержит хотя бы одну точку.
func Email(s string) bool {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return false
	}

	localPart, domainPart := parts[0], parts[1]

	for _, r := range localPart {
		if !isAlphanumeric(r) && r != '_' && r != '.' && r != '-' {
			return false
		}
	}

	if domainPart == "" {
		return false
	}
	for _, r := range domainPart {
		if !isAlphanumeric(r) && r != '.' && r != '-' {
			return false
		}
	}
	if strings.HasPrefix(domainPart, ".") || strings.HasPrefix(domainPart, "-") ||
		strings.HasSuffix(domainPart, ".") || strings.HasSuffix(domainPart, "-") {
		return false
	}
	if !strings.Contains(domainPart, ".") {
		return false
	}

	return true
}

// CPR проверяет датский персональный номер (CPR) по контрольной сумме
// modulus 11. Дефисы игнорируются; после очистки требуется ровно 10 цифр.
func CPR(s string) bool {
	cleaned := strings.ReplaceAll(s, "-", "")

	if len(cleaned) != 10 {
		return false
	}

	sum := 0
	for i, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
		sum += int(r-'0') * cprWeights[i]
	}

	return sum%11 == 0
}

// Password проверяет пароль: непустой после обрезки пробелов,
// длина не меньше MinPasswordLength, символы - буквы, цифры, '_' или '-'.
func Password(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}

	if len([]rune(s)) < MinPasswordLength {
		return false
	}

	for _, r := range s {
		if !isAlphanumeric(r) && r != '_' && r != '-' {
			return false
		}
	}

	return true
}

// Phone проверяет телефонный номер: ровно PhoneLength цифр.
func Phone(s string) bool {
	return fixedLengthDigits(s, PhoneLength)
}

// PostalCode проверяет почтовый индекс: ровно PostalCodeLength цифр.
func PostalCode(s string) bool {
	return fixedLengthDigits(s, PostalCodeLength)
}

// ══════════════════════════════════════════════════════════════════════════════
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ══════════════════════════════════════════════════════════════════════════════

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isUsernameSpecial(r rune) bool {
	return strings.ContainsRune(usernameSpecials, r)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func fixedLengthDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	return allDigits(s)
}
