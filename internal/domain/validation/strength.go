package validation

import "unicode"

// ══════════════════════════════════════════════════════════════════════════════
// ОЦЕНКА НАДЁЖНОСТИ ПАРОЛЯ
// Оценка - только обратная связь для UI. Принимается пароль или нет,
// решает исключительно Password; оценка никогда не блокирует ввод.
// ══════════════════════════════════════════════════════════════════════════════

// StrengthBand - полоса надёжности для отображения в UI.
type StrengthBand string

const (
	// StrengthWeak - слабый пароль (score < 12).
	StrengthWeak StrengthBand = "weak"
	// StrengthMedium - средний пароль (12 <= score < 22).
	StrengthMedium StrengthBand = "medium"
	// StrengthStrong - сильный пароль (score >= 22).
	StrengthStrong StrengthBand = "strong"
)

// classBonus - бонус за присутствие каждого класса символов.
const classBonus = 2

// PasswordStrength вычисляет аддитивную оценку пароля:
// +2 за цифру, +2 за строчную букву, +2 за заглавную, +2 за '_' или '-',
// плюс длина строки в символах.
func PasswordStrength(s string) int {
	var hasDigit, hasLower, hasUpper, hasSpecial int

	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			hasDigit = classBonus
		case unicode.IsLower(r):
			hasLower = classBonus
		case unicode.IsUpper(r):
			hasUpper = classBonus
		case r == '_' || r == '-':
			hasSpecial = classBonus
		}
	}

	return hasDigit + hasLower + hasUpper + hasSpecial + len([]rune(s))
}

// BandFor переводит оценку в полосу надёжности.
func BandFor(score int) StrengthBand {
	switch {
	case score < 12:
		return StrengthWeak
	case score < 22:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}
