package utils

import "strconv"

// Limits for list endpoints.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// ParseLimit разбирает query-параметр limit. Пустое или некорректное значение дает def,
// значения больше max обрезаются.
func ParseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// ParseBool разбирает булевый query-параметр; пустое или некорректное значение дает false.
func ParseBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
