package http

import (
	"strconv"
	"strings"
)

// ---- helpers ----

func intParam(c interface{ Param(string) string }, name string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(c.Param(name)))
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
