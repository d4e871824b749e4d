// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PageBounds returns the slice bounds of page (1-based) of size pageSize over
// total items, and the number of pages. Out-of-range pages yield an empty
// window at the end.
func PageBounds(total, page, pageSize int) (start, end, totalPages int) {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages = total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	// Compare before multiplying; (page-1)*pageSize overflows for huge pages.
	if page-1 >= totalPages {
		return total, total, totalPages
	}
	start = (page - 1) * pageSize
	end = total
	if pageSize < total-start {
		end = start + pageSize
	}
	return start, end, totalPages
}
