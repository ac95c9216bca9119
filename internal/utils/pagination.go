package utils

import (
	"errors"
	"strconv"
	"strings"

	"github.com/yukikurage/issue-tracker-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePage parses a 1-based page index. Non-numeric or values below one yield
// the first page; values past MaxPage are clamped to it.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) && page > 0 {
		return constants.MaxPage
	}
	if err != nil || page < constants.MinPage {
		return constants.MinPage
	}
	if page > constants.MaxPage {
		return constants.MaxPage
	}
	return page
}

// ParsePageSize parses a page size, falling back to the default for non-numeric
// or non-positive input and clamping to the maximum.
func ParsePageSize(raw string) int {
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || size < 1 {
		return constants.DefaultPageSize
	}
	if size > constants.MaxPageSize {
		return constants.MaxPageSize
	}
	return size
}

// GetPaginationParams extracts and validates pagination parameters from raw query values
func GetPaginationParams(rawPage, rawPageSize string) PaginationParams {
	page := ParsePage(rawPage)
	limit := ParsePageSize(rawPageSize)

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages returns the number of pages needed to hold total items.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
