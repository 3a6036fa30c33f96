package services

import "github.com/google/uuid"

// validID reports whether id can be a row key. Malformed ids never match a
// row, so callers answer them with common.ErrorNotFound without a query.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
