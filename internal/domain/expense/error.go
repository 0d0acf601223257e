package expense

import "errors"

var (
	ErrPartialInsert = errors.New("partial transaction insert")
)
