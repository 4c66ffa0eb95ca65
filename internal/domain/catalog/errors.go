package catalog

import "errors"

var (
	ErrUnknownRole       = errors.New("unknown role classification")
	ErrWeightConfigDrift = errors.New("role weights do not sum to 100")
	ErrInvalidCatalog    = errors.New("invalid metric catalog")
)
