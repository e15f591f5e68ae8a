package services

import "errors"

var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed        = errors.New("validation failed")
	ErrBracketAlreadyGenerated = errors.New("bracket already generated for this tournament")
	ErrBracketNotGenerated     = errors.New("bracket has not been generated yet")
	ErrMatchNotFound           = errors.New("match not found in bracket")
	ErrTeamNotFound            = errors.New("team not found")
	ErrEntrantsRequired        = errors.New("at least two entrants are required")
	ErrFormatMismatch          = errors.New("operation not supported by tournament format")
)
