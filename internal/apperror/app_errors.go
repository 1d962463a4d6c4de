package apperror

import "errors"

var (
	ErrRoundOver       = errors.New("round is already over")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrInvalidMove     = errors.New("move is out of history range")
	ErrMatchNotFound   = errors.New("match not found")
	ErrArchiveDisabled = errors.New("round archive is disabled")
)
