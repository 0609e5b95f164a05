package services

import "errors"

var (
	ErrFetchFeed   = errors.New("failed to fetch feed")
	ErrInsertGames = errors.New("failed to insert games")
)
