package controllers

import "errors"

var (
	ErrBadRequest = errors.New("bad request")
	ErrInvalidID  = errors.New("invalid game id")
	ErrNotFound   = errors.New("game not found")
	ErrGetGames   = errors.New("failed to get games")
	ErrGetGame    = errors.New("failed to get game")
	ErrSearch     = errors.New("failed to search games")
	ErrCreate     = errors.New("failed to create")
	ErrUpdate     = errors.New("failed to update")
	ErrDelete     = errors.New("failed to delete")
	ErrEncoding   = errors.New("failed to encode")
	ErrFetchFeeds = errors.New("failed to fetch game feeds")
	ErrImport     = errors.New("failed to import games")
)
