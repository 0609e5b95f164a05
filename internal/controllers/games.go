package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"game_catalog/internal/models"
	"game_catalog/internal/services"
	"game_catalog/internal/storage"
	"game_catalog/internal/validation"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type GameServicer interface {
	GetAll(ctx context.Context) ([]models.Game, error)
	GetByID(ctx context.Context, id int64) (*models.Game, error)
	Search(ctx context.Context, filter models.SearchFilter) ([]models.Game, error)
	Create(ctx context.Context, game *models.Game) (*models.Game, error)
	Update(ctx context.Context, id int64, changes models.GameChanges) (*models.Game, error)
	Delete(ctx context.Context, id int64) error
}

type Populator interface {
	Populate(ctx context.Context) (int, error)
}

type CreateGameRequest struct {
	PublisherID string `json:"publisherId"`
	Name        string `json:"name"`
	Platform    string `json:"platform"`
	StoreID     string `json:"storeId"`
	BundleID    string `json:"bundleId"`
	AppVersion  string `json:"appVersion"`
	IsPublished bool   `json:"isPublished"`
}

type DeleteGameResponse struct {
	ID int64 `json:"id"`
}

type GameController struct {
	service  GameServicer
	importer Populator
	log      *slog.Logger
}

func NewGameController(s GameServicer, p Populator, log *slog.Logger) *GameController {
	return &GameController{
		service:  s,
		importer: p,
		log:      log,
	}
}

// GetAll godoc
// @Summary      List games
// @Description  Returns every game in the catalog ordered by id
// @Tags         games
// @Produce      json
// @Success      200  {array}   models.Game
// @Failure      500  {string}  string
// @Router       /games [get]
func (c *GameController) GetAll(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.GetAll"

	res, err := c.service.GetAll(r.Context())
	if err != nil {
		c.log.Error(
			ErrGetGames.Error(),
			slog.String("operation", op),
			slog.String("error", err.Error()))
		http.Error(w, ErrGetGames.Error(), http.StatusInternalServerError)
		return
	}

	c.respond(w, op, http.StatusOK, res)
}

// GetByID godoc
// @Summary      Get a game
// @Tags         games
// @Produce      json
// @Param        id   path      int  true  "Game ID"
// @Success      200  {object}  models.Game
// @Failure      400  {string}  string
// @Failure      404  {string}  string
// @Failure      500  {string}  string
// @Router       /games/{id} [get]
func (c *GameController) GetByID(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.GetByID"

	id, ok := c.gameID(w, r, op)
	if !ok {
		return
	}

	res, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		c.storeError(w, op, id, ErrGetGame, err)
		return
	}

	c.respond(w, op, http.StatusOK, res)
}

// Search godoc
// @Summary      Search games
// @Description  Substring match on name and platform; an empty body returns every game
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        filter  body      models.SearchFilter  false  "Filters"
// @Success      200     {array}   models.Game
// @Failure      400     {string}  string
// @Failure      500     {string}  string
// @Router       /games/search [post]
func (c *GameController) Search(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Search"

	body, ok := c.readBody(w, r, op, validation.Search)
	if !ok {
		return
	}

	var filter models.SearchFilter
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &filter); err != nil {
			c.log.Warn(ErrBadRequest.Error(), slog.String("operation", op), slog.String("error", err.Error()))
			http.Error(w, ErrBadRequest.Error(), http.StatusBadRequest)
			return
		}
	}

	games, err := c.service.Search(r.Context(), filter)
	if err != nil {
		c.log.Error(ErrSearch.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrSearch.Error(), http.StatusInternalServerError)
		return
	}

	c.respond(w, op, http.StatusOK, games)
}

// Create godoc
// @Summary      Create a game
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        game  body      controllers.CreateGameRequest  true  "Game fields"
// @Success      200   {object}  models.Game
// @Failure      400   {string}  string
// @Failure      500   {string}  string
// @Router       /games [post]
func (c *GameController) Create(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Create"

	body, ok := c.readBody(w, r, op, validation.CreateGame)
	if !ok {
		return
	}

	var request CreateGameRequest
	if err := json.Unmarshal(body, &request); err != nil {
		c.log.Warn(ErrBadRequest.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrBadRequest.Error(), http.StatusBadRequest)
		return
	}

	game := &models.Game{
		PublisherID: request.PublisherID,
		Name:        request.Name,
		Platform:    request.Platform,
		StoreID:     request.StoreID,
		BundleID:    request.BundleID,
		AppVersion:  request.AppVersion,
		IsPublished: request.IsPublished,
	}

	res, err := c.service.Create(r.Context(), game)
	if err != nil {
		c.log.Error(ErrCreate.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrCreate.Error(), http.StatusInternalServerError)
		return
	}

	c.log.Info("game created", slog.String("operation", op), slog.Int64("id", res.ID))
	c.respond(w, op, http.StatusOK, res)
}

// Update godoc
// @Summary      Update a game
// @Description  Writes only the supplied fields; id, createdAt and updatedAt are ignored
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Game ID"
// @Param        game  body      models.GameChanges  true  "Fields to change"
// @Success      200   {object}  models.Game
// @Failure      400   {string}  string
// @Failure      404   {string}  string
// @Failure      500   {string}  string
// @Router       /games/{id} [put]
func (c *GameController) Update(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Update"

	id, ok := c.gameID(w, r, op)
	if !ok {
		return
	}

	body, ok := c.readBody(w, r, op, validation.UpdateGame)
	if !ok {
		return
	}

	var changes models.GameChanges
	if err := json.Unmarshal(body, &changes); err != nil {
		c.log.Warn(ErrBadRequest.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrBadRequest.Error(), http.StatusBadRequest)
		return
	}

	res, err := c.service.Update(r.Context(), id, changes)
	if err != nil {
		c.storeError(w, op, id, ErrUpdate, err)
		return
	}

	c.respond(w, op, http.StatusOK, res)
}

// Delete godoc
// @Summary      Delete a game
// @Tags         games
// @Produce      json
// @Param        id   path      int  true  "Game ID"
// @Success      200  {object}  controllers.DeleteGameResponse
// @Failure      400  {string}  string
// @Failure      404  {string}  string
// @Failure      500  {string}  string
// @Router       /games/{id} [delete]
func (c *GameController) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Delete"

	id, ok := c.gameID(w, r, op)
	if !ok {
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		c.storeError(w, op, id, ErrDelete, err)
		return
	}

	c.log.Info("game deleted", slog.String("operation", op), slog.Int64("id", id))
	c.respond(w, op, http.StatusOK, DeleteGameResponse{ID: id})
}

// Populate imports both top-100 feeds. Success is a bare 200 with the number
// of inserted rows in X-Import-Count.
//
// @Summary      Import the top-100 feeds
// @Description  Fetches the Android and iOS feeds and inserts every record
// @Tags         games
// @Success      200  {string}  string  "empty body, X-Import-Count header"
// @Failure      500  {string}  string
// @Failure      502  {string}  string
// @Router       /games/populate [post]
func (c *GameController) Populate(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Populate"

	count, err := c.importer.Populate(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrFetchFeed) {
			c.log.Error(ErrFetchFeeds.Error(), slog.String("operation", op), slog.String("error", err.Error()))
			http.Error(w, ErrFetchFeeds.Error(), http.StatusBadGateway)
			return
		}
		c.log.Error(ErrImport.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrImport.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Import-Count", strconv.Itoa(count))
	w.WriteHeader(http.StatusOK)
}

func (c *GameController) gameID(w http.ResponseWriter, r *http.Request, op string) (int64, bool) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.log.Warn(
			ErrInvalidID.Error(),
			slog.String("operation", op),
			slog.String("id", raw))
		http.Error(w, ErrInvalidID.Error(), http.StatusBadRequest)
		return 0, false
	}

	return id, true
}

func (c *GameController) readBody(w http.ResponseWriter, r *http.Request, op string, validate func([]byte) error) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		c.log.Warn(ErrBadRequest.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrBadRequest.Error(), http.StatusBadRequest)
		return nil, false
	}

	if err := validate(body); err != nil {
		c.log.Warn(ErrBadRequest.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	return body, true
}

func (c *GameController) storeError(w http.ResponseWriter, op string, id int64, public, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.log.Warn(
			ErrNotFound.Error(),
			slog.String("operation", op),
			slog.Int64("id", id))
		http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
		return
	}

	c.log.Error(
		public.Error(),
		slog.String("operation", op),
		slog.Int64("id", id),
		slog.String("error", err.Error()))
	http.Error(w, public.Error(), http.StatusInternalServerError)
}

func (c *GameController) respond(w http.ResponseWriter, op string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.log.Error(ErrEncoding.Error(), slog.String("operation", op), slog.String("error", err.Error()))
	}
}
