// Package characters surfaces the game-owned character rows to the
// panel. Every character subresource checks ownership first; admins may
// look at any character.
package characters

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ucp_service/internal/http_server/middleware/authn"
	resp "ucp_service/internal/lib/api/response"
	sl "ucp_service/internal/lib/logger"
	"ucp_service/internal/models"
	"ucp_service/internal/storage"
)

// maxCharacters caps the slots per account.
const maxCharacters = 3

// deletionDelay keeps a recently played character alive. The character
// must stay offline this long before the panel lets it go.
const deletionDelay = 72 * time.Hour

// Roleplay name format enforced by the game server.
var nameRe = regexp.MustCompile(`^[A-Z][a-z]+_[A-Z][a-z]+$`)

type CreateRequest struct {
	Name       string `json:"name" validate:"required,min=3,max=24"`
	Gender     int    `json:"gender" validate:"min=0,max=1"`
	BirthDay   int    `json:"birth_day" validate:"required,min=1,max=31"`
	BirthMonth int    `json:"birth_month" validate:"required,min=1,max=12"`
	BirthYear  int    `json:"birth_year" validate:"required,min=1900,max=2010"`
	SkinID     int    `json:"skin_id" validate:"min=0,max=311"`
}

type CharacterStore interface {
	CharactersByUser(ctx context.Context, userID int64) ([]models.Character, error)
	CharactersByFaction(ctx context.Context, factionID int64) ([]models.Character, error)
	CharacterByID(ctx context.Context, id int64) (models.Character, error)
	SaveCharacter(ctx context.Context, char models.Character) (int64, error)
	DeleteCharacter(ctx context.Context, id, userID int64) error
	CountCharactersByUser(ctx context.Context, userID int64) (int64, error)
	AdminWarnsByCharacter(ctx context.Context, charID int64) ([]models.AdminWarn, error)
	InventoryByCharacter(ctx context.Context, charID int64) ([]models.InventoryItem, error)
	VehiclesByOwner(ctx context.Context, ownerID int64) ([]models.Vehicle, error)
	PropertiesByOwner(ctx context.Context, ownerID int64) ([]models.Property, error)
}

// NewList handles GET /api/v1/characters: the account's own characters.
func NewList(log *slog.Logger, store CharacterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.characters.NewList"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		claims, _ := authn.FromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := store.CharactersByUser(ctx, claims.UserID)
		if err != nil {
			log.Error("failed to list characters", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, list)
	}
}

// NewDetail handles GET /api/v1/characters/{id}.
func NewDetail(log *slog.Logger, store CharacterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.characters.NewDetail"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		char, ok := ownedCharacter(ctx, w, r, log, store)
		if !ok {
			return
		}

		render.JSON(w, r, char)
	}
}

// NewFaction handles GET /api/v1/characters/faction/{id}: the roster of
// a faction, highest rank first.
func NewFaction(log *slog.Logger, store CharacterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.characters.NewFaction"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		factionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid faction id."))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := store.CharactersByFaction(ctx, factionID)
		if err != nil {
			log.Error("failed to list faction characters", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, list)
	}
}

// NewAdminWarns handles GET /api/v1/characters/{id}/admin_warns.
func NewAdminWarns(log *slog.Logger, store CharacterStore) http.HandlerFunc {
	return subresource(log, "handlers.characters.NewAdminWarns", store,
		func(ctx context.Context, char models.Character) (any, error) {
			return store.AdminWarnsByCharacter(ctx, char.ID)
		})
}

// NewInventory handles GET /api/v1/characters/{id}/inventory.
func NewInventory(log *slog.Logger, store CharacterStore) http.HandlerFunc {
	return subresource(log, "handlers.characters.NewInventory", store,
		func(ctx context.Context, char models.Character) (any, error) {
			return store.InventoryByCharacter(ctx, char.ID)
		})
}

// NewVehicles handles GET /api/v1/characters/{id}/vehicles.
func NewVehicles(log *slog.Logger, store CharacterStore) http.HandlerFunc {
	return subresource(log, "handlers.characters.NewVehicles", store,
		func(ctx context.Context, char models.Character) (any, error) {
			return store.VehiclesByOwner(ctx, char.ID)
		})
}

// NewProperties handles GET /api/v1/characters/{id}/properties.
func NewProperties(log *slog.Logger, store CharacterStore) http.HandlerFunc {
	return subresource(log, "handlers.characters.NewProperties", store,
		func(ctx context.Context, char models.Character) (any, error) {
			return store.PropertiesByOwner(ctx, char.ID)
		})
}

func subresource(
	log *slog.Logger,
	op string,
	store CharacterStore,
	fetch func(ctx context.Context, char models.Character) (any, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		char, ok := ownedCharacter(ctx, w, r, log, store)
		if !ok {
			return
		}

		result, err := fetch(ctx, char)
		if err != nil {
			log.Error("failed to load character data", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, result)
	}
}

// NewCreate handles POST /api/v1/characters/new. Slots are capped and
// the name must fit the Firstname_Lastname format.
func NewCreate(log *slog.Logger, validate *validator.Validate, store CharacterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.characters.NewCreate"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var request CreateRequest

		err := render.DecodeJSON(r.Body, &request)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request."))

			return
		}

		if err := validate.Struct(request); err != nil {
			validateErr := err.(validator.ValidationErrors)

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		if !nameRe.MatchString(request.Name) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("The character name must look like Firstname_Lastname."))

			return
		}

		claims, _ := authn.FromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		count, err := store.CountCharactersByUser(ctx, claims.UserID)
		if err != nil {
			log.Error("failed to count characters", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		if count >= maxCharacters {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("You've reached the maximum number of characters."))

			return
		}

		id, err := store.SaveCharacter(ctx, models.Character{
			UserID:     claims.UserID,
			Name:       request.Name,
			Gender:     request.Gender,
			BirthDay:   request.BirthDay,
			BirthMonth: request.BirthMonth,
			BirthYear:  request.BirthYear,
			SkinID:     request.SkinID,
		})
		if err != nil {
			if errors.Is(err, storage.ErrCharacterExists) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The character name that you've entered is already exist."))

				return
			}

			log.Error("failed to save character", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		log.Info("character created", slog.Int64("char_id", id))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("Your character has been created."))
	}
}

// NewDelete handles DELETE /api/v1/characters/{id}. A character played
// within the deletion delay stays put.
func NewDelete(log *slog.Logger, store CharacterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.characters.NewDelete"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		char, ok := ownedCharacter(ctx, w, r, log, store)
		if !ok {
			return
		}

		if time.Since(time.Unix(char.LastLogin, 0)) < deletionDelay {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("This character has been played recently. Try again in a few days."))

			return
		}

		if err := store.DeleteCharacter(ctx, char.ID, char.UserID); err != nil {
			log.Error("failed to delete character", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		log.Info("character deleted", slog.Int64("char_id", char.ID))

		render.JSON(w, r, resp.OKMsg("Your character has been deleted."))
	}
}

// ownedCharacter loads the {id} character and enforces ownership. On
// failure the response is already written and ok is false.
func ownedCharacter(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	store CharacterStore,
) (models.Character, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Error("Invalid character id."))

		return models.Character{}, false
	}

	char, err := store.CharacterByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrCharacterNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("The character that you're looking for does not exist."))

			return models.Character{}, false
		}

		log.Error("failed to get character", sl.Err(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resp.Error(err.Error()))

		return models.Character{}, false
	}

	claims, _ := authn.FromContext(r.Context())
	if char.UserID != claims.UserID && claims.Admin < 1 {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, resp.Error("401 Not Authorized."))

		return models.Character{}, false
	}

	return char, true
}
