package organizer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/plannerhq/planner/core/binder"
	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/response"
	"github.com/plannerhq/planner/core/router"
)

// validatable constrains resource endpoints to entity types with
// normalize-and-check validation.
type validatable[T any] interface {
	*T
	Validate() error
}

// Handler serves the /api/v1 organizer resources. Routes assume an
// authenticated principal; mount them behind the authentication requirement.
type Handler struct {
	stores Stores
}

// NewHandler creates the organizer resource handler.
func NewHandler(stores Stores) *Handler {
	return &Handler{stores: stores}
}

// Register mounts the CRUD routes on the group.
func (h *Handler) Register(g *router.Group) {
	registerResource(g, "/contacts", h.stores.Contacts)
	registerResource(g, "/tasks", h.stores.Tasks)
	registerResource(g, "/appointments", h.stores.Appointments)
	registerResource(g, "/projects", h.stores.Projects)
}

func registerResource[T any, PT validatable[T]](g *router.Group, prefix string, store Store[T]) {
	g.Post(prefix, createEndpoint[T, PT](store))
	g.Get(prefix, listEndpoint(store))
	g.Get(prefix+"/{id}", getEndpoint(store))
	g.Put(prefix+"/{id}", updateEndpoint[T, PT](store))
	g.Delete(prefix+"/{id}", deleteEndpoint(store))
}

func createEndpoint[T any, PT validatable[T]](store Store[T]) handler.HandlerFunc {
	return func(ctx *handler.Context) handler.Response {
		var item T
		if err := bindEntity[T, PT](ctx, &item); err != nil {
			return response.Error(err)
		}

		created, err := store.Create(ctx, ctx.Principal().UserID, item)
		if err != nil {
			return response.Error(projectStoreError(err))
		}
		return response.JSONWithStatus(created, http.StatusCreated)
	}
}

func listEndpoint[T any](store Store[T]) handler.HandlerFunc {
	return func(ctx *handler.Context) handler.Response {
		items, err := store.List(ctx, ctx.Principal().UserID)
		if err != nil {
			return response.Error(projectStoreError(err))
		}
		return response.JSON(items)
	}
}

func getEndpoint[T any](store Store[T]) handler.HandlerFunc {
	return func(ctx *handler.Context) handler.Response {
		id, err := idParam(ctx)
		if err != nil {
			return response.Error(err)
		}

		item, err := store.Get(ctx, ctx.Principal().UserID, id)
		if err != nil {
			return response.Error(projectStoreError(err))
		}
		return response.JSON(item)
	}
}

func updateEndpoint[T any, PT validatable[T]](store Store[T]) handler.HandlerFunc {
	return func(ctx *handler.Context) handler.Response {
		id, err := idParam(ctx)
		if err != nil {
			return response.Error(err)
		}

		var item T
		if err := bindEntity[T, PT](ctx, &item); err != nil {
			return response.Error(err)
		}

		updated, err := store.Update(ctx, ctx.Principal().UserID, id, item)
		if err != nil {
			return response.Error(projectStoreError(err))
		}
		return response.JSON(updated)
	}
}

func deleteEndpoint[T any](store Store[T]) handler.HandlerFunc {
	return func(ctx *handler.Context) handler.Response {
		id, err := idParam(ctx)
		if err != nil {
			return response.Error(err)
		}

		if err := store.Delete(ctx, ctx.Principal().UserID, id); err != nil {
			return response.Error(projectStoreError(err))
		}
		return response.NoContent()
	}
}

// bindEntity decodes and validates the request body. Validation messages are
// user-safe and surface verbatim in the 400 envelope.
func bindEntity[T any, PT validatable[T]](ctx *handler.Context, item *T) error {
	if err := binder.JSON(ctx.Request(), item); err != nil {
		return response.ErrBadRequest.WithError(err)
	}
	if err := PT(item).Validate(); err != nil {
		return response.ErrBadRequest.WithMessage(err.Error()).WithError(err)
	}
	return nil
}

func idParam(ctx *handler.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, response.ErrBadRequest.WithError(err)
	}
	return id, nil
}

// projectStoreError maps lookup misses to 404 with the store's message;
// everything else stays internal.
func projectStoreError(err error) error {
	var nf NotFoundError
	if errors.As(err, &nf) {
		return response.ErrNotFound.WithMessage(nf.Error()).WithError(err)
	}
	return err
}
