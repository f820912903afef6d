package identity

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskdeck/taskdeck/internal/access"
	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

// Handler exposes account and oversight endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     access.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard access.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers profile and team routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireActor)
		r.Get("/me", h.me)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(access.RoleManager, access.RoleAdmin))
		r.Get("/team", h.team)
	})
}

// MountAdminRoutes registers admin-only account administration routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(access.RoleAdmin))
		r.Get("/accounts", h.listAccounts)
		r.Post("/accounts", h.createAccount)
		r.Put("/accounts/{id}/active", h.setActive)
		r.Put("/accounts/{id}/role", h.setRole)
		r.Put("/accounts/{id}/manager", h.assignManager)
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())
	account, err := h.service.Profile(r.Context(), *actor)
	if err != nil {
		h.logger.Error("load profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) team(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())
	accounts, err := h.service.Team(r.Context(), *actor, r.URL.Query().Get("manager_id"))
	if err != nil {
		h.logger.Error("list team", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 20),
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role := access.Role(raw)
		if !role.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role filter")
			return
		}
		filter.Role = &role
	}
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}

	accounts, pagination, err := h.service.ListAccounts(r.Context(), filter)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accounts, "pagination": pagination})
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())
	var req CreateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ValidationError(err))
		return
	}
	account, err := h.service.CreateAccount(r.Context(), *actor, req)
	if err != nil {
		h.logger.Error("create account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.SetActive(r.Context(), *actor, id, req.IsActive); err != nil {
		h.logger.Error("set account active", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SetRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ValidationError(err))
		return
	}
	if err := h.service.SetRole(r.Context(), *actor, id, req.Role); err != nil {
		h.logger.Error("set account role", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) assignManager(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AssignManagerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ValidationError(err))
		return
	}
	if err := h.service.AssignManager(r.Context(), *actor, id, req.ManagerID); err != nil {
		h.logger.Error("assign manager", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
