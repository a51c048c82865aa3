package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"ptaregistry.org/internal/application"
	"ptaregistry.org/internal/auth"
	"ptaregistry.org/internal/registry"
)

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r)
	case http.MethodPost:
		a.createUser(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		a.updateUser(w, r, id)
	case http.MethodDelete:
		a.deleteUser(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireView(w, r, auth.ViewUsers); !ok {
		return
	}
	users := a.svc.Cache().Users()
	out := make([]registry.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireView(w, r, auth.ViewUsers); !ok {
		return
	}

	var form application.UserForm
	if err := decodeJSON(w, r, &form); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.svc.CreateUser(r.Context(), form)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/users/"+user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    user.Public(),
		"message": fmt.Sprintf("Account provisioned for %s", user.Name),
	})
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.requireView(w, r, auth.ViewUsers); !ok {
		return
	}

	var form application.UserForm
	if err := decodeJSON(w, r, &form); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.svc.UpdateUser(r.Context(), id, form)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":    user.Public(),
		"message": fmt.Sprintf("Updated profile for %s", user.Name),
	})
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.requireView(w, r, auth.ViewUsers); !ok {
		return
	}
	if _, ok := a.requireDelete(w, r); !ok {
		return
	}

	var req deleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := a.svc.DeleteUser(r.Context(), id, req.Confirmed); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User account permanently revoked.",
	})
}
