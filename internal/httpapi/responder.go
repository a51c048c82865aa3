package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ptaregistry.org/internal/auth"
	"ptaregistry.org/internal/registry"
)

// deniedMessage renders every authorization denial the same way: a denial
// screen, not an exception.
const deniedMessage = "Your current profile does not have clearance for this module."

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func respondDenial(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, map[string]any{
		"denied":  true,
		"message": deniedMessage,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	respondError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

// handleServiceError maps the registry error taxonomy onto HTTP statuses.
// Remote-call failures degrade to a visible message; nothing here panics.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, registry.ErrConfirmationRequired):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, registry.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, registry.ErrInvalidCredentials):
		// Single generic message; unknown user and wrong password are
		// indistinguishable on purpose.
		respondError(w, http.StatusUnauthorized, "Verification failed. Invalid ID or PIN.")
	case errors.Is(err, registry.ErrAccessDenied):
		respondDenial(w)
	case errors.Is(err, registry.ErrSyncFailed):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// requireView resolves the request principal and consults the gate. When
// access is denied the uniform denial body has already been written.
func (a *API) requireView(w http.ResponseWriter, r *http.Request, view auth.View) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return auth.Principal{}, false
	}
	if !auth.CanAccess(principal.Role, view) {
		respondDenial(w)
		return auth.Principal{}, false
	}
	return principal, true
}

// requireDelete additionally gates irreversible deletes to ADMIN.
func (a *API) requireDelete(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return auth.Principal{}, false
	}
	if !auth.CanDelete(principal.Role) {
		respondDenial(w)
		return auth.Principal{}, false
	}
	return principal, true
}
