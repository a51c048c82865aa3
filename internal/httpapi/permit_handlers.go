package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"ptaregistry.org/internal/application"
	"ptaregistry.org/internal/auth"
	"ptaregistry.org/internal/disc"
)

func (a *API) handlePermitsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.registerPermit(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost)
	}
}

func (a *API) handlePermitResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/permits/")
	if path == "" {
		respondError(w, http.StatusNotFound, "resource not found")
		return
	}

	if strings.HasSuffix(path, "/disc") {
		id := strings.TrimSuffix(strings.TrimSuffix(path, "/disc"), "/")
		if id == "" {
			respondError(w, http.StatusNotFound, "permit not found")
			return
		}
		a.getDisc(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		respondError(w, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodDelete:
		a.deletePermit(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodDelete)
	}
}

func (a *API) registerPermit(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireView(w, r, auth.ViewRegistration); !ok {
		return
	}

	var form application.RegistrationForm
	if err := decodeJSON(w, r, &form); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	permit, err := a.svc.RegisterPermit(r.Context(), form)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/permits/"+permit.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"permit":  permit,
		"message": "Permit synchronized with the registry successfully.",
	})
}

type deleteRequest struct {
	Confirmed bool `json:"confirmed"`
}

func (a *API) deletePermit(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.requireDelete(w, r); !ok {
		return
	}

	var req deleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	permit, err := a.svc.DeletePermit(r.Context(), id, req.Confirmed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Permit %s has been permanently removed.", permit.PermitNumber),
	})
}

func (a *API) getDisc(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireView(w, r, auth.ViewPrinting); !ok {
		return
	}

	for _, p := range a.svc.Cache().Permits() {
		if p.ID == id {
			d, err := disc.FromPermit(p)
			if err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	respondError(w, http.StatusNotFound, "permit not found")
}
