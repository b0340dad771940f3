package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

type createClientRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Complexity string `json:"complexity"`
}

func (rt *Router) createClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	client, err := rt.clients.Create(r.Context(), req.Name, req.Email, domain.Complexity(req.Complexity))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (rt *Router) getClient(w http.ResponseWriter, r *http.Request) {
	client, err := rt.clients.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}
