package controllers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/core/domain/user"
	"github.com/clarityhq/workplan/modules/org/services"
	"github.com/clarityhq/workplan/pkg/composables"
)

// OrgAPIController exposes the read-only visibility surface consumed by
// reporting and dashboard clients.
type OrgAPIController struct {
	resolver  *services.VisibilityResolver
	graph     *services.OrgGraphService
	apiPrefix string
}

func NewOrgAPIController(resolver *services.VisibilityResolver, graph *services.OrgGraphService) *OrgAPIController {
	return &OrgAPIController{
		resolver:  resolver,
		graph:     graph,
		apiPrefix: "/org/api",
	}
}

func (c *OrgAPIController) Key() string {
	return c.apiPrefix
}

func (c *OrgAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.HandleFunc("/visibility/people", c.VisiblePeople).Methods(http.MethodGet)
	api.HandleFunc("/subtree", c.ManagedSubtree).Methods(http.MethodGet)
}

type personResponse struct {
	ID       int64  `json:"id"`
	Carnet   string `json:"carnet,omitempty"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
}

func (c *OrgAPIController) VisiblePeople(w http.ResponseWriter, r *http.Request) {
	userID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	people, err := c.resolver.VisiblePeople(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]personResponse, 0, len(people))
	for _, p := range people {
		out = append(out, personResponse{ID: p.ID, Carnet: p.Carnet, FullName: p.FullName, Email: p.Email})
	}
	writeJSON(w, http.StatusOK, out)
}

type subtreeResponse struct {
	NodeIDs []int64 `json:"nodeIds"`
}

func (c *OrgAPIController) ManagedSubtree(w http.ResponseWriter, r *http.Request) {
	userID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	subtree, err := c.graph.ExpandManagedSubtree(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	ids := subtree.IDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	writeJSON(w, http.StatusOK, subtreeResponse{NodeIDs: ids})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, composables.ErrNoUserID):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, user.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON[T any](w http.ResponseWriter, status int, payload T) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
