package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes builds the full HTTP surface from spec.md §6, mirroring
// every route under a `/token/{token}/...` prefix so a bearer token
// can be supplied positionally in the URL instead of as a header or
// cookie — generalizing the teacher's SetupRoutes (internal/api/
// handlers.go) into two parallel route trees sharing one handler set.
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	h.registerRoutes(router.PathPrefix("/api").Subrouter())
	h.registerRoutes(router.PathPrefix("/token/{token}/api").Subrouter())

	router.HandleFunc("/wfs", h.WFSRouter).Methods(http.MethodGet)
	router.HandleFunc("/token/{token}/wfs", h.WFSRouter).Methods(http.MethodGet)

	return router
}

func (h *Handler) registerRoutes(r *mux.Router) {
	r.HandleFunc("/auth", h.GetAuth).Methods(http.MethodGet)
	r.HandleFunc("/schema", h.GetSchema).Methods(http.MethodGet)

	r.HandleFunc("/data/feature", h.CreateFeature).Methods(http.MethodPost)
	r.HandleFunc("/data/feature/{id}", h.GetFeature).Methods(http.MethodGet)
	r.HandleFunc("/data/feature/{id}/history", h.GetFeatureHistory).Methods(http.MethodGet)
	r.HandleFunc("/data/features", h.ListFeatures).Methods(http.MethodGet)
	r.HandleFunc("/data/clone", h.GetClone).Methods(http.MethodGet)
	r.HandleFunc("/data/query", h.Query).Methods(http.MethodGet)

	r.HandleFunc("/deltas", h.ListDeltas).Methods(http.MethodGet)
	r.HandleFunc("/delta/{id}", h.GetDelta).Methods(http.MethodGet)

	r.HandleFunc("/tiles/{z}/{x}/{y}", h.GetTile).Methods(http.MethodGet)
	r.HandleFunc("/tiles/{z}/{x}/{y}/regen", h.RegenTile).Methods(http.MethodGet)
	r.HandleFunc("/tiles/{z}/{x}/{y}/meta", h.TileMeta).Methods(http.MethodGet)
	r.HandleFunc("/tiles/{z}/{x}/{y}", h.DeleteTile).Methods(http.MethodDelete)
	r.HandleFunc("/tiles", h.DeleteAllTiles).Methods(http.MethodDelete)

	r.HandleFunc("/user/session", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/user/session", h.CreateSession).Methods(http.MethodPost)
	r.HandleFunc("/user/session", h.DeleteSession).Methods(http.MethodDelete)
	r.HandleFunc("/user/token", h.CreateToken).Methods(http.MethodPost)
	r.HandleFunc("/user/create", h.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/user/{id}", h.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/user/{id}", h.UpdateUser).Methods(http.MethodPost)

	r.HandleFunc("/webhooks", h.ListWebhooks).Methods(http.MethodGet)
	r.HandleFunc("/webhooks", h.CreateWebhook).Methods(http.MethodPost)
	r.HandleFunc("/webhooks/{id}", h.DeleteWebhook).Methods(http.MethodDelete)

	r.HandleFunc("/styles", h.ListStyles).Methods(http.MethodGet)
	r.HandleFunc("/style", h.CreateStyle).Methods(http.MethodPost)
	r.HandleFunc("/style/{id}", h.GetStyle).Methods(http.MethodGet)
	r.HandleFunc("/style/{id}", h.UpdateStyle).Methods(http.MethodPut)
	r.HandleFunc("/style/{id}", h.DeleteStyle).Methods(http.MethodDelete)

	r.HandleFunc("/bounds", h.ListBounds).Methods(http.MethodGet)
	r.HandleFunc("/bounds", h.CreateBound).Methods(http.MethodPost)
	r.HandleFunc("/bounds/{name}", h.GetBound).Methods(http.MethodGet)
	r.HandleFunc("/bounds/{id}", h.DeleteBound).Methods(http.MethodDelete)

	r.HandleFunc("/meta", h.ListMeta).Methods(http.MethodGet)
	r.HandleFunc("/meta/{key}", h.GetMeta).Methods(http.MethodGet)
	r.HandleFunc("/meta/{key}", h.SetMeta).Methods(http.MethodPut)
	r.HandleFunc("/meta/{key}", h.DeleteMeta).Methods(http.MethodDelete)
}
