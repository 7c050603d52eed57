package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/briefcasebrain/uir-gateway/internal/requestlog"
	"github.com/briefcasebrain/uir-gateway/manager"
	"github.com/briefcasebrain/uir-gateway/provider"
)

// Handlers holds the dependencies for the admin HTTP surface: CRUD over
// persisted provider configuration, and a usage summary backed by the
// request log. Mounted by cmd/retrievalgw when AdminConfig.BearerToken is
// set; PUT/POST/DELETE only take effect on the persisted catalog, not the
// already-running Manager, which still requires a process restart to pick
// up new providers.
type Handlers struct {
	Store   Store
	Manager *manager.Manager
	Logs    requestlog.Reader
}

// Routes returns a chi.Router with every admin endpoint mounted. Callers
// wrap it in BearerAuth before mounting it on the main server.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/providers", h.listProviders)
	r.Post("/providers", h.createProvider)
	r.Get("/providers/{name}", h.getProvider)
	r.Put("/providers/{name}", h.updateProvider)
	r.Delete("/providers/{name}", h.deleteProvider)
	r.Get("/usage", h.usage)
	return r
}

func (h *Handlers) listProviders(w http.ResponseWriter, _ *http.Request) {
	configs, err := h.Store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, redactAll(configs))
}

func (h *Handlers) createProvider(w http.ResponseWriter, r *http.Request) {
	var cfg provider.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid provider config: "+err.Error())
		return
	}
	if cfg.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := h.Store.Save(cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, redact(cfg))
}

func (h *Handlers) getProvider(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cfg, ok, err := h.Store.Get(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "provider not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, redact(cfg))
}

func (h *Handlers) updateProvider(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var cfg provider.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid provider config: "+err.Error())
		return
	}
	cfg.Name = name
	if err := h.Store.Save(cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, redact(cfg))
}

func (h *Handlers) deleteProvider(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.Store.Delete(name); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// usageResponse summarizes request volume and live provider health.
type usageResponse struct {
	TotalRequests int                        `json:"total_requests"`
	ErrorCount    int                        `json:"error_count"`
	Providers     map[string]provider.Health `json:"providers,omitempty"`
}

func (h *Handlers) usage(w http.ResponseWriter, r *http.Request) {
	resp := usageResponse{}
	if h.Manager != nil {
		stats := h.Manager.Stats()
		resp.Providers = stats.Providers
	}
	if h.Logs != nil {
		total, err := h.Logs.List(r.Context(), requestlog.Query{Limit: 1})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.TotalRequests = total.Total

		errored, err := h.Logs.List(r.Context(), requestlog.Query{Limit: 1, Status: "error"})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.ErrorCount = errored.Total
	}
	writeJSON(w, http.StatusOK, resp)
}

// redact clears credentials before a config leaves the process; the admin
// API never echoes secret values back, even to an authenticated caller.
func redact(cfg provider.Config) provider.Config {
	if len(cfg.Credentials) > 0 {
		cfg.Credentials = make(map[string]string, len(cfg.Credentials))
		for k := range cfg.Credentials {
			cfg.Credentials[k] = "***"
		}
	}
	return cfg
}

func redactAll(configs []provider.Config) []provider.Config {
	out := make([]provider.Config, len(configs))
	for i, cfg := range configs {
		out[i] = redact(cfg)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
