package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func routes(srv *Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/catalog", srv.handleCatalog)
	mux.HandleFunc("/species", srv.handleListSpecies)
	mux.HandleFunc("/systems", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			srv.handleListSystems(w, r)
		case http.MethodPost:
			srv.handleCreateSystem(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/systems/", srv.handleSystemRoutes)
	mux.HandleFunc("/notifiers", srv.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", srv.handleNotifiersRoutes)
	mux.HandleFunc("/ws", srv.handleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func main() {
	cfg, err := loadServerConfig()
	if err != nil {
		NewLogger("error").Fatalf("Invalid configuration: %v", err)
	}
	logger := NewLogger(cfg.LogLevel)

	srv := NewServer(cfg, logger)
	defer srv.Close()

	if cfg.CatalogFile != "" {
		catalogCfg, table, err := loadCatalogFromFile(cfg.CatalogFile)
		if err != nil {
			logger.Fatalf("Failed to load catalog %s: %v", cfg.CatalogFile, err)
		}
		srv.SetCatalog(table)
		logger.Infof("Catalog loaded at startup: name=%s species=%d",
			catalogCfg.Name, len(catalogCfg.Species))
	}

	logger.Infof("hionsim-server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, routes(srv)); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
