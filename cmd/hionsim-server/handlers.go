package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/daniacca/hionsim/internal/hion"
	hionnotifiers "github.com/daniacca/hionsim/internal/hion/notifiers"
)

// extractSystemID extracts the system ID from a path like
// "/systems/{systemID}/...". Returns the system ID and the remaining path,
// or empty strings if not found.
func extractSystemID(path string) (hion.SystemID, string) {
	if !strings.HasPrefix(path, "/systems/") {
		return "", ""
	}

	rest := strings.TrimPrefix(path, "/systems/")
	idx := strings.Index(rest, "/")
	if idx == -1 {
		return hion.SystemID(rest), ""
	}
	return hion.SystemID(rest[:idx]), rest[idx:]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /catalog
// Body: CatalogConfig JSON
// Validates the catalog, builds the species table and installs it.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var cfg hion.CatalogConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid catalog json: "+err.Error(), http.StatusBadRequest)
		return
	}

	table, err := hion.BuildSpeciesTableFromConfig(cfg)
	if err != nil {
		http.Error(w, "cannot build catalog: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.SetCatalog(table)
	s.logger.Infof("Catalog loaded: name=%s species=%d", cfg.Name, len(cfg.Species))

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("catalog loaded"))
}

type speciesView struct {
	PDG    int     `json:"pdg"`
	Name   string  `json:"name"`
	Mass   float64 `json:"mass"`
	Width  float64 `json:"width,omitempty"`
	Stable bool    `json:"stable"`
	Charge int     `json:"charge"`
}

// GET /species
// Lists the species of the loaded catalog.
func (s *Server) handleListSpecies(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	table := s.species
	s.mu.Unlock()

	if table == nil {
		http.Error(w, "no catalog loaded", http.StatusBadRequest)
		return
	}

	views := make([]speciesView, 0)
	for _, sp := range table.All() {
		views = append(views, speciesView{
			PDG:    int(sp.PDG),
			Name:   sp.Name,
			Mass:   sp.Mass,
			Width:  sp.Width,
			Stable: sp.Stable,
			Charge: sp.Charge,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"catalog": table.Name, "species": views}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /systems
// Body: { "id": "..." }
type createSystemRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateSystem(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req createSystemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "system ID is required", http.StatusBadRequest)
		return
	}

	if _, err := s.manager.CreateSystem(hion.SystemID(req.ID)); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	s.logger.Infof("System created: system_id=%s", req.ID)
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte("system created"))
}

// GET /systems
// Lists all system IDs.
func (s *Server) handleListSystems(w http.ResponseWriter, _ *http.Request) {
	systemIDs := s.manager.ListSystems()

	ids := make([]string, len(systemIDs))
	for i, id := range systemIDs {
		ids[i] = string(id)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"systems": ids}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// DELETE /systems/{systemID}
func (s *Server) handleDeleteSystem(w http.ResponseWriter, r *http.Request) {
	systemID, _ := extractSystemID(r.URL.Path)

	if err := s.manager.DeleteSystem(systemID); err != nil {
		s.logger.Warnf("Failed to delete system: system_id=%s error=%v", systemID, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.logger.Infof("System deleted: system_id=%s", systemID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("system deleted"))
}

// POST /systems/{systemID}/particles
// Body: { "pdg": 211, "momentum": [e, px, py, pz], "position": [t, x, y, z] }
type insertParticleRequest struct {
	PDG      int        `json:"pdg"`
	Momentum [4]float64 `json:"momentum"`
	Position [4]float64 `json:"position"`
}

func (s *Server) handleInsertParticle(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	systemID, _ := extractSystemID(r.URL.Path)
	sys, exists := s.manager.GetSystem(systemID)
	if !exists {
		http.Error(w, "system not found", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	table := s.species
	s.mu.Unlock()
	if table == nil {
		http.Error(w, "no catalog loaded", http.StatusBadRequest)
		return
	}

	var req insertParticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	p, err := hion.RestoreParticle(hion.ParticleSnapshot{
		PDG:      req.PDG,
		Momentum: req.Momentum,
		Position: req.Position,
	}, table)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stored := sys.Particles.Insert(p)

	s.logger.Debugf("Particle inserted: system_id=%s species=%s id=%s",
		systemID, stored.Species.Name, stored.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(hion.SnapshotParticle(stored)); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /systems/{systemID}/particles
func (s *Server) handleListParticles(w http.ResponseWriter, r *http.Request) {
	systemID, _ := extractSystemID(r.URL.Path)
	sys, exists := s.manager.GetSystem(systemID)
	if !exists {
		http.Error(w, "system not found", http.StatusNotFound)
		return
	}

	snaps := hion.SnapshotParticles(sys.Particles.All())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"particles": snaps}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /systems/{systemID}/collide
// Body: { "particle_ids": [...], "time_increment": 0.0, "dt": 0.1, "cell_volume": 5.0 }
// Resolves one multi-particle action over the named particles: finds the
// open channels, decides, samples the final state and commits it.
type collideRequest struct {
	ParticleIDs   []string `json:"particle_ids"`
	TimeIncrement float64  `json:"time_increment"`
	DT            float64  `json:"dt,omitempty"`
	CellVolume    float64  `json:"cell_volume,omitempty"`
}

type collideResponse struct {
	Performed bool                 `json:"performed"`
	Reason    string               `json:"reason,omitempty"`
	Event     *hion.CollisionEvent `json:"event,omitempty"`
}

func (s *Server) handleCollide(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	systemID, _ := extractSystemID(r.URL.Path)
	sys, exists := s.manager.GetSystem(systemID)
	if !exists {
		http.Error(w, "system not found", http.StatusNotFound)
		return
	}

	var req collideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DT <= 0 {
		req.DT = s.cfg.TimeStep
	}
	if req.CellVolume <= 0 {
		req.CellVolume = s.cfg.CellVolume
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		http.Error(w, "no catalog loaded", http.StatusBadRequest)
		return
	}

	parts := make([]hion.Particle, 0, len(req.ParticleIDs))
	for _, id := range req.ParticleIDs {
		p, ok := sys.Particles.Lookup(hion.Particle{ID: hion.ParticleID(id)})
		if !ok {
			http.Error(w, "particle not found: "+id, http.StatusNotFound)
			return
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		http.Error(w, "particle_ids is required", http.StatusBadRequest)
		return
	}

	act := hion.NewMultiParticleAction(s.ctx, parts, req.TimeIncrement)
	act.AddPossibleReactions(req.DT, req.CellVolume, s.cfg.ThreeToOne)

	if act.TotalWeight() <= 0 {
		writeJSON(w, http.StatusOK, collideResponse{Performed: false, Reason: "no open channels"})
		return
	}

	if err := act.GenerateFinalState(); err != nil {
		s.logger.Errorf("Final state generation failed: system_id=%s error=%v", systemID, err)
		http.Error(w, "cannot generate final state: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if !act.IsValid(sys.Particles) {
		http.Error(w, "stale particles: a concurrent process consumed them", http.StatusConflict)
		return
	}

	idProcess := s.nextProcessID()
	if err := act.Perform(sys.Particles, idProcess); err != nil {
		s.logger.Errorf("Perform failed: system_id=%s id_process=%d error=%v", systemID, idProcess, err)
		http.Error(w, "perform failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	event := hion.NewCollisionEvent(systemID, act, idProcess)
	s.notifierMgr.Broadcast(event)

	s.logger.Infof("Collision performed: system_id=%s id_process=%d process=%s",
		systemID, idProcess, event.ProcessType)

	writeJSON(w, http.StatusOK, collideResponse{Performed: true, Event: &event})
}

// POST /systems/{systemID}/snapshot
// Saves a snapshot of the system to the snapshot directory.
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	systemID, _ := extractSystemID(r.URL.Path)
	sys, exists := s.manager.GetSystem(systemID)
	if !exists {
		http.Error(w, "system not found", http.StatusNotFound)
		return
	}

	if s.cfg.SnapshotDir == "" {
		http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
		return
	}

	data, err := hion.EncodeSnapshotJSON(sys.Capture())
	if err != nil {
		http.Error(w, "cannot encode snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := os.MkdirAll(s.cfg.SnapshotDir, 0o755); err != nil {
		http.Error(w, "cannot create snapshot dir: "+err.Error(), http.StatusInternalServerError)
		return
	}
	path := s.snapshotPath(systemID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Errorf("Failed to save snapshot: system_id=%s error=%v", systemID, err)
		http.Error(w, "failed to save snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Debugf("Snapshot saved: system_id=%s path=%s", systemID, path)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": path})
}

// GET /systems/{systemID}/snapshot
// Returns the raw snapshot JSON if it exists.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	systemID, _ := extractSystemID(r.URL.Path)
	if _, exists := s.manager.GetSystem(systemID); !exists {
		http.Error(w, "system not found", http.StatusNotFound)
		return
	}

	data, err := os.ReadFile(s.snapshotPath(systemID))
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "snapshot not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to read snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// POST /systems/{systemID}/restore
// Replaces the system state with the last saved snapshot.
func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	systemID, _ := extractSystemID(r.URL.Path)
	sys, exists := s.manager.GetSystem(systemID)
	if !exists {
		http.Error(w, "system not found", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	table := s.species
	s.mu.Unlock()
	if table == nil {
		http.Error(w, "no catalog loaded", http.StatusBadRequest)
		return
	}

	data, err := os.ReadFile(s.snapshotPath(systemID))
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "snapshot not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to read snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	snapshot, err := hion.DecodeSnapshotJSON(data)
	if err != nil {
		http.Error(w, "invalid snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := sys.Restore(snapshot, table); err != nil {
		http.Error(w, "restore failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.logger.Infof("System restored from snapshot: system_id=%s t=%g particles=%d",
		systemID, snapshot.Time, len(snapshot.Particles))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("system restored"))
}

func (s *Server) snapshotPath(id hion.SystemID) string {
	return filepath.Join(s.cfg.SnapshotDir, string(id)+".json")
}

// handleSystemRoutes routes requests to system-specific handlers.
// Handles paths like /systems/{systemID}/particles, /systems/{systemID}/collide, etc.
func (s *Server) handleSystemRoutes(w http.ResponseWriter, r *http.Request) {
	systemID, remainingPath := extractSystemID(r.URL.Path)
	if systemID == "" {
		http.Error(w, "system ID is required in path: /systems/{systemID}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remainingPath == "/particles" && r.Method == http.MethodPost:
		s.handleInsertParticle(w, r)
	case remainingPath == "/particles" && r.Method == http.MethodGet:
		s.handleListParticles(w, r)
	case remainingPath == "/collide" && r.Method == http.MethodPost:
		s.handleCollide(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodPost:
		s.handleSaveSnapshot(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodGet:
		s.handleGetSnapshot(w, r)
	case remainingPath == "/restore" && r.Method == http.MethodPost:
		s.handleRestoreSnapshot(w, r)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteSystem(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleNotifiersRoutes handles notifier management endpoints
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
// List all registered notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	notifierIDs := s.notifierMgr.ListNotifiers()

	notifierList := make([]map[string]string, 0, len(notifierIDs))
	for _, id := range notifierIDs {
		notifier, exists := s.notifierMgr.GetNotifier(id)
		if exists {
			notifierList = append(notifierList, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"notifiers": notifierList}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /notifiers
// Register a new notifier
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier hion.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := hionnotifiers.NewWebhookNotifier(req.ID, url)

		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}

		notifier = wh
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
// Unregister a notifier
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

// GET /ws
// Upgrades the connection and streams collision events to the client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.wsNotifier.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	s.wsNotifier.RegisterClient(conn)
	s.logger.Debugf("WebSocket client connected: %s", conn.RemoteAddr())

	// Drain the connection until the client goes away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.wsNotifier.UnregisterClient(conn)
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
