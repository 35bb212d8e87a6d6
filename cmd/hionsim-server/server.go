package main

import (
	"sync"

	"github.com/daniacca/hionsim/internal/hion"
	"github.com/daniacca/hionsim/internal/hion/notifiers"
)

// hionLoggerAdapter adapts the server's Logger to the hion.Logger interface
type hionLoggerAdapter struct {
	logger *Logger
}

func (a *hionLoggerAdapter) Debugf(format string, v ...any) {
	a.logger.Debugf(format, v...)
}

func (a *hionLoggerAdapter) Infof(format string, v ...any) {
	a.logger.Infof(format, v...)
}

func (a *hionLoggerAdapter) Warnf(format string, v ...any) {
	a.logger.Warnf(format, v...)
}

func (a *hionLoggerAdapter) Errorf(format string, v ...any) {
	a.logger.Errorf(format, v...)
}

// Server is the HTTP front end over the collision core: it owns the system
// manager, the loaded species catalog, the shared random source and the
// notification fan-out.
type Server struct {
	manager     *hion.SystemManager
	notifierMgr *hion.NotificationManager
	wsNotifier  *notifiers.WebSocketNotifier
	logger      *Logger
	cfg         ServerConfig

	// mu guards the catalog and the collision context. Collision resolution
	// serializes on it so that seeded runs consume random draws in request
	// order.
	mu        sync.Mutex
	species   *hion.SpeciesTable
	ctx       *hion.Context
	idProcess uint32
}

// NewServer creates a new server instance
func NewServer(cfg ServerConfig, logger *Logger) *Server {
	hionLogger := &hionLoggerAdapter{logger: logger}

	notifierMgr := hion.NewNotificationManagerWithLogger(hionLogger)
	wsNotifier := notifiers.NewWebSocketNotifier("ws-stream")
	if err := notifierMgr.RegisterNotifier(wsNotifier); err != nil {
		logger.Errorf("Failed to register websocket notifier: %v", err)
	}

	return &Server{
		manager:     hion.NewSystemManagerWithLogger(hionLogger),
		notifierMgr: notifierMgr,
		wsNotifier:  wsNotifier,
		logger:      logger,
		cfg:         cfg,
	}
}

// SetCatalog installs a species catalog and resets the collision context to
// use it.
func (s *Server) SetCatalog(table *hion.SpeciesTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.species = table
	s.ctx = hion.NewContext(hion.NewRandomSource(s.cfg.Seed), table).
		WithLogger(&hionLoggerAdapter{logger: s.logger})
}

// nextProcessID hands out process ids starting at 1; 0 is reserved for
// "no process". Callers must hold s.mu.
func (s *Server) nextProcessID() uint32 {
	s.idProcess++
	if s.idProcess == 0 || s.idProcess == hion.IDProcessForced {
		s.idProcess = 1
	}
	return s.idProcess
}

// Close shuts down the notification machinery.
func (s *Server) Close() error {
	return s.notifierMgr.Close()
}
