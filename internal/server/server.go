package server

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	httpapi "notehub/internal/api/http"
	"notehub/internal/api/http/middleware"
	"notehub/internal/config"
	"notehub/internal/repository/memory"
	notesStore "notehub/internal/service/notes"

	"github.com/rs/cors"
)

// Server представляет HTTP сервер приложения с хранилищем заметок
type Server struct {
	Mux      *http.ServeMux
	HTTPAddr string
	Config   *config.Config

	httpServer *http.Server
	events     *notesStore.EventService
}

// NewServer создает и инициализирует новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg.Server == nil {
		cfg.Server = &config.ConfigServer{}
		log.Printf("Warning: server config section is missing, using defaults")
	}
	if cfg.HTTP == nil {
		cfg.HTTP = &config.ConfigHTTP{CORSAllowedOrigins: "*"}
		log.Printf("Warning: http config section is missing, using defaults")
	}

	httpPort := cfg.Server.PortHTTP
	if httpPort == 0 {
		httpPort = 8080
		log.Printf("Warning: PortHTTP is 0, using default 8080")
	}

	log.Printf("Config loaded: HTTP port=%d", httpPort)

	return &Server{
		Mux:      http.NewServeMux(),
		HTTPAddr: "0.0.0.0:" + strconv.Itoa(httpPort),
		Config:   cfg,
	}, nil
}

// Initialize инициализирует компоненты сервера (Repository → Store → Handler)
func (s *Server) Initialize() error {
	// Инициализация компонентов (DI): Repository → Store → Handler
	noteRepo := memory.NewRepository()
	log.Println("Initialized in-memory repository (ordered, map-based)")

	catalog := s.Config.Catalog()
	s.events = notesStore.NewEventService()

	noteStore := notesStore.NewNoteStore(noteRepo, catalog, s.events)
	log.Printf("Initialized note store with %d categories", len(noteStore.Categories()))

	noteHandler := httpapi.NewHandler(noteStore)
	noteHandler.Register(s.Mux)
	log.Println("Registered REST API routes")

	eventHandler := httpapi.NewEventHandler(s.events)
	eventHandler.Register(s.Mux)
	log.Println("Registered websocket event stream at /v1/events")

	return nil
}

// Start запускает HTTP сервер в горутине.
// Возвращает канал ошибок для отслеживания ошибок сервера.
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 1)

	// Применение middleware (в обратном порядке выполнения):
	// 1. CORS (обработка CORS заголовков - самый внешний слой)
	// 2. Logging (логирует все запросы)
	// 3. Rate Limiting (ограничивает количество запросов)
	var handler http.Handler = s.Mux
	handler = middleware.RateLimit(handler, s.Config.HTTP.RateLimitRPS, s.Config.HTTP.RateLimitBurst)
	handler = middleware.Logging(handler)
	handler = setupCORS(s.Config.HTTP).Handler(handler)

	s.httpServer = &http.Server{
		Addr:              s.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       time.Duration(s.Config.Server.HTTPReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.Config.Server.HTTPWriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(s.Config.Server.HTTPIdleTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(s.Config.Server.HTTPReadHeaderTimeout) * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", s.HTTPAddr)
		log.Printf("CORS enabled for origins: %s", s.Config.HTTP.CORSAllowedOrigins)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	return errChan
}

// Shutdown выполняет graceful shutdown сервера
func (s *Server) Shutdown() error {
	log.Println("Starting graceful shutdown...")

	shutdownTimeout := time.Duration(s.Config.Server.GracefulShutdownTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown timeout, forcing close: %v", err)
		return s.httpServer.Close()
	}

	log.Println("HTTP server stopped gracefully")
	return nil
}

// setupCORS настраивает CORS middleware используя конфигурацию
func setupCORS(cfg *config.ConfigHTTP) *cors.Cors {
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	// Убираем пробелы из origins
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	maxAge := cfg.CORSMaxAge
	if maxAge == 0 {
		maxAge = 86400 // 24 часа по умолчанию
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders: []string{
			"Content-Type",
			"X-Requested-With",
		},
		AllowCredentials: true,
		MaxAge:           maxAge,
	})
}
