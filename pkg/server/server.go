// Package server exposes the AceMock HTTP API on fiber.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"

	"github.com/zen-systems/acemock/pkg/assistant"
	"github.com/zen-systems/acemock/pkg/engine"
	"github.com/zen-systems/acemock/pkg/logging"
	"github.com/zen-systems/acemock/pkg/scoring"
	"github.com/zen-systems/acemock/pkg/store"
)

const (
	pathSubmitAnswer = "/api/submit-answer"
	pathChat         = "/api/ai-chat"

	msgMissingFields  = "Missing required fields"
	msgServerError    = "Server error"
	msgSaveFailed     = "Failed to save answer to DB"
	msgEmptyMessage   = "Message is empty"
	msgAIUnavailable  = "⚠️ AI is temporarily unavailable. Please try again later."
	msgNotFound       = "Interview not found"
	msgGenUnavailable = "Question generation is unavailable"
	msgGenFailed      = "Failed to generate questions"
	msgStoreFailed    = "Failed to read from DB"
)

// Engine is the evaluation surface the handlers call.
type Engine interface {
	EvaluateAnswer(ctx context.Context, req engine.EvaluationRequest) scoring.Result
	Chat(ctx context.Context, req engine.ChatRequest) assistant.Reply
	GenerateQuestions(ctx context.Context, spec engine.InterviewSpec) ([]engine.QA, error)
}

// Store persists interviews and answers.
type Store interface {
	SaveAnswer(ctx context.Context, a *store.UserAnswer) error
	ListAnswers(ctx context.Context, mockID string) ([]store.UserAnswer, error)
	CreateInterview(ctx context.Context, iv *store.Interview) error
	GetInterview(ctx context.Context, mockID string) (*store.Interview, error)
	ListInterviews(ctx context.Context, createdBy string) ([]store.Interview, error)
}

// Config wires the server dependencies.
type Config struct {
	Engine Engine
	Store  Store
	Logger *zap.Logger
	// Responder answers chat requests when a handler fails unexpectedly.
	Responder *assistant.Responder
	// CORSOrigins defaults to all origins.
	CORSOrigins []string
}

// Server is the HTTP front of the service.
type Server struct {
	app       *fiber.App
	engine    Engine
	store     Store
	logger    *zap.Logger
	responder *assistant.Responder
	validate  *validator.Validate
}

// New builds the fiber app with its middleware and routes.
func New(cfg Config) *Server {
	s := &Server{
		engine:    cfg.Engine,
		store:     cfg.Store,
		logger:    cfg.Logger,
		responder: cfg.Responder,
		validate:  validator.New(),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.responder == nil {
		s.responder = &assistant.Responder{}
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "AceMock",
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: s.handleError,
	})

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.app.Use(requestid.New())
	s.app.Use(func(c fiber.Ctx) error {
		c.SetContext(logging.ContextWithLogger(c.Context(), s.requestLogger(c)))
		return c.Next()
	})
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
	}))
	s.app.Use(recoverer.New(recoverer.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			s.requestLogger(c).Error("panic recovered", zap.Any("panic", e))
		},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)

	s.app.Post(pathSubmitAnswer, s.submitAnswer)
	s.app.Post(pathChat, s.chat)

	api := s.app.Group("/api")
	api.Post("/interviews", s.createInterview)
	api.Get("/interviews", s.listInterviews)
	api.Get("/interviews/:mockId", s.getInterview)
	api.Get("/interviews/:mockId/feedback", s.feedback)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("starting HTTP server", zap.String("addr", addr))
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c fiber.Ctx) error {
	return c.SendString("OK")
}

// handleError answers errors and recovered panics per route: the chat
// route still replies from the rule responder and the answer route keeps
// its documented failure body.
func (s *Server) handleError(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"success": false, "error": fe.Message})
	}

	log := s.requestLogger(c)
	switch c.Path() {
	case pathChat:
		log.Error("ai-chat route error", zap.Error(err))
		if reply, ok := s.safeRespond(decodeFields(s, c).text("message")); ok {
			return c.JSON(reply)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"reply": msgAIUnavailable})
	default:
		log.Error("request error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": msgServerError})
	}
}

func (s *Server) safeRespond(message string) (reply assistant.Reply, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("rule responder failed", zap.Any("panic", r))
			ok = false
		}
	}()
	return s.responder.Respond(message), true
}

func (s *Server) requestLogger(c fiber.Ctx) *zap.Logger {
	return s.logger.With(
		zap.String("request_id", requestid.FromContext(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	)
}
