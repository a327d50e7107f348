package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zen-systems/acemock/pkg/engine"
	"github.com/zen-systems/acemock/pkg/store"
)

type createInterviewBody struct {
	JobPosition   string `validate:"required"`
	JobDesc       string `validate:"required"`
	JobExperience string `validate:"required"`
	CreatedBy     string `validate:"required"`
	Count         int
}

// maxQuestionCount bounds a requested count; values outside 1..maxQuestionCount
// fall back to the configured default.
const maxQuestionCount = 20

func (s *Server) createInterview(c fiber.Ctx) error {
	f := decodeFields(s, c)
	body := createInterviewBody{
		JobPosition:   f.text("jobPosition"),
		JobDesc:       f.text("jobDesc"),
		JobExperience: f.text("jobExperience"),
		CreatedBy:     f.text("createdBy"),
		Count:         f.integer("count"),
	}
	if body.Count < 1 || body.Count > maxQuestionCount {
		body.Count = 0
	}
	if err := s.validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": msgMissingFields})
	}

	log := s.requestLogger(c)
	qa, err := s.engine.GenerateQuestions(c.Context(), engine.InterviewSpec{
		JobPosition:   body.JobPosition,
		JobDesc:       body.JobDesc,
		JobExperience: body.JobExperience,
		Count:         body.Count,
	})
	if errors.Is(err, engine.ErrModelUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "error": msgGenUnavailable})
	}
	if err != nil {
		log.Warn("question generation failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "error": msgGenFailed})
	}

	questions := make([]store.Question, 0, len(qa))
	for _, q := range qa {
		questions = append(questions, store.Question{Question: q.Question, Answer: q.Answer})
	}

	iv := &store.Interview{
		MockID:        uuid.NewString(),
		JobPosition:   body.JobPosition,
		JobDesc:       body.JobDesc,
		JobExperience: body.JobExperience,
		CreatedBy:     body.CreatedBy,
		Questions:     questions,
	}
	if err := s.store.CreateInterview(c.Context(), iv); err != nil {
		log.Error("failed to save interview", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": msgServerError})
	}

	log.Info("interview created", zap.String("mock_id", iv.MockID), zap.Int("questions", len(questions)))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "mockId": iv.MockID})
}

func (s *Server) listInterviews(c fiber.Ctx) error {
	createdBy := c.Query("createdBy")
	if createdBy == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": msgMissingFields})
	}

	interviews, err := s.store.ListInterviews(c.Context(), createdBy)
	if err != nil {
		s.requestLogger(c).Error("failed to list interviews", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": msgStoreFailed})
	}
	return c.JSON(interviews)
}

func (s *Server) getInterview(c fiber.Ctx) error {
	iv, err := s.store.GetInterview(c.Context(), c.Params("mockId"))
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": msgNotFound})
	}
	if err != nil {
		s.requestLogger(c).Error("failed to get interview", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": msgStoreFailed})
	}
	return c.JSON(iv)
}
