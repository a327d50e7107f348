package server

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/zen-systems/acemock/pkg/engine"
	"github.com/zen-systems/acemock/pkg/report"
	"github.com/zen-systems/acemock/pkg/store"
)

type submitAnswerBody struct {
	MockIDRef  string `validate:"required"`
	Question   string `validate:"required"`
	CorrectAns string
	UserAns    string `validate:"required"`
	UserEmail  string
}

// submitAnswer rates an answer, stores it and returns the rating. The
// rating is computed before the write, so a store failure still reports it.
func (s *Server) submitAnswer(c fiber.Ctx) error {
	f := decodeFields(s, c)
	body := submitAnswerBody{
		MockIDRef:  f.text("mockIDRef"),
		Question:   f.text("question"),
		CorrectAns: f.text("correctAns"),
		UserAns:    f.text("userAns"),
		UserEmail:  f.text("userEmail"),
	}
	if err := s.validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": msgMissingFields})
	}

	result := s.engine.EvaluateAnswer(c.Context(), engine.EvaluationRequest{
		Question:        body.Question,
		ReferenceAnswer: body.CorrectAns,
		CandidateAnswer: body.UserAns,
	})

	log := s.requestLogger(c)
	log.Debug("answer evaluated",
		zap.String("mock_id", body.MockIDRef),
		zap.Int("rating", result.Rating),
		zap.String("source", string(result.Source)),
	)

	err := s.store.SaveAnswer(c.Context(), &store.UserAnswer{
		MockIDRef:  body.MockIDRef,
		Question:   body.Question,
		CorrectAns: body.CorrectAns,
		UserAns:    body.UserAns,
		Feedback:   result.Feedback,
		Rating:     strconv.Itoa(result.Rating),
		Source:     string(result.Source),
		UserEmail:  body.UserEmail,
	})
	if err != nil {
		log.Error("failed to save answer", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success":  false,
			"error":    msgSaveFailed,
			"rating":   result.Rating,
			"feedback": result.Feedback,
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"rating":   result.Rating,
		"feedback": result.Feedback,
	})
}

type feedbackResponse struct {
	report.Report
	Summary string `json:"summary"`
}

// feedback returns the answers recorded for an interview with their
// average rating.
func (s *Server) feedback(c fiber.Ctx) error {
	mockID := c.Params("mockId")
	answers, err := s.store.ListAnswers(c.Context(), mockID)
	if err != nil {
		s.requestLogger(c).Error("failed to list answers", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": msgStoreFailed})
	}

	r := report.Build(mockID, answers)
	return c.JSON(feedbackResponse{Report: r, Summary: r.Summary()})
}
