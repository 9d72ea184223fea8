package handler

import (
	"context"

	"lesson-byte/internal/domain"
	"lesson-byte/internal/dto"
	"lesson-byte/internal/logger"
	"lesson-byte/internal/middleware"
	"lesson-byte/internal/service"
	"lesson-byte/internal/session"
	"lesson-byte/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// LessonHandler handles session and lesson HTTP requests
type LessonHandler struct {
	sessions  service.SessionService
	validator *validation.Validator
	features  dto.FeaturesResponse
}

// NewLessonHandler creates a new LessonHandler instance
func NewLessonHandler(sessions service.SessionService, validator *validation.Validator, features dto.FeaturesResponse) *LessonHandler {
	return &LessonHandler{
		sessions:  sessions,
		validator: validator,
		features:  features,
	}
}

// Register mounts the lesson routes on router. Routes under /sessions/:id
// require a valid session id.
func (h *LessonHandler) Register(router fiber.Router, vm *middleware.ValidationMiddleware) {
	router.Get("/features", h.GetFeatures)
	router.Post("/sessions", h.CreateSession)

	sessions := router.Group("/sessions/:id", vm.ValidateSessionID())
	sessions.Get("", h.GetSession)
	sessions.Post("/document", h.UploadDocument)
	sessions.Put("/concept", h.SelectConcept)
	sessions.Post("/explanation", h.Explain)
	sessions.Post("/scenario", h.NewScenario)
	sessions.Post("/scenario/answer", h.AnswerScenario)
	sessions.Post("/quiz", h.StartQuiz)
	sessions.Post("/quiz/answer", h.AnswerQuiz)
	sessions.Post("/practice", h.Practice)
	sessions.Post("/simulation", h.Simulate)
	sessions.Post("/animation", h.Animate)
	sessions.Post("/video", h.MakeVideo)
}

func sessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals(middleware.LocalSessionID).(string); ok {
		return id
	}
	return utils.CopyString(c.Params("id"))
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewInvalidInputError("request body is not valid JSON")
	}
	return nil
}

// GetFeatures godoc
// @Summary List enabled features
// @Description Reports which optional integrations have credentials configured
// @Tags features
// @Produce json
// @Success 200 {object} dto.FeaturesResponse
// @Router /features [get]
func (h *LessonHandler) GetFeatures(c *fiber.Ctx) error {
	return c.JSON(h.features)
}

// CreateSession godoc
// @Summary Create a session
// @Tags sessions
// @Produce json
// @Success 201 {object} dto.SessionResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /sessions [post]
func (h *LessonHandler) CreateSession(c *fiber.Ctx) error {
	sess, err := h.sessions.Create(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSessionResponse(sess))
}

// GetSession godoc
// @Summary Get session state
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [get]
func (h *LessonHandler) GetSession(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSessionResponse(sess))
}

// UploadDocument godoc
// @Summary Upload a chapter
// @Description Stores the PDF, extracts its text and lists its key concepts. Replaces any previous document and everything derived from it.
// @Tags sessions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "Chapter PDF"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /sessions/{id}/document [post]
func (h *LessonHandler) UploadDocument(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("file")}
	}
	if errs := h.validator.ValidateUpload(fileHeader.Filename, fileHeader.Size); len(errs) > 0 {
		return errs
	}

	file, err := fileHeader.Open()
	if err != nil {
		return domain.NewInternalError("failed to open uploaded file", err)
	}
	defer file.Close()

	sess, err := h.sessions.UploadDocument(c.UserContext(), sessionID(c), fileHeader.Filename, file)
	if err != nil {
		logger.Get().Warn("Document upload failed",
			zap.String("session_id", sessionID(c)),
			zap.String("file_name", fileHeader.Filename),
			zap.Error(err),
		)
		return err
	}
	return c.JSON(dto.NewSessionResponse(sess))
}

// SelectConcept godoc
// @Summary Select a concept
// @Description Choosing a different concept clears its explanation, scenario, feedback and quiz
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.SelectConceptRequest true "Concept"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /sessions/{id}/concept [put]
func (h *LessonHandler) SelectConcept(c *fiber.Ctx) error {
	var req dto.SelectConceptRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateConcept(req.Concept); len(errs) > 0 {
		return errs
	}

	sess, err := h.sessions.SelectConcept(c.UserContext(), sessionID(c), domain.Concept(req.Concept))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSessionResponse(sess))
}

// Explain godoc
// @Summary Explain the selected concept
// @Description Returns the current explanation, generating it on first request
// @Tags lesson
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} domain.Explanation
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /sessions/{id}/explanation [post]
func (h *LessonHandler) Explain(c *fiber.Ctx) error {
	explanation, err := h.sessions.Explain(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(explanation)
}

// NewScenario godoc
// @Summary Generate a practice scenario
// @Tags lesson
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} domain.Scenario
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /sessions/{id}/scenario [post]
func (h *LessonHandler) NewScenario(c *fiber.Ctx) error {
	scenario, err := h.sessions.NewScenario(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(scenario)
}

// AnswerScenario godoc
// @Summary Answer the current scenario
// @Tags lesson
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.AnswerRequest true "Answer"
// @Success 200 {object} domain.Feedback
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /sessions/{id}/scenario/answer [post]
func (h *LessonHandler) AnswerScenario(c *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateAnswer(req.Answer); len(errs) > 0 {
		return errs
	}

	feedback, err := h.sessions.AnswerScenario(c.UserContext(), sessionID(c), req.Answer)
	if err != nil {
		return err
	}
	return c.JSON(feedback)
}

// StartQuiz godoc
// @Summary Start a quiz on the selected concept
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.QuizView
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Router /sessions/{id}/quiz [post]
func (h *LessonHandler) StartQuiz(c *fiber.Ctx) error {
	progress, err := h.sessions.StartQuiz(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQuizView(progress))
}

// AnswerQuiz godoc
// @Summary Answer the current quiz question
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.AnswerRequest true "Chosen option"
// @Success 200 {object} session.AnswerResult
// @Failure 400 {object} middleware.ErrorResponse
// @Router /sessions/{id}/quiz/answer [post]
func (h *LessonHandler) AnswerQuiz(c *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateAnswer(req.Answer); len(errs) > 0 {
		return errs
	}

	result, err := h.sessions.AnswerQuiz(c.UserContext(), sessionID(c), req.Answer)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Practice godoc
// @Summary Generate a scenario and start a quiz together
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.PracticeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /sessions/{id}/practice [post]
func (h *LessonHandler) Practice(c *fiber.Ctx) error {
	practice, err := h.sessions.Practice(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	progress := &session.QuizProgress{Questions: practice.Quiz.Questions}
	return c.JSON(dto.PracticeResponse{Scenario: practice.Scenario, Quiz: dto.NewQuizView(progress)})
}

// Simulate godoc
// @Summary Build an interactive simulation
// @Description Returns a self-contained HTML page
// @Tags lesson
// @Produce html
// @Param id path string true "Session ID"
// @Success 200 {string} string "HTML page"
// @Failure 400 {object} middleware.ErrorResponse
// @Router /sessions/{id}/simulation [post]
func (h *LessonHandler) Simulate(c *fiber.Ctx) error {
	sim, err := h.sessions.Simulate(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(sim.HTML)
}

// Animate godoc
// @Summary Render a talking-avatar animation
// @Description Blocks until the render finishes. An empty script narrates the explanation.
// @Tags media
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.MediaRequest false "Narration script"
// @Success 200 {object} domain.MediaArtifact
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Failure 504 {object} middleware.ErrorResponse
// @Router /sessions/{id}/animation [post]
func (h *LessonHandler) Animate(c *fiber.Ctx) error {
	return h.renderMedia(c, h.sessions.Animate)
}

// MakeVideo godoc
// @Summary Render a stock-footage video
// @Description Blocks until the render finishes. An empty script narrates the explanation.
// @Tags media
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.MediaRequest false "Narration script"
// @Success 200 {object} domain.MediaArtifact
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Failure 504 {object} middleware.ErrorResponse
// @Router /sessions/{id}/video [post]
func (h *LessonHandler) MakeVideo(c *fiber.Ctx) error {
	return h.renderMedia(c, h.sessions.MakeVideo)
}

type mediaAction func(ctx context.Context, id, script string) (*domain.MediaArtifact, error)

func (h *LessonHandler) renderMedia(c *fiber.Ctx, action mediaAction) error {
	var req dto.MediaRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	if errs := h.validator.ValidateScript(req.Script); len(errs) > 0 {
		return errs
	}

	artifact, err := action(c.UserContext(), sessionID(c), req.Script)
	if err != nil {
		return err
	}
	return c.JSON(artifact)
}
