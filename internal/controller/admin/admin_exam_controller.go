package admin

import (
	"errors"
	"net/http"

	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/dto"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AdminExamController struct {
	catalogService service.CatalogService
}

func NewAdminExamController(cs service.CatalogService) *AdminExamController {
	return &AdminExamController{catalogService: cs}
}

// CreateExam godoc
// @Summary (Admin) Create a new exam with questions and options
// @Description Creates an exam for one of the scoring schemes. The question
// @Description set is validated against the scheme's option decoder.
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param exam body dto.CreateExamRequest true "Exam definition"
// @Success 201 {object} dto.ExamResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid payload or catalog invariant violated"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/exams [post]
func (c *AdminExamController) CreateExam(ctx *gin.Context) {
	var req dto.CreateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request payload", Details: []string{err.Error()}})
		return
	}

	exam, err := c.catalogService.CreateExam(req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Exam definition rejected", Details: []string{err.Error()}})
			return
		}
		log.Error().Err(err).Msg("Admin CreateExam: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create exam", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, exam)
}
