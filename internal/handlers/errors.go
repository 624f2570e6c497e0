package handlers

import (
	"errors"

	"github.com/dimitrije/taskflow-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

// respondError maps service errors onto status codes. Anything unrecognised is logged
// and answered with a 500 carrying only the fallback message.
func respondError(c *drift.Context, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrTeamNotFound):
		c.NotFound("team not found")
	case errors.Is(err, services.ErrProjectNotFound):
		c.NotFound("project not found")
	case errors.Is(err, services.ErrTaskNotFound):
		c.NotFound("task not found")
	case errors.Is(err, services.ErrMemberNotFound):
		c.NotFound("member not found")
	case errors.Is(err, services.ErrDuplicateMemberName):
		_ = c.JSON(409, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrAssignmentChanged):
		_ = c.JSON(409, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrInvalidMember),
		errors.Is(err, services.ErrInvalidCapacity),
		errors.Is(err, services.ErrProjectTitleRequired),
		errors.Is(err, services.ErrTaskTitleRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrNoFieldsToUpdate):
		c.BadRequest(err.Error())
	default:
		logger.Error(fallback, zap.Error(err))
		c.InternalServerError(fallback)
	}
}
