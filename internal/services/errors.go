package services

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrMemberNotFound      = errors.New("member not found")
	ErrDuplicateMemberName = errors.New("member name already used in this team")
	ErrInvalidMember       = errors.New("member name and role are required")
	ErrInvalidCapacity     = errors.New("capacity must be zero or greater")

	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectTitleRequired = errors.New("project title is required")

	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskTitleRequired   = errors.New("task title is required")
	ErrInvalidPriority     = errors.New("priority must be Low, Medium or High")
	ErrInvalidStatus       = errors.New("status must be Pending, In Progress or Done")
	ErrAssignmentChanged   = errors.New("task assignment changed concurrently")
	ErrNoFieldsToUpdate    = errors.New("no fields to update")
	ErrRefreshTokenInvalid = errors.New("refresh token invalid or expired")
)
