package transport

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/Victorious-hub/Open-Graph/internal/auth"
	"github.com/Victorious-hub/Open-Graph/internal/enrich"
	"github.com/Victorious-hub/Open-Graph/internal/models"
	"github.com/Victorious-hub/Open-Graph/internal/service"
)

type apiError struct {
	status int
	code   string
	detail string
}

var serviceErrors = []struct {
	err error
	apiError
}{
	{service.ErrNotFound, apiError{fiber.StatusNotFound, "not_found", "Not found."}},
	{service.ErrDuplicateLink, apiError{fiber.StatusBadRequest, "link_exists", "Link with this url already exists."}},
	{service.ErrDuplicateMembership, apiError{fiber.StatusBadRequest, "link_collection_exists", "Link is already in this collection."}},
	{service.ErrUserExists, apiError{fiber.StatusBadRequest, "user_exists", "User with this email already exists."}},
	{service.ErrPasswordNotMatch, apiError{fiber.StatusBadRequest, "password_not_match", "Old password is not correct."}},
	{service.ErrResetLinkExpired, apiError{fiber.StatusBadRequest, "reset_link_expired", "Password reset link has expired."}},
	{service.ErrLoginUserNotFound, apiError{fiber.StatusUnauthorized, "no_active_account", "No active account found with the given credentials."}},
	{service.ErrLoginPasswordDoesNotMatch, apiError{fiber.StatusUnauthorized, "no_active_account", "No active account found with the given credentials."}},
	{auth.ErrInvalidToken, apiError{fiber.StatusUnauthorized, "token_not_valid", "Given token not valid for any token type."}},
	{auth.ErrExpiredToken, apiError{fiber.StatusUnauthorized, "token_not_valid", "Token is expired."}},
}

// ErrorHandler renders every error as {"detail", "code", "status_code"}.
func (s *HTTPServer) ErrorHandler(c *fiber.Ctx, err error) error {
	e := s.toAPIError(c, err)
	return c.Status(e.status).JSON(models.ErrorResp{
		Detail:     e.detail,
		Code:       e.code,
		StatusCode: e.status,
	})
}

func (s *HTTPServer) toAPIError(c *fiber.Ctx, err error) apiError {
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			return se.apiError
		}
	}

	var fetchErr *enrich.FetchError
	if errors.As(err, &fetchErr) {
		return apiError{fiber.StatusBadGateway, "fetch_" + string(fetchErr.Kind), fetchErr.Error()}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apiError{fiber.StatusBadRequest, "invalid", validationDetail(validationErrs)}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apiError{fiberErr.Code, codeForStatus(fiberErr.Code), fiberErr.Message}
	}

	s.logger.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return apiError{fiber.StatusInternalServerError, "error", "A server error occurred."}
}

func validationDetail(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: failed on '%s=%s'", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: failed on '%s'", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "invalid"
	case fiber.StatusUnauthorized:
		return "not_authenticated"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "error"
	}
}
