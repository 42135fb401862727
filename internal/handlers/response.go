package handlers

import (
	"errors"
	"fmt"
	"log"

	"harvest/internal/apperror"
	"harvest/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(APIResponse{Success: true, Message: message, Data: data})
}

func ok(c *fiber.Ctx, message string, data interface{}) error {
	return respond(c, fiber.StatusOK, message, data)
}

func created(c *fiber.Ctx, message string, data interface{}) error {
	return respond(c, fiber.StatusCreated, message, data)
}

func paginated(c *fiber.Ctx, data interface{}, total int64, page repositories.Page) error {
	pages := int64(0)
	if page.Limit > 0 {
		pages = (total + int64(page.Limit) - 1) / int64(page.Limit)
	}
	return c.JSON(APIResponse{
		Success:    true,
		Data:       data,
		Pagination: &Pagination{Total: total, Page: page.Page, Limit: page.Limit, Pages: pages},
	})
}

// pageQuery reads ?page and ?limit, clamped the way the repositories clamp them.
func pageQuery(c *fiber.Ctx, defaultLimit int) repositories.Page {
	page := repositories.Page{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", defaultLimit)}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 {
		page.Limit = defaultLimit
	}
	if page.Limit > 100 {
		page.Limit = 100
	}
	return page
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, apperror.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, apperror.ErrExternalService):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes err as an error response. Internal details never reach the client.
func fail(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	resp := APIResponse{Success: false, Message: apperror.Message(err)}

	var verr *requestError
	if errors.As(err, &verr) {
		resp.Errors = verr.fields
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		resp.Message = fe.Message
	}

	switch {
	case status == fiber.StatusBadGateway:
		log.Printf("%s %s upstream error: %v", c.Method(), c.Path(), err)
	case status >= fiber.StatusInternalServerError:
		log.Printf("%s %s failed: %v", c.Method(), c.Path(), err)
		resp.Message = "Internal server error"
	}
	return c.Status(status).JSON(resp)
}

// ErrorHandler renders errors returned by handlers and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return fail(c, err)
}

// NotFound answers unmatched routes.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(APIResponse{Success: false, Message: "Route not found"})
}

// requestError is a malformed or invalid request body.
type requestError struct {
	msg    string
	fields map[string]string
}

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Is(target error) bool { return target == apperror.ErrValidation }

var validate = validator.New()

// bindJSON parses the body into dst and validates its tags.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return &requestError{msg: "Invalid request body"}
	}
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return &requestError{msg: "Validation failed"}
		}
		fields := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return &requestError{msg: "Validation failed", fields: fields}
	}
	return nil
}
