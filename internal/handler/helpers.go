package handler

import (
	"errors"
	"net/http"
	"reflect"

	"cantina/internal/apierror"
	"cantina/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQueryAndValidate binds query-string filters and runs validator tags.
func bindQueryAndValidate(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	if err := validate.Struct(filter); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps service errors to HTTP responses. Typed domain errors
// carry their own status and envelope; anything else is an internal error —
// logged server-side, generic 500 to the client.
func respondError(c *gin.Context, err error) {
	var derr *apierror.DomainError
	if errors.As(err, &derr) && derr.Kind != apierror.KindIntegrity {
		c.JSON(derr.Status(), derr.Envelope())
		return
	}
	log.Error().
		Str("path", c.FullPath()).
		Str("method", c.Request.Method).
		Err(err).
		Msg("internal error")
	c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
}

// parseUUIDParam parses a path parameter as UUID, answering 400 on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// usuarioIDFromClaims extracts the authenticated user's UUID from the JWT.
func usuarioIDFromClaims(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return id
}
