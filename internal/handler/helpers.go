package handler

import (
	"net/http"
	"reflect"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/apierror"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/middleware"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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

// respondError maps a service error to its HTTP status via the error Kind.
func respondError(c *gin.Context, err error) {
	c.JSON(apierror.Status(err), apierror.New(err.Error()))
}

// actorFromClaims builds the explicit acting identity passed to every
// state-changing service call.
func actorFromClaims(c *gin.Context) service.Actor {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return service.Actor{}
	}
	id, _ := uuid.Parse(claims.UserID)
	return service.Actor{
		ID:           id,
		Nombre:       claims.Nombre,
		Rol:          claims.Rol,
		CajaAsignada: claims.CajaAsignada,
	}
}
