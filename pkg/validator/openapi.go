package validator

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "pingup/backend/pkg/errors"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
)

// OpenAPIValidator rejects request bodies and parameters that do not match
// the loaded OpenAPI document. Routes absent from the document pass.
type OpenAPIValidator struct {
	doc    *openapi3.T
	router routers.Router
}

func NewOpenAPIValidator(schemaPath string) (*OpenAPIValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI schema from %s: %w", schemaPath, err)
	}
	return newValidator(loader, doc)
}

// NewOpenAPIValidatorFromData builds a validator from an in-memory document
func NewOpenAPIValidatorFromData(data []byte) (*OpenAPIValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI schema: %w", err)
	}
	return newValidator(loader, doc)
}

func newValidator(loader *openapi3.Loader, doc *openapi3.T) (*OpenAPIValidator, error) {
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI schema: %w", err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("error creating OpenAPI router: %w", err)
	}
	return &OpenAPIValidator{doc: doc, router: router}, nil
}

func (v *OpenAPIValidator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route, pathParams, err := v.router.FindRoute(c.Request)
		if err != nil {
			c.Next()
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				MultiError:         false,
			},
		}
		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			c.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "Invalid request").
				WithDetails(describe(err)).
				WithCause(err))
			c.Abort()
			return
		}
		c.Next()
	}
}

func describe(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Error()
	}
	var secErr *openapi3filter.SecurityRequirementsError
	if errors.As(err, &secErr) {
		return http.StatusText(http.StatusUnauthorized)
	}
	return err.Error()
}
