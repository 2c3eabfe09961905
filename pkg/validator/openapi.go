package validator

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
)

// Schema is the OpenAPI document describing the feedback API
//
//go:embed openapi.yaml
var Schema []byte

// OpenAPIValidator validates requests against an OpenAPI document.
// It is immutable once built.
type OpenAPIValidator struct {
	swagger    *openapi3.T
	router     routers.Router
	schemaPath string
	onReject   func(*gin.Context)
}

// NewOpenAPIValidator loads the schema at schemaPath, or the embedded
// schema when schemaPath is empty
func NewOpenAPIValidator(schemaPath string) (*OpenAPIValidator, error) {
	swagger, err := loadOpenAPISchema(schemaPath)
	if err != nil {
		return nil, err
	}

	router, err := gorillamux.NewRouter(swagger)
	if err != nil {
		return nil, fmt.Errorf("error creating OpenAPI router: %w", err)
	}

	return &OpenAPIValidator{
		swagger:    swagger,
		router:     router,
		schemaPath: schemaPath,
	}, nil
}

func loadOpenAPISchema(path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	var (
		swagger *openapi3.T
		err     error
	)
	if path == "" {
		swagger, err = loader.LoadFromData(Schema)
	} else {
		swagger, err = loader.LoadFromFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI schema %q: %w", path, err)
	}

	if err := swagger.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI schema: %w", err)
	}

	return swagger, nil
}

// Document returns the raw schema served at /api/docs
func (v *OpenAPIValidator) Document() ([]byte, error) {
	if v.schemaPath == "" {
		return Schema, nil
	}
	return os.ReadFile(v.schemaPath)
}

// OnReject registers fn to run for every request the schema rejects
func (v *OpenAPIValidator) OnReject(fn func(*gin.Context)) {
	v.onReject = fn
}

// Middleware returns a Gin middleware function that validates requests against the OpenAPI schema.
// Routes absent from the schema pass through unchecked.
func (v *OpenAPIValidator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route, pathParams, err := v.router.FindRoute(c.Request)
		if err != nil {
			c.Next()
			return
		}

		requestValidationInput := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}

		if err := openapi3filter.ValidateRequest(c.Request.Context(), requestValidationInput); err != nil {
			if v.onReject != nil {
				v.onReject(c)
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid request: %v", err),
			})
			return
		}

		c.Next()
	}
}
