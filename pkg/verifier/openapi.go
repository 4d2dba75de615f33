package verifier

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// responseValidator checks responses against an OpenAPI document.
type responseValidator struct {
	router routers.Router
}

func newResponseValidator(doc *openapi3.T) (*responseValidator, error) {
	if doc == nil {
		return nil, fmt.Errorf("OpenAPI document is required")
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAPI router: %w", err)
	}
	return &responseValidator{router: router}, nil
}

func (rv *responseValidator) validate(ctx context.Context, req *http.Request, resp *http.Response, body []byte) []Mismatch {
	route, pathParams, err := rv.router.FindRoute(req)
	if err != nil {
		return []Mismatch{{Kind: KindOpenAPI, Path: req.URL.Path, Message: "operation not described: " + err.Error()}}
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status:  resp.StatusCode,
		Header:  resp.Header,
		Options: &openapi3filter.Options{IncludeResponseStatus: true},
	}
	input.SetBodyBytes(body)

	if err := openapi3filter.ValidateResponse(ctx, input); err != nil {
		return []Mismatch{{Kind: KindOpenAPI, Path: req.URL.Path, Message: err.Error()}}
	}
	return nil
}
