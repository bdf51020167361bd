//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// docTemplate is the OpenAPI document served at /swagger/doc.json.
const docTemplate = `{
  "swagger": "2.0",
  "info": {"title": "{{.Title}}", "version": "{{.Version}}", "description": "{{escape .Description}}"},
  "basePath": "{{.BasePath}}",
  "paths": {
    "/v1/runs": {
      "get": {"summary": "List open runs", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
      "post": {"summary": "Open a run", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}}}
    },
    "/v1/runs/{id}": {
      "delete": {"summary": "Close a run and return its failures", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown run"}}}
    },
    "/v1/runs/{id}/events": {
      "post": {"summary": "Post one observed event", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "Verdict"}, "400": {"description": "Bad request"}, "404": {"description": "Unknown run"}}}
    },
    "/v1/runs/{id}/mode": {
      "put": {"summary": "Set degraded-network mode", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Unknown run"}}}
    },
    "/v1/rules": {
      "get": {"summary": "Suppression rules in priority order", "responses": {"200": {"description": "OK"}}}
    }
  }
}`

var swaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Title:            "pagewatch collector API",
	Description:      "Collects page events from browser test runners and fails runs on unexpected errors.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(swaggerInfo.InstanceName(), swaggerInfo)
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
