//go:build swagger

// Package docs holds the OpenAPI description served under -tags=swagger.
// Regenerate with: swag init -g cmd/ollamaui/docs.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/models": {
            "get": {
                "produces": ["application/json"],
                "summary": "List offered models",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            }
        },
        "/api/query": {
            "post": {
                "description": "Always submits. Failures of the inference server are part of the returned view, not HTTP errors.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Run one interaction cycle",
                "parameters": [
                    {"description": "Query", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.QueryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/query.View"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "query.View": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "example": "success"},
                "info": {"type": "string"},
                "success": {"type": "string"},
                "response": {"type": "string"},
                "error": {"type": "string"},
                "hint": {"type": "string"},
                "warning": {"type": "string"},
                "metadata": {"$ref": "#/definitions/query.Metadata"}
            }
        },
        "query.Metadata": {
            "type": "object",
            "properties": {
                "model": {"type": "string", "example": "mistral"},
                "temperature": {"type": "number", "example": 0.7},
                "top_p": {"type": "number", "example": 0.9},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/types.OptionalMetric"}}
            }
        },
        "types.OptionalMetric": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "load_duration"},
                "value": {"type": "integer", "x-nullable": true},
                "display": {"type": "string", "example": "not available"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "invalid JSON body"}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {
                "default": {"type": "string", "example": "llama2"},
                "models": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.QueryRequest": {
            "type": "object",
            "properties": {
                "host": {"type": "string", "example": "http://localhost:11434"},
                "model": {"type": "string", "example": "mistral"},
                "prompt": {"type": "string", "example": "Write a haiku about the ocean."},
                "temperature": {"type": "number", "example": 0.7},
                "top_p": {"type": "number", "example": 0.9}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "ollamaui API",
	Description:      "Single-page query form and JSON API in front of a local Ollama server.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
