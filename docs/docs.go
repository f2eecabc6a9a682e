// Package docs is generated by swag init from the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "Server is running", "schema": {"type": "string"}}
                }
            }
        },
        "/submit": {
            "post": {
                "description": "Forwards name and message to the configured recipient. Both fields are optional.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["submit"],
                "summary": "Submit a form",
                "parameters": [
                    {
                        "description": "Form fields",
                        "name": "submission",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.Submission"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.StatusResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/types.StatusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            },
            "options": {
                "tags": ["submit"],
                "summary": "CORS preflight",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/test": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Always answers 200; delivery errors are embedded in the text.",
                "produces": ["text/plain"],
                "tags": ["admin"],
                "summary": "Send a test notification",
                "responses": {
                    "200": {"description": "Test message sent", "schema": {"type": "string"}}
                }
            }
        },
        "/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/plain"],
                "tags": ["admin"],
                "summary": "Read the server log file",
                "responses": {
                    "200": {"description": "raw log lines", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "models.Submission": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Hello"},
                "name": {"type": "string", "example": "Alice"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Invalid JSON"},
                "status": {"type": "string", "example": "success"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "formrelay API",
	Description:      "Relays contact form submissions to a Telegram chat.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
