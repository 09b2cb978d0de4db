// Package swagger holds the generated OpenAPI document. Regenerate with
// `swag init -g cmd/server/main.go -o docs/swagger`.
package swagger

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
        "/access/cleanup": {
            "post": {
                "produces": ["application/json"],
                "tags": ["access"],
                "summary": "Deactivate expired tokens",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/access/codes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["access"],
                "summary": "List all access tokens",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/access/codes/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["access"],
                "summary": "Deactivate an access token",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/access/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["access"],
                "summary": "Generate an access token",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/access/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["access"],
                "summary": "Validate an access token",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/photos": {
            "get": {
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "List gallery photos",
                "parameters": [
                    {"type": "string", "name": "uploaderId", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"}
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "Upload a photo",
                "parameters": [
                    {"type": "string", "name": "uploader_id", "in": "formData", "required": true},
                    {"type": "file", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/photos/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "Get a photo by id",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "consumes": ["application/json"],
                "tags": ["photos"],
                "summary": "Delete a photo",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Wedding Photo API",
	Description:      "Guest photo sharing service with token-gated gallery access",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
