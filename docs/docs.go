package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "TodoFlow API Documentation",
        "title": "TodoFlow API",
        "version": "1.0"
    },
    "host": "localhost:8080",
    "basePath": "/api",
    "schemes": ["http"],
    "paths": {
        "/todos": {
            "get": {
                "tags": ["Todos"],
                "summary": "List todos",
                "description": "Returns all todos owned by the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "List of todos"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "post": {
                "tags": ["Todos"],
                "summary": "Create a todo",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "body",
                        "name": "todo",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "text": {"type": "string", "example": "Buy milk"},
                                "priority": {"type": "string", "enum": ["high", "medium", "low"]},
                                "urgency": {"type": "string", "enum": ["high", "medium", "low"]},
                                "estimated_time": {"type": "integer", "example": 30},
                                "actual_time": {"type": "integer", "example": 25}
                            }
                        }
                    }
                ],
                "responses": {
                    "201": {"description": "Created todo"},
                    "400": {"description": "Validation error"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/todos/{id}": {
            "patch": {
                "tags": ["Todos"],
                "summary": "Update a todo",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Updated todo"},
                    "404": {"description": "Todo not found"}
                }
            },
            "delete": {
                "tags": ["Todos"],
                "summary": "Delete a todo",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Success acknowledgment"},
                    "404": {"description": "Todo not found"}
                }
            }
        },
        "/todos/batch/delete-old": {
            "post": {
                "tags": ["Todos"],
                "summary": "Delete todos older than the retention window",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Sweep result with deletedCount"}
                }
            }
        },
        "/auth/callback": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Identity provider callback",
                "description": "Upserts the user record after a successful login",
                "responses": {
                    "200": {"description": "User record"},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "User information"},
                    "401": {"description": "Unauthorized"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and a session token"
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "TodoFlow API",
	Description:      "TodoFlow API Documentation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
