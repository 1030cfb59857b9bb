// Package docs registers the OpenAPI document served at /api/swagger. It is
// maintained by hand alongside the routes in internal/server.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "description": "Authenticate with username and password and start a session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "password": {"type": "string"},
                                "username": {"type": "string"}
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.AuthResult"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/auth/register": {
            "post": {
                "description": "Create an account with a unique username and email",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an account",
                "parameters": [
                    {
                        "description": "Registration request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "email": {"type": "string"},
                                "password": {"type": "string"},
                                "password_confirmation": {"type": "string"},
                                "username": {"type": "string"}
                            }
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object",
                            "properties": {"account": {"$ref": "#/definitions/models.Account"}}
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/feed": {
            "get": {
                "description": "Every post, newest first",
                "produces": ["application/json"],
                "tags": ["feed"],
                "summary": "Global feed",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.FeedView"}}
                }
            }
        },
        "/feed/select": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Records the view and redirects to the open post",
                "consumes": ["application/json"],
                "tags": ["feed"],
                "summary": "Open a post by title",
                "parameters": [
                    {
                        "description": "Post title",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "object", "properties": {"title": {"type": "string"}}}
                    }
                ],
                "responses": {
                    "303": {"description": "See Other"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Create a post",
                "parameters": [
                    {"type": "file", "description": "Image (jpg, jpeg, png, gif, webp)", "name": "photo", "in": "formData", "required": true},
                    {"type": "string", "description": "Unique title", "name": "title", "in": "formData", "required": true},
                    {"type": "string", "description": "Description", "name": "description", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.PostCard"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/current": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "The open post with its comments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PostDetailView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["posts"],
                "summary": "Close the open post",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/posts/current/comments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Comment on the open post",
                "parameters": [
                    {
                        "description": "Comment",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "object", "properties": {"text": {"type": "string"}}}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Comment"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Own profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ProfileView"}}
                }
            }
        },
        "/profile/image": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "The newest upload becomes the effective profile image",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Upload a profile image",
                "parameters": [
                    {"type": "file", "description": "Image (jpg, jpeg, png, gif, webp)", "name": "photo", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {"type": "object", "properties": {"image_path": {"type": "string"}}}
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/profiles/{username}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Profile by username",
                "parameters": [
                    {"type": "string", "description": "Exact username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ProfileView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/search": {
            "post": {
                "description": "Every query is logged. A match redirects to the profile.",
                "consumes": ["application/json"],
                "tags": ["search"],
                "summary": "Find an account by exact username",
                "parameters": [
                    {
                        "description": "Username",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "object", "properties": {"query": {"type": "string"}}}
                    }
                ],
                "responses": {
                    "303": {"description": "See Other"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.Account": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "integer"},
                "username": {"type": "string"}
            }
        },
        "models.Comment": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "created_at": {"type": "string"},
                "id": {"type": "integer"},
                "post_id": {"type": "integer"},
                "text": {"type": "string"}
            }
        },
        "models.CommentView": {
            "type": "object",
            "properties": {
                "author_username": {"type": "string"},
                "id": {"type": "integer"},
                "text": {"type": "string"}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "string"},
                "error": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "models.FeedView": {
            "type": "object",
            "properties": {
                "length": {"type": "integer"},
                "posts": {"type": "array", "items": {"$ref": "#/definitions/models.PostCard"}}
            }
        },
        "models.PostCard": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "id": {"type": "integer"},
                "image_path": {"type": "string"},
                "owner_username": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "models.PostDetailView": {
            "type": "object",
            "properties": {
                "comments": {"type": "array", "items": {"$ref": "#/definitions/models.CommentView"}},
                "length": {"type": "integer"},
                "post": {"$ref": "#/definitions/models.PostCard"}
            }
        },
        "models.ProfileView": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "length": {"type": "integer"},
                "posts": {"type": "array", "items": {"$ref": "#/definitions/models.PostCard"}},
                "profile_image": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "service.AuthResult": {
            "type": "object",
            "properties": {
                "account": {"$ref": "#/definitions/models.Account"},
                "expires_at": {"type": "string"},
                "token": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8375",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Snapshare API",
	Description:      "Image sharing API with accounts, posts, a global feed, username search and comments",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
