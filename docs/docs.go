// Package docs registers the OpenAPI document served at /api/swagger.
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
        "/auth/signup": {
            "post": {
                "tags": ["auth"],
                "summary": "Account signup",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/service.SignupInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.AuthResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Account login",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/service.LoginInput"}}],
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
                "summary": "Logout",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/properties": {
            "get": {
                "tags": ["properties"],
                "summary": "List properties",
                "parameters": [{"type": "integer", "name": "builder_id", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Property"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json", "multipart/form-data"],
                "tags": ["properties"],
                "summary": "List a property",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/service.CreatePropertyInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Property"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/properties/{id}": {
            "get": {
                "tags": ["properties"],
                "summary": "Get a property",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Property"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/properties/{id}/lock": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["properties"],
                "summary": "Lock a property for negotiation",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Property"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/properties/{id}/interests": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["interests"],
                "summary": "Express interest in a property",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/service.SubmitInterestInput"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.PropertyInterest"}}}
            }
        },
        "/properties/{id}/group-chat": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["messages"],
                "summary": "Join a property's group chat",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.conversationLink"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/properties/{id}/contact": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["messages"],
                "summary": "Open a one-to-one conversation with the builder or an interested buyer",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"user_id": {"type": "integer"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.conversationLink"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/properties/{id}/invitations": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["invitations"],
                "summary": "Invite a user into the property group chat",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/service.InviteInput"}}
                ],
                "responses": {
                    "200": {"description": "Already pending", "schema": {"$ref": "#/definitions/models.GroupInvitation"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.GroupInvitation"}}
                }
            }
        },
        "/conversations/{id}/messages": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["messages"],
                "summary": "Send a message into a conversation",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.ThreadMessage"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/wizards/{name}/steps/{step}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["wizards"],
                "summary": "Save one wizard step",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true},
                    {"type": "integer", "name": "step", "in": "path", "required": true},
                    {"type": "integer", "name": "property_id", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.WizardState"}}}
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}, "details": {"type": "string"}}
        },
        "models.Property": {"type": "object"},
        "models.PropertyInterest": {"type": "object"},
        "models.GroupInvitation": {"type": "object"},
        "models.ThreadMessage": {"type": "object"},
        "models.Conversation": {"type": "object"},
        "server.conversationLink": {
            "type": "object",
            "properties": {"conversation": {"$ref": "#/definitions/models.Conversation"}, "link": {"type": "string"}}
        },
        "service.SignupInput": {
            "type": "object",
            "required": ["role"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string", "enum": ["seeker", "builder"]}}
        },
        "service.LoginInput": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "service.AuthResult": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "user": {"type": "object"}}
        },
        "service.CreatePropertyInput": {"type": "object"},
        "service.SubmitInterestInput": {"type": "object"},
        "service.InviteInput": {
            "type": "object",
            "properties": {"invitee_id": {"type": "integer"}, "invitee_email": {"type": "string"}}
        },
        "service.WizardState": {"type": "object"}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "propmatch API",
	Description:      "Property listings, buyer interest, co-investment groups and messaging.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
