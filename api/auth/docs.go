// Package auth holds the OpenAPI document served by the Swagger UI.
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
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
                "description": "Verifies the credentials and returns an access token. The refresh token is set as an HttpOnly cookie: a persistent cookie when remember is true, a session cookie otherwise.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"type": "string", "description": "Email address", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true},
                    {"type": "boolean", "description": "Keep the session across browser restarts", "name": "remember", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "access_token, token_type, expires_in", "schema": {"$ref": "#/definitions/authsdk.TokenResponse"}},
                    "400": {"description": "error, error_description", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "401": {"description": "error, error_description", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "429": {"description": "error, error_description", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "description": "Reads the refresh cookie, issues a new access token and replaces the cookie with a new refresh token. The remember-me choice made at login is carried over. With SameSite=None the X-Requested-With: XMLHttpRequest header is required.",
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Rotate the refresh token",
                "responses": {
                    "200": {"description": "access_token, token_type, expires_in", "schema": {"$ref": "#/definitions/authsdk.TokenResponse"}},
                    "400": {"description": "CSRF check failed", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "401": {"description": "missing or invalid refresh token", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "description": "Clears the refresh cookie. Succeeds whether or not a cookie was sent.",
                "tags": ["Auth"],
                "summary": "Log out",
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "CSRF check failed", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Creates an account with the \"user\" role.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register",
                "parameters": [
                    {"description": "email and password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "id, email, roles", "schema": {"$ref": "#/definitions/authsdk.UserResponse"}},
                    "400": {"description": "invalid body, invalid email or password, email taken", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the principal behind the bearer token with its current roles.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "id, email, roles", "schema": {"$ref": "#/definitions/authsdk.UserResponse"}},
                    "401": {"description": "error, error_description", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/admin/secret": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Only reachable with the admin role.",
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Admin probe",
                "responses": {
                    "200": {"description": "ok, msg", "schema": {"$ref": "#/definitions/authsdk.AdminSecretResponse"}},
                    "401": {"description": "error, error_description", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "403": {"description": "error, error_description", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "authsdk.APIError": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"}
            }
        },
        "authsdk.AdminSecretResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "msg": {"type": "string"}
            }
        },
        "authsdk.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "authsdk.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_in": {"type": "integer"},
                "token_type": {"type": "string"}
            }
        },
        "authsdk.UserResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT access token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Session Authentication Service API",
	Description:      "Password login issuing short-lived bearer access tokens and a rotating refresh token carried in an HttpOnly cookie.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
