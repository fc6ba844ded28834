// Package auth holds the Swagger document served under /swagger/.
package auth

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
		"/livez": {
			"get": {
				"description": "Liveness probe returning uptime and version. Always 200 OK while the process runs.",
				"produces": [
					"application/json"
				],
				"tags": [
					"Health"
				],
				"summary": "Health Check Endpoint",
				"responses": {
					"200": {
						"description": "status, uptime, version",
						"schema": {
							"$ref": "#/definitions/authsdk.HealthResponse"
						}
					}
				}
			}
		},
		"/readyz": {
			"get": {
				"description": "Readiness probe that pings the store (and the exchange code cache when one is configured)",
				"produces": [
					"application/json"
				],
				"tags": [
					"Health"
				],
				"summary": "Readiness Check Endpoint",
				"responses": {
					"200": {
						"description": "status, uptime, version, checks",
						"schema": {
							"$ref": "#/definitions/authsdk.HealthResponse"
						}
					},
					"503": {
						"description": "status, uptime, version, checks - service not ready",
						"schema": {
							"$ref": "#/definitions/authsdk.HealthResponse"
						}
					}
				}
			}
		},
		"/v1/auth/signup": {
			"post": {
				"description": "Creates a member account and returns a session. Email is case-insensitive; display name defaults to the local part of the email.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Sign up",
				"parameters": [
					{
						"description": "New account",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/authsdk.SignupRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/authsdk.SessionResponse"
						}
					},
					"400": {
						"description": "Invalid email, password or display name",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					},
					"409": {
						"description": "Email already registered",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					},
					"429": {
						"description": "Rate limit exceeded",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/auth/login": {
			"post": {
				"description": "Exchanges email and password for a session.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Log in",
				"parameters": [
					{
						"description": "Credentials",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/authsdk.LoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/authsdk.SessionResponse"
						}
					},
					"400": {
						"description": "Missing fields",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Invalid email or password",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					},
					"429": {
						"description": "Rate limit exceeded",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/auth/me": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Current user",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/authsdk.UserResponse"
						}
					},
					"401": {
						"description": "Invalid or missing access token",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/auth/password": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Replaces the password after checking the current one. Not available to impersonated sessions.",
				"consumes": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Change password",
				"parameters": [
					{
						"description": "Current and new password",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/authsdk.ChangePasswordRequest"
						}
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"400": {
						"description": "New password rejected",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Wrong current password or invalid token",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Impersonated session",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/auth/verify": {
			"post": {
				"description": "Returns {valid:true, claims} or {valid:false, error}. An invalid token is still a 200 response.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Verify token",
				"parameters": [
					{
						"description": "Token to check",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/authsdk.VerifyRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/authsdk.VerifyResponse"
						}
					},
					"400": {
						"description": "Malformed body",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/auth/codes": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Returns a single-use code that POST /v1/auth/exchange trades for a fresh session.",
				"produces": [
					"application/json"
				],
				"tags": [
					"Exchange"
				],
				"summary": "Mint exchange code",
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/authsdk.ExchangeCodeResponse"
						}
					},
					"401": {
						"description": "Invalid or missing access token",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Impersonated session",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/auth/exchange": {
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Exchange"
				],
				"summary": "Redeem exchange code",
				"parameters": [
					{
						"description": "Code",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/authsdk.ExchangeRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/authsdk.SessionResponse"
						}
					},
					"400": {
						"description": "Invalid, expired or used code",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/auth/impersonate": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Admin only. Target by userId or email. Lifetime defaults to 60 minutes and is capped at 120.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Admin"
				],
				"summary": "Impersonate user",
				"parameters": [
					{
						"description": "Target",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/authsdk.ImpersonateRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/authsdk.SessionResponse"
						}
					},
					"400": {
						"description": "Bad target",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					},
					"401": {
						"description": "Invalid or missing access token",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					},
					"403": {
						"description": "Not an admin, or already impersonating",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					},
					"404": {
						"description": "Target not found",
						"schema": {
							"$ref": "#/definitions/authsdk.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"authsdk.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"error_description": {
					"type": "string"
				}
			}
		},
		"authsdk.SignupRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				},
				"displayName": {
					"type": "string"
				}
			}
		},
		"authsdk.LoginRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"authsdk.ChangePasswordRequest": {
			"type": "object",
			"properties": {
				"currentPassword": {
					"type": "string"
				},
				"newPassword": {
					"type": "string"
				}
			}
		},
		"authsdk.ImpersonateRequest": {
			"type": "object",
			"properties": {
				"userId": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"lifetimeMinutes": {
					"type": "integer"
				}
			}
		},
		"authsdk.ExchangeRequest": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				}
			}
		},
		"authsdk.VerifyRequest": {
			"type": "object",
			"properties": {
				"token": {
					"type": "string"
				}
			}
		},
		"authsdk.UserResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"displayName": {
					"type": "string"
				},
				"role": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				}
			}
		},
		"authsdk.SessionResponse": {
			"type": "object",
			"properties": {
				"accessToken": {
					"type": "string"
				},
				"tokenType": {
					"type": "string"
				},
				"expiresIn": {
					"type": "integer"
				},
				"user": {
					"$ref": "#/definitions/authsdk.UserResponse"
				},
				"impersonated": {
					"type": "boolean"
				},
				"actorId": {
					"type": "string"
				}
			}
		},
		"authsdk.ExchangeCodeResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"expiresIn": {
					"type": "integer"
				}
			}
		},
		"authsdk.VerifyResponse": {
			"type": "object",
			"properties": {
				"valid": {
					"type": "boolean"
				},
				"claims": {
					"type": "object",
					"additionalProperties": true
				},
				"error": {
					"type": "string"
				}
			}
		},
		"authsdk.HealthResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"uptime": {
					"type": "string"
				},
				"version": {
					"type": "string"
				},
				"checks": {
					"type": "object",
					"additionalProperties": {
						"type": "string"
					}
				}
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

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "GGJ Community Authentication API",
	Description:      "Email and password accounts with HS256 access tokens for the community platform.\nTokens carry userId, email, displayName and role claims and can be checked with the verify endpoint.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
