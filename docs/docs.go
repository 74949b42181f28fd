// Package docs registers the OpenAPI document served under /swagger.
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
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/tokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange credentials for a token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Current user's profile",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/UserDTO"}}}
            }
        },
        "/scans": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["records"],
                "summary": "Recent scans, newest first",
                "parameters": [{"type": "integer", "description": "Max rows (1-100, default 5)", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["records"],
                "summary": "Store a stress scan",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}}
            }
        },
        "/habits": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["records"],
                "summary": "Recent habit entries, newest first",
                "parameters": [{"type": "integer", "description": "Max rows (1-100, default 5)", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["records"],
                "summary": "Store a daily habit entry",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}}
            }
        },
        "/sync": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["sync"],
                "summary": "Upload records captured offline",
                "parameters": [{"in": "body", "name": "data", "required": true, "schema": {"$ref": "#/definitions/SyncRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}}
            }
        },
        "/predict": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["prediction"],
                "summary": "Risk prediction from the latest scan and habit entry",
                "parameters": [{"in": "body", "name": "body", "schema": {"$ref": "#/definitions/predictRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/predictResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "no data for user", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/trend": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["prediction"],
                "summary": "Daily average stress over a window",
                "parameters": [
                    {"type": "integer", "description": "Window in days (1-365)", "name": "days", "in": "query"},
                    {"type": "string", "description": "Target user (defaults to caller)", "name": "user_id", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/TrendPoint"}}}}
            }
        },
        "/snapshot": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["prediction"],
                "summary": "Latest scan and habit entry",
                "parameters": [{"type": "string", "description": "Target user (defaults to caller)", "name": "user_id", "in": "query"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}}
            }
        },
        "/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["dashboard"],
                "summary": "Snapshot, prediction and weekly trend in one call",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/overview": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Get admin overview",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Overview"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "credentials": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "full_name": {"type": "string"}}
        },
        "errorResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "error": {"type": "string"}}
        },
        "UserDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}, "email": {"type": "string"}, "full_name": {"type": "string"},
                "is_admin": {"type": "boolean"}, "created_at": {"type": "string"}
            }
        },
        "tokenResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "token": {"type": "string"}, "user": {"$ref": "#/definitions/UserDTO"}}
        },
        "predictRequest": {
            "type": "object",
            "properties": {"user_id": {"type": "string"}}
        },
        "HealthRisks": {
            "type": "object",
            "properties": {
                "hypertension": {"type": "number"}, "insomnia": {"type": "number"},
                "anxiety": {"type": "number"}, "depression": {"type": "number"}
            }
        },
        "PredictionDTO": {
            "type": "object",
            "properties": {
                "stress_level": {"type": "number"},
                "risk_level": {"type": "string", "enum": ["Low", "Medium", "High"]},
                "health_risks": {"$ref": "#/definitions/HealthRisks"},
                "symptoms": {"type": "array", "items": {"type": "string"}},
                "recommendations": {"type": "array", "items": {"type": "string"}}
            }
        },
        "predictResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "prediction": {"$ref": "#/definitions/PredictionDTO"},
                "model_version": {"type": "string"}
            }
        },
        "TrendPoint": {
            "type": "object",
            "properties": {"date": {"type": "string"}, "avg_stress": {"type": "number"}, "scan_count": {"type": "integer"}}
        },
        "SyncRequest": {
            "type": "object",
            "properties": {
                "scans": {"type": "array", "items": {"type": "object"}},
                "habits": {"type": "array", "items": {"type": "object"}}
            }
        },
        "Overview": {
            "type": "object",
            "properties": {
                "total_users": {"type": "integer"}, "total_scans": {"type": "integer"},
                "total_habits": {"type": "integer"}, "active_users_this_week": {"type": "integer"}
            }
        }
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
	Title:            "stresslens API",
	Description:      "Stress scan and habit aggregation with risk scoring.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
