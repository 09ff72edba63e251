package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Day Planner Backend",
    "description": "Task scheduling and district visit planning API",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {"get": {"tags": ["health"], "summary": "Store ping", "responses": {"200": {"description": "ok"}, "503": {"description": "database unavailable"}}}},
    "/api/tasks": {
      "get": {"tags": ["tasks"], "summary": "List tasks", "parameters": [{"name": "X-User-Id", "in": "header", "required": true, "type": "string"}], "responses": {"200": {"description": "tasks"}}},
      "post": {"tags": ["tasks"], "summary": "Create task", "parameters": [{"name": "X-User-Id", "in": "header", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "created"}, "400": {"description": "invalid"}}}
    },
    "/api/tasks/{id}": {"delete": {"tags": ["tasks"], "summary": "Delete task", "parameters": [{"name": "X-User-Id", "in": "header", "required": true, "type": "string"}, {"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "deleted"}, "404": {"description": "not found"}}}},
    "/api/schedule/build": {"post": {"tags": ["schedule"], "summary": "Build day schedule", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "timeline"}, "400": {"description": "invalid"}}}},
    "/api/profile": {
      "get": {"tags": ["profile"], "summary": "Get profile", "parameters": [{"name": "X-User-Id", "in": "header", "required": true, "type": "string"}], "responses": {"200": {"description": "profile"}, "404": {"description": "not found"}}},
      "put": {"tags": ["profile"], "summary": "Set profile", "parameters": [{"name": "X-User-Id", "in": "header", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "profile"}}}
    },
    "/api/optimize": {"post": {"tags": ["plans"], "summary": "Optimize a day plan", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "plan"}}}},
    "/api/reoptimize": {"post": {"tags": ["plans"], "summary": "Re-optimize after a delay", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "plan"}}}},
    "/api/suggest": {"post": {"tags": ["plans"], "summary": "Suggest visits for free slots", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "plan"}}}},
    "/api/locations": {"get": {"tags": ["locations"], "summary": "List catalog locations", "parameters": [{"name": "district", "in": "query", "required": true, "type": "string"}], "responses": {"200": {"description": "locations"}}}},
    "/api/locations/statistics/{district}": {"get": {"tags": ["locations"], "summary": "District statistics", "parameters": [{"name": "district", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "stats"}, "404": {"description": "unknown district"}}}},
    "/api/admin/catalog/import": {"post": {"tags": ["admin"], "summary": "Import location catalog", "consumes": ["multipart/form-data"], "parameters": [{"name": "X-Admin-Key", "in": "header", "required": true, "type": "string"}, {"name": "file", "in": "formData", "required": true, "type": "file"}, {"name": "geocode", "in": "query", "type": "boolean"}], "responses": {"200": {"description": "summary"}}}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
