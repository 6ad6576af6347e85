// Package docs registers the Swagger document for the insights API.
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
        "/data": {
            "get": {
                "description": "Return every stored record",
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "List records",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}},
                    "500": {"description": "Record store failure", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/data/filter": {
            "get": {
                "description": "Return records matching every given filter",
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Filter records",
                "parameters": [
                    {"type": "string", "description": "End year", "name": "end_year", "in": "query"},
                    {"type": "string", "description": "Topic", "name": "topic", "in": "query"},
                    {"type": "string", "description": "Sector", "name": "sector", "in": "query"},
                    {"type": "string", "description": "Region", "name": "region", "in": "query"},
                    {"type": "string", "description": "PESTLE category", "name": "pestle", "in": "query"},
                    {"type": "string", "description": "Source", "name": "source", "in": "query"},
                    {"type": "string", "description": "Country", "name": "country", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}},
                    "500": {"description": "Record store failure", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/data/filters": {
            "get": {
                "description": "Distinct non-blank values of every filterable field",
                "produces": ["application/json"],
                "tags": ["data"],
                "summary": "Filter options",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "500": {"description": "Record store failure", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/data/stats": {
            "get": {
                "description": "Average intensity, likelihood and relevance plus the record count over the filtered records",
                "produces": ["application/json"],
                "tags": ["aggregations"],
                "summary": "Summary statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "500": {"description": "Record store failure", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/data/query/{shape}": {
            "get": {
                "description": "Run the named aggregation",
                "produces": ["application/json"],
                "tags": ["aggregations"],
                "summary": "Run a query shape",
                "parameters": [
                    {"type": "string", "description": "Shape name", "name": "shape", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}},
                    "400": {"description": "Unknown shape", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Record store failure", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "504": {"description": "Query timed out", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Record store unreachable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Insights API",
	Description:      "Filtered aggregations over the insights record collection.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
