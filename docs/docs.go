// Package docs holds the OpenAPI description served at /swagger.
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
        "/api/fetch-latest-data": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Load the latest report",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ReportResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/fetch-specific-data": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Load a report by URL",
                "parameters": [
                    {"description": "Report URL", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.FetchSpecificRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ReportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/fetch-date": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Load the report for a date",
                "parameters": [
                    {"description": "Report date", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.FetchDateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ReportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/upload-csv": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Parse an uploaded report",
                "parameters": [
                    {"type": "file", "description": "Report CSV", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Report date (YYYYMMDD)", "name": "date", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ReportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/report-dates": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "List recent report dates",
                "parameters": [
                    {"type": "integer", "description": "Calendar days to cover", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.ReportDateOption"}}}
                }
            }
        },
        "/api/window": {
            "get": {
                "produces": ["application/json"],
                "tags": ["window"],
                "summary": "Describe the session window",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.WindowResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["window"],
                "summary": "Remove every report date",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.WindowResponse"}}
                }
            }
        },
        "/api/window/{date}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["window"],
                "summary": "Remove a report date",
                "parameters": [
                    {"type": "string", "description": "Report date (YYYYMMDD)", "name": "date", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.WindowResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/compare": {
            "get": {
                "produces": ["application/json"],
                "tags": ["compare"],
                "summary": "Compare one ticker across loaded reports",
                "parameters": [
                    {"type": "string", "description": "Ticker", "name": "ticker", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TickerTrend"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/top-movers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["compare"],
                "summary": "Biggest movers across loaded reports",
                "parameters": [
                    {"type": "integer", "description": "Maximum entries (1-20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TopMoversResponse"}}
                }
            }
        },
        "/api/top-shorted": {
            "get": {
                "produces": ["application/json"],
                "tags": ["compare"],
                "summary": "Most shorted securities",
                "parameters": [
                    {"type": "integer", "description": "Maximum entries (1-50)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TopShortedResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/stocks/{ticker}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["compare"],
                "summary": "One security's detail",
                "parameters": [
                    {"type": "string", "description": "Ticker", "name": "ticker", "in": "path", "required": true},
                    {"type": "string", "description": "Time range (1m, 3m, 12m, 3y)", "name": "range", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StockResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.FetchSpecificRequest": {
            "type": "object",
            "required": ["url"],
            "properties": {
                "url": {"type": "string"}
            }
        },
        "models.FetchDateRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string"}
            }
        },
        "models.ReportMetadata": {
            "type": "object",
            "properties": {
                "reportDate": {"type": "string"},
                "csvUrl": {"type": "string"},
                "totalStocks": {"type": "integer"},
                "fetchedAt": {"type": "string"},
                "autoFetched": {"type": "boolean"}
            }
        },
        "models.SecurityRecordDTO": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "ticker": {"type": "string"},
                "isSnapshot": {"type": "boolean"},
                "shortPositions": {"type": "integer"},
                "totalIssue": {"type": "integer"},
                "percentage": {"type": "number"},
                "reportDate": {"type": "string"},
                "positions": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "models.Warning": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.ReportResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/models.SecurityRecordDTO"}},
                "metadata": {"$ref": "#/definitions/models.ReportMetadata"},
                "warnings": {"type": "array", "items": {"$ref": "#/definitions/models.Warning"}}
            }
        },
        "models.ReportDateOption": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "label": {"type": "string"},
                "csvUrl": {"type": "string"},
                "loaded": {"type": "boolean"}
            }
        },
        "models.LoadedReport": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "label": {"type": "string"},
                "csvUrl": {"type": "string"},
                "totalStocks": {"type": "integer"},
                "fetchedAt": {"type": "string"}
            }
        },
        "models.WindowResponse": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "capacity": {"type": "integer"},
                "autoLoaded": {"type": "boolean"},
                "dates": {"type": "array", "items": {"$ref": "#/definitions/models.LoadedReport"}},
                "tickers": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.TrendPoint": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "formattedDate": {"type": "string"},
                "percentage": {"type": "number"},
                "shortPositions": {"type": "integer"},
                "totalIssue": {"type": "integer"}
            }
        },
        "models.PeriodChange": {
            "type": "object",
            "properties": {
                "from": {"type": "string"},
                "to": {"type": "string"},
                "change": {"type": "number"},
                "changePercent": {"type": "number"},
                "fromValue": {"type": "number"},
                "toValue": {"type": "number"}
            }
        },
        "models.TickerTrend": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "stockName": {"type": "string"},
                "dataPoints": {"type": "array", "items": {"$ref": "#/definitions/models.TrendPoint"}},
                "changes": {"type": "array", "items": {"$ref": "#/definitions/models.PeriodChange"}}
            }
        },
        "models.Mover": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "name": {"type": "string"},
                "change": {"type": "number"},
                "latest": {"type": "number"}
            }
        },
        "models.TopMoversResponse": {
            "type": "object",
            "properties": {
                "dates": {"type": "array", "items": {"type": "string"}},
                "movers": {"type": "array", "items": {"$ref": "#/definitions/models.Mover"}}
            }
        },
        "models.ShortedStock": {
            "type": "object",
            "properties": {
                "rank": {"type": "integer"},
                "ticker": {"type": "string"},
                "name": {"type": "string"},
                "percentage": {"type": "number"},
                "shortPositions": {"type": "integer"},
                "totalIssue": {"type": "integer"},
                "isHighShort": {"type": "boolean"},
                "isVeryHighShort": {"type": "boolean"}
            }
        },
        "models.TopShortedResponse": {
            "type": "object",
            "properties": {
                "reportDate": {"type": "string"},
                "stocks": {"type": "array", "items": {"$ref": "#/definitions/models.ShortedStock"}},
                "veryHighCount": {"type": "integer"},
                "highCount": {"type": "integer"}
            }
        },
        "models.DatedPercentage": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "label": {"type": "string"},
                "percentage": {"type": "number"}
            }
        },
        "models.StockResponse": {
            "type": "object",
            "properties": {
                "reportDate": {"type": "string"},
                "record": {"$ref": "#/definitions/models.SecurityRecordDTO"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/models.DatedPercentage"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Short Positions API",
	Description:      "Loads daily aggregated short position reports and compares them across dates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
