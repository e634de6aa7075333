// Package docs registers the breedd OpenAPI document with swag. It is only
// linked into builds tagged swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Detailed health",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}}}
            }
        },
        "/status": {
            "get": {
                "tags": ["health"],
                "summary": "Classifier and admission status",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/predict": {
            "post": {
                "tags": ["prediction"],
                "summary": "Identify breed from an uploaded image",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true},
                    {"type": "boolean", "name": "include_gradcam", "in": "formData"},
                    {"type": "boolean", "name": "include_breed_info", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/api/v1/predict/base64": {
            "post": {
                "tags": ["prediction"],
                "summary": "Identify breed from a base64 image",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.PredictBase64Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/api/v1/breeds": {
            "get": {
                "tags": ["breeds"],
                "summary": "List breeds",
                "parameters": [
                    {"type": "string", "name": "animal_type", "in": "query"},
                    {"type": "string", "name": "state", "in": "query"},
                    {"type": "string", "name": "conservation_status", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/breeds/{breed_id}": {
            "get": {
                "tags": ["breeds"],
                "summary": "Breed details",
                "parameters": [{"type": "string", "name": "breed_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/compare": {
            "get": {
                "tags": ["comparison"],
                "summary": "Compare two breeds",
                "parameters": [
                    {"type": "string", "name": "breed1", "in": "query", "required": true},
                    {"type": "string", "name": "breed2", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sustainability-ranking": {
            "get": {
                "tags": ["comparison"],
                "summary": "Breeds ranked by carbon score",
                "parameters": [
                    {"type": "string", "name": "animal_type", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "healthy"},
                "model_loaded": {"type": "boolean"},
                "demo_mode": {"type": "boolean"},
                "breed_data_loaded": {"type": "boolean"}
            }
        },
        "types.PredictBase64Request": {
            "type": "object",
            "properties": {
                "image": {"type": "string"},
                "include_gradcam": {"type": "boolean"},
                "include_breed_info": {"type": "boolean"}
            }
        },
        "types.TopPrediction": {
            "type": "object",
            "properties": {
                "breed": {"type": "string", "example": "Gir"},
                "confidence": {"type": "number", "example": 87.66}
            }
        },
        "types.PredictionResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "prediction_id": {"type": "string"},
                "animal_type": {"type": "string", "example": "cattle"},
                "animal_type_confidence": {"type": "number"},
                "breed": {"type": "string", "example": "Gir"},
                "breed_confidence": {"type": "number"},
                "breed_hindi": {"type": "string"},
                "top_predictions": {"type": "array", "items": {"$ref": "#/definitions/types.TopPrediction"}},
                "gradcam_image": {"type": "string"},
                "breed_info": {"type": "object"},
                "processing_time_ms": {"type": "number"},
                "model_loaded": {"type": "boolean"},
                "image_hash": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "breedd API",
	Description:      "Two-stage cattle and buffalo breed identification with Grad-CAM explanations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
