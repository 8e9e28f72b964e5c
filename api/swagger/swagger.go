package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SIRA API",
        "description": "Academic record and dropout risk tracking service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Programs", "description": "Academic program (carrera) reference data"},
        {"name": "Subjects", "description": "Subject (materia) reference data"},
        {"name": "Students", "description": "Student registry keyed by control number"},
        {"name": "Records", "description": "Per-subject enrollment records with unit grades"},
        {"name": "Risk Factors", "description": "Dropout risk taxonomy and record associations"}
    ],
    "paths": {
        "/programs": {
            "get": {"tags": ["Programs"], "summary": "List programs", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Programs"], "summary": "Create program", "responses": {"201": {"description": "Created"}}}
        },
        "/programs/{id}": {
            "delete": {"tags": ["Programs"], "summary": "Delete program", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/subjects": {
            "get": {"tags": ["Subjects"], "summary": "List subjects", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Subjects"], "summary": "Create subject", "responses": {"201": {"description": "Created"}}}
        },
        "/subjects/{id}": {
            "delete": {"tags": ["Subjects"], "summary": "Delete subject", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/students": {
            "get": {"tags": ["Students"], "summary": "List students", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Students"], "summary": "Create or update a student by control number", "responses": {"200": {"description": "OK"}}}
        },
        "/students/{id}": {
            "get": {"tags": ["Students"], "summary": "Get student detail", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/records": {
            "get": {"tags": ["Records"], "summary": "List enrollment records", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Records"], "summary": "Submit a subject enrollment", "responses": {"201": {"description": "Created"}}}
        },
        "/records/export": {
            "get": {"tags": ["Records"], "summary": "Export records as CSV or PDF", "parameters": [{"name": "format", "in": "query", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/records/{id}": {
            "get": {"tags": ["Records"], "summary": "Get record detail", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/records/{id}/withdraw": {
            "post": {"tags": ["Records"], "summary": "Withdraw a record (baja)", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/records/{id}/risk-factors": {
            "get": {"tags": ["Risk Factors"], "summary": "List risk factor associations for a record", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/risk-categories": {
            "get": {"tags": ["Risk Factors"], "summary": "List risk factor categories", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Risk Factors"], "summary": "Create risk factor category", "responses": {"201": {"description": "Created"}}}
        },
        "/risk-categories/{id}": {
            "delete": {"tags": ["Risk Factors"], "summary": "Delete risk factor category", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/risk-factors": {
            "get": {"tags": ["Risk Factors"], "summary": "List risk factors", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
