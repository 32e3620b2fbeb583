package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DMS API",
        "description": "Document management backend: OTP login, classification heads, tagged document storage and zip export",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "OTP login lifecycle"},
        {"name": "Documents", "description": "Document catalog, search, download and export"},
        {"name": "Heads", "description": "Two-level classification taxonomy"},
        {"name": "Admin", "description": "Administrator provisioning and system stats"}
    ],
    "paths": {
        "/auth/request-otp": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Request a one-time login code",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequestOTPRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/auth/validate-otp": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Validate a one-time code and obtain a session token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateOTPRequest"}}
                ],
                "responses": {
                    "200": {"description": "Session issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "206": {"description": "OTP valid but profile incomplete"},
                    "401": {"description": "Invalid OTP"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current caller claims",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents visible to the caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Get one document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not visible to the caller"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/documents/search": {
            "get": {
                "tags": ["Documents"],
                "summary": "Search documents",
                "parameters": [
                    {"name": "majorHeadId", "in": "query", "type": "integer"},
                    {"name": "minorHeadId", "in": "query", "type": "integer"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "tags", "in": "query", "type": "string", "description": "comma separated, any match"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/tags": {
            "get": {
                "tags": ["Documents"],
                "summary": "List all tags (admin only)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/documents/export": {
            "get": {
                "tags": ["Documents"],
                "summary": "Export the catalog as CSV or PDF (admin only)",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "description": "csv (default) or pdf"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/documents/upload": {
            "post": {
                "tags": ["Documents"],
                "summary": "Upload a document (admin only)",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "majorHeadId", "in": "formData", "required": true, "type": "integer"},
                    {"name": "minorHeadId", "in": "formData", "required": true, "type": "integer"},
                    {"name": "remarks", "in": "formData", "type": "string"},
                    {"name": "documentDate", "in": "formData", "type": "string"},
                    {"name": "tags", "in": "formData", "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/documents/download/{fileName}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download a stored document",
                "parameters": [
                    {"name": "fileName", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "403": {"description": "Not visible to the caller"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/documents/download/zip": {
            "post": {
                "tags": ["Documents"],
                "summary": "Bundle documents into one zip archive",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkDownloadRequest"}}
                ],
                "responses": {
                    "200": {"description": "Zip download"},
                    "403": {"description": "No requested document is accessible"},
                    "404": {"description": "No matching documents"}
                }
            }
        },
        "/documents/{fileName}": {
            "delete": {
                "tags": ["Documents"],
                "summary": "Delete a document and its file (admin only)",
                "parameters": [
                    {"name": "fileName", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/heads/major": {
            "get": {
                "tags": ["Heads"],
                "summary": "List major heads",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Heads"],
                "summary": "Create a major head (admin only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateMajorHeadRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/heads/minor/{majorHeadId}": {
            "get": {
                "tags": ["Heads"],
                "summary": "List minor heads under a major head",
                "parameters": [
                    {"name": "majorHeadId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Major head not found"}
                }
            }
        },
        "/heads/minor": {
            "post": {
                "tags": ["Heads"],
                "summary": "Create a minor head (admin only)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateMinorHeadRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/heads/minor/{id}": {
            "delete": {
                "tags": ["Heads"],
                "summary": "Delete a minor head (admin only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/admin/create-user": {
            "post": {
                "tags": ["Admin"],
                "summary": "Provision an administrator account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAdminRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username or mobile already taken"}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "tags": ["Admin"],
                "summary": "System metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RequestOTPRequest": {
            "type": "object",
            "properties": {
                "mobile": {"type": "string"}
            },
            "required": ["mobile"]
        },
        "ValidateOTPRequest": {
            "type": "object",
            "properties": {
                "mobile": {"type": "string"},
                "otp": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"},
                "department": {"type": "integer"}
            },
            "required": ["mobile", "otp"]
        },
        "CreateAdminRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "mobile": {"type": "string"}
            },
            "required": ["username", "password", "mobile"]
        },
        "CreateMajorHeadRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            },
            "required": ["name"]
        },
        "CreateMinorHeadRequest": {
            "type": "object",
            "properties": {
                "majorHeadId": {"type": "integer"},
                "name": {"type": "string"}
            },
            "required": ["majorHeadId", "name"]
        },
        "BulkDownloadRequest": {
            "type": "object",
            "properties": {
                "fileNames": {"type": "array", "items": {"type": "string"}},
                "zipName": {"type": "string"}
            },
            "required": ["fileNames"]
        },
        "Document": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "file_original_name": {"type": "string"},
                "file_name": {"type": "string"},
                "content_type": {"type": "string"},
                "size": {"type": "integer"},
                "major_head_id": {"type": "integer"},
                "minor_head_id": {"type": "integer"},
                "remarks": {"type": "string"},
                "document_date": {"type": "string"},
                "uploaded_at": {"type": "string"},
                "uploaded_by": {"type": "integer"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
