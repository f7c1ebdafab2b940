// Package docs holds the OpenAPI document registered with swag and served by
// the swagger UI. Keep the paths in sync with the handler annotations.
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
        "/entities/{entityID}/accounts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List accounts",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "accountType", "in": "query"},
                    {"type": "boolean", "name": "activeOnly", "in": "query"},
                    {"type": "boolean", "name": "postableOnly", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "Accounts"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Create a new ledger account",
                "parameters": [{"type": "string", "name": "entityID", "in": "path", "required": true}],
                "responses": {"201": {"description": "The created account"}, "400": {"description": "Invalid request"}, "409": {"description": "Account code already in use"}}
            }
        },
        "/entities/{entityID}/accounts/{accountID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get an account",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "accountID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "The account"}, "404": {"description": "Account not found"}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Update an account",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "accountID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "The updated account"}, "404": {"description": "Account not found"}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Deactivate an account",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "accountID", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "Account deactivated"}, "404": {"description": "Account not found"}, "409": {"description": "Account already inactive"}}
            }
        },
        "/entities/{entityID}/entries": {
            "get": {
                "produces": ["application/json"],
                "tags": ["entries"],
                "summary": "List journal entries",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "dateFrom", "in": "query"},
                    {"type": "string", "name": "dateTo", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "nextToken", "in": "query"}
                ],
                "responses": {"200": {"description": "Entries and next-page token"}, "400": {"description": "Invalid filter"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["entries"],
                "summary": "Create a journal entry",
                "parameters": [{"type": "string", "name": "entityID", "in": "path", "required": true}],
                "responses": {"201": {"description": "The created entry"}, "400": {"description": "Validation failure"}, "409": {"description": "Period locked"}}
            }
        },
        "/entities/{entityID}/entries/{entryID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["entries"],
                "summary": "Get a journal entry",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "entryID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "The entry"}, "404": {"description": "Entry not found"}}
            }
        },
        "/entities/{entityID}/entries/{entryID}/lines": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["entries"],
                "summary": "Replace the lines of a draft entry",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "entryID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "The updated entry"}, "400": {"description": "Validation failure"}, "409": {"description": "Entry is not a draft"}}
            }
        },
        "/entities/{entityID}/entries/{entryID}/workflow": {
            "get": {
                "produces": ["application/json"],
                "tags": ["workflow"],
                "summary": "Get an entry's workflow position",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "entryID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "Workflow status"}, "404": {"description": "Entry not found"}}
            }
        },
        "/entities/{entityID}/entries/{entryID}/audit": {
            "get": {
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "Get an entry's audit trail",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "entryID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "Audit records"}, "404": {"description": "Entry not found"}}
            }
        },
        "/entities/{entityID}/entries/{entryID}/submit": {
            "post": {
                "produces": ["application/json"],
                "tags": ["workflow"],
                "summary": "Submit a draft entry for approval",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "entryID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "New workflow state"}, "409": {"description": "Entry is not a draft or is unbalanced"}}
            }
        },
        "/entities/{entityID}/entries/{entryID}/approve": {
            "post": {
                "produces": ["application/json"],
                "tags": ["workflow"],
                "summary": "Approve a pending entry",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "entryID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "New workflow state"}, "403": {"description": "Actor may not approve this entry"}, "409": {"description": "Entry is not pending approval"}}
            }
        },
        "/entities/{entityID}/entries/{entryID}/reject": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["workflow"],
                "summary": "Reject a pending entry",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "entryID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "New workflow state"}, "403": {"description": "Actor may not reject this entry"}, "409": {"description": "Entry is not pending approval"}}
            }
        },
        "/entities/{entityID}/entries/{entryID}/post": {
            "post": {
                "produces": ["application/json"],
                "tags": ["workflow"],
                "summary": "Post an approved entry",
                "parameters": [
                    {"type": "string", "name": "entityID", "in": "path", "required": true},
                    {"type": "string", "name": "entryID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "New workflow state"}, "409": {"description": "Entry is not approved or period is locked"}, "503": {"description": "Lock wait timed out, retry later"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Ledger Posting API",
	Description:      "Internal double-entry journal posting service: account registry, entry workflow with dual approval, atomic posting and audit trail.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
