// Package docs holds the OpenAPI document served under /swagger. It is maintained by hand
// alongside the handler annotations.
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
        "/api/health": {
            "get": {
                "description": "Returns service status",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespHealth"}}
                }
            }
        },
        "/api/statistics": {
            "get": {
                "description": "USD-normalized reporting over active subscriptions and their charges. Repeat item to pick data items; all are returned by default.",
                "produces": ["application/json"],
                "tags": ["Statistics"],
                "summary": "Donation statistics",
                "parameters": [
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Data item ids", "name": "item", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/statistics.StatisticResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/api/subscriptions": {
            "get": {
                "description": "Lists active subscriptions.",
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "List subscriptions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespListSubscriptions"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            },
            "post": {
                "description": "Creates a recurring donation. The first charge happens on the next billing tick.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Create subscription",
                "parameters": [
                    {"description": "Subscription", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateSubscriptionBody"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.RespCreateSubscription"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/api/subscriptions/{donorId}": {
            "delete": {
                "description": "Soft-deletes the donor's active subscription. Its transactions are hidden from listings.",
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Delete subscription",
                "parameters": [
                    {"type": "string", "description": "Donor ID", "name": "donorId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespMessage"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/api/subscriptions/{donorId}/history": {
            "get": {
                "description": "Lists the lifecycle changes (created, deleted, resurrected) of the donor's subscription, oldest first.",
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Subscription history",
                "parameters": [
                    {"type": "string", "description": "Donor ID", "name": "donorId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespSubscriptionHistory"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/api/transactions": {
            "get": {
                "description": "Lists charges of active subscriptions, optionally for one donor.",
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "List transactions",
                "parameters": [
                    {"type": "string", "description": "Donor ID", "name": "donorId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RespListTransactions"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.CreateSubscriptionBody": {
            "type": "object",
            "properties": {
                "amount": {"type": "number"},
                "campaignDescription": {"type": "string"},
                "currency": {"type": "string"},
                "donorId": {"type": "string"},
                "interval": {"type": "string"}
            }
        },
        "handlers.HistoryEntryView": {
            "type": "object",
            "properties": {
                "after": {"$ref": "#/definitions/handlers.SubscriptionView"},
                "before": {"$ref": "#/definitions/handlers.SubscriptionView"},
                "createdAt": {"type": "string"},
                "id": {"type": "string"},
                "reason": {"type": "string"},
                "subscriptionId": {"type": "string"}
            }
        },
        "handlers.HistorySummary": {
            "type": "object",
            "properties": {
                "totalEntries": {"type": "integer"}
            }
        },
        "handlers.RespCreateSubscription": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "subscription": {"$ref": "#/definitions/models.Subscription"}
            }
        },
        "handlers.RespHealth": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "status": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "handlers.RespListSubscriptions": {
            "type": "object",
            "properties": {
                "subscriptions": {"type": "array", "items": {"$ref": "#/definitions/handlers.SubscriptionView"}},
                "summary": {"$ref": "#/definitions/handlers.SubscriptionSummary"}
            }
        },
        "handlers.RespListTransactions": {
            "type": "object",
            "properties": {
                "summary": {"$ref": "#/definitions/handlers.TransactionSummary"},
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/models.Transaction"}}
            }
        },
        "handlers.RespMessage": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "handlers.RespSubscriptionHistory": {
            "type": "object",
            "properties": {
                "history": {"type": "array", "items": {"$ref": "#/definitions/handlers.HistoryEntryView"}},
                "summary": {"$ref": "#/definitions/handlers.HistorySummary"}
            }
        },
        "handlers.SubscriptionSummary": {
            "type": "object",
            "properties": {
                "totalSubscriptions": {"type": "integer"}
            }
        },
        "handlers.SubscriptionView": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "amount": {"type": "number"},
                "campaignDescription": {"type": "string"},
                "campaignSummary": {"type": "string"},
                "campaignTags": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"},
                "currency": {"type": "string"},
                "donorId": {"type": "string"},
                "interval": {"type": "string"},
                "lastChargedAt": {"type": "string"},
                "subscriptionId": {"type": "string"}
            }
        },
        "handlers.TransactionSummary": {
            "type": "object",
            "properties": {
                "totalTransactions": {"type": "integer"}
            }
        },
        "models.Subscription": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "amount": {"type": "number"},
                "amountInUSD": {"type": "number"},
                "campaignDescription": {"type": "string"},
                "campaignSummary": {"type": "string"},
                "campaignTags": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"},
                "currency": {"type": "string"},
                "deletedAt": {"type": "string"},
                "donorId": {"type": "string"},
                "interval": {"type": "string"},
                "lastChargedAt": {"type": "string"},
                "subscriptionId": {"type": "string"}
            }
        },
        "models.Transaction": {
            "type": "object",
            "properties": {
                "amount": {"type": "number"},
                "amountInUSD": {"type": "number"},
                "campaignDescription": {"type": "string"},
                "campaignSummary": {"type": "string"},
                "campaignTags": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"},
                "currency": {"type": "string"},
                "donorId": {"type": "string"},
                "id": {"type": "string"},
                "interval": {"type": "string"},
                "lastChargedAt": {"type": "string"},
                "subscriptionId": {"type": "string"}
            }
        },
        "response.ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "stack": {"type": "string"}
            }
        },
        "statistics.StatisticResponse": {
            "type": "object",
            "properties": {
                "currency": {"type": "string"},
                "data_items": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/statistics.StatisticResponseDataItem"}}
                }
            }
        },
        "statistics.StatisticResponseDataItem": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "date": {"type": "string"},
                "label": {"type": "string"},
                "value": {"type": "number"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pledge Donation Billing API",
	Description:      "Recurring donation subscriptions with a background billing scheduler.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
