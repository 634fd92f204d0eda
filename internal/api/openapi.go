package api

// OpenAPI document served at /swagger.json.
const openAPISpec = `{
  "openapi": "3.0.0",
  "info": {
    "title": "Salability Service API",
    "version": "1.0.0"
  },
  "paths": {
    "/health": {
      "get": {
        "summary": "Health check",
        "responses": {
          "200": {
            "description": "Service is healthy",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/HealthResponse" }
              }
            }
          }
        }
      }
    },
    "/api/salable/{sku}": {
      "get": {
        "summary": "Check whether a quantity of a sku is salable in a stock",
        "parameters": [
          { "name": "sku", "in": "path", "required": true, "schema": { "type": "string" } },
          { "name": "stockId", "in": "query", "required": false, "schema": { "type": "integer" } },
          { "name": "qty", "in": "query", "required": false, "schema": { "type": "number", "default": 1 } }
        ],
        "responses": {
          "200": {
            "description": "Salability result",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/SalabilityCheck" }
              }
            }
          },
          "400": { "description": "Invalid parameters" }
        }
      }
    },
    "/api/reservations/{sku}": {
      "get": {
        "summary": "Sum of reservations of a sku in a stock",
        "parameters": [
          { "name": "sku", "in": "path", "required": true, "schema": { "type": "string" } },
          { "name": "stockId", "in": "query", "required": false, "schema": { "type": "integer" } }
        ],
        "responses": {
          "200": {
            "description": "Reservation sum",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/ReservationsResponse" }
              }
            }
          }
        }
      }
    },
    "/api/source-items/reindex": {
      "post": {
        "summary": "Reindex the stocks fed by the given source items",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "sourceItemIds": { "type": "array", "items": { "type": "integer" } }
                }
              }
            }
          }
        },
        "responses": {
          "202": { "description": "Reindexed" },
          "400": { "description": "Invalid body" }
        }
      }
    },
    "/api/stocks/reindex": {
      "post": {
        "summary": "Rebuild every stock index",
        "responses": {
          "202": { "description": "Reindexed" }
        }
      }
    },
    "/api/search/filter": {
      "post": {
        "summary": "Keep only the products salable in the website stock",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "websiteId": { "type": "integer" },
                  "productIds": { "type": "array", "items": { "type": "integer" } }
                }
              }
            }
          }
        },
        "responses": {
          "200": {
            "description": "Salable product ids",
            "content": {
              "application/json": {
                "schema": {
                  "type": "object",
                  "properties": {
                    "productIds": { "type": "array", "items": { "type": "integer" } }
                  }
                }
              }
            }
          },
          "404": { "description": "No stock assigned to the website" }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "HealthResponse": {
        "type": "object",
        "properties": {
          "status": { "type": "string" }
        }
      },
      "SalabilityError": {
        "type": "object",
        "properties": {
          "code": { "type": "string" },
          "message": { "type": "string" }
        }
      },
      "SalabilityCheck": {
        "type": "object",
        "properties": {
          "sku": { "type": "string" },
          "stockId": { "type": "integer" },
          "requestedQty": { "type": "string" },
          "salable": { "type": "boolean" },
          "errors": { "type": "array", "items": { "$ref": "#/components/schemas/SalabilityError" } },
          "notices": { "type": "array", "items": { "$ref": "#/components/schemas/SalabilityError" } }
        }
      },
      "ReservationsResponse": {
        "type": "object",
        "properties": {
          "sku": { "type": "string" },
          "stockId": { "type": "integer" },
          "quantity": { "type": "string" }
        }
      }
    }
  }
}`
