package api

import (
	"encoding/json"
	"net/http"
)

// handleOpenAPI serves the interactive API reference
func (s *APIServer) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	html := `<!DOCTYPE html>
<html>
<head>
    <title>KubeJS Editor API Reference</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui.css" />
    <style>
        body { margin:0; background: #fafafa; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: 'openapi.json',
                dom_id: '#swagger-ui',
                deepLinking: true
            });
        };
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// handleOpenAPISpec serves the OpenAPI JSON specification
func (s *APIServer) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(getOpenAPISpec())
}

func queryParam(name, description string, required bool, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    required,
		"schema":      schema,
	}
}

func stringSchema(enum ...string) map[string]interface{} {
	schema := map[string]interface{}{"type": "string"}
	if len(enum) > 0 {
		schema["enum"] = enum
	}
	return schema
}

func jsonResponses(description string, errorCodes ...string) map[string]interface{} {
	responses := map[string]interface{}{
		"200": map[string]interface{}{
			"description": description,
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{
					"schema": map[string]interface{}{"$ref": "#/components/schemas/APIResponse"},
				},
			},
		},
	}
	for _, code := range errorCodes {
		responses[code] = map[string]interface{}{
			"description": "Error",
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{
					"schema": map[string]interface{}{"$ref": "#/components/schemas/ErrorResponse"},
				},
			},
		}
	}
	return responses
}

func operation(summary string, params []map[string]interface{}, responses map[string]interface{}) map[string]interface{} {
	op := map[string]interface{}{
		"summary":   summary,
		"responses": responses,
	}
	if len(params) > 0 {
		op["parameters"] = params
	}
	return op
}

// getOpenAPISpec returns the OpenAPI 3.0 specification
func getOpenAPISpec() map[string]interface{} {
	docsParams := []map[string]interface{}{
		queryParam("template", "Active template id", false, stringSchema()),
		queryParam("selection", "Auxiliary selector value", false, stringSchema()),
		queryParam("content", "Editor content", false, stringSchema()),
	}
	docsPost := operation("Resolve a documentation URL from a script body", nil, jsonResponses("Resolved URL", "400"))
	docsPost["requestBody"] = map[string]interface{}{
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"template":  stringSchema(),
						"selection": stringSchema(),
						"content":   stringSchema(),
					},
				},
			},
		},
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "KubeJS Editor API",
			"description": "Template catalog, completions and documentation lookup for KubeJS scripts",
			"version":     "1.0.0",
		},
		"servers": []map[string]interface{}{
			{"url": "/api/v1", "description": "Local editor"},
		},
		"paths": map[string]interface{}{
			"/templates": map[string]interface{}{
				"get": operation("List templates", []map[string]interface{}{
					queryParam("category", "Only templates in this category", false, stringSchema()),
					queryParam("format", "Response shape", false, stringSchema("json", "table", "ids")),
				}, jsonResponses("Templates in catalog order", "400")),
			},
			"/templates/{id}": map[string]interface{}{
				"get": operation("Get a template", []map[string]interface{}{
					{"name": "id", "in": "path", "required": true, "schema": stringSchema()},
				}, jsonResponses("Template card", "400", "404")),
			},
			"/categories": map[string]interface{}{
				"get": operation("List sidebar categories", nil, jsonResponses("Categories with their templates")),
			},
			"/search": map[string]interface{}{
				"get": operation("Search template titles", []map[string]interface{}{
					queryParam("q", "Case-insensitive substring, at least two characters", false, stringSchema()),
				}, jsonResponses("Matches in catalog order", "400")),
			},
			"/completions": map[string]interface{}{
				"get": operation("List editor completions", nil, jsonResponses("Completion items")),
			},
			"/language": map[string]interface{}{
				"get": operation("Get the language bundle", nil, jsonResponses("Monarch grammar, language configuration and editor options")),
			},
			"/docs": map[string]interface{}{
				"get":  operation("Resolve a documentation URL", docsParams, jsonResponses("Resolved URL", "400")),
				"post": docsPost,
			},
			"/layout": map[string]interface{}{
				"get": operation("Compute the responsive layout", []map[string]interface{}{
					queryParam("w", "Viewport width", true, map[string]interface{}{"type": "number"}),
					queryParam("h", "Viewport height", true, map[string]interface{}{"type": "number"}),
				}, jsonResponses("Layout", "400")),
			},
			"/export": map[string]interface{}{
				"get": operation("Download the catalog", []map[string]interface{}{
					queryParam("format", "File format", true, stringSchema("json", "yaml", "xlsx")),
				}, map[string]interface{}{
					"200": map[string]interface{}{"description": "Exported file"},
					"400": map[string]interface{}{"description": "Unsupported format"},
				}),
			},
			"/health": map[string]interface{}{
				"get": operation("Health check", nil, jsonResponses("Service status")),
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"APIResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"success":   map[string]interface{}{"type": "boolean"},
						"data":      map[string]interface{}{},
						"message":   stringSchema(),
						"timestamp": map[string]interface{}{"type": "string", "format": "date-time"},
					},
				},
				"ErrorResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"success": map[string]interface{}{"type": "boolean"},
						"error": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"code":    stringSchema(),
								"message": stringSchema(),
								"details": stringSchema(),
							},
						},
					},
				},
			},
		},
	}
}
