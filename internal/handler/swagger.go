package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/granaevo/granaevo-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/swaggo/swag"
)

const (
	swagger2RefPrefix = "#/definitions/"
	openAPI3RefPrefix = "#/components/schemas/"
)

// OpenAPI3Spec is the subset of an OpenAPI 3.0 document served to clients
type OpenAPI3Spec struct {
	OpenAPI    string         `json:"openapi"`
	Info       map[string]any `json:"info"`
	Servers    []Server       `json:"servers"`
	Paths      map[string]any `json:"paths"`
	Components map[string]any `json:"components,omitempty"`
}

type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// APIServers are advertised in the converted document
var APIServers = []Server{
	{URL: "http://localhost:8080/api/v1", Description: "Local"},
	{URL: "https://api.granaevo.app/api/v1", Description: "Production"},
}

// ConvertSwagger2 turns the swag generated Swagger 2.0 document into OpenAPI 3.0.
// Body parameters become requestBody and schema refs move to components.
func ConvertSwagger2(raw []byte, servers []Server) (*OpenAPI3Spec, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse swagger doc: %w", err)
	}

	spec := &OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Servers:    servers,
		Paths:      map[string]any{},
		Components: map[string]any{},
	}
	spec.Info, _ = doc["info"].(map[string]any)

	paths, _ := doc["paths"].(map[string]any)
	for path, item := range paths {
		methods, ok := item.(map[string]any)
		if !ok {
			continue
		}
		converted := make(map[string]any, len(methods))
		for method, op := range methods {
			if operation, ok := op.(map[string]any); ok {
				converted[method] = convertOperation(operation)
			}
		}
		spec.Paths[path] = converted
	}

	if defs, ok := doc["securityDefinitions"].(map[string]any); ok {
		spec.Components["securitySchemes"] = defs
	}
	if defs, ok := doc["definitions"].(map[string]any); ok {
		spec.Components["schemas"] = rewriteRefs(defs)
	}
	return spec, nil
}

func convertOperation(op map[string]any) map[string]any {
	out := make(map[string]any, len(op))
	consumes := []string{echo.MIMEApplicationJSON}
	if list, ok := op["consumes"].([]any); ok && len(list) > 0 {
		consumes = consumes[:0]
		for _, v := range list {
			if s, ok := v.(string); ok {
				consumes = append(consumes, s)
			}
		}
	}

	for key, value := range op {
		switch key {
		case "consumes", "produces":
		case "parameters":
			params, body, form := splitParameters(value)
			if len(params) > 0 {
				out["parameters"] = params
			}
			if body != nil {
				out["requestBody"] = requestBody(body, consumes)
			} else if len(form) > 0 {
				out["requestBody"] = formBody(form)
			}
		case "responses":
			out["responses"] = convertResponses(value)
		default:
			out[key] = rewriteRefs(value)
		}
	}
	return out
}

func splitParameters(value any) (params []any, body map[string]any, form []map[string]any) {
	list, _ := value.([]any)
	for _, p := range list {
		param, ok := p.(map[string]any)
		if !ok {
			continue
		}
		switch param["in"] {
		case "body":
			body = param
		case "formData":
			form = append(form, param)
		default:
			params = append(params, convertParameter(param))
		}
	}
	return params, body, form
}

func convertParameter(param map[string]any) map[string]any {
	out := map[string]any{}
	for _, field := range []string{"name", "in", "description", "required"} {
		if v, ok := param[field]; ok {
			out[field] = v
		}
	}
	schema := map[string]any{}
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if v, ok := param[field]; ok {
			schema[field] = rewriteRefs(v)
		}
	}
	if len(schema) > 0 {
		out["schema"] = schema
	}
	return out
}

func requestBody(param map[string]any, consumes []string) map[string]any {
	content := map[string]any{}
	for _, mime := range consumes {
		content[mime] = map[string]any{"schema": rewriteRefs(param["schema"])}
	}
	out := map[string]any{"content": content}
	if v, ok := param["required"]; ok {
		out["required"] = v
	}
	if v, ok := param["description"]; ok {
		out["description"] = v
	}
	return out
}

// formBody maps formData parameters, including file uploads, to multipart/form-data
func formBody(params []map[string]any) map[string]any {
	properties := map[string]any{}
	var required []string
	for _, p := range params {
		name, _ := p["name"].(string)
		prop := map[string]any{"type": p["type"]}
		if p["type"] == "file" {
			prop = map[string]any{"type": "string", "format": "binary"}
		}
		if d, ok := p["description"]; ok {
			prop["description"] = d
		}
		properties[name] = prop
		if req, _ := p["required"].(bool); req {
			required = append(required, name)
		}
	}
	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return map[string]any{
		"content": map[string]any{
			echo.MIMEMultipartForm: map[string]any{"schema": schema},
		},
	}
}

func convertResponses(value any) any {
	responses, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(responses))
	for code, r := range responses {
		resp, ok := r.(map[string]any)
		if !ok {
			out[code] = r
			continue
		}
		converted := map[string]any{"description": resp["description"]}
		if converted["description"] == nil {
			converted["description"] = ""
		}
		if schema, ok := resp["schema"]; ok {
			converted["content"] = map[string]any{
				echo.MIMEApplicationJSON: map[string]any{"schema": rewriteRefs(schema)},
			}
		}
		out[code] = converted
	}
	return out
}

func rewriteRefs(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				out[key] = strings.Replace(ref, swagger2RefPrefix, openAPI3RefPrefix, 1)
				continue
			}
			out[key] = rewriteRefs(value)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = rewriteRefs(item)
		}
		return out
	default:
		return data
	}
}

// ServeOpenAPI3Spec serves the API documentation as OpenAPI 3.0
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read swagger doc")
		return NewInternalError(c, "Failed to read API documentation")
	}

	spec, err := ConvertSwagger2([]byte(doc), APIServers)
	if err != nil {
		log.Error().Err(err).Msg("Failed to convert swagger doc")
		return NewInternalError(c, "Failed to read API documentation")
	}
	return c.JSON(http.StatusOK, spec)
}
