package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeOpenAPI3Spec(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/swagger/openapi3.json", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, ServeOpenAPI3Spec(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "#/definitions/")
	assert.Contains(t, body, "#/components/schemas/domain.Report")

	var spec OpenAPI3Spec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Equal(t, "3.0.3", spec.OpenAPI)
	assert.Len(t, spec.Servers, 2)
	assert.Contains(t, spec.Paths, "/reports")
	assert.Contains(t, spec.Components, "securitySchemes")
}

func TestConvertSwagger2_BodyAndFormParameters(t *testing.T) {
	raw := `{
		"info": {"title": "GranaEvo API"},
		"paths": {
			"/goals": {"post": {
				"consumes": ["application/json"],
				"parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.GoalRequest"}}],
				"responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.GoalView"}}}
			}},
			"/profiles/{id}/photo": {"post": {
				"parameters": [
					{"name": "id", "in": "path", "required": true, "type": "integer"},
					{"name": "file", "in": "formData", "required": true, "type": "file"}
				],
				"responses": {"200": {"description": "OK"}}
			}}
		},
		"definitions": {"handler.GoalRequest": {"type": "object"}}
	}`

	spec, err := ConvertSwagger2([]byte(raw), APIServers)
	require.NoError(t, err)
	assert.Equal(t, "GranaEvo API", spec.Info["title"])

	goals := spec.Paths["/goals"].(map[string]any)["post"].(map[string]any)
	assert.NotContains(t, goals, "parameters")
	body := goals["requestBody"].(map[string]any)
	assert.Equal(t, true, body["required"])
	schema := body["content"].(map[string]any)[echo.MIMEApplicationJSON].(map[string]any)["schema"].(map[string]any)
	assert.Equal(t, "#/components/schemas/handler.GoalRequest", schema["$ref"])

	created := goals["responses"].(map[string]any)["201"].(map[string]any)
	out, _ := json.Marshal(created)
	assert.True(t, strings.Contains(string(out), "#/components/schemas/domain.GoalView"))

	photo := spec.Paths["/profiles/{id}/photo"].(map[string]any)["post"].(map[string]any)
	params := photo["parameters"].([]any)
	require.Len(t, params, 1)
	assert.Equal(t, map[string]any{"type": "integer"}, params[0].(map[string]any)["schema"])

	form := photo["requestBody"].(map[string]any)["content"].(map[string]any)[echo.MIMEMultipartForm].(map[string]any)["schema"].(map[string]any)
	file := form["properties"].(map[string]any)["file"].(map[string]any)
	assert.Equal(t, "binary", file["format"])
	assert.Equal(t, []string{"file"}, form["required"])
}

func TestConvertSwagger2_InvalidJSON(t *testing.T) {
	_, err := ConvertSwagger2([]byte("{"), nil)
	assert.Error(t, err)
}
