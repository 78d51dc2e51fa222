package api

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/pkg/openapi"
	"github.com/JaimeStill/scrivener/pkg/routes"
)

var pathParam = regexp.MustCompile(`\{([a-z_]+)\}`)

// created lists the operations that answer 201.
var created = map[string]bool{
	"post_sessions":             true,
	"post_sessions_id_generate": true,
	"post_templates":            true,
	"post_templates_import":     true,
	"post_documents":            true,
}

// buildSpec describes every registered route. Operations carry their
// group tag, path parameters, and the shared error responses.
func buildSpec(cfg *config.Config, groups []routes.Group) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	for _, group := range groups {
		tag := strings.TrimPrefix(group.Prefix, "/")
		group.Walk("", func(path string, route routes.Route) {
			op := describeRoute(tag, route.Method, path)
			describeBodies(spec.Components, op, route)
			spec.AddOperation(path, route.Method, op)
		})
	}

	return spec
}

func describeRoute(tag, method, path string) *openapi.Operation {
	op := &openapi.Operation{
		OperationID: operationID(method, path),
		Summary:     method + " " + path,
		Tags:        []string{tag},
		Responses:   map[int]*openapi.Response{},
	}

	params := pathParam.FindAllStringSubmatch(path, -1)
	for _, m := range params {
		p := openapi.PathParam(m[1], "Resource identifier")
		if tag == "templates" {
			p.Description = "Template uuid or template_id slug"
			p.Schema.Format = ""
		}
		op.Parameters = append(op.Parameters, p)
		op.Responses[http.StatusNotFound] = openapi.ResponseRef("NotFound")
	}

	if method == http.MethodGet && path == "/"+tag {
		op.Parameters = append(op.Parameters,
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Case-insensitive text search", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields, - prefix for descending", false),
		)
	}

	switch method {
	case http.MethodDelete:
		op.Responses[http.StatusNoContent] = &openapi.Response{Description: "Deleted"}
	case http.MethodGet:
		op.Responses[http.StatusOK] = &openapi.Response{Description: "Success"}
	default:
		op.Responses[http.StatusOK] = &openapi.Response{Description: "Success"}
		op.Responses[http.StatusBadRequest] = openapi.ResponseRef("BadRequest")
		op.Responses[http.StatusConflict] = openapi.ResponseRef("Conflict")
	}

	if path == "/templates/browse" {
		op.Parameters = append(op.Parameters,
			openapi.QueryParam("q", "string", "Fuzzy query over template titles and tags", false),
			openapi.QueryParam("limit", "integer", "Maximum results", false),
		)
	}

	if method == http.MethodPost && path == "/documents" {
		op.Responses[http.StatusRequestEntityTooLarge] = openapi.ResponseRef("PayloadTooLarge")
		op.Responses[http.StatusUnsupportedMediaType] = openapi.ResponseRef("UnsupportedMediaType")
		op.RequestBody = &openapi.RequestBody{
			Required: true,
			Content: map[string]*openapi.MediaType{
				"multipart/form-data": {Schema: &openapi.Schema{
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"file":  {Type: "string", Format: "binary"},
						"files": {Type: "array", Items: &openapi.Schema{Type: "string", Format: "binary"}},
					},
				}},
			},
		}
	}

	if method == http.MethodPost && path == "/templates/import" {
		op.RequestBody = &openapi.RequestBody{
			Required: true,
			Content: map[string]*openapi.MediaType{
				"application/yaml": {Schema: &openapi.Schema{Type: "string"}},
			},
		}
	}

	return op
}

// describeBodies attaches the route's JSON request and response schemas.
// The success response moves to 201 for operations that create.
func describeBodies(c *openapi.Components, op *openapi.Operation, route routes.Route) {
	if route.Body != nil {
		op.RequestBody = openapi.JSONBody(c.SchemaFor(route.Body))
	}

	if !created[op.OperationID] && route.Returns == nil {
		return
	}

	ok := op.Responses[http.StatusOK]
	if ok == nil {
		return
	}
	resp := openapi.JSONResponse(ok.Description, c.SchemaFor(route.Returns))
	if created[op.OperationID] {
		delete(op.Responses, http.StatusOK)
		resp.Description = "Created"
		op.Responses[http.StatusCreated] = resp
		return
	}
	op.Responses[http.StatusOK] = resp
}

// operationID derives a stable identifier such as post_sessions_id_answers
// from the method and path.
func operationID(method, path string) string {
	id := strings.ToLower(method)
	for seg := range strings.SplitSeq(path, "/") {
		seg = strings.Trim(seg, "{}")
		if seg == "" {
			continue
		}
		id += "_" + strings.ReplaceAll(seg, "-", "_")
	}
	return id
}

func openapiHandler(spec []byte) http.HandlerFunc {
	return openapi.ServeSpec(spec)
}
