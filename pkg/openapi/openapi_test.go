package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/waybill/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Test API", "1.0.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Test API" {
		t.Errorf("title: got %s, want Test API", spec.Info.Title)
	}
	if spec.Info.Version != "1.0.0" {
		t.Errorf("version: got %s, want 1.0.0", spec.Info.Version)
	}
	if spec.Components == nil {
		t.Fatal("components should not be nil")
	}
	if spec.Paths == nil {
		t.Fatal("paths should not be nil")
	}
}

func TestAddServerAndDescription(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.AddServer("/api")
	spec.SetDescription("Shipment review")

	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers: got %+v", spec.Servers)
	}
	if spec.Info.Description != "Shipment review" {
		t.Errorf("description: got %s", spec.Info.Description)
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")

	list := &openapi.Operation{Summary: "List"}
	create := &openapi.Operation{Summary: "Create"}
	save := &openapi.Operation{Summary: "Save"}
	remove := &openapi.Operation{Summary: "Delete"}

	spec.AddOperation("GET", "/drafts", list)
	spec.AddOperation("post", "/drafts", create)
	spec.AddOperation("PUT", "/drafts/{id}", save)
	spec.AddOperation("DELETE", "/drafts/{id}", remove)
	spec.AddOperation("PATCH", "/drafts/{id}", &openapi.Operation{Summary: "Patch"})

	if len(spec.Paths) != 2 {
		t.Fatalf("paths: got %d, want 2", len(spec.Paths))
	}

	collection := spec.Paths["/drafts"]
	if collection.Get != list || collection.Post != create {
		t.Error("collection operations not attached")
	}

	item := spec.Paths["/drafts/{id}"]
	if item.Put != save || item.Delete != remove {
		t.Error("item operations not attached")
	}
	if item.Get != nil || item.Post != nil {
		t.Error("unsupported method should not occupy a slot")
	}
}

func TestSchemaRef(t *testing.T) {
	ref := openapi.SchemaRef("Shipment")
	if ref.Ref != "#/components/schemas/Shipment" {
		t.Errorf("ref: got %s", ref.Ref)
	}
}

func TestResponseRef(t *testing.T) {
	ref := openapi.ResponseRef("NotFound")
	if ref.Ref != "#/components/responses/NotFound" {
		t.Errorf("ref: got %s", ref.Ref)
	}
}

func TestRequestBodyJSON(t *testing.T) {
	rb := openapi.RequestBodyJSON("CommentCommand", true)

	if !rb.Required {
		t.Error("required should be true")
	}
	ct, ok := rb.Content["application/json"]
	if !ok {
		t.Fatal("missing application/json content type")
	}
	if ct.Schema.Ref != "#/components/schemas/CommentCommand" {
		t.Errorf("schema ref: got %s", ct.Schema.Ref)
	}
}

func TestRequestBodyMultipart(t *testing.T) {
	rb := openapi.RequestBodyMultipart("file", "Shipment PDF")

	ct, ok := rb.Content["multipart/form-data"]
	if !ok {
		t.Fatal("missing multipart/form-data content type")
	}
	if len(ct.Schema.Required) != 1 || ct.Schema.Required[0] != "file" {
		t.Errorf("required: got %v", ct.Schema.Required)
	}

	field, ok := ct.Schema.Properties["file"]
	if !ok {
		t.Fatal("missing file property")
	}
	if field.Type != "string" || field.Format != "binary" {
		t.Errorf("file schema: got type=%s format=%s", field.Type, field.Format)
	}
}

func TestResponseJSON(t *testing.T) {
	resp := openapi.ResponseJSON("Shipment found", "Shipment")

	if resp.Description != "Shipment found" {
		t.Errorf("description: got %s", resp.Description)
	}
	ct, ok := resp.Content["application/json"]
	if !ok {
		t.Fatal("missing application/json content type")
	}
	if ct.Schema.Ref != "#/components/schemas/Shipment" {
		t.Errorf("schema ref: got %s", ct.Schema.Ref)
	}
}

func TestResponseFile(t *testing.T) {
	resp := openapi.ResponseFile("Export", "text/csv", "application/pdf")

	if len(resp.Content) != 2 {
		t.Fatalf("content types: got %d, want 2", len(resp.Content))
	}
	for _, ct := range []string{"text/csv", "application/pdf"} {
		media, ok := resp.Content[ct]
		if !ok {
			t.Errorf("missing content type %s", ct)
			continue
		}
		if media.Schema.Format != "binary" {
			t.Errorf("%s format: got %s", ct, media.Schema.Format)
		}
	}
}

func TestPathParam(t *testing.T) {
	p := openapi.PathParam("id", "Draft ID")

	if p.In != "path" {
		t.Errorf("in: got %s", p.In)
	}
	if !p.Required {
		t.Error("path params should be required")
	}
	if p.Schema.Type != "string" || p.Schema.Format != "uuid" {
		t.Errorf("schema: got type=%s format=%s", p.Schema.Type, p.Schema.Format)
	}
}

func TestQueryParam(t *testing.T) {
	p := openapi.QueryParam("carrier_name", "string", "Carrier filter", false)

	if p.In != "query" {
		t.Errorf("in: got %s", p.In)
	}
	if p.Required {
		t.Error("should not be required")
	}
	if p.Schema.Type != "string" {
		t.Errorf("schema type: got %s", p.Schema.Type)
	}
}

func TestEnumQueryParam(t *testing.T) {
	tests := []struct {
		name        string
		def         string
		wantDefault any
	}{
		{"with default", "csv", "csv"},
		{"without default", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openapi.EnumQueryParam("format", "Export format", tt.def, "csv", "xlsx")

			if p.In != "query" || p.Required {
				t.Errorf("param: got in=%s required=%v", p.In, p.Required)
			}
			if len(p.Schema.Enum) != 2 || p.Schema.Enum[0] != "csv" || p.Schema.Enum[1] != "xlsx" {
				t.Errorf("enum: got %v", p.Schema.Enum)
			}
			if p.Schema.Default != tt.wantDefault {
				t.Errorf("default: got %v, want %v", p.Schema.Default, tt.wantDefault)
			}
		})
	}
}

func TestNewComponentsDefaults(t *testing.T) {
	c := openapi.NewComponents()

	for _, name := range []string{"Error", "PageRequest"} {
		if _, ok := c.Schemas[name]; !ok {
			t.Errorf("missing default schema: %s", name)
		}
	}

	responses := []string{
		"BadRequest",
		"NotFound",
		"Conflict",
		"PayloadTooLarge",
		"UnsupportedMediaType",
		"Unprocessable",
		"Timeout",
	}
	for _, name := range responses {
		resp, ok := c.Responses[name]
		if !ok {
			t.Errorf("missing default response: %s", name)
			continue
		}
		ct, ok := resp.Content["application/json"]
		if !ok || ct.Schema.Ref != "#/components/schemas/Error" {
			t.Errorf("%s should reference the Error schema", name)
		}
	}
}

func TestAddSchemas(t *testing.T) {
	c := openapi.NewComponents()
	c.AddSchemas(map[string]*openapi.Schema{
		"Shipment": {Type: "object"},
	})

	if _, ok := c.Schemas["Shipment"]; !ok {
		t.Error("Shipment schema not added")
	}
	if _, ok := c.Schemas["PageRequest"]; !ok {
		t.Error("default PageRequest schema should still exist")
	}
}

func TestAddResponses(t *testing.T) {
	c := openapi.NewComponents()
	c.AddResponses(map[string]*openapi.Response{
		"Unauthorized": {Description: "Not authenticated"},
	})

	if _, ok := c.Responses["Unauthorized"]; !ok {
		t.Error("Unauthorized response not added")
	}
	if _, ok := c.Responses["BadRequest"]; !ok {
		t.Error("default BadRequest response should still exist")
	}
}

func TestMarshalJSON(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed["openapi"] != "3.1.0" {
		t.Errorf("openapi: got %v", parsed["openapi"])
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	data, _ := openapi.MarshalJSON(spec)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/openapi.json", nil)
	openapi.ServeSpec(data)(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type: got %s", ct)
	}

	body, _ := io.ReadAll(res.Body)
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("body unmarshal failed: %v", err)
	}
}

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := openapi.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Title != "Waybill API" {
		t.Errorf("title: got %s, want Waybill API", cfg.Title)
	}
	if cfg.Description != "Carrier shipment PDF extraction, review and export service." {
		t.Errorf("description: got %s", cfg.Description)
	}
}

func TestConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_TITLE", "Custom API")
	t.Setenv("TEST_DESC", "Custom desc")

	env := &openapi.ConfigEnv{
		Title:       "TEST_TITLE",
		Description: "TEST_DESC",
	}

	cfg := openapi.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Title != "Custom API" {
		t.Errorf("title: got %s, want Custom API", cfg.Title)
	}
	if cfg.Description != "Custom desc" {
		t.Errorf("description: got %s, want Custom desc", cfg.Description)
	}
}

func TestConfigMerge(t *testing.T) {
	base := openapi.Config{Title: "Base", Description: "Kept"}
	overlay := openapi.Config{Title: "Overlay"}
	base.Merge(&overlay)

	if base.Title != "Overlay" {
		t.Errorf("title: got %s, want Overlay", base.Title)
	}
	if base.Description != "Kept" {
		t.Errorf("description: got %s, want Kept", base.Description)
	}
}
