// Package docs builds the OpenAPI description of the items API and serves it
// as an HTML page, JSON and YAML.
package docs

import (
	"items-api/models"
)

type Document struct {
	OpenAPI    string              `json:"openapi" yaml:"openapi"`
	Info       Info                `json:"info" yaml:"info"`
	Servers    []Server            `json:"servers,omitempty" yaml:"servers,omitempty"`
	Paths      map[string]PathItem `json:"paths" yaml:"paths"`
	Components Components          `json:"components" yaml:"components"`
}

type Info struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Server struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PathItem maps a lower case HTTP method to its operation.
type PathItem map[string]Operation

type Operation struct {
	Summary     string              `json:"summary" yaml:"summary"`
	OperationID string              `json:"operationId" yaml:"operationId"`
	Tags        []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses" yaml:"responses"`
}

type Parameter struct {
	Name        string  `json:"name" yaml:"name"`
	In          string  `json:"in" yaml:"in"`
	Required    bool    `json:"required" yaml:"required"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      *Schema `json:"schema" yaml:"schema"`
}

type RequestBody struct {
	Required bool                 `json:"required" yaml:"required"`
	Content  map[string]MediaType `json:"content" yaml:"content"`
}

type MediaType struct {
	Schema *Schema `json:"schema" yaml:"schema"`
}

type Response struct {
	Description string               `json:"description" yaml:"description"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type Schema struct {
	Ref              string             `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type             string             `json:"type,omitempty" yaml:"type,omitempty"`
	Description      string             `json:"description,omitempty" yaml:"description,omitempty"`
	Required         []string           `json:"required,omitempty" yaml:"required,omitempty"`
	Properties       map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items            *Schema            `json:"items,omitempty" yaml:"items,omitempty"`
	Enum             []string           `json:"enum,omitempty" yaml:"enum,omitempty"`
	Minimum          *float64           `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	ExclusiveMinimum bool               `json:"exclusiveMinimum,omitempty" yaml:"exclusiveMinimum,omitempty"`
	MinLength        int                `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MinProperties    int                `json:"minProperties,omitempty" yaml:"minProperties,omitempty"`
}

type Components struct {
	Schemas map[string]*Schema `json:"schemas" yaml:"schemas"`
}

const jsonType = "application/json"

func ref(name string) *Schema {
	return &Schema{Ref: "#/components/schemas/" + name}
}

func envelope(data *Schema) *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"success": {Type: "boolean"},
			"data":    data,
		},
	}
}

func jsonResponse(description string, schema *Schema) Response {
	return Response{
		Description: description,
		Content:     map[string]MediaType{jsonType: {Schema: schema}},
	}
}

var idParam = Parameter{
	Name:        "id",
	In:          "path",
	Required:    true,
	Description: "Item id",
	Schema:      &Schema{Type: "string"},
}

// Build returns the OpenAPI 3 document for the items API. serverURL may be
// empty.
func Build(serverURL string) *Document {
	zero := 0.0
	categories := models.CategoryNames()

	itemFields := func() map[string]*Schema {
		return map[string]*Schema{
			"name":        {Type: "string", Description: "Item name", MinLength: 1},
			"description": {Type: "string", Description: "Item description"},
			"price":       {Type: "number", Description: "Item price, must be positive", Minimum: &zero, ExclusiveMinimum: true},
			"category":    {Type: "string", Description: "Item category", Enum: categories},
		}
	}

	item := &Schema{Type: "object", Required: []string{"id", "name", "price", "category"}, Properties: itemFields()}
	item.Properties["id"] = &Schema{Type: "string", Description: "Unique item id"}

	errorResponse := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"success": {Type: "boolean"},
			"message": {Type: "string"},
			"error":   {Type: "string"},
			"errors": {Type: "array", Items: &Schema{
				Type: "object",
				Properties: map[string]*Schema{
					"field":   {Type: "string"},
					"message": {Type: "string"},
				},
			}},
			"retryAfter": {Type: "integer"},
		},
	}

	errResp := func(description string) Response {
		return jsonResponse(description, ref("ErrorResponse"))
	}
	tags := []string{"Items"}

	doc := &Document{
		OpenAPI: "3.0.0",
		Info: Info{
			Title:       "Items API",
			Version:     "1.0.0",
			Description: "CRUD API for items, served by interchangeable HTTP framework adapters.",
		},
		Paths: map[string]PathItem{
			"/api/items": {
				"get": {
					Summary:     "List all items",
					OperationID: "getItems",
					Tags:        tags,
					Responses: map[string]Response{
						"200": jsonResponse("List of items", envelope(&Schema{Type: "array", Items: ref("Item")})),
						"429": errResp("Rate limit exceeded"),
						"500": errResp("Unexpected error"),
					},
				},
				"post": {
					Summary:     "Create an item",
					OperationID: "createItem",
					Tags:        tags,
					RequestBody: &RequestBody{Required: true, Content: map[string]MediaType{jsonType: {Schema: ref("CreateItem")}}},
					Responses: map[string]Response{
						"201": jsonResponse("Item created", envelope(ref("Item"))),
						"400": errResp("Validation error"),
						"429": errResp("Rate limit exceeded"),
						"500": errResp("Unexpected error"),
					},
				},
			},
			"/api/items/{id}": {
				"get": {
					Summary:     "Get an item by id",
					OperationID: "getItem",
					Tags:        tags,
					Parameters:  []Parameter{idParam},
					Responses: map[string]Response{
						"200": jsonResponse("Item found", envelope(ref("Item"))),
						"404": errResp("Item not found"),
						"500": errResp("Unexpected error"),
					},
				},
				"put": {
					Summary:     "Update an item",
					OperationID: "updateItem",
					Tags:        tags,
					Parameters:  []Parameter{idParam},
					RequestBody: &RequestBody{Required: true, Content: map[string]MediaType{jsonType: {Schema: ref("UpdateItem")}}},
					Responses: map[string]Response{
						"200": jsonResponse("Item updated", envelope(ref("Item"))),
						"400": errResp("Validation error"),
						"404": errResp("Item not found"),
						"500": errResp("Unexpected error"),
					},
				},
				"delete": {
					Summary:     "Delete an item",
					OperationID: "deleteItem",
					Tags:        tags,
					Parameters:  []Parameter{idParam},
					Responses: map[string]Response{
						"204": {Description: "Item deleted"},
						"404": errResp("Item not found"),
						"500": errResp("Unexpected error"),
					},
				},
			},
		},
		Components: Components{Schemas: map[string]*Schema{
			"Item":          item,
			"CreateItem":    {Type: "object", Required: []string{"name", "price", "category"}, Properties: itemFields()},
			"UpdateItem":    {Type: "object", MinProperties: 1, Properties: itemFields()},
			"ErrorResponse": errorResponse,
		}},
	}
	if serverURL != "" {
		doc.Servers = []Server{{URL: serverURL, Description: "Local server"}}
	}
	return doc
}
