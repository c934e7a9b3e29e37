package routes

import (
	"net/http"
	"strings"

	"items-api/controllers"
)

const (
	ItemsPath = "/api/items"
	ItemPath  = "/api/items/{id}"
	DocsPath  = "/docs"
)

// Route binds a verb and a path pattern to a controller method. Path
// parameters use the {name} form shared by gorilla/mux and chi.
type Route struct {
	Method  string
	Path    string
	Name    string
	Handler controllers.HandlerFunc
}

// SetupRoutes returns the API route table. It is built once per adapter and
// never modified.
func SetupRoutes(c *controllers.ItemController) []Route {
	return []Route{
		{Method: http.MethodGet, Path: ItemsPath, Name: "getItems", Handler: c.GetItems},
		{Method: http.MethodGet, Path: ItemPath, Name: "getItem", Handler: c.GetItem},
		{Method: http.MethodPost, Path: ItemsPath, Name: "createItem", Handler: c.CreateItem},
		{Method: http.MethodPut, Path: ItemPath, Name: "updateItem", Handler: c.UpdateItem},
		{Method: http.MethodDelete, Path: ItemPath, Name: "deleteItem", Handler: c.DeleteItem},
	}
}

// ColonPath rewrites {name} segments as :name for routers that use that form.
func ColonPath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			segments[i] = ":" + s[1:len(s)-1]
		}
	}
	return strings.Join(segments, "/")
}
