// Package graphql serves a graphql-go schema over HTTP.
package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// NewSchema creates a read-only schema from a root query.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler executes requests against schema. POST takes a JSON body; GET
// reads query, operationName and variables from the URL. Execution errors
// are reported in the result's "errors" field with a 200, as GraphQL
// clients expect.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		switch r.Method {
		case http.MethodGet:
			q := r.URL.Query()
			req.Query = q.Get("query")
			req.OperationName = q.Get("operationName")
			if raw := q.Get("variables"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
					response.Error(w, http.StatusBadRequest, "invalid variables: "+err.Error())
					return
				}
			}
		case http.MethodPost:
			if err := bind.JSON(r, &req); err != nil {
				response.Error(w, http.StatusBadRequest, err.Error())
				return
			}
		default:
			w.Header().Set("Allow", "GET, POST")
			response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		if req.Query == "" {
			response.Error(w, http.StatusBadRequest, "query is required")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})
		response.OK(w, result)
	}
}
