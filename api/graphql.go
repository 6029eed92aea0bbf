package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"backendprojects/graph"
)

type errorBody struct {
	Errors []gin.H `json:"errors"`
}

func newErrorBody(msg string) errorBody {
	return errorBody{Errors: []gin.H{{"message": msg}}}
}

// graphqlHandler serves POST with a JSON body and GET with query string
// parameters. Mutations are refused over GET.
func graphqlHandler(exec *graph.Executor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req graph.Request
		if c.Request.Method == http.MethodGet {
			req.Query = c.Query("query")
			req.OperationName = c.Query("operationName")
			if v := c.Query("variables"); v != "" {
				if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
					c.JSON(http.StatusBadRequest, newErrorBody("variables are invalid JSON"))
					return
				}
			}
		} else if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, newErrorBody("body must be a JSON GraphQL request"))
			return
		}

		if req.Query == "" {
			c.JSON(http.StatusBadRequest, newErrorBody("must provide query string"))
			return
		}

		if c.Request.Method == http.MethodGet && isMutation(req.Query, req.OperationName) {
			c.Header("Allow", http.MethodPost)
			c.JSON(http.StatusMethodNotAllowed, newErrorBody("mutations can only be sent with POST"))
			return
		}

		c.JSON(http.StatusOK, exec.Execute(c.Request.Context(), req))
	}
}

// isMutation reports whether the selected operation of query is a mutation.
// Unparseable documents are left to the executor to report.
func isMutation(query, operationName string) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return false
	}
	for _, op := range doc.Operations {
		if operationName == "" || op.Name == operationName {
			return op.Operation == ast.Mutation
		}
	}
	return false
}
