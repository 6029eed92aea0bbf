package api

import (
	"context"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"backendprojects/graph"
	"backendprojects/store"
)

type RouterConfig struct {
	AllowedOrigins []string
	Playground     bool
}

// NewRouter mounts the GraphQL endpoint, the schema document and health
// check. The playground is only served when enabled.
func NewRouter(cfg RouterConfig, exec *graph.Executor, s store.Store, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(log))

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, RequestIDHeader)
	corsCfg.ExposeHeaders = []string{RequestIDHeader}
	r.Use(cors.New(corsCfg))

	gql := graphqlHandler(exec)
	r.POST("/graphql", gql)
	r.GET("/graphql", gql)

	r.GET("/schema.graphqls", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(graph.SchemaSDL))
	})
	r.GET("/healthz", healthHandler(s))

	if cfg.Playground {
		r.GET("/", gin.WrapH(playground.Handler("GraphQL playground", "/graphql")))
	}
	return r
}

func healthHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
