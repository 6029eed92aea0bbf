package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"backendprojects/api"
	"backendprojects/graph"
	"backendprojects/graph/model"
	"backendprojects/notifications"
	"backendprojects/rabbitmq"
	"backendprojects/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GraphQL server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close(context.Background())

		var events graph.Publisher
		if cfg.Events.URL != "" {
			conn, err := rabbitmq.Dial(cfg.Events.URL)
			if err != nil {
				return err
			}
			defer conn.Close()

			pub, err := rabbitmq.NewPublisher(conn.Channel(), cfg.Events.Queue, log)
			if err != nil {
				return err
			}
			events = pub
			log.WithField("queue", cfg.Events.Queue).Info("publishing events")

			if err := startNotifier(ctx, s, pub); err != nil {
				return err
			}
		}

		schema, err := graph.NewExecutableSchema(graph.NewResolver(s, events, log))
		if err != nil {
			return err
		}

		if !cfg.IsDevelopment() {
			gin.SetMode(gin.ReleaseMode)
		}
		router := api.NewRouter(api.RouterConfig{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Playground:     cfg.IsDevelopment(),
		}, graph.NewExecutor(&schema, s), s, log)

		srv := &http.Server{
			Addr:              net.JoinHostPort("", cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			log.WithField("port", cfg.Server.Port).Info("server running")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		select {
		case err := <-serverErr:
			return err
		case <-ctx.Done():
			log.Info("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// startNotifier routes project.added to the notifications queue and consumes
// it on its own connection, mailing clients about new projects. The events
// queue is left to other services. It is skipped when SMTP is not configured.
func startNotifier(ctx context.Context, s store.Store, pub *rabbitmq.Publisher) error {
	if cfg.SMTP.Host == "" {
		log.Info("SMTP_HOST not set, project notifications disabled")
		return nil
	}

	if err := pub.Route(model.EventProjectAdded, cfg.Events.NotificationsQueue); err != nil {
		return err
	}
	conn, err := rabbitmq.Dial(cfg.Events.URL)
	if err != nil {
		return err
	}
	sender := notifications.NewEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password)
	notifier := notifications.NewNotifier(s.Clients(), sender, log)

	go func() {
		defer conn.Close()
		if err := rabbitmq.Consume(ctx, conn.Channel(), cfg.Events.NotificationsQueue, notifier.HandleEvent, log); err != nil {
			log.WithError(err).Error("event consumer stopped")
		}
	}()
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
