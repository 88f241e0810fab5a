package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coneno/logger"
	"github.com/cybershield-id/registration-relay/pkg/dispatch"
	"github.com/cybershield-id/registration-relay/pkg/http/handlers"
	"github.com/cybershield-id/registration-relay/pkg/submission"
	"github.com/cybershield-id/registration-relay/pkg/validation"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var conf Config

func setup() {
	conf = initConfig()
	if !conf.GinDebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.SetLevel(conf.LogLevel)
}

func healthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// corsConfig allows every origin without credentials when no origin list
// is configured.
func corsConfig(conf Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length"},
		ExposeHeaders: []string{"Content-Type", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(conf.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = conf.AllowOrigins
	c.AllowCredentials = true
	return c
}

func main() {
	setup()
	logger.Info.Println("Starting registration relay")

	dispatcher := dispatch.NewHTTPDispatcher(conf.DispatchConfig)
	store := submission.NewStore(conf.SessionConfig, validation.NewValidator(), dispatcher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go store.Run(ctx, time.Minute)

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(corsConfig(conf)))
	router.GET("/", healthCheckHandle)
	apiRoot := router.Group("")

	apiHandlers := handlers.NewHTTPHandler(
		store,
		conf.AllowedReferers,
	)
	apiHandlers.AddRegistrationAPI(apiRoot)
	apiHandlers.AddSessionAPI(apiRoot)

	srv := &http.Server{
		Addr:    ":" + conf.Port,
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("shutdown: %v", err)
		}
	}()

	logger.Info.Printf("registration relay is listening on port %s", conf.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error.Fatal(err)
	}
	logger.Info.Println("registration relay stopped")
}
