// Package api exposes the REST surface under /api/v1. Handlers stay thin:
// decode, delegate to a core service, render. Error mapping is uniform via
// the apperrors category.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/quentinlb/cocktaild/core/catalog"
	"github.com/quentinlb/cocktaild/core/dispenser"
	"github.com/quentinlb/cocktaild/core/files"
	"github.com/quentinlb/cocktaild/core/logger"
	"github.com/quentinlb/cocktaild/core/order"
)

// Server wires the core services to HTTP routes.
type Server struct {
	ingredients *catalog.IngredientService
	recipes     *catalog.RecipeService
	slots       *dispenser.SlotService
	settings    *dispenser.SettingService
	orders      *order.Service
	controller  *order.Controller
	files       *files.Service

	corsOrigins []string
	log         logger.Logger
}

// NewServer creates a Server. corsOrigins empty allows every origin.
func NewServer(
	ingredients *catalog.IngredientService,
	recipes *catalog.RecipeService,
	slots *dispenser.SlotService,
	settings *dispenser.SettingService,
	orders *order.Service,
	controller *order.Controller,
	fileSvc *files.Service,
	corsOrigins []string,
	log logger.Logger,
) *Server {
	return &Server{
		ingredients: ingredients,
		recipes:     recipes,
		slots:       slots,
		settings:    settings,
		orders:      orders,
		controller:  controller,
		files:       fileSvc,
		corsOrigins: corsOrigins,
		log:         log,
	}
}

// Handler builds the router with CORS applied.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.GET("/api/v1/ingredients", s.listIngredients)
	router.POST("/api/v1/ingredients", s.createIngredient)
	router.GET("/api/v1/ingredients/:id", s.getIngredient)
	router.PUT("/api/v1/ingredients/:id", s.updateIngredient)
	router.DELETE("/api/v1/ingredients/:id", s.deleteIngredient)

	router.GET("/api/v1/recipes", s.listRecipes)
	router.POST("/api/v1/recipes", s.createRecipe)
	router.GET("/api/v1/recipes/:id", s.getRecipe)
	router.PUT("/api/v1/recipes/:id", s.updateRecipe)
	router.DELETE("/api/v1/recipes/:id", s.deleteRecipe)

	router.GET("/api/v1/dispenser-slots", s.listSlots)
	router.POST("/api/v1/dispenser-slots", s.createSlot)
	router.GET("/api/v1/dispenser-slots/:id", s.getSlot)
	router.PUT("/api/v1/dispenser-slots/:id", s.updateSlot)
	router.DELETE("/api/v1/dispenser-slots/:id", s.deleteSlot)

	router.GET("/api/v1/settings", s.getSettings)
	router.PUT("/api/v1/settings", s.updateSettings)

	router.GET("/api/v1/orders", s.listOrders)
	router.POST("/api/v1/orders", s.createOrder)
	router.GET("/api/v1/orders/:id", s.getOrder)
	router.POST("/api/v1/orders/:id/cancel", s.cancelOrder)
	router.GET("/api/v1/export/orders", s.exportOrders)

	router.POST("/api/v1/machine/make-cocktail", s.makeCocktail)

	router.GET("/api/v1/files", s.listFiles)
	router.POST("/api/v1/files", s.uploadFile)
	router.GET("/api/v1/files/:id", s.getFile)
	router.DELETE("/api/v1/files/:id", s.deleteFile)
	router.ServeFiles("/public/*filepath", http.Dir(s.files.Dir()))

	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

// Serve runs the HTTP listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("api listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
