package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Transporegistros/carga-colombia-track/internal/cache"
	"github.com/Transporegistros/carga-colombia-track/internal/config"
	"github.com/Transporegistros/carga-colombia-track/internal/database"
	"github.com/Transporegistros/carga-colombia-track/internal/handlers"
	"github.com/Transporegistros/carga-colombia-track/internal/middleware"
	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/notifier"
	"github.com/Transporegistros/carga-colombia-track/internal/repository"
	"github.com/Transporegistros/carga-colombia-track/internal/services"
	"github.com/Transporegistros/carga-colombia-track/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	if cfg.App.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	dbManager := database.NewManager(cfg)
	if err := dbManager.Init(ctx); err != nil {
		logrus.Fatalf("failed to initialize database: %v", err)
	}

	// Redis is optional: without it sessions still work, just without
	// cross-instance invalidation and permission caching.
	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		logrus.Warnf("redis unavailable, running without cache: %v", err)
		redisClient = nil
	}

	storageDriver, err := storage.NewDriver(&storage.Config{
		Driver:             cfg.Storage.Driver,
		UploadsPath:        cfg.Storage.UploadsPath,
		AWSAccessKeyID:     cfg.Storage.AWSAccessKeyID,
		AWSSecretAccessKey: cfg.Storage.AWSSecretAccessKey,
		AWSRegion:          cfg.Storage.AWSRegion,
		AWSBucket:          cfg.Storage.AWSBucket,
		R2AccessKeyID:      cfg.Storage.R2AccessKeyID,
		R2SecretAccessKey:  cfg.Storage.R2SecretAccessKey,
		R2AccountID:        cfg.Storage.R2AccountID,
		R2Bucket:           cfg.Storage.R2Bucket,
		R2PublicURL:        cfg.Storage.R2PublicURL,
	})
	if err != nil {
		logrus.Fatalf("failed to initialize storage: %v", err)
	}

	pool := dbManager.Pool()

	usuarioRepo := repository.NewUsuarioRepository(pool)
	perfilRepo := repository.NewPerfilRepository(pool)
	empresaRepo := repository.NewEmpresaRepository(pool)
	vehiculoRepo := repository.NewVehiculoRepository(pool)
	viajeRepo := repository.NewViajeRepository(pool)
	gastoRepo := repository.NewGastoRepository(pool)
	moduloRepo := repository.NewModuloRepository(pool)
	permisoRepo := repository.NewPermisoRepository(pool)
	auditoriaRepo := repository.NewAuditoriaRepository(pool)
	configuracionRepo := repository.NewConfiguracionRepository(pool)

	sessionSvc := services.NewSessionService(usuarioRepo, perfilRepo, empresaRepo, redisClient, notifier.NewLogNotifier(), cfg)
	permisoSvc := services.NewPermissionService(moduloRepo, permisoRepo, redisClient)
	menuSvc := services.NewMenuService(permisoSvc)
	auditoriaSvc := services.NewAuditoriaService(auditoriaRepo)
	comprobanteSvc := services.NewComprobanteService(gastoRepo, empresaRepo, storageDriver)

	stopWatcher := sessionSvc.StartInvalidationWatcher(ctx)
	defer stopWatcher()

	authHandler := handlers.NewAuthHandler(sessionSvc, auditoriaSvc)
	aclHandler := handlers.NewACLHandler(permisoSvc, menuSvc)
	vehiculoHandler := handlers.NewVehiculoHandler(vehiculoRepo, auditoriaSvc)
	viajeHandler := handlers.NewViajeHandler(viajeRepo, vehiculoRepo, auditoriaSvc)
	gastoHandler := handlers.NewGastoHandler(gastoRepo, vehiculoRepo, comprobanteSvc, auditoriaSvc)
	empresaHandler := handlers.NewEmpresaHandler(empresaRepo, configuracionRepo, comprobanteSvc, auditoriaSvc)
	adminHandler := handlers.NewAdminHandler(moduloRepo, permisoRepo, permisoSvc, auditoriaSvc)

	router := setupRouter(cfg, sessionSvc, permisoSvc,
		authHandler, aclHandler, vehiculoHandler, viajeHandler,
		gastoHandler, empresaHandler, adminHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logrus.Infof("API listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("forced shutdown: %v", err)
	}

	dbManager.Close()
	if redisClient != nil {
		redisClient.Close()
	}

	logrus.Info("server exited")
}

func setupRouter(
	cfg *config.Config,
	sessionSvc *services.SessionService,
	permisoSvc *services.PermissionService,
	authHandler *handlers.AuthHandler,
	aclHandler *handlers.ACLHandler,
	vehiculoHandler *handlers.VehiculoHandler,
	viajeHandler *handlers.ViajeHandler,
	gastoHandler *handlers.GastoHandler,
	empresaHandler *handlers.EmpresaHandler,
	adminHandler *handlers.AdminHandler,
) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "carga-colombia-track"})
	})

	if cfg.Storage.Driver == "local" || cfg.Storage.Driver == "" {
		router.Static("/uploads", cfg.Storage.UploadsPath)
	}

	// Public routes
	public := router.Group("/api/v1")
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/reset-password", authHandler.ResetPassword)
		public.POST("/auth/reset-password/confirm", authHandler.ConfirmReset)
	}

	// Authenticated routes. A partial session (profile fetch failed) gets
	// through here: it can see itself and log out.
	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(sessionSvc))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/logout", authHandler.Logout)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)

		protected.GET("/menu", aclHandler.Menu)
		protected.POST("/rpc/tiene_permiso", aclHandler.TienePermiso)
		protected.POST("/rpc/obtener_modulos_por_rol", aclHandler.ModulosPorRol)
	}

	// Company-scoped routes, gated per module/action.
	empresa := router.Group("/api/v1")
	empresa.Use(middleware.AuthMiddleware(sessionSvc))
	empresa.Use(middleware.RequireEmpresa())
	{
		empresa.GET("/resumen", empresaHandler.Resumen)

		empresa.GET("/empresa", empresaHandler.Get)
		empresa.PUT("/empresa", middleware.RequirePermission(permisoSvc, "/configuracion", models.AccionEditar), empresaHandler.Update)
		empresa.POST("/empresa/logo", middleware.RequirePermission(permisoSvc, "/configuracion", models.AccionEditar), empresaHandler.UploadLogo)

		empresa.GET("/configuraciones", empresaHandler.ListConfiguraciones)
		empresa.PUT("/configuraciones", middleware.RequirePermission(permisoSvc, "/configuracion", models.AccionEditar), empresaHandler.UpsertConfiguracion)

		vehiculos := empresa.Group("/vehiculos")
		{
			vehiculos.GET("", middleware.RequirePermission(permisoSvc, "/vehiculos", models.AccionVer), vehiculoHandler.List)
			vehiculos.GET("/:id", middleware.RequirePermission(permisoSvc, "/vehiculos", models.AccionVer), vehiculoHandler.Get)
			vehiculos.POST("", middleware.RequirePermission(permisoSvc, "/vehiculos", models.AccionCrear), vehiculoHandler.Create)
			vehiculos.PUT("/:id", middleware.RequirePermission(permisoSvc, "/vehiculos", models.AccionEditar), vehiculoHandler.Update)
			vehiculos.DELETE("/:id", middleware.RequirePermission(permisoSvc, "/vehiculos", models.AccionEliminar), vehiculoHandler.Delete)
		}

		viajes := empresa.Group("/viajes")
		{
			viajes.GET("", middleware.RequirePermission(permisoSvc, "/viajes", models.AccionVer), viajeHandler.List)
			viajes.GET("/:id", middleware.RequirePermission(permisoSvc, "/viajes", models.AccionVer), viajeHandler.Get)
			viajes.POST("", middleware.RequirePermission(permisoSvc, "/viajes", models.AccionCrear), viajeHandler.Create)
			viajes.PUT("/:id", middleware.RequirePermission(permisoSvc, "/viajes", models.AccionEditar), viajeHandler.Update)
			viajes.DELETE("/:id", middleware.RequirePermission(permisoSvc, "/viajes", models.AccionEliminar), viajeHandler.Delete)
		}

		gastos := empresa.Group("/gastos")
		{
			gastos.GET("", middleware.RequirePermission(permisoSvc, "/gastos", models.AccionVer), gastoHandler.List)
			gastos.GET("/:id", middleware.RequirePermission(permisoSvc, "/gastos", models.AccionVer), gastoHandler.Get)
			gastos.POST("", middleware.RequirePermission(permisoSvc, "/gastos", models.AccionCrear), gastoHandler.Create)
			gastos.PUT("/:id", middleware.RequirePermission(permisoSvc, "/gastos", models.AccionEditar), gastoHandler.Update)
			gastos.DELETE("/:id", middleware.RequirePermission(permisoSvc, "/gastos", models.AccionEliminar), gastoHandler.Delete)
			gastos.POST("/:id/comprobante", middleware.RequirePermission(permisoSvc, "/gastos", models.AccionEditar), gastoHandler.UploadComprobante)
		}
	}

	// Admin-only surfaces.
	admin := router.Group("/api/v1")
	admin.Use(middleware.AuthMiddleware(sessionSvc))
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/modulos", adminHandler.ListModulos)
		admin.POST("/modulos", adminHandler.CreateModulo)
		admin.PUT("/modulos/:id", adminHandler.UpdateModulo)
		admin.DELETE("/modulos/:id", adminHandler.DeleteModulo)

		admin.GET("/permisos_rol", adminHandler.ListPermisos)
		admin.POST("/permisos_rol", adminHandler.UpsertPermiso)
		admin.DELETE("/permisos_rol/:id", adminHandler.DeletePermiso)

		admin.GET("/auditoria", adminHandler.ListAuditoria)
	}

	return router
}
