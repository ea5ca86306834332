package router

import (
	"time"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/config"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/handler"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/infra"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/middleware"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/repository"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/service"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	ordenRepo := repository.NewOrdenRepository(db)
	mesaRepo := repository.NewMesaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	movimientoRepo := repository.NewMovimientoInventarioRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	comprobanteRepo := repository.NewComprobanteRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo)
	mesaSvc := service.NewMesaService(mesaRepo, ordenRepo)
	ordenSvc := service.NewOrdenService(ordenRepo, mesaRepo, productoRepo)
	cajaSvc := service.NewCajaService(cajaRepo, cfg.NumeroCajas)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoRepo, pedidoRepo)
	facturacionSvc := service.NewFacturacionService(ordenRepo, cajaRepo, productoRepo, movimientoRepo, comprobanteRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductoHandler(productoSvc)
	mesasH := handler.NewMesaHandler(mesaSvc)
	ordenesH := handler.NewOrdenHandler(ordenSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	facturacionH := handler.NewFacturacionHandler(facturacionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailer))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: administrador, cajero, mesero, bartender — declared per-endpoint
		v1.POST("/ordenes", middleware.RequireRole("administrador", "cajero", "mesero"), ordenesH.Crear)
		v1.GET("/ordenes", ordenesH.Listar)
		v1.GET("/ordenes/:id", ordenesH.Obtener)
		v1.GET("/ordenes/:id/historial", ordenesH.Historial)
		v1.PUT("/ordenes/:id/estado", middleware.RequireRole("administrador", "cajero", "mesero", "bartender"), ordenesH.CambiarEstado)
		v1.PUT("/ordenes/:id/bartender", middleware.RequireRole("administrador", "bartender"), ordenesH.AsignarBartender)
		v1.DELETE("/ordenes/:id", middleware.RequireRole("administrador"), ordenesH.Eliminar)

		v1.GET("/mesas", mesasH.Listar)

		v1.GET("/productos", productosH.Listar)
		v1.GET("/productos/:id", productosH.Obtener)

		caja := v1.Group("/caja", middleware.RequireRole("administrador", "cajero"))
		{
			caja.POST("/abrir", cajaH.Abrir)
			caja.POST("/cerrar", cajaH.Cerrar)
			caja.POST("/movimiento", cajaH.RegistrarMovimiento)
			caja.GET("/sesiones/:id", cajaH.Obtener)
			caja.GET("/sesiones/:id/movimientos", cajaH.Movimientos)
			caja.GET("/historial", cajaH.Historial)
		}

		fact := v1.Group("/facturacion", middleware.RequireRole("administrador", "cajero"))
		{
			fact.POST("/cobrar", facturacionH.Cobrar)
			fact.GET("/orden/:orden_id", facturacionH.Comprobante)
			fact.GET("/pdf/:id", facturacionH.PDF)
		}

		inv := v1.Group("/inventario")
		{
			inv.POST("/ajustar", middleware.RequireRole("administrador"), inventarioH.Ajustar)
			inv.POST("/movimiento", middleware.RequireRole("administrador", "bartender"), inventarioH.Movimiento)
			inv.POST("/pedidos/:id/recibir", middleware.RequireRole("administrador"), inventarioH.RecibirPedido)
			inv.GET("/movimientos", middleware.RequireRole("administrador"), inventarioH.Movimientos)
			inv.GET("/alertas", middleware.RequireRole("administrador", "bartender"), inventarioH.Alertas)
			inv.GET("/combos/:id/disponibilidad", inventarioH.DisponibilidadCombo)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
