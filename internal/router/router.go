package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "invoicer/docs" // registers the OpenAPI document
	"invoicer/internal/handler"
	"invoicer/internal/middleware"
)

// Handlers groups every HTTP handler mounted by Setup.
type Handlers struct {
	Health   *handler.HealthHandler
	Client   *handler.ClientHandler
	Invoice  *handler.InvoiceHandler
	Template *handler.TemplateHandler
	Settings *handler.SettingsHandler
	Dispatch *handler.DispatchHandler
	Job      *handler.JobHandler
	Stats    *handler.StatsHandler
}

// Options tunes the middleware stack.
type Options struct {
	// Tokens validates bearer tokens. Nil leaves every route open.
	Tokens         middleware.TokenParser
	AllowedOrigins []string
	EnableSwagger  bool
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(h Handlers, opts Options) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	if opts.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	protected := r.Group("")
	if opts.Tokens != nil {
		protected.Use(middleware.AuthMiddleware(opts.Tokens))
	}

	// Function-style endpoints
	protected.POST("/send-invoice", h.Dispatch.SendInvoice)
	protected.POST("/email-preview", h.Dispatch.EmailPreview)
	protected.POST("/save-to-drive", h.Dispatch.SaveToDrive)
	protected.POST("/process-reminders", h.Job.ProcessReminders)
	protected.POST("/summarize", h.Job.Summarize)

	v1 := protected.Group("/api/v1")

	clients := v1.Group("/clients")
	clients.POST("", h.Client.Create)
	clients.GET("", h.Client.List)
	clients.GET("/:id", h.Client.GetByID)
	clients.PUT("/:id", h.Client.Update)
	clients.DELETE("/:id", h.Client.Delete)

	invoices := v1.Group("/invoices")
	invoices.POST("", h.Invoice.Create)
	invoices.GET("", h.Invoice.List)
	invoices.GET("/next-number", h.Invoice.NextNumber)
	invoices.GET("/export", h.Invoice.Export)
	invoices.POST("/send", h.Dispatch.Send)
	invoices.GET("/:id", h.Invoice.GetByID)
	invoices.PUT("/:id", h.Invoice.Update)
	invoices.DELETE("/:id", h.Invoice.Delete)
	invoices.POST("/:id/paid", h.Invoice.MarkPaid)
	invoices.POST("/:id/transferred", h.Invoice.MarkTransferred)
	invoices.GET("/:id/preview", h.Dispatch.Preview)
	invoices.GET("/:id/pdf", h.Dispatch.DownloadPDF)
	invoices.POST("/:id/pdf", h.Dispatch.GeneratePDF)
	invoices.GET("/:id/pdf-url", h.Dispatch.PDFURL)

	templates := v1.Group("/templates")
	templates.POST("", h.Template.Create)
	templates.GET("", h.Template.List)
	templates.GET("/:id", h.Template.GetByID)
	templates.PUT("/:id", h.Template.Update)
	templates.DELETE("/:id", h.Template.Delete)

	v1.GET("/settings", h.Settings.Get)
	v1.PUT("/settings", h.Settings.Save)

	v1.GET("/dashboard/stats", h.Stats.GetStats)

	return r
}
