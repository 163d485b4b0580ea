package handlers

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/hackcampus/apply-backend/internal/middleware"
)

// RouterDeps is everything the route table needs.
type RouterDeps struct {
	Auth         *AuthHandler
	Applications *ApplicationHandler
	Companies    *CompanyHandler
	Staff        *StaffHandler
	Sessions     *middleware.Sessions
	Limiter      middleware.Limiter
	RateLimit    int
	RateWindow   time.Duration
	CORSOrigins  []string
}

var tagNameOnce sync.Once

// registerTagNames makes validator failures report json field names instead
// of Go struct field names, so validation responses match the wire format.
func registerTagNames() {
	tagNameOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
}

func NewRouter(deps RouterDeps) *gin.Engine {
	registerTagNames()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(deps.CORSOrigins) == 1 && deps.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = deps.CORSOrigins
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.Use(deps.Sessions.Authenticate())

	r.GET("/health", HealthCheck)

	limited := r.Group("/", middleware.RateLimit(deps.Limiter, deps.RateLimit, deps.RateWindow))
	limited.POST("/users", deps.Auth.Register)
	limited.POST("/sessions", deps.Auth.Login)

	r.DELETE("/sessions", deps.Auth.Logout)
	r.GET("/users/:userId/application", deps.Applications.Get)

	me := r.Group("/me", middleware.RequireAuth())
	{
		me.GET("", deps.Auth.Me)
		me.GET("/application", deps.Applications.GetMine)
		me.PUT("/application", deps.Applications.Put)
		me.PUT("/application/techpreferences", deps.Applications.PutTechPreferences)
		me.PUT("/companypreferences", deps.Companies.PutPreferences)
	}

	r.GET("/companies", middleware.RequireAuth(), deps.Companies.List)

	staff := r.Group("/", middleware.RequireMatcher())
	{
		staff.GET("/applications", deps.Staff.ListApplications)
		staff.GET("/applications/:id/events", deps.Staff.ListEvents)
		staff.POST("/applications/:id/events", deps.Staff.CreateEvent)
		staff.POST("/companies", deps.Staff.CreateCompany)
	}

	return r
}
