package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-recipe-api/internal/core/auth"
	"go-recipe-api/internal/core/cache"
	"go-recipe-api/internal/core/config"
	"go-recipe-api/internal/repo"
	"go-recipe-api/internal/transport/http/handler"
	mdw "go-recipe-api/internal/transport/http/middleware"
	resp "go-recipe-api/internal/transport/http/response"
)

func NewAPIEngine(cfg *config.Config, l *zap.Logger, db *gorm.DB, jwter *auth.JWTer, cch *cache.Cache) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// 未注册方法要给 405 而不是 404
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		resp.Detail(c, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NoRoute(func(c *gin.Context) {
		resp.Detail(c, http.StatusNotFound, "not found")
	})

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		cors.Default(),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 媒体文件只在非生产环境由本服务直出
	if cfg.App.Env != "production" {
		r.Static(cfg.Media.URL, cfg.Media.Root)
	}

	users := repo.NewUserRepo(db)
	recipes := repo.NewRecipeRepo(db)
	tags := repo.NewTagRepo(db)
	ingredients := repo.NewIngredientRepo(db)

	cacheTTL := time.Duration(cfg.Redis.TTLSec) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	uh := handler.NewUserHandler(l, users, jwter)
	rh := handler.NewRecipeHandler(l, recipes, cch, cacheTTL, cfg.Media.Root, cfg.Media.URL)
	th := handler.NewTagHandler(l, tags)
	ih := handler.NewIngredientHandler(l, ingredients)

	userPub := r.Group("/api/user")
	userAuth := r.Group("/api/user")
	userAuth.Use(mdw.AuthJWT(jwter))
	uh.Mount(userPub, userAuth)

	recipeGrp := r.Group("/api/recipe")
	recipeGrp.Use(mdw.AuthJWT(jwter))
	rh.Mount(recipeGrp)
	th.Mount(recipeGrp)
	ih.Mount(recipeGrp)

	return r
}
