package routes

import (
	"courseplatform/backend/catalog"
	"courseplatform/backend/config"
	"courseplatform/backend/controllers"
	"courseplatform/backend/editor"
	"courseplatform/backend/middleware"
	"courseplatform/backend/repository"
	"courseplatform/backend/storage"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services are the optional backends wired in by main. Nil fields fall back
// to no cache and no asset store.
type Services struct {
	Log    *utils.Logger
	Cache  catalog.Cache
	Assets storage.Resolver
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, svc Services) {
	log := svc.Log
	if log == nil {
		log = utils.NopLogger()
	}
	assets := svc.Assets
	if assets == nil {
		assets = storage.Nop{}
	}

	courses := repository.NewCourseRepository(db)
	modules := repository.NewModuleRepository(db)
	lecturers := repository.NewLecturerRepository(db)
	promotions := repository.NewPromotionRepository(db)
	learners := repository.NewLearnerRepository(db)
	aggregator := catalog.NewAggregator(repository.NewCatalogSource(db), svc.Cache, log)
	reconciler := editor.NewReconciler(log, cfg.SaveTimeout, cfg.MaxConcurrentWrites)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	optionalAuth := middleware.OptionalAuth(cfg)
	adminMiddleware := middleware.AdminMiddleware()

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, log)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// User routes
	userController := controllers.NewUserController(db, learners)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Catalog routes
	catalogController := controllers.NewCatalogController(aggregator, learners)
	app.Get("/api/catalog", optionalAuth, catalogController.GetCatalog)
	app.Get("/api/catalog/courses", optionalAuth, catalogController.GetCourses)
	app.Get("/api/certificates", authMiddleware, catalogController.GetCertificates)

	publicCourses := app.Group("/api/courses", optionalAuth)
	publicCourses.Get("/:id", catalogController.GetCourse)
	publicCourses.Get("/:id/price", catalogController.GetPrice)
	publicCourses.Get("/:id/lecturers", catalogController.GetCourseLecturers)
	app.Post("/api/courses/:id/enroll", authMiddleware, catalogController.Enroll)

	modulesController := controllers.NewModulesController(modules, reconciler, aggregator)
	app.Post("/api/lectures/:id/attempt", authMiddleware, modulesController.SubmitAttempt)

	// Promotions and assets
	promotionsController := controllers.NewPromotionsController(promotions, aggregator)
	app.Get("/api/promotions", promotionsController.GetPromotions)

	assetsController := controllers.NewAssetsController(assets, cfg.MaxConcurrentWrites)
	app.Get("/api/assets/:type/:id", assetsController.GetAsset)
	app.Post("/api/assets/resolve", assetsController.ResolveAssets)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)

	admin.Post("/users/:id/membership", userController.GrantMembership)

	coursesController := controllers.NewCoursesController(courses, aggregator, log)
	admin.Get("/courses/recovery", coursesController.GetRecovery)
	admin.Get("/courses/drafts", coursesController.GetDrafts)
	admin.Post("/courses", coursesController.CreateCourse)
	admin.Put("/courses/:id", coursesController.UpdateCourse)
	admin.Put("/courses/:id/status", coursesController.SetStatus)
	admin.Delete("/courses/:id", coursesController.SoftDelete)
	admin.Post("/courses/:id/recover", coursesController.Recover)
	admin.Delete("/courses/:id/hard", coursesController.HardDelete)

	admin.Get("/courses/:id/modules", modulesController.ListModules)
	admin.Post("/courses/:id/modules", modulesController.CreateModule)
	admin.Get("/modules/:id", modulesController.GetModule)
	admin.Put("/modules/:id", modulesController.UpdateModule)
	admin.Delete("/lectures/:id", modulesController.DeleteLecture)
	admin.Put("/lectures/:id/position", modulesController.MoveLecture)

	lecturersController := controllers.NewLecturersController(lecturers, aggregator)
	admin.Get("/lecturers", lecturersController.ListLecturers)
	admin.Post("/lecturers", lecturersController.CreateLecturer)
	admin.Get("/lecturers/:id", lecturersController.GetLecturer)
	admin.Put("/lecturers/:id", lecturersController.UpdateLecturer)
	admin.Delete("/lecturers/:id", lecturersController.DeleteLecturer)
	admin.Get("/lecturers/:id/courses", lecturersController.GetLecturerCourses)
	admin.Post("/lecturer-maps", lecturersController.CreateMap)
	admin.Delete("/lecturer-maps", lecturersController.DeleteMap)

	admin.Get("/promotions", promotionsController.GetAllPromotions)
	admin.Post("/promotions", promotionsController.CreatePromotion)
	admin.Put("/promotions/:id", promotionsController.UpdatePromotion)
	admin.Delete("/promotions/:id", promotionsController.DeletePromotion)
}
