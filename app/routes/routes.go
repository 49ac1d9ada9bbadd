package routes

import (
	"net/http"

	"quill/app/controllers"
	"quill/app/middleware"
	"quill/app/repositories"
	"quill/app/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Deps are the components the HTTP surface is built from.
type Deps struct {
	Store     *repositories.Store
	Auth      *services.AuthService
	Feed      controllers.Updater
	Refresher controllers.Refresher
	Logger    *zap.Logger
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Deps) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recoverer(deps.Logger))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Authenticate(deps.Auth))

	postService := services.NewPostService(deps.Store.Posts, deps.Store.Comments)
	commentService := services.NewCommentService(deps.Store.Comments, deps.Store.Posts)
	userService := services.NewUserService(deps.Store.Users, deps.Store.Posts, deps.Store.Comments)

	postController := controllers.NewPostController(postService)
	commentController := controllers.NewCommentController(commentService)
	authController := controllers.NewAuthController(deps.Auth)
	userController := controllers.NewUserController(userService)
	feedController := controllers.NewFeedController(deps.Feed, deps.Refresher, deps.Logger)
	adminController := controllers.NewAdminController(deps.Store, deps.Logger)

	// API routes
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", authController.Register).Methods("POST")
	api.HandleFunc("/auth/login", authController.Login).Methods("POST")

	// Posts API endpoints
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("/{id:[0-9]+}", postController.Show).Methods("GET")
	posts.Handle("", middleware.RequireAuth(http.HandlerFunc(postController.Create))).Methods("POST")
	posts.Handle("/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(postController.Edit))).Methods("PUT", "PATCH")
	posts.Handle("/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(postController.Delete))).Methods("DELETE")

	// Comments API endpoints
	posts.HandleFunc("/{postId:[0-9]+}/comments", commentController.Index).Methods("GET")
	posts.Handle("/{postId:[0-9]+}/comments", middleware.RequireAuth(http.HandlerFunc(commentController.Create))).Methods("POST")
	api.Handle("/comments/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(commentController.Delete))).Methods("DELETE")

	// Feed
	api.HandleFunc("/feed", feedController.Index).Methods("GET")
	api.HandleFunc("/categories", feedController.Categories).Methods("GET")
	api.Handle("/feed/refresh", middleware.RequireAdmin(http.HandlerFunc(feedController.Refresh))).Methods("POST")

	// Accounts and admin
	api.Handle("/me", middleware.RequireAuth(http.HandlerFunc(userController.Me))).Methods("GET")
	api.Handle("/users", middleware.RequireAdmin(http.HandlerFunc(userController.Index))).Methods("GET")
	api.Handle("/stats", middleware.RequireAdmin(http.HandlerFunc(userController.Stats))).Methods("GET")
	api.Handle("/admin/backup", middleware.RequireAdmin(http.HandlerFunc(adminController.Backup))).Methods("GET")

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	return router
}
