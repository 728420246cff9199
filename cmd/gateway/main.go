package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/eadlabs/ead-platform/internal/api/http"
	"github.com/eadlabs/ead-platform/internal/assessment"
	auth "github.com/eadlabs/ead-platform/internal/auth/middleware"
	"github.com/eadlabs/ead-platform/internal/catalog"
	"github.com/eadlabs/ead-platform/internal/completion"
	"github.com/eadlabs/ead-platform/internal/config"
	"github.com/eadlabs/ead-platform/internal/db"
	"github.com/eadlabs/ead-platform/internal/enrollment"
	"github.com/eadlabs/ead-platform/internal/finance"
	"github.com/eadlabs/ead-platform/internal/metrics"
	"github.com/eadlabs/ead-platform/internal/progress"
	"github.com/eadlabs/ead-platform/internal/rbac"
	"github.com/eadlabs/ead-platform/internal/storage"
	syncx "github.com/eadlabs/ead-platform/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	events := syncx.NewEventRepo(dbh)
	courses := catalog.NewSQLStore(dbh)
	questions := assessment.NewSQLStore(dbh)
	enrollments := enrollment.NewSQLStore(dbh)
	progressStore := progress.NewSQLStore(dbh)
	charges := finance.NewSQLStore(dbh)

	engine := assessment.NewEngine(questions, courses, events)
	progressSvc := progress.NewService(progressStore, questions, engine, events)
	gate := completion.NewGate(courses, progressStore, enrollments)
	dashboard := metrics.NewAggregator(dbh, rbac.Default())

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-API-Token"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	r.Post("/users", api.CreateUserHandler(dbh))

	// Protected API (JWT → authoritative role from DB → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc, dbh, cfg.APITokenAuth))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// Profile
		pr.With(rbac.Require("user:profile")).
			Get("/profile", api.GetProfileHandler(dbh))
		pr.With(rbac.Require("user:profile")).
			Put("/profile", api.UpdateProfileHandler(dbh))
		pr.With(rbac.Require("user:profile")).
			Post("/user/generate-token", api.GenerateTokenHandler(dbh))

		// Catalog
		pr.With(rbac.Require("course:view")).
			Get("/modules", api.ListModulesHandler(courses))
		pr.With(rbac.Require("course:view")).
			Get("/modules/{moduleID}", api.GetModuleHandler(courses))
		pr.With(rbac.Require("course:manage")).
			Post("/modules", api.CreateModuleHandler(courses))
		pr.With(rbac.Require("course:manage")).
			Put("/modules/{moduleID}", api.UpdateModuleHandler(courses))
		pr.With(rbac.Require("course:manage")).
			Delete("/modules/{moduleID}", api.DeleteModuleHandler(courses))
		pr.With(rbac.Require("course:manage")).
			Post("/modules/{moduleID}/lessons", api.CreateLessonHandler(courses))
		pr.With(rbac.Require("course:manage")).
			Put("/lessons/{lessonID}", api.UpdateLessonHandler(courses))
		pr.With(rbac.Require("course:manage")).
			Delete("/lessons/{lessonID}", api.DeleteLessonHandler(courses))

		// Support materials and stored assets
		pr.With(rbac.Require("course:view")).
			Get("/lessons/{lessonID}/materials", api.ListMaterialsHandler(courses))
		pr.With(rbac.RequireAny("material:manage", "course:manage")).
			Post("/lessons/{lessonID}/materials", api.UploadMaterialHandler(courses, bs))
		pr.With(rbac.RequireAny("material:manage", "course:manage")).
			Delete("/materials/{materialID}", api.DeleteMaterialHandler(courses, bs))
		pr.With(rbac.Require("course:view")).
			Get("/assets/*", api.AssetHandler(bs))

		// Questions: takers never see the answer key, editors do
		pr.With(rbac.Require("question:take")).
			Get("/questions", api.ListQuestionsHandler(questions))
		pr.With(rbac.Require("question:manage")).
			Get("/questions/edit", api.ListQuestionsEditHandler(questions))
		pr.With(rbac.Require("question:manage")).
			Post("/questions", api.CreateQuestionHandler(questions))
		pr.With(rbac.Require("question:manage")).
			Delete("/questions/{questionID}", api.DeleteQuestionHandler(questions))

		// Assessment
		pr.With(rbac.Require("quiz:submit")).
			Post("/quiz/submit", api.SubmitQuizHandler(engine))
		pr.With(rbac.Require("grades:list")).
			Get("/grades", api.ListGradesHandler(questions))

		// Progress
		pr.With(rbac.Require("progress:mark")).
			Post("/progress/{lessonID}", api.MarkLessonCompletedHandler(progressSvc))
		pr.With(rbac.Require("students:list")).
			Get("/students", api.ListStudentsHandler(dbh))
		pr.With(rbac.Require("students:list")).
			Get("/students/{studentID}/details", api.StudentDetailsHandler(dbh, progressStore, questions))
		pr.With(rbac.Require("question:manage")).
			Get("/students/{studentID}/lessons/{lessonID}/answers", api.StudentAnswersHandler(progressSvc))
		pr.With(rbac.Require("students:list")).
			Get("/audit/events", api.AuditTrailHandler(events))

		// Enrollment
		pr.With(rbac.Require("enrollment:create")).
			Post("/enrollments", api.EnrollHandler(enrollments, courses, rbac.Default(), events))
		pr.With(rbac.Require("enrollment:view-own")).
			Get("/enrollments/my", api.ListMyEnrollmentsHandler(enrollments))

		// Dashboard (shape decided by role inside the aggregator)
		pr.With(rbac.Require("metrics:view-basic")).
			Get("/dashboard/metrics", api.MetricsHandler(dashboard))

		// Document eligibility for the external renderer
		pr.With(rbac.Require("document:request")).
			Get("/eligibility/certificate/{moduleID}", api.CertificateEligibilityHandler(gate))
		pr.With(rbac.Require("document:request")).
			Get("/eligibility/enrollment-receipt/{moduleID}", api.EnrollmentReceiptEligibilityHandler(gate))

		// Finance
		pr.With(rbac.Require("finance:manage")).
			Post("/finance/charges", api.CreateChargeHandler(charges))
		pr.With(rbac.Require("finance:manage")).
			Get("/finance/charges", api.ListChargesHandler(charges))
		pr.With(rbac.Require("finance:view-own")).
			Get("/finance/my-charges", api.MyChargesHandler(charges))
		pr.With(rbac.Require("finance:view-own")).
			Get("/finance/my-charges/{chargeID}", api.MyChargeHandler(charges))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
