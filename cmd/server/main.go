package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/skillforge/backend/internal/auth"
	"github.com/skillforge/backend/internal/courses"
	"github.com/skillforge/backend/internal/database"
	"github.com/skillforge/backend/internal/dungeon"
	"github.com/skillforge/backend/internal/generator"
	"github.com/skillforge/backend/internal/industry"
	"github.com/skillforge/backend/internal/questions"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize services
	questionStore := questions.NewStore(db)
	questionService := questions.NewService(questionStore, generator.NewGenerator())
	dungeonService := dungeon.NewService(dungeon.NewStore(db), questionService)

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	questionHandler := questions.NewHandler(questionService)
	dungeonHandler := dungeon.NewHandler(dungeonService)
	courseHandler := courses.NewHandler(courses.NewStore(db))
	industryHandler := industry.NewHandler(industry.NewStore(db))

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(auth.Middleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	// Dungeon runs
	protected.HandleFunc("/dungeon/runs", dungeonHandler.StartRun).Methods("POST")
	protected.HandleFunc("/dungeon/runs", dungeonHandler.ListRuns).Methods("GET")
	protected.HandleFunc("/dungeon/runs/{id}", dungeonHandler.GetRun).Methods("GET")
	protected.HandleFunc("/dungeon/runs/{id}/answer", dungeonHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/dungeon/runs/{id}/attempts", dungeonHandler.ListAttempts).Methods("GET")

	// Question bank
	protected.HandleFunc("/questions", questionHandler.ListQuestions).Methods("GET")
	protected.HandleFunc("/questions/generate", questionHandler.GenerateQuestions).Methods("POST")

	// Courses
	protected.HandleFunc("/courses", courseHandler.CreateCourse).Methods("POST")
	protected.HandleFunc("/courses", courseHandler.ListCourses).Methods("GET")
	protected.HandleFunc("/courses/{id}", courseHandler.GetCourse).Methods("GET")
	protected.HandleFunc("/courses/{id}/enroll", courseHandler.Enroll).Methods("POST")
	protected.HandleFunc("/enrollments", courseHandler.ListEnrollments).Methods("GET")

	// Industry postings
	protected.HandleFunc("/postings", industryHandler.CreatePosting).Methods("POST")
	protected.HandleFunc("/postings", industryHandler.ListPostings).Methods("GET")
	protected.HandleFunc("/postings/{id}", industryHandler.GetPosting).Methods("GET")
	protected.HandleFunc("/postings/{id}/close", industryHandler.ClosePosting).Methods("POST")
	protected.HandleFunc("/postings/{id}/candidates", industryHandler.GetCandidateMatches).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
