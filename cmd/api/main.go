package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/officehub/officehub-backend-go/internal/config"
	appHTTP "github.com/officehub/officehub-backend-go/internal/handler/http"
	"github.com/officehub/officehub-backend-go/internal/pkg/cron"
	"github.com/officehub/officehub-backend-go/internal/pkg/database"
	"github.com/officehub/officehub-backend-go/internal/pkg/jwt"
	"github.com/officehub/officehub-backend-go/internal/pkg/oauth"
	"github.com/officehub/officehub-backend-go/internal/repository/postgresql"
	attendanceService "github.com/officehub/officehub-backend-go/internal/service/attendance"
	authService "github.com/officehub/officehub-backend-go/internal/service/auth"
	employeeService "github.com/officehub/officehub-backend-go/internal/service/employee"
	reportService "github.com/officehub/officehub-backend-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	policies, err := cfg.ShiftPolicies()
	if err != nil {
		fmt.Println("Error loading shift policies:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Pool.Close()

	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	googleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)

	authSvc := authService.NewAuthService(userRepo, employeeRepo, jwtService, googleService)
	attendanceSvc := attendanceService.NewAttendanceService(db, attendanceRepo, employeeRepo, policies)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	reportSvc := reportService.NewReportService(reportRepo)

	authHandler := appHTTP.NewAuthHandler(jwtService, authSvc, cfg.App.FrontendURL)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(
		jwtService,
		cfg.App.FrontendURL,
		authHandler,
		attendanceHandler,
		employeeHandler,
		reportHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceRepo, policies).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down...")
	_ = server.Close()
}
