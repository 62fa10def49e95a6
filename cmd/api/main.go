package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/worktrack-hq/attendance-backend-go/internal/config"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/attendance"
	appHTTP "github.com/worktrack-hq/attendance-backend-go/internal/handler/http"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/clock"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/cron"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/database"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/jwt"
	"github.com/worktrack-hq/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/worktrack-hq/attendance-backend-go/internal/service/attendance"
	rosterService "github.com/worktrack-hq/attendance-backend-go/internal/service/roster"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	sessionStore := postgresql.NewSessionStore(db)
	directory := postgresql.NewDirectoryRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	engineClock := clock.System()
	policy := attendance.Policy{
		GracePeriod:       time.Duration(cfg.Attendance.GraceMinutes) * time.Minute,
		HalfDayFloorHours: cfg.Attendance.HalfDayHours,
	}

	attendanceSvc := attendanceService.NewAttendanceService(sessionStore, directory, engineClock, policy, cfg.Attendance.LookbackDays)
	rosterSvc := rosterService.NewRosterService(sessionStore, directory, engineClock, policy, cfg.Attendance.LookbackDays)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	rosterHandler := appHTTP.NewRosterHandler(rosterSvc, attendanceSvc)

	router := appHTTP.NewRouter(jwtService, attendanceHandler, rosterHandler, cfg.App.Env)

	absencePeriod, err := time.ParseDuration(cfg.Attendance.AbsenceJobPeriod)
	if err != nil {
		absencePeriod = time.Hour
	}
	scheduler := cron.NewScheduler(context.Background())
	cron.NewAttendanceJobs(sessionStore, directory).RegisterJobs(scheduler, absencePeriod)
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

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	fmt.Println("Shutting down...")
	_ = server.Close()
	db.Close()
}
