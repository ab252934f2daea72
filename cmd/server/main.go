package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	mockbackend "strategos/internal/adapter/backend/mock"
	openaibackend "strategos/internal/adapter/backend/openai"
	httpadapter "strategos/internal/adapter/http"
	metricsinmem "strategos/internal/adapter/metrics/inmemory"
	gormrepo "strategos/internal/adapter/repo/gorm"
	memrepo "strategos/internal/adapter/repo/memory"
	"strategos/internal/app/arbiter"
	"strategos/internal/app/classical"
	"strategos/internal/app/fingerprint"
	"strategos/internal/app/generative"
	"strategos/internal/app/plancache"
	"strategos/internal/app/ports"
	"strategos/internal/app/replay"
	"strategos/internal/app/validate"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	archive := buildArchiveFromEnv()
	kpiRecorder := metricsinmem.NewRecorder()

	planner := classical.New(classical.Config{
		NodeBudget:   intEnv("PLANNER_NODE_BUDGET", 0),
		MaxPlanSteps: intEnv("PLANNER_MAX_PLAN_STEPS", 0),
	})
	validator := validate.New(validate.Config{
		MaxPlanSteps: intEnv("PLANNER_MAX_PLAN_STEPS", 0),
	})
	quantizer := fingerprint.New(fingerprint.Config{
		PosBucket: intEnv("FINGERPRINT_POS_BUCKET", 0),
	})
	cache := plancache.New(plancache.Config{
		Capacity: intEnv("PLAN_CACHE_CAPACITY", 0),
		TTLTicks: int64(intEnv("PLAN_CACHE_TTL_TICKS", 0)),
		MaxHits:  intEnv("PLAN_CACHE_MAX_HITS", 0),
	})

	arb := arbiter.New(
		arbiter.Config{RequestCooldownTicks: int64(intEnv("GEN_REQUEST_COOLDOWN_TICKS", 0))},
		planner,
		validator,
		quantizer,
		cache,
		buildGenerativeFromEnv(kpiRecorder),
		archive,
		kpiRecorder,
	)

	h := httpadapter.Handler{
		Arbiter:  arb,
		ReplayUC: replay.New(replay.Config{HistoryLimit: intEnv("REPLAY_HISTORY_LIMIT", 0)}, archive),
		KPI:      kpiRecorder,
	}

	addr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if addr == "" {
		addr = ":8080"
	}
	s := server.Default(server.WithHostPorts(addr))
	h.RegisterRoutes(s)

	log.Printf("strategos server listening on %s", addr)
	s.Spin()
}

func buildArchiveFromEnv() ports.PlanArchiveRepository {
	dsn := strings.TrimSpace(os.Getenv("STRATEGOS_DB_DSN"))
	if dsn == "" {
		log.Println("STRATEGOS_DB_DSN not set; using in-memory plan archive")
		return memrepo.NewPlanArchiveRepo()
	}
	db, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if dir := strings.TrimSpace(os.Getenv("STRATEGOS_MIGRATIONS_DIR")); dir != "" {
		if err := gormrepo.ApplyMigrations(context.Background(), db, dir); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
	}
	return gormrepo.NewPlanArchiveRepo(db)
}

// buildGenerativeFromEnv wires the generative tier when a backend is
// configured; without one the arbiter runs classical-only, which is a fully
// supported deployment.
func buildGenerativeFromEnv(metrics ports.PlannerMetrics) *generative.Adapter {
	cfg := generative.Config{
		Workers:  intEnv("GEN_WORKERS", 0),
		Deadline: time.Duration(intEnv("GEN_DEADLINE_MS", 0)) * time.Millisecond,
		Breaker: generative.BreakerConfig{
			FailureThreshold: intEnv("BREAKER_FAILURE_THRESHOLD", 0),
			Cooldown:         time.Duration(intEnv("BREAKER_COOLDOWN_MS", 0)) * time.Millisecond,
		},
	}

	switch strings.TrimSpace(os.Getenv("LLM_BACKEND")) {
	case "openai":
		baseURL := strings.TrimSpace(os.Getenv("LLM_BASE_URL"))
		model := strings.TrimSpace(os.Getenv("LLM_MODEL"))
		if baseURL == "" || model == "" {
			log.Fatal("LLM_BACKEND=openai requires LLM_BASE_URL and LLM_MODEL")
		}
		backend := openaibackend.New(openaibackend.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("LLM_API_KEY"),
			Model:   model,
		})
		return generative.New(cfg, backend, metrics)
	case "mock":
		return generative.New(cfg, mockbackend.New(), metrics)
	case "":
		log.Println("LLM_BACKEND not set; generative tier disabled")
		return nil
	default:
		log.Fatalf("unknown LLM_BACKEND %q", os.Getenv("LLM_BACKEND"))
		return nil
	}
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
