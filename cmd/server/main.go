package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"

	"github.com/leadowl/leadowl-backend/internal/controller"
	"github.com/leadowl/leadowl-backend/internal/db"
	"github.com/leadowl/leadowl-backend/internal/metrics"
	"github.com/leadowl/leadowl-backend/internal/provider"
	"github.com/leadowl/leadowl-backend/internal/queue"
	"github.com/leadowl/leadowl-backend/internal/quota"
	"github.com/leadowl/leadowl-backend/internal/repository"
	"github.com/leadowl/leadowl-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()
	metrics.InitWorkerMetrics()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	campaignLeadRepo := &repository.CampaignLeadRepository{DB: db.DB}
	leadRepo := &repository.LeadRepository{DB: db.DB}
	queueRepo := &repository.QueueRepository{DB: db.DB}
	accountRepo := &repository.AccountRepository{DB: db.DB}
	settingsRepo := &repository.SettingsRepository{DB: db.DB}

	ledger := buildLedger()
	dispatcher := provider.NewClient(os.Getenv("PROVIDER_BASE_URL"), os.Getenv("PROVIDER_API_KEY"))

	processor := &service.QueueProcessor{
		QueueRepo:        queueRepo,
		CampaignRepo:     campaignRepo,
		CampaignLeadRepo: campaignLeadRepo,
		LeadRepo:         leadRepo,
		AccountRepo:      accountRepo,
		SettingsRepo:     settingsRepo,
		Ledger:           ledger,
		Dispatcher:       dispatcher,
	}

	campaignService := &service.CampaignService{
		CampaignRepo:     campaignRepo,
		CampaignLeadRepo: campaignLeadRepo,
		LeadRepo:         leadRepo,
		QueueRepo:        queueRepo,
		SettingsRepo:     settingsRepo,
	}

	// With a broker configured, ticks go to RabbitMQ for cmd/worker to
	// consume; without one they are processed in-process.
	var ticks queue.Queue
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		conn, err := amqp.Dial(amqpURL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ:", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			log.Fatal("Failed to open a channel:", err)
		}
		publisher, err := queue.NewTickPublisher(ch)
		if err != nil {
			log.Fatal("Failed to declare tick queue:", err)
		}
		ticks = publisher
		log.Println("Publishing queue ticks to RabbitMQ")
	} else {
		mem := queue.NewInMemoryQueue()
		queue.StartTickSubscriber(mem, processor)
		ticks = mem
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
	}
	queueController := &controller.QueueController{
		Processor: processor,
		Ticks:     ticks,
	}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaignDetails)
	r.Post("/campaigns/{id}/personalized-preview", campaignController.PersonalizedPreview)
	r.Post("/campaigns/{id}/schedule", campaignController.ScheduleCampaign)

	// Queue routes
	r.Post("/queue/process", queueController.ProcessQueue)
	r.Post("/queue/tick", queueController.Tick)

	r.Handle("/metrics", promhttp.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Server running on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}

// buildLedger picks the quota backend: Postgres by default, Redis when
// QUOTA_BACKEND=redis.
func buildLedger() quota.Ledger {
	if os.Getenv("QUOTA_BACKEND") == "redis" {
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		log.Println("Using redis quota ledger at", addr)
		return quota.NewRedisLedger(redis.NewClient(&redis.Options{Addr: addr}))
	}
	return quota.NewPostgresLedger(db.DB)
}
