// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/unclebandit/zapleopard-backend/internal/ai"
	"github.com/unclebandit/zapleopard-backend/internal/channel"
	"github.com/unclebandit/zapleopard-backend/internal/controller"
	"github.com/unclebandit/zapleopard-backend/internal/db"
	"github.com/unclebandit/zapleopard-backend/internal/events"
	"github.com/unclebandit/zapleopard-backend/internal/queue"
	"github.com/unclebandit/zapleopard-backend/internal/repository"
	"github.com/unclebandit/zapleopard-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	senderRepo := &repository.SenderRepository{DB: db.DB}
	recipientRepo := &repository.RecipientRepository{DB: db.DB}
	contactRepo := &repository.ContactRepository{DB: db.DB}

	var q queue.Queue
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		conn, err := amqp.Dial(amqpURL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ:", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			log.Fatal("Failed to open a channel:", err)
		}
		q = queue.NewAMQPQueue(ch)
		log.Println("📬 Runs and replies handled by the worker via RabbitMQ")
	} else {
		// Single-binary dev mode: runs execute in-process against the
		// mock channel client.
		log.Println("⚠️ No AMQP_URL set, running campaigns in-process")
		inmem := queue.NewInMemoryQueue()
		bus := &events.MemoryBus{}
		assistant := ai.Disabled{}
		client := &channel.MockClient{}

		delivery := service.NewDeliveryAdapter(recipientRepo, senderRepo, client, assistant, bus)
		engine := service.NewCampaignEngine(campaignRepo, senderRepo, recipientRepo, contactRepo, delivery, bus)
		reconciler := service.NewResponseReconciler(campaignRepo, recipientRepo, assistant, bus)

		queue.StartCampaignRunSubscriber(inmem, engine)
		queue.StartInboundReplySubscriber(inmem, reconciler)
		q = inmem
	}

	campaignController := &controller.CampaignController{
		CampaignRepo:  campaignRepo,
		ContactRepo:   contactRepo,
		RecipientRepo: recipientRepo,
		Queue:         q,
	}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)
	r.Post("/campaigns/{id}/start", campaignController.StartCampaign)
	r.Post("/campaigns/{id}/pause", campaignController.PauseCampaign)
	r.Post("/campaigns/{id}/resume", campaignController.ResumeCampaign)
	r.Post("/campaigns/{id}/personalized-preview", campaignController.PersonalizedPreview)

	// Inbound replies
	r.Post("/webhooks/inbound", campaignController.InboundWebhook)

	log.Println("🚀 Server running on :8080")
	log.Fatal(http.ListenAndServe(":8080", r))
}
