package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/pkg/email"
)

func main() {
	godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config failed:", err)
	}

	if cfg.App.StoreEmail == "" {
		log.Fatal("STORE_EMAIL is not set")
	}

	emailService := email.NewEmailService(cfg)

	// Send test email to the store contact address
	ctx := context.Background()
	testEmail := &email.Email{
		To:          []string{cfg.App.StoreEmail},
		Subject:     "SMTP check from POS backend",
		HTMLContent: "<h1>Success!</h1><p>SMTP is configured correctly.</p>",
		Type:        "test",
	}

	if err := emailService.SendEmail(ctx, testEmail); err != nil {
		log.Fatal("Send failed:", err)
	}

	log.Println("✅ Email sent successfully!")
}
