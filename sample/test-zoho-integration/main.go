package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/config"
	"github.com/xavierca1/agency-leads/internal/entity"
	"github.com/xavierca1/agency-leads/internal/infra/integration/zoho"
	"github.com/xavierca1/agency-leads/internal/scoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.ZohoConfigured() {
		log.Fatal("ZOHO_CLIENT_ID, ZOHO_CLIENT_SECRET and ZOHO_REFRESH_TOKEN must be set (.env or environment)")
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := zoho.NewClient(zoho.Config{
		ClientID:     cfg.Zoho.ClientID,
		ClientSecret: cfg.Zoho.ClientSecret,
		RefreshToken: cfg.Zoho.RefreshToken,
		AccountsURL:  cfg.Zoho.AccountsURL,
		APIURL:       cfg.Zoho.APIURL,
		DedupField:   cfg.Zoho.DedupField,
		Timeout:      cfg.Zoho.Timeout,
	}, logger)

	lead := entity.NewLead("Test Lead Smoke", "smoke.test@example.com", "+919800000000", "Zoho smoke test, safe to delete")
	lead.Source = entity.SourceBusinessWebsite
	lead.Budget = "50000-100000"
	lead.Campaign = "smoke-test"

	result := scoring.Score(scoring.Input{
		Name: lead.Name, Email: lead.Email, Phone: lead.Phone,
		Message: lead.Message, Budget: lead.Budget, Source: lead.Source,
	})
	lead.LeadScore = result.Score
	lead.QualificationLevel = result.Qualification
	lead.Priority = result.Priority
	lead.ConversionValue = result.ConversionValue

	fmt.Println("Creating lead in Zoho...")
	fmt.Printf("   Local ID: %s\n", lead.ID)
	fmt.Printf("   Name:     %s\n", lead.Name)
	fmt.Printf("   Email:    %s\n", lead.Email)
	fmt.Printf("   Score:    %d (%s / %s)\n\n", lead.LeadScore, lead.QualificationLevel, lead.Priority)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	zohoID, err := client.CreateLead(ctx, lead)
	if err != nil {
		log.Fatalf("zoho create lead failed: %v", err)
	}

	fmt.Println("Lead created in Zoho")
	fmt.Printf("   Zoho ID: %s\n", zohoID)
	fmt.Printf("   Running it again with the same local ID updates the same record (%s).\n", cfg.Zoho.DedupField)
}
