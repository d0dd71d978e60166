package main

import (
	"crypto/md5"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"github.com/seatrace/backend/internal/db"
	"github.com/seatrace/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	db.Connect()

	log.Println("Running database migrations...")
	db.AutoMigrate()

	log.Println("Seeding database with sample data...")
	if err := seed(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}

func newsHash(title, url, details string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(title+url+details)))
}

func floatPtr(v float64) *float64 { return &v }

func seed() error {
	conn := db.GetDB()
	now := time.Now()

	user := models.User{
		Email:     "demo@seatrace.io",
		FirstName: "Demo",
		LastName:  "Client",
		Company:   "Acme Freight",
		Role:      models.RoleClient,
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	if err := conn.FirstOrCreate(&user, models.User{Email: user.Email}).Error; err != nil {
		return err
	}

	ports := []models.Port{
		{PortCode: "SGSIN", PortName: "Singapore", Latitude: floatPtr(1.2644), Longitude: floatPtr(103.8400)},
		{PortCode: "CNTAO", PortName: "Qingdao", Latitude: floatPtr(36.0671), Longitude: floatPtr(120.3826)},
		{PortCode: "USLAX", PortName: "Los Angeles", Latitude: floatPtr(33.7406), Longitude: floatPtr(-118.2712)},
		{PortCode: "DEHAM", PortName: "Hamburg", Latitude: floatPtr(53.5461), Longitude: floatPtr(9.9661)},
		{PortCode: "JPTYO", PortName: "Tokyo", Latitude: floatPtr(35.6551), Longitude: floatPtr(139.7595)},
	}
	for i := range ports {
		if err := conn.FirstOrCreate(&ports[i], models.Port{PortCode: ports[i].PortCode}).Error; err != nil {
			return err
		}
	}

	newsItems := []models.News{
		{
			Title:         "Port Congestion in Singapore",
			URL:           "https://example.com/singapore-congestion",
			Details:       "Heavy congestion reported at Singapore port",
			PublishedDate: now,
			Location:      "Singapore",
		},
		{
			Title:         "Storm Warning in Pacific Ocean",
			URL:           "https://example.com/pacific-storm",
			Details:       "Severe storm warning issued for Pacific shipping routes",
			PublishedDate: now,
			Location:      "Pacific Ocean",
		},
		{
			Title:         "Labor Strike in Los Angeles",
			URL:           "https://example.com/la-strike",
			Details:       "Port workers on strike in Los Angeles",
			PublishedDate: now,
			Location:      "Los Angeles",
		},
	}
	for i := range newsItems {
		newsItems[i].NewsHash = newsHash(newsItems[i].Title, newsItems[i].URL, newsItems[i].Details)
		if err := conn.FirstOrCreate(&newsItems[i], models.News{NewsHash: newsItems[i].NewsHash}).Error; err != nil {
			return err
		}
	}

	incidents := []models.Incident{
		{
			SourceNewsID:          newsItems[0].ID,
			LocationType:          models.LocationPort,
			AffectedPorts:         pq.StringArray{"SGSIN"},
			StartTime:             now,
			EstimatedDurationDays: 3,
			Severity:              7,
			Status:                models.IncidentOngoing,
		},
		{
			SourceNewsID:          newsItems[1].ID,
			LocationType:          models.LocationSea,
			Latitude:              floatPtr(25.7617),
			Longitude:             floatPtr(-80.1918),
			StartTime:             now,
			EstimatedDurationDays: 5,
			Severity:              8,
			Status:                models.IncidentOngoing,
		},
		{
			SourceNewsID:          newsItems[2].ID,
			LocationType:          models.LocationPort,
			AffectedPorts:         pq.StringArray{"USLAX"},
			StartTime:             now,
			EstimatedDurationDays: 2,
			Severity:              5,
			Status:                models.IncidentOngoing,
		},
	}
	for i := range incidents {
		if err := conn.FirstOrCreate(&incidents[i], models.Incident{SourceNewsID: incidents[i].SourceNewsID}).Error; err != nil {
			return err
		}
	}

	vessels := []models.VesselTracking{
		{
			VesselName: "Cargo Ship Alpha",
			VesselCode: "CSA-001",
			Latitude:   25.7617,
			Longitude:  -80.1918,
			Status:     models.VesselInTransit,
			Events: models.PortCallList{
				{PortCode: "SGSIN", ExpectedArrival: now.AddDate(0, 0, 10)},
				{PortCode: "JPTYO", ExpectedArrival: now.AddDate(0, 0, 20)},
			},
		},
		{
			VesselName: "Container Ship Gamma",
			VesselCode: "CSG-003",
			Latitude:   34.0001,
			Longitude:  -119.0001,
			Status:     models.VesselInTransit,
			Events: models.PortCallList{
				{PortCode: "USLAX", ExpectedArrival: now.AddDate(0, 0, 4)},
			},
		},
	}
	for i := range vessels {
		if err := conn.FirstOrCreate(&vessels[i], models.VesselTracking{VesselCode: vessels[i].VesselCode}).Error; err != nil {
			return err
		}
	}

	shipments := []models.Shipment{
		{
			Reference:       "ST-2025-0001",
			ClientID:        user.ID,
			TrackingID:      vessels[0].ID,
			OriginPort:      "CNTAO",
			DestinationPort: "SGSIN",
			Status:          models.ShipmentInTransit,
		},
		{
			Reference:       "ST-2025-0002",
			ClientID:        user.ID,
			TrackingID:      vessels[1].ID,
			OriginPort:      "DEHAM",
			DestinationPort: "USLAX",
			Status:          models.ShipmentInTransit,
		},
	}
	for i := range shipments {
		if err := conn.FirstOrCreate(&shipments[i], models.Shipment{Reference: shipments[i].Reference}).Error; err != nil {
			return err
		}
	}

	return nil
}
