// Seeds the sample inventory dataset into MongoDB and mirrors every
// record into a Redis hash with its embedding, so the service can run
// locally end to end.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	database "github.com/BHUWON12/ztraveler/app/db"
	"github.com/BHUWON12/ztraveler/app/rdb"
	"github.com/BHUWON12/ztraveler/config"
	"github.com/BHUWON12/ztraveler/internal/api/inventory"
)

type seedRecord struct {
	collection string
	keyPrefix  string
	id         string
	fields     map[string]interface{}
	embedText  string
}

func sampleData() []seedRecord {
	records := []seedRecord{
		// Hotels
		{"hotels", rdb.PfxHotel, "H-RUH-001", map[string]interface{}{
			"hotelName": "Al Faisaliah Grand", "cityName": "Riyadh", "price": 540.0, "rating": 4.8,
			"description": "Luxury tower hotel near Kingdom Centre with skyline views",
		}, "Al Faisaliah Grand luxury hotel in Riyadh"},
		{"hotels", rdb.PfxHotel, "H-RUH-002", map[string]interface{}{
			"hotelName": "Olaya Suites", "cityName": "Riyadh", "price": 210.0, "rating": 4.1,
			"description": "Mid-range suites in the Olaya business district",
		}, "Olaya Suites affordable hotel in Riyadh"},
		{"hotels", rdb.PfxHotel, "H-JED-001", map[string]interface{}{
			"hotelName": "Red Sea Palace", "cityName": "Jeddah", "price": 380.0, "rating": 4.6,
			"description": "Corniche waterfront hotel close to Al-Balad",
		}, "Red Sea Palace waterfront hotel in Jeddah"},
		{"hotels", rdb.PfxHotel, "H-JED-002", map[string]interface{}{
			"hotelName": "Balad Inn", "cityName": "Jeddah", "price": 150.0, "rating": 3.9,
			"description": "Budget stay beside the historic district",
		}, "Balad Inn budget hotel in Jeddah"},

		// Attractions
		{"attractions", rdb.PfxAttr, "A-RUH-001", map[string]interface{}{
			"name": "Masmak Fortress", "cityName": "Riyadh", "category": "history", "entry_fee": 0.0, "rating": 4.7,
			"description": "Clay and mudbrick fort at the heart of old Riyadh",
		}, "Masmak Fortress historic fort in Riyadh"},
		{"attractions", rdb.PfxAttr, "A-RUH-002", map[string]interface{}{
			"name": "Edge of the World", "cityName": "Riyadh", "category": "nature", "entry_fee": 120.0, "rating": 4.9,
			"description": "Dramatic cliff escarpment northwest of the city",
		}, "Edge of the World cliffs nature hike near Riyadh"},
		{"attractions", rdb.PfxAttr, "A-RUH-003", map[string]interface{}{
			"name": "National Museum", "cityName": "Riyadh", "category": "culture", "entry_fee": 25.0, "rating": 4.5,
			"description": "Flagship museum covering Arabian history and culture",
		}, "National Museum of Saudi Arabia culture in Riyadh"},
		{"attractions", rdb.PfxAttr, "A-JED-001", map[string]interface{}{
			"name": "Al-Balad Historic District", "cityName": "Jeddah", "category": "history", "entry_fee": 0.0, "rating": 4.8,
			"description": "UNESCO-listed old town with coral houses",
		}, "Al-Balad historic district old town Jeddah"},
		{"attractions", rdb.PfxAttr, "A-JED-002", map[string]interface{}{
			"name": "King Fahd Fountain", "cityName": "Jeddah", "category": "landmark", "entry_fee": 0.0, "rating": 4.6,
			"description": "Tallest fountain in the world on the Jeddah corniche",
		}, "King Fahd Fountain landmark Jeddah corniche"},
		{"attractions", rdb.PfxAttr, "A-JED-003", map[string]interface{}{
			"name": "Fakieh Aquarium", "cityName": "Jeddah", "category": "family", "entry_fee": 65.0, "rating": 4.2,
			"description": "Red Sea marine life aquarium with dolphin shows",
		}, "Fakieh Aquarium family attraction Jeddah"},

		// Events
		{"events", rdb.PfxEvent, "E-RUH-001", map[string]interface{}{
			"name": "Riyadh Season Concerts", "cityName": "Riyadh", "type": "music", "price": 150.0,
			"date": "2025-01-02", "description": "Open-air concert series in Boulevard City",
		}, "Riyadh Season concerts music festival"},
		{"events", rdb.PfxEvent, "E-JED-001", map[string]interface{}{
			"name": "Jeddah Art Week", "cityName": "Jeddah", "type": "art", "price": 40.0,
			"date": "2025-01-02", "description": "Gallery exhibitions across the old town",
		}, "Jeddah Art Week exhibitions"},

		// Flights
		{"flights", rdb.PfxFlight, "F-001", map[string]interface{}{
			"airline": "Saudia", "origin": "Riyadh", "destination": "Jeddah",
			"price": 420.0, "duration_minutes": 105,
		}, "Saudia flight from Riyadh to Jeddah"},
		{"flights", rdb.PfxFlight, "F-002", map[string]interface{}{
			"airline": "flynas", "origin": "Riyadh", "destination": "Jeddah",
			"price": 310.0, "duration_minutes": 110,
		}, "flynas flight from Riyadh to Jeddah"},
		{"flights", rdb.PfxFlight, "F-003", map[string]interface{}{
			"airline": "Saudia", "origin": "Jeddah", "destination": "Riyadh",
			"price": 395.0, "duration_minutes": 100,
		}, "Saudia flight from Jeddah to Riyadh"},
		{"flights", rdb.PfxFlight, "F-004", map[string]interface{}{
			"airline": "flyadeal", "origin": "Riyadh", "destination": "Dammam",
			"price": 220.0, "duration_minutes": 70,
		}, "flyadeal flight from Riyadh to Dammam"},

		// Transports
		{"transports", rdb.PfxTransport, "T-RUH-001", map[string]interface{}{
			"mode": "car", "provider": "Careem", "cityName": "Riyadh", "price": 35.0,
			"description": "Ride hailing across Riyadh",
		}, "Careem ride hailing transport Riyadh"},
		{"transports", rdb.PfxTransport, "T-RUH-002", map[string]interface{}{
			"mode": "metro", "provider": "Riyadh Metro", "cityName": "Riyadh", "price": 4.0,
			"description": "Metro network covering the main districts",
		}, "Riyadh Metro public transport"},
		{"transports", rdb.PfxTransport, "T-JED-001", map[string]interface{}{
			"mode": "car", "provider": "Uber", "cityName": "Jeddah", "price": 30.0,
			"description": "Ride hailing across Jeddah",
		}, "Uber ride hailing transport Jeddah"},
	}
	return records
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	mongoDB, err := database.Init(ctx, &cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer database.Close(ctx, mongoDB, logger)

	redisClient, err := rdb.Init(ctx, &cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	if err := rdb.EnsureIndexes(ctx, redisClient, logger); err != nil {
		log.Fatalf("Failed to create search indexes: %v", err)
	}

	for _, rec := range sampleData() {
		doc := bson.M{"id": rec.id}
		for k, v := range rec.fields {
			doc[k] = v
		}
		_, err := mongoDB.Collection(rec.collection).ReplaceOne(ctx,
			bson.M{"id": rec.id}, doc, options.Replace().SetUpsert(true))
		if err != nil {
			log.Fatalf("Failed to upsert %s/%s: %v", rec.collection, rec.id, err)
		}

		hashFields := map[string]interface{}{
			"id":               rec.id,
			rdb.EmbeddingField: string(inventory.VectorBlob(inventory.Embed(rec.embedText))),
		}
		for k, v := range rec.fields {
			hashFields[k] = fmt.Sprintf("%v", v)
		}
		if err := redisClient.HSet(ctx, rec.keyPrefix+rec.id, hashFields).Err(); err != nil {
			log.Fatalf("Failed to write redis hash for %s: %v", rec.id, err)
		}
	}

	logger.Info("Seed complete", slog.Int("records", len(sampleData())))
}
