package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"gorm.io/gorm"

	"mercadolens/business/collector"
	"mercadolens/domain"
	psqlRepo "mercadolens/internal/repository/postgres"
	"mercadolens/pkg/config"
	"mercadolens/pkg/database"
	"mercadolens/pkg/logger"
)

// Seeds a market with synthetic browse/list/purchase journeys so the
// engines have demo data to chew on. Weekday evenings are skewed
// heavier so peak-hour buckets show up in the behavior profile.
func main() {
	marketID := flag.Uint64("market", 1, "market id to seed")
	users := flag.Int("users", 50, "number of synthetic users")
	days := flag.Int("days", 45, "event history span in days")
	products := flag.Int("products", 40, "number of catalog products to seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	fake := faker.New()
	ctx := context.Background()

	catalog, err := seedCatalog(ctx, db, fake, *marketID, *products)
	if err != nil {
		logger.Fatal("Failed to seed catalog", "error", err)
	}
	logger.Info("Catalog seeded", "market_id", *marketID, "products", len(catalog))

	eventRepo := psqlRepo.NewEventRepository(db)
	collectorService := collector.NewCollectorService(eventRepo)

	events := buildEvents(fake, *marketID, *users, *days, catalog)
	if err := collectorService.RecordBatch(ctx, events); err != nil {
		logger.Warn("Some events were dropped", "error", err)
	}

	now := time.Now().UTC()
	stored, err := eventRepo.CountByMarket(ctx, *marketID, now.AddDate(0, 0, -*days-1), now.Add(time.Hour))
	if err != nil {
		logger.Warn("Failed to count stored events", "error", err)
	}

	logger.Info("Seeding complete", "market_id", *marketID, "generated", len(events), "stored", stored, "users", *users)
}

func seedCatalog(ctx context.Context, db *gorm.DB, fake faker.Faker, marketID uint64, count int) ([]domain.CatalogProduct, error) {
	products := make([]domain.CatalogProduct, 0, count)
	for i := 0; i < count; i++ {
		reorder := float64(fake.IntBetween(10, 60))
		products = append(products, domain.CatalogProduct{
			MarketID:     marketID,
			CategoryID:   uint64(fake.IntBetween(1, 8)),
			ProductName:  fake.Food().Fruit(),
			IsActive:     true,
			CurrentStock: reorder * fake.Float64(2, 50, 400) / 100,
			ReorderPoint: reorder,
			UnitPrice:    fake.Float64(2, 200, 5000) / 100,
			OnPromotion:  fake.IntBetween(0, 9) == 0,
		})
	}

	if err := db.WithContext(ctx).CreateInBatches(&products, 100).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func buildEvents(fake faker.Faker, marketID uint64, users, days int, catalog []domain.CatalogProduct) []domain.Event {
	events := make([]domain.Event, 0, users*days)
	now := time.Now().UTC()

	for u := 1; u <= users; u++ {
		actorID := uint64(u)
		sessions := fake.IntBetween(days/4, days)

		for s := 0; s < sessions; s++ {
			ts := sessionTime(fake, now, days)
			events = append(events, event(actorID, marketID, ts, domain.AccessTimePayload{
				Platform: pick(fake, "web", "android", "ios"),
			}))

			// browse
			views := fake.IntBetween(0, 5)
			for v := 0; v < views; v++ {
				p := catalog[rand.Intn(len(catalog))]
				ts = ts.Add(time.Duration(fake.IntBetween(30, 300)) * time.Second)
				events = append(events, event(actorID, marketID, ts, domain.ProductViewedPayload{
					ProductID:  p.ID,
					CategoryID: p.CategoryID,
				}))
			}

			if fake.IntBetween(0, 2) == 0 {
				ts = ts.Add(time.Minute)
				events = append(events, event(actorID, marketID, ts, domain.SearchPayload{
					Query: fake.Food().Vegetable(),
				}))
			}

			// roughly a third of sessions build a list, most of those buy
			if fake.IntBetween(0, 2) == 0 {
				listID := fake.UUID().V4()
				ts = ts.Add(time.Minute)
				events = append(events, event(actorID, marketID, ts, domain.ListCreatedPayload{ListID: listID}))

				items := fake.IntBetween(1, 8)
				for i := 0; i < items; i++ {
					p := catalog[rand.Intn(len(catalog))]
					ts = ts.Add(time.Duration(fake.IntBetween(10, 120)) * time.Second)
					events = append(events, event(actorID, marketID, ts, domain.ItemAddedPayload{
						ListID:     listID,
						ProductID:  p.ID,
						CategoryID: p.CategoryID,
						Quantity:   float64(fake.IntBetween(1, 4)),
					}))
				}

				if fake.IntBetween(0, 3) > 0 {
					p := catalog[rand.Intn(len(catalog))]
					ts = ts.Add(time.Duration(fake.IntBetween(5, 60)) * time.Minute)
					events = append(events, event(actorID, marketID, ts, domain.PurchasePayload{
						ProductID:  p.ID,
						CategoryID: p.CategoryID,
						Quantity:   float64(fake.IntBetween(1, 5)),
						Price:      p.UnitPrice,
						ListID:     listID,
					}))
				}
			}
		}
	}

	return events
}

// sessionTime biases toward weekday evenings.
func sessionTime(fake faker.Faker, now time.Time, days int) time.Time {
	day := fake.IntBetween(1, days)
	hour := fake.IntBetween(8, 22)
	if fake.IntBetween(0, 1) == 0 {
		hour = fake.IntBetween(17, 21)
	}
	minute := fake.IntBetween(0, 59)

	ts := now.AddDate(0, 0, -day)
	return time.Date(ts.Year(), ts.Month(), ts.Day(), hour, minute, 0, 0, time.UTC)
}

func event(actorID, marketID uint64, ts time.Time, payload domain.EventPayload) domain.Event {
	return domain.Event{
		ActorID:   actorID,
		MarketID:  marketID,
		Type:      payload.EventType(),
		Timestamp: ts,
		Metadata:  payload.Metadata(),
	}
}

func pick(fake faker.Faker, options ...string) string {
	return options[fake.IntBetween(0, len(options)-1)]
}
