package behavior

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mercadolens/domain"
	"mercadolens/pkg/logger"
)

// EventRepository contract interface (read-only slice of the log)
type EventRepository interface {
	QueryByActor(ctx context.Context, actorID, marketID uint64, from, to time.Time) ([]domain.Event, error)
	QueryByMarket(ctx context.Context, marketID uint64, from, to time.Time, eventType *domain.EventType) ([]domain.Event, error)
}

const (
	DefaultLookbackDays   = 30
	DefaultLookbackMonths = 6

	maxPeakHours = 10

	intentBase           = 50.0
	intentRecentListDays = 7
)

type BehaviorService struct {
	eventRepo EventRepository
	now       func() time.Time
}

func NewBehaviorService(eventRepo EventRepository) *BehaviorService {
	return &BehaviorService{
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

// AnalyzeUserBehavior derives a fresh profile from the actor's event
// slice. Sparse data is a valid low-confidence input, never an error.
func (s *BehaviorService) AnalyzeUserBehavior(ctx context.Context, actorID, marketID uint64, lookbackDays int) (domain.AnalysisResult[domain.BehaviorProfile], error) {
	var zero domain.AnalysisResult[domain.BehaviorProfile]

	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("context error: %w", err)
	}

	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -lookbackDays)

	events, err := s.eventRepo.QueryByActor(ctx, actorID, marketID, from, to)
	if err != nil {
		logger.Error("failed to load actor events", "actor_id", actorID, "error", err)
		return zero, fmt.Errorf("load actor events: %w", err)
	}

	profile := domain.BehaviorProfile{
		ActorID:          actorID,
		MarketID:         marketID,
		PeakHours:        peakHours(events),
		CategoryAffinity: categoryAffinity(events),
		FrequentProducts: frequentProducts(events),
		Cadence:          purchaseCadence(events),
		EventCount:       len(events),
	}
	profile.Intent = purchaseIntent(events, to)

	confidence := float64(len(events)) * 5
	if confidence > 100 {
		confidence = 100
	}

	explanation := fmt.Sprintf(
		"Profile derived from %d events over the last %d days: %d peak activity buckets, %d category affinities, %d frequently purchased products, purchase intent %.0f/100.",
		len(events), lookbackDays, len(profile.PeakHours), len(profile.CategoryAffinity), len(profile.FrequentProducts), profile.Intent.Score,
	)

	factors := []string{
		fmt.Sprintf("%d events in the %d-day window", len(events), lookbackDays),
	}
	factors = append(factors, profile.Intent.ContributingFactors...)
	if len(events) == 0 {
		factors = append(factors, "no activity recorded for this user in the window")
	}

	return domain.NewAnalysisResult(profile, explanation, confidence, factors), nil
}

func peakHours(events []domain.Event) []domain.PeakHour {
	type bucket struct {
		weekday time.Weekday
		hour    int
	}

	counts := make(map[bucket]int)
	for _, ev := range events {
		ts := ev.Timestamp
		counts[bucket{ts.Weekday(), ts.Hour()}]++
	}

	peaks := make([]domain.PeakHour, 0, len(counts))
	for b, n := range counts {
		peaks = append(peaks, domain.PeakHour{Weekday: b.weekday, Hour: b.hour, Frequency: n})
	}

	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].Frequency != peaks[j].Frequency {
			return peaks[i].Frequency > peaks[j].Frequency
		}
		if peaks[i].Weekday != peaks[j].Weekday {
			return peaks[i].Weekday < peaks[j].Weekday
		}
		return peaks[i].Hour < peaks[j].Hour
	})

	if len(peaks) > maxPeakHours {
		peaks = peaks[:maxPeakHours]
	}
	return peaks
}

func categoryAffinity(events []domain.Event) []domain.CategoryAffinity {
	type entry struct {
		frequency int
		lastSeen  time.Time
	}

	byCategory := make(map[uint64]*entry)
	for _, ev := range events {
		categoryID, ok := ev.MetaUint64("category_id")
		if !ok || categoryID == 0 {
			continue
		}
		e, ok := byCategory[categoryID]
		if !ok {
			e = &entry{}
			byCategory[categoryID] = e
		}
		e.frequency++
		if ev.Timestamp.After(e.lastSeen) {
			e.lastSeen = ev.Timestamp
		}
	}

	affinities := make([]domain.CategoryAffinity, 0, len(byCategory))
	for id, e := range byCategory {
		affinities = append(affinities, domain.CategoryAffinity{
			CategoryID: id,
			Frequency:  e.frequency,
			LastSeen:   e.lastSeen,
		})
	}

	sort.Slice(affinities, func(i, j int) bool {
		if affinities[i].Frequency != affinities[j].Frequency {
			return affinities[i].Frequency > affinities[j].Frequency
		}
		return affinities[i].CategoryID < affinities[j].CategoryID
	})

	return affinities
}

func frequentProducts(events []domain.Event) []domain.FrequentProduct {
	type entry struct {
		frequency    int
		lastPurchase time.Time
	}

	byProduct := make(map[uint64]*entry)
	for _, ev := range events {
		if ev.Type != domain.EventPurchaseCompleted {
			continue
		}
		productID, ok := ev.MetaUint64("product_id")
		if !ok || productID == 0 {
			continue
		}
		e, ok := byProduct[productID]
		if !ok {
			e = &entry{}
			byProduct[productID] = e
		}
		e.frequency++
		if ev.Timestamp.After(e.lastPurchase) {
			e.lastPurchase = ev.Timestamp
		}
	}

	products := make([]domain.FrequentProduct, 0, len(byProduct))
	for id, e := range byProduct {
		products = append(products, domain.FrequentProduct{
			ProductID:    id,
			Frequency:    e.frequency,
			LastPurchase: e.lastPurchase,
		})
	}

	sort.Slice(products, func(i, j int) bool {
		if products[i].Frequency != products[j].Frequency {
			return products[i].Frequency > products[j].Frequency
		}
		return products[i].ProductID < products[j].ProductID
	})

	return products
}

// purchaseCadence needs at least two purchases; below that every field
// stays zero.
func purchaseCadence(events []domain.Event) domain.PurchaseCadence {
	purchases := make([]domain.Event, 0)
	for _, ev := range events {
		if ev.Type == domain.EventPurchaseCompleted {
			purchases = append(purchases, ev)
		}
	}

	if len(purchases) < 2 {
		return domain.PurchaseCadence{}
	}

	var gapDays, totalValue, totalItems float64
	for i := 1; i < len(purchases); i++ {
		gapDays += purchases[i].Timestamp.Sub(purchases[i-1].Timestamp).Hours() / 24
	}
	for _, p := range purchases {
		if price, ok := p.MetaFloat("price"); ok {
			totalValue += price
		}
		if qty, ok := p.MetaFloat("quantity"); ok {
			totalItems += qty
		}
	}

	n := float64(len(purchases))
	return domain.PurchaseCadence{
		AvgDaysBetween: gapDays / (n - 1),
		AvgOrderValue:  totalValue / n,
		AvgItemCount:   totalItems / n,
	}
}

func purchaseIntent(events []domain.Event, now time.Time) domain.PurchaseIntent {
	score := intentBase
	factors := []string{}

	var itemsAdded, searches, views int
	recentListCutoff := now.AddDate(0, 0, -intentRecentListDays)
	listCreatedRecently := false

	for _, ev := range events {
		switch ev.Type {
		case domain.EventListCreated:
			if ev.Timestamp.After(recentListCutoff) {
				listCreatedRecently = true
			}
		case domain.EventItemAddedToList:
			itemsAdded++
		case domain.EventProductSearched:
			searches++
		case domain.EventProductViewed:
			views++
		}
	}

	if listCreatedRecently {
		score += 20
		factors = append(factors, "shopping list created in the last 7 days")
	}
	if itemsAdded > 5 {
		score += 15
		factors = append(factors, fmt.Sprintf("%d items added to lists in the window", itemsAdded))
	}
	if searches > 3 {
		score += 10
		factors = append(factors, fmt.Sprintf("%d product searches in the window", searches))
	}
	if views > 10 {
		score += 5
		factors = append(factors, fmt.Sprintf("%d product views in the window", views))
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	confidence := float64(len(events)) * 5
	if confidence > 100 {
		confidence = 100
	}

	return domain.PurchaseIntent{
		Score:               score,
		ContributingFactors: factors,
		Confidence:          confidence,
	}
}
