package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"eventhub/internal/events"
	"eventhub/pkg/models"
)

const extractPrompt = `You extract nightlife event listings from scraped web page text.
Return a JSON array. Each element is an object with: name, date (YYYY-MM-DD), time,
price (number), description, platform (Dice, Eventbrite, Partiful, Posh or Other)
and venue when the page names one. Output the JSON array only.`

var categorizePrompt = `You sort New York City nightlife events into categories.
Allowed categories: ` + strings.Join(models.ContentCategoryNames(), ", ") + `.

- "` + models.CategoryQueer + `": LGBTQ+ events, drag, pride, queer-friendly venues
- "` + models.CategoryMusic + `": concerts, jazz, live bands, musical performances
- "` + models.CategoryDance + `": dance parties, DJ sets, club nights, electronic music
- "` + models.CategorySocial + `": trivia, networking, open mics, comedy, workshops
- "` + models.CategoryCulture + `": events celebrating Black, African, Caribbean and Latin culture, afrobeats, reggae, hip-hop

An event may appear under several categories. Answer with one JSON object whose keys
are category names and whose values are arrays of the full event objects. Output the
JSON object only.`

// Result is what categorize-events returns.
type Result struct {
	Categorized models.CategorizedEvents
	TopPopular  []models.Event
	AllEvents   []models.Event
}

// Pipeline runs extraction, categorization and demo synthesis. The
// random source is injectable so tests can pin synthesized values.
type Pipeline struct {
	AI Completer

	mu  sync.Mutex
	rng *rand.Rand
}

func NewPipeline(ai Completer, rng *rand.Rand) *Pipeline {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>32))
	}
	return &Pipeline{AI: ai, rng: rng}
}

// Extract asks the model for the events in scraped page text. An answer
// that is not a JSON array yields no events and no error.
func (p *Pipeline) Extract(ctx context.Context, content string) ([]models.Event, error) {
	answer, err := p.AI.Complete(ctx, extractPrompt, "Extract all events from this content:\n\n"+content)
	if err != nil {
		return nil, err
	}
	evs := ParseEvents([]byte(UnwrapFences(answer)))
	if evs == nil {
		log.Printf("[ai] extract: answer was not a JSON array (%d bytes)", len(answer))
		return []models.Event{}, nil
	}
	return evs, nil
}

// Categorize asks the model to bucket evs. Unknown category names are
// dropped; an unparsable answer is an empty categorization.
func (p *Pipeline) Categorize(ctx context.Context, evs []models.Event) (models.CategorizedEvents, error) {
	payload, err := json.MarshalIndent(evs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode events: %w", err)
	}
	answer, err := p.AI.Complete(ctx, categorizePrompt, "Categorize these events:\n\n"+string(payload))
	if err != nil {
		return nil, err
	}

	var buckets map[string]json.RawMessage
	if err := json.Unmarshal([]byte(UnwrapFences(answer)), &buckets); err != nil {
		log.Printf("[ai] categorize: answer was not a JSON object: %v", err)
		return models.CategorizedEvents{}, nil
	}

	out := make(models.CategorizedEvents)
	for name, raw := range buckets {
		name = strings.TrimSpace(name)
		if !models.IsCategoryName(name) || name == models.CategoryPopular {
			log.Printf("[ai] categorize: dropping unknown category %q", name)
			continue
		}
		out[name] = ParseEvents(raw)
	}
	return out, nil
}

// Synthesize fills what a listing page never says: missing or zero ids
// become the 1-based position, crowd 50..249, capacity 100..199 and enjoyment
// 3.0..5.0. Present values are kept. Demo data only.
func (p *Pipeline) Synthesize(evs []models.Event) []models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.Event, len(evs))
	for i, e := range evs {
		if e.ID == "" || e.ID == "0" {
			e.ID = models.ID(strconv.Itoa(i + 1))
		}
		if e.Crowd == 0 {
			e.Crowd = 50 + p.rng.IntN(200)
		}
		if e.Capacity == 0 {
			e.Capacity = 100 + p.rng.IntN(100)
		}
		if e.Enjoyment == 0 {
			e.Enjoyment = math.Round((3+p.rng.Float64()*2)*10) / 10
		}
		out[i] = e
	}
	return out
}

// Run is the whole categorize-events flow. scraped is only used when
// evs is empty.
func (p *Pipeline) Run(ctx context.Context, evs []models.Event, scraped string) (Result, error) {
	if len(evs) == 0 && strings.TrimSpace(scraped) != "" {
		extracted, err := p.Extract(ctx, scraped)
		switch {
		case errors.Is(err, ErrRateLimited), errors.Is(err, ErrPaymentRequired), errors.Is(err, ErrNotConfigured):
			return Result{}, err
		case err != nil:
			log.Printf("[ai] extract failed, continuing with no events: %v", err)
		}
		evs = extracted
	} else {
		evs = ValidateEvents(evs)
	}

	if len(evs) == 0 {
		return Result{Categorized: models.CategorizedEvents{}}, nil
	}

	cats, err := p.Categorize(ctx, evs)
	if err != nil {
		return Result{}, err
	}

	all := p.Synthesize(evs)
	cats, all = p.reconcile(cats, all)

	return Result{
		Categorized: cats,
		TopPopular:  events.TopPopular(all, models.TopPopularLimit),
		AllEvents:   all,
	}, nil
}

// reconcile swaps the model's copy of each event for the synthesized one
// so ids and numbers agree across buckets. Events the model invented are
// synthesized and appended to all.
func (p *Pipeline) reconcile(cats models.CategorizedEvents, all []models.Event) (models.CategorizedEvents, []models.Event) {
	byID := make(map[models.ID]int, len(all))
	byKey := make(map[string]int, len(all))
	for i, e := range all {
		byID[e.ID] = i
		byKey[matchKey(e)] = i
	}

	out := make(models.CategorizedEvents, len(cats))
	for name, evs := range cats {
		bucket := make([]models.Event, 0, len(evs))
		for _, e := range evs {
			i, ok := byKey[matchKey(e)]
			if !ok && e.ID != "" {
				i, ok = byID[e.ID]
			}
			if !ok {
				e.ID = ""
				fresh := p.Synthesize([]models.Event{e})[0]
				fresh.ID = models.ID(strconv.Itoa(len(all) + 1))
				i = len(all)
				all = append(all, fresh)
				byID[fresh.ID] = i
				byKey[matchKey(fresh)] = i
			}
			bucket = append(bucket, all[i])
		}
		out[name] = bucket
	}
	return out, all
}

func matchKey(e models.Event) string {
	return strings.ToLower(strings.TrimSpace(e.Name)) + "|" + strings.TrimSpace(e.Date)
}
