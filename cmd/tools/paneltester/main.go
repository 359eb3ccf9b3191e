// Command paneltester runs a full discussion pipeline offline: personas,
// discussion, summary and an optional question, all on heuristics with no
// server and no enrichment model. Useful for eyeballing the simulation
// quality and for reproducing runs by seed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nikhilza/focuspanel/internal/config"
	summarymodel "github.com/nikhilza/focuspanel/internal/model/summary"
	discussionService "github.com/nikhilza/focuspanel/internal/service/discussion"
	qaService "github.com/nikhilza/focuspanel/internal/service/qa"
	summaryService "github.com/nikhilza/focuspanel/internal/service/summary"
)

func main() {
	topic := flag.String("topic", "online beauty shopping", "discussion topic")
	contextPrompt := flag.String("context", "Gen Z women in metro cities who shop online", "participant context description")
	count := flag.Int("count", 6, "number of personas")
	seed := flag.Int64("seed", 0, "random seed (0 = time-based)")
	schemaFile := flag.String("schema", "", "path to a custom summary schema outline")
	question := flag.String("question", "", "optional question to ask after the run")
	asJSON := flag.Bool("json", false, "dump the full session record as JSON")
	flag.Parse()

	tables := config.DefaultTables()
	cfg := config.DiscussionConfig{
		StepDelayMS:         0,
		DefaultPersonaCount: *count,
		Tables:              tables,
	}

	ctx := context.Background()
	discussions := discussionService.NewService(nil, cfg)

	session, err := discussions.CreateSession(ctx, *topic)
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	if _, err := discussions.AcceptPlan(ctx, session.ID, "", ""); err != nil {
		log.Fatalf("accept plan: %v", err)
	}

	personas, report, err := discussions.GeneratePersonas(ctx, session.ID, *contextPrompt, *count, *seed)
	if err != nil {
		log.Fatalf("generate personas: %v", err)
	}
	fmt.Printf("=== Personas (%d, valid=%v) ===\n", len(personas), report.Valid)
	for _, p := range personas {
		fmt.Printf("  %-10s %2d  %-12s %-24s %s\n", p.Name, p.Age, p.Location, p.Occupation, p.Personality.Label())
	}

	if _, err := discussions.ConfirmPersonas(ctx, session.ID); err != nil {
		log.Fatalf("confirm personas: %v", err)
	}
	if err := discussions.Start(ctx, session.ID); err != nil {
		log.Fatalf("start discussion: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := discussions.Wait(waitCtx, session.ID); err != nil {
		log.Fatalf("discussion run: %v", err)
	}

	results, err := discussions.Results(ctx, session.ID)
	if err != nil {
		log.Fatalf("results: %v", err)
	}
	fmt.Printf("\n=== Transcript (%d entries, state=%s) ===\n", len(results.Transcript), results.State)
	for _, e := range results.Transcript {
		fmt.Printf("[%3d|%-11s|%-16s] %s: %s\n", e.Sequence, e.Phase, e.Type, e.Speaker, e.Text)
	}

	schema, err := loadSchema(*schemaFile)
	if err != nil {
		log.Fatalf("schema: %v", err)
	}

	synthesizer := summaryService.NewSynthesizer()
	current, err := discussions.Session(ctx, session.ID)
	if err != nil {
		log.Fatalf("session: %v", err)
	}
	sum, err := synthesizer.Synthesize(current.Topic, current.Personas, results.Transcript, schema)
	if err != nil {
		log.Fatalf("synthesize: %v", err)
	}
	if err := discussions.SetSummary(ctx, session.ID, schema, sum); err != nil {
		log.Fatalf("store summary: %v", err)
	}

	fmt.Printf("\n=== Summary (%d sections) ===\n", len(sum.Sections))
	for _, section := range sum.Sections {
		fmt.Printf("\n## %s [%s]\n", section.Title, section.Shape)
		switch {
		case section.Text != "":
			fmt.Println(section.Text)
		case len(section.Items) > 0:
			for _, item := range section.Items {
				fmt.Printf("  - %s\n", item)
			}
		case len(section.Quotes) > 0:
			for _, q := range section.Quotes {
				fmt.Printf("  - %s (seq %d, score %d): \"%s\"\n", q.Speaker, q.Sequence, q.Score, q.Text)
			}
		case len(section.Fields) > 0:
			pretty, _ := json.MarshalIndent(section.Fields, "  ", "  ")
			fmt.Printf("  %s\n", pretty)
		}
	}

	if *question != "" {
		qaSvc := qaService.NewService(tables)
		exchange, err := qaSvc.Ask(*question, current.Personas, results.Transcript, &sum, nil)
		if err != nil {
			fmt.Printf("\n=== QA ===\n%v\n", err)
		} else {
			if _, err := discussions.AppendExchange(ctx, session.ID, exchange); err != nil {
				log.Fatalf("append exchange: %v", err)
			}
			fmt.Printf("\n=== QA [%s] ===\n%s\n", exchange.Category, exchange.Answer)
		}
	}

	if *asJSON {
		record, err := discussions.Export(ctx, session.ID)
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		pretty, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			log.Fatalf("marshal record: %v", err)
		}
		fmt.Printf("\n%s\n", pretty)
	}
}

func loadSchema(path string) (summarymodel.Schema, error) {
	if path == "" {
		return summarymodel.Standard(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return summarymodel.Schema{}, err
	}
	return summaryService.ParseSchema(string(raw))
}
