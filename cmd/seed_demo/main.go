package main

import (
	"fmt"
	"log"

	"github.com/protomedic/emstags/internal/cache"
	"github.com/protomedic/emstags/internal/config"
	"github.com/protomedic/emstags/internal/database"
	"github.com/protomedic/emstags/internal/models"
	"github.com/protomedic/emstags/internal/promptrule"
	"github.com/protomedic/emstags/internal/protocols"
	"github.com/protomedic/emstags/internal/slug"
	"github.com/protomedic/emstags/internal/tags"
)

const defaultInstructions = `Return tags that are lower-case, concise, and clinically relevant.
Include both common abbreviations and their expanded full form when useful.
Split combined abbreviations such as "vf/vt" into separate tags (e.g. "vf", "vt").
Avoid duplicates and keep the list focused on search-friendly terminology.`

var sampleProtocols = []struct {
	Title       string
	Description string
}{
	{
		Title:       "Allergic Reaction - Adult",
		Description: "Assessment and treatment for mild to severe allergic reactions including anaphylaxis. Consider epinephrine IM for anaphylaxis, antihistamines for mild reactions, airway monitoring, and rapid transport.",
	},
	{
		Title:       "Respiratory Distress - Dyspnea",
		Description: "Patients with shortness of breath due to asthma, COPD, CHF, pneumonia, or anaphylaxis. Consider oxygen, bronchodilators, CPAP as indicated, and continuous reassessment.",
	},
	{
		Title:       "Chest Pain - Suspected ACS",
		Description: "Patients with acute chest pain or pressure suspicious for ACS. Administer aspirin if not contraindicated, nitroglycerin with BP > 100 systolic, consider 12-lead ECG, and transport rapidly.",
	},
}

func main() {
	fmt.Println("🌱 EMS Protocol Catalog Demo Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.Protocol{},
		&models.Tag{},
		&models.PromptRule{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// Default prompt rule
	rules := promptrule.NewStore(db.DB, cache.NewMemory())
	if _, err := rules.UpsertSingleton("Default", defaultInstructions); err != nil {
		log.Fatalf("❌ Failed to seed prompt rule: %v", err)
	}
	fmt.Println("✅ Default prompt rule seeded")

	// Sample protocols, skipped when already present
	protocolStore := protocols.NewStore(db.DB)
	var count int64
	db.Model(&models.Protocol{}).Count(&count)
	if count > 0 {
		fmt.Printf("⚠️  Database already has %d protocols, skipping protocol seed\n", count)
	} else {
		for _, p := range sampleProtocols {
			if _, err := protocolStore.Create(p.Title, p.Description, nil); err != nil {
				log.Fatalf("❌ Failed to seed protocol %q: %v", p.Title, err)
			}
		}
		fmt.Printf("✅ Seeded %d sample protocols\n", len(sampleProtocols))
	}

	// Backfill the tag vocabulary from existing denormalized label arrays
	if err := backfillTags(db, protocolStore); err != nil {
		log.Fatalf("❌ Tag backfill failed: %v", err)
	}

	fmt.Println("✅ Seeding complete")
}

// backfillTags resolves every protocol's label array into vocabulary records
// and attaches the links without detaching existing ones.
func backfillTags(db *database.DB, protocolStore *protocols.Store) error {
	tagStore := tags.NewStore(db.DB)

	list, err := protocolStore.ListAll()
	if err != nil {
		return err
	}

	backfilled := 0
	for i := range list {
		protocol := &list[i]
		structured := make([]models.StructuredTag, 0, len(protocol.Tags))
		for _, label := range protocol.Tags {
			if label == "" {
				continue
			}
			structured = append(structured, models.StructuredTag{
				Key:   slug.Slugify(label),
				Label: label,
			})
		}
		if len(structured) == 0 {
			continue
		}

		ids, err := tagStore.EnsureTagsExist(structured)
		if err != nil {
			return err
		}
		if err := protocolStore.AttachTags(protocol, ids); err != nil {
			return err
		}
		backfilled++
	}

	fmt.Printf("✅ Backfilled tag links for %d protocols\n", backfilled)
	return nil
}
