package config

import "testing"

func TestLoadUsesSearchDefaults(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "")
	t.Setenv("CATALOG_MAX_RESULTS", "")
	t.Setenv("REPLY_TTL_MINUTES", "")
	t.Setenv("ESCALATION_TTL_SECONDS", "")
	t.Setenv("MEILI_INDEX_PREFIX", "")

	cfg := Load()
	if cfg.SimilarityThreshold != 70 {
		t.Fatalf("expected default similarity threshold 70, got %d", cfg.SimilarityThreshold)
	}
	if cfg.CatalogMaxResults != 10 {
		t.Fatalf("expected default catalog max results 10, got %d", cfg.CatalogMaxResults)
	}
	if cfg.ReplyTTLMinutes != 15 {
		t.Fatalf("expected default reply ttl 15 minutes, got %d", cfg.ReplyTTLMinutes)
	}
	if cfg.EscalationTTLSeconds != 60 {
		t.Fatalf("expected default escalation ttl 60 seconds, got %d", cfg.EscalationTTLSeconds)
	}
	if cfg.MeiliIndexPrefix != "chat_" {
		t.Fatalf("expected default index prefix chat_, got %q", cfg.MeiliIndexPrefix)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "85")
	t.Setenv("CATALOG_TIMEOUT_SECONDS", "3")
	t.Setenv("NATS_MESSAGES_SUBJECT", "tg.updates")
	t.Setenv("SEND_RATE_LIMIT_RPS", "10")

	cfg := Load()
	if cfg.SimilarityThreshold != 85 {
		t.Fatalf("expected similarity threshold 85, got %d", cfg.SimilarityThreshold)
	}
	if cfg.CatalogTimeoutSeconds != 3 {
		t.Fatalf("expected catalog timeout 3, got %d", cfg.CatalogTimeoutSeconds)
	}
	if cfg.NATSMessagesSubject != "tg.updates" {
		t.Fatalf("expected messages subject override, got %q", cfg.NATSMessagesSubject)
	}
	if cfg.SendRateLimitRPS != 10 {
		t.Fatalf("expected send rate 10, got %d", cfg.SendRateLimitRPS)
	}
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "not-a-number")
	t.Setenv("SWEEP_BATCH_SIZE", "4.5")

	cfg := Load()
	if cfg.SimilarityThreshold != 70 {
		t.Fatalf("expected fallback threshold 70, got %d", cfg.SimilarityThreshold)
	}
	if cfg.SweepBatchSize != 100 {
		t.Fatalf("expected fallback batch size 100, got %d", cfg.SweepBatchSize)
	}
}
