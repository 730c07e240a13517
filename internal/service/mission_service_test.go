package service

import (
	"context"
	"errors"
	"testing"

	"splenderra/internal/config"
)

func TestParseMission(t *testing.T) {
	response := `**MISSION**
Tell a story about a lost sock.
**SUGGESTION**
Use different voices for each character.`

	mission, err := parseMission(response)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if mission.Task != "Tell a story about a lost sock." {
		t.Fatalf("unexpected task: %q", mission.Task)
	}
	if mission.Suggestion != "Use different voices for each character." {
		t.Fatalf("unexpected suggestion: %q", mission.Suggestion)
	}
}

func TestParseMissionMissingMissionMarker(t *testing.T) {
	_, err := parseMission("Tell a story.\n**SUGGESTION**\nA tip.")
	if !errors.Is(err, ErrMalformedMission) {
		t.Fatalf("expected ErrMalformedMission, got %v", err)
	}
}

func TestParseMissionMissingSuggestionMarker(t *testing.T) {
	_, err := parseMission("**MISSION**\nTell a story.")
	if !errors.Is(err, ErrMalformedMission) {
		t.Fatalf("expected ErrMalformedMission, got %v", err)
	}
}

func TestParseMissionEmptySection(t *testing.T) {
	_, err := parseMission("**MISSION**\n\n**SUGGESTION**\nA tip.")
	if !errors.Is(err, ErrMalformedMission) {
		t.Fatalf("expected ErrMalformedMission, got %v", err)
	}
	_, err = parseMission("**MISSION**\nA task.\n**SUGGESTION**\n  ")
	if !errors.Is(err, ErrMalformedMission) {
		t.Fatalf("expected ErrMalformedMission, got %v", err)
	}
}

func TestGenerateOfflineWithoutAPIKey(t *testing.T) {
	svc := &MissionService{config: &config.GeneratorConfig{Model: "gemini-2.0-flash"}}

	mission, err := svc.Generate(context.Background(), 5, "pirates", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if mission.Task == "" || mission.Suggestion == "" {
		t.Fatal("expected a non-empty offline mission")
	}
	if mission.Level != 5 {
		t.Fatalf("expected level 5, got %d", mission.Level)
	}

	// Regenerations vary the offline mission
	regen, err := svc.Generate(context.Background(), 5, "pirates", 1)
	if err != nil {
		t.Fatalf("generate regen: %v", err)
	}
	if regen.Task == mission.Task {
		t.Fatal("expected regeneration to produce a different mission")
	}
}

func TestGenerateClampsLevel(t *testing.T) {
	svc := &MissionService{config: &config.GeneratorConfig{}}

	low, err := svc.Generate(context.Background(), 0, "space", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if low.Level != 1 {
		t.Fatalf("expected level clamped to 1, got %d", low.Level)
	}

	high, err := svc.Generate(context.Background(), 15, "space", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if high.Level != 10 {
		t.Fatalf("expected level clamped to 10, got %d", high.Level)
	}
}

func TestBuildMissionPromptMentionsRejections(t *testing.T) {
	svc := &MissionService{config: &config.GeneratorConfig{}}

	fresh := svc.buildMissionPrompt(3, "camping", 0)
	if len(fresh) == 0 {
		t.Fatal("expected a prompt")
	}

	regen := svc.buildMissionPrompt(3, "camping", 2)
	if regen == fresh {
		t.Fatal("expected regeneration prompt to differ from fresh prompt")
	}
}
