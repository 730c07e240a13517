package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"splenderra/internal/config"
	"splenderra/internal/model"
)

const (
	missionMarker    = "**MISSION**"
	suggestionMarker = "**SUGGESTION**"
)

// MissionProvider generates performance missions for a level and theme.
// regenIndex counts the missions already generated for the current turn
// (0 for a fresh turn).
type MissionProvider interface {
	Generate(ctx context.Context, level int, theme string, regenIndex int) (*model.Mission, error)
}

// MissionService generates missions via the Gemini API
type MissionService struct {
	config *config.GeneratorConfig
	client *http.Client
}

// NewMissionService creates a new mission service
func NewMissionService() *MissionService {
	cfg := config.DefaultGeneratorConfig()
	return &MissionService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Generate produces a mission for the given level and theme
func (s *MissionService) Generate(ctx context.Context, level int, theme string, regenIndex int) (*model.Mission, error) {
	if level < 1 {
		level = 1
	}
	if level > 10 {
		level = 10
	}

	if !s.config.IsEnabled() {
		return s.offlineMission(level, theme, regenIndex), nil
	}

	prompt := s.buildMissionPrompt(level, theme, regenIndex)
	response, err := s.callGemini(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	mission, err := parseMission(response)
	if err != nil {
		return nil, err
	}
	mission.Level = level

	return mission, nil
}

// callGemini makes a request to the Gemini API
func (s *MissionService) callGemini(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": 0.9,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(), s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

// parseMission extracts the task and suggestion sections from a generated
// response. Both markers must be present.
func parseMission(response string) (*model.Mission, error) {
	_, rest, found := strings.Cut(response, missionMarker)
	if !found {
		return nil, fmt.Errorf("%w: missing %s section", ErrMalformedMission, missionMarker)
	}

	task, suggestion, found := strings.Cut(rest, suggestionMarker)
	if !found {
		return nil, fmt.Errorf("%w: missing %s section", ErrMalformedMission, suggestionMarker)
	}

	task = strings.TrimSpace(task)
	suggestion = strings.TrimSpace(suggestion)
	if task == "" || suggestion == "" {
		return nil, fmt.Errorf("%w: empty section", ErrMalformedMission)
	}

	return &model.Mission{
		Task:       task,
		Suggestion: suggestion,
	}, nil
}

// missionTypes lists the kinds of performance expected per level
var missionTypes = map[int][]string{
	1:  {"simple introduction", "mini sketch", "observation"},
	2:  {"simple dialogue", "description", "narration"},
	3:  {"basic analysis", "everyday situation", "mini performance"},
	4:  {"comedy sketch", "creative presentation", "group analysis"},
	5:  {"dynamic performance", "improvisation", "constructive critique"},
	6:  {"complex situation", "lively debate", "elaborate sketch"},
	7:  {"advanced performance", "deep analysis", "interactive story"},
	8:  {"complex performance", "multiple characters", "absurd situation"},
	9:  {"advanced improvisation", "dramatic performance", "expert analysis"},
	10: {"master performance", "epic situation", "grand finale"},
}

func (s *MissionService) buildMissionPrompt(level int, theme string, regenIndex int) string {
	types := strings.Join(missionTypes[level], ", ")

	variation := ""
	if regenIndex > 0 {
		variation = fmt.Sprintf("\nThe player rejected %d previous mission(s) this turn; propose something clearly different.", regenIndex)
	}

	return fmt.Sprintf(`You are the mission generator for a live party game.
Level: %d/10
Theme: %q
Mission types for this level: %s
Missions must be performable in 2 minutes at most.%s

Create one mission for level %d. It must be:
- Matched to the level's intensity
- Performable in 2 minutes
- Clear and direct
- Immersive and engaging

Respond in EXACTLY this format:
%s
[One clear, direct mission]
%s
[A practical tip for pulling it off]`,
		level, theme, types, variation, level, missionMarker, suggestionMarker)
}

// offlineMission returns a deterministic mission when no API key is configured
func (s *MissionService) offlineMission(level int, theme string, regenIndex int) *model.Mission {
	types := missionTypes[level]
	kind := types[regenIndex%len(types)]

	return &model.Mission{
		Task:       fmt.Sprintf("Perform a %s on the theme %q for the group.", kind, theme),
		Suggestion: "Keep it under two minutes and commit fully to the performance.",
		Level:      level,
	}
}
