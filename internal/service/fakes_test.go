package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"splenderra/internal/cache"
	"splenderra/internal/model"
)

type fakeGameRepo struct {
	mu    sync.Mutex
	games map[string]*model.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[string]*model.Game)}
}

func cloneGame(g *model.Game) *model.Game {
	c := *g
	c.PlayerIDs = append([]string(nil), g.PlayerIDs...)
	c.Rounds = append([]model.RoundRecord(nil), g.Rounds...)
	if g.CurrentMission != nil {
		m := *g.CurrentMission
		c.CurrentMission = &m
	}
	if g.StartedAt != nil {
		t := *g.StartedAt
		c.StartedAt = &t
	}
	if g.EndedAt != nil {
		t := *g.EndedAt
		c.EndedAt = &t
	}
	return &c
}

func (r *fakeGameRepo) Create(ctx context.Context, game *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game.Code] = cloneGame(game)
	return nil
}

func (r *fakeGameRepo) GetByCode(ctx context.Context, code string) (*model.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[code]
	if !ok {
		return nil, nil
	}
	return cloneGame(g), nil
}

func (r *fakeGameRepo) Update(ctx context.Context, game *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game.Code] = cloneGame(game)
	return nil
}

func (r *fakeGameRepo) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, code)
	return nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string]*model.Player
	order   []string
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[string]*model.Player)}
}

func clonePlayer(p *model.Player) *model.Player {
	c := *p
	return &c
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *model.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[player.ID] = clonePlayer(player)
	r.order = append(r.order, player.ID)
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id string) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, nil
	}
	return clonePlayer(p), nil
}

func (r *fakePlayerRepo) GetByGameCode(ctx context.Context, gameCode string) ([]*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Player
	for _, id := range r.order {
		if p := r.players[id]; p != nil && p.GameCode == gameCode {
			out = append(out, clonePlayer(p))
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) Update(ctx context.Context, player *model.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[player.ID] = clonePlayer(player)
	return nil
}

// setScore mutates stored state directly to set up scenarios
func (r *fakePlayerRepo) setScore(id string, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.players[id]; p != nil {
		p.Score = score
	}
}

type fakeMissionRepo struct {
	mu      sync.Mutex
	records []*model.MissionRecord
	nextID  int
}

func newFakeMissionRepo() *fakeMissionRepo {
	return &fakeMissionRepo{}
}

func cloneRecord(rec *model.MissionRecord) *model.MissionRecord {
	c := *rec
	if rec.Performance != nil {
		p := *rec.Performance
		c.Performance = &p
	}
	return &c
}

func (r *fakeMissionRepo) Create(ctx context.Context, record *model.MissionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	record.ID = fmt.Sprintf("m_%03d", r.nextID)
	r.records = append(r.records, cloneRecord(record))
	return nil
}

func (r *fakeMissionRepo) GetByPlayerAndGame(ctx context.Context, playerID, gameCode string) ([]*model.MissionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.MissionRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		rec := r.records[i]
		if rec.PlayerID == playerID && rec.GameCode == gameCode {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (r *fakeMissionRepo) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*model.MissionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.MissionRecord
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].PlayerID == playerID {
			out = append(out, cloneRecord(r.records[i]))
		}
	}
	return out, nil
}

func (r *fakeMissionRepo) Update(ctx context.Context, record *model.MissionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.records {
		if rec.ID == record.ID {
			r.records[i] = cloneRecord(record)
			return nil
		}
	}
	return fmt.Errorf("record %s not found", record.ID)
}

type fakeGameCache struct {
	mu    sync.Mutex
	metas map[string]*model.GameMeta
}

func newFakeGameCache() *fakeGameCache {
	return &fakeGameCache{metas: make(map[string]*model.GameMeta)}
}

func (c *fakeGameCache) SetMeta(ctx context.Context, code string, meta *model.GameMeta) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := *meta
	c.metas[code] = &m
	return nil
}

func (c *fakeGameCache) GetMeta(ctx context.Context, code string) (*model.GameMeta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.metas[code]
	if !ok {
		return nil, nil
	}
	out := *m
	return &out, nil
}

func (c *fakeGameCache) SetStatus(ctx context.Context, code string, status model.GameStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.metas[code]; ok {
		m.Status = status
	}
	return nil
}

func (c *fakeGameCache) Delete(ctx context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.metas, code)
	return nil
}

func (c *fakeGameCache) Exists(ctx context.Context, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.metas[code]
	return ok, nil
}

type fakeLeaderboard struct {
	mu     sync.Mutex
	scores map[string]map[string]int
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{scores: make(map[string]map[string]int)}
}

func (l *fakeLeaderboard) UpdateScore(ctx context.Context, gameCode, playerID string, score int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scores[gameCode] == nil {
		l.scores[gameCode] = make(map[string]int)
	}
	l.scores[gameCode][playerID] = score
	return nil
}

func (l *fakeLeaderboard) GetTop(ctx context.Context, gameCode string, limit int) ([]cache.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var entries []cache.LeaderboardEntry
	for id, score := range l.scores[gameCode] {
		entries = append(entries, cache.LeaderboardEntry{PlayerID: id, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (l *fakeLeaderboard) GetRank(ctx context.Context, gameCode, playerID string) (int64, error) {
	entries, _ := l.GetTop(ctx, gameCode, 1000)
	for _, e := range entries {
		if e.PlayerID == playerID {
			return int64(e.Rank), nil
		}
	}
	return -1, nil
}

type broadcastEvent struct {
	gameCode string
	name     string
	payload  interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (b *fakeBroadcaster) BroadcastToGame(gameCode, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{gameCode, msgType, payload})
}

func (b *fakeBroadcaster) BroadcastToPlayer(gameCode, playerID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{gameCode, msgType, payload})
}

func (b *fakeBroadcaster) BroadcastToHost(gameCode, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{gameCode, msgType, payload})
}

func (b *fakeBroadcaster) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.name == name {
			n++
		}
	}
	return n
}

type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	generate func(level int, theme string, regenIndex int) (*model.Mission, error)
}

func (p *fakeProvider) Generate(ctx context.Context, level int, theme string, regenIndex int) (*model.Mission, error) {
	p.mu.Lock()
	p.calls++
	n := p.calls
	gen := p.generate
	p.mu.Unlock()

	if gen != nil {
		return gen(level, theme, regenIndex)
	}
	return &model.Mission{
		Task:       fmt.Sprintf("mission %d", n),
		Suggestion: fmt.Sprintf("suggestion %d", n),
		Level:      level,
	}, nil
}
