package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/dialog"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/curves"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/expr"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/units"
)

const testChat int64 = 100

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	files    map[string]string
	updates  chan tgbotapi.Update
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	url, ok := f.files[fileID]
	if !ok {
		return "", fmt.Errorf("no file %q", fileID)
	}
	return url, nil
}

// texts lists the text of every message sent or edited, in order.
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastText() string {
	t := f.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

func (f *fakeAPI) allText() string { return strings.Join(f.texts(), "\n---\n") }

func (f *fakeAPI) documents() []tgbotapi.DocumentConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

func (f *fakeAPI) callbackAnswers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

// fakeStates keeps payloads as JSON, the way the database does.
type fakeStates struct {
	items map[int64]struct {
		state dialog.State
		raw   []byte
	}
}

func newFakeStates() *fakeStates {
	return &fakeStates{items: map[int64]struct {
		state dialog.State
		raw   []byte
	}{}}
}

func (s *fakeStates) Get(_ context.Context, chatID int64) (*dialog.Item, error) {
	it, ok := s.items[chatID]
	if !ok {
		return &dialog.Item{ChatID: chatID, State: dialog.StateIdle, Payload: dialog.Payload{}}, nil
	}
	p := dialog.Payload{}
	if err := json.Unmarshal(it.raw, &p); err != nil {
		return nil, err
	}
	return &dialog.Item{ChatID: chatID, State: it.state, Payload: p}, nil
}

func (s *fakeStates) Set(_ context.Context, chatID int64, st dialog.State, p dialog.Payload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.items[chatID] = struct {
		state dialog.State
		raw   []byte
	}{st, raw}
	return nil
}

func (s *fakeStates) Reset(_ context.Context, chatID int64) error {
	delete(s.items, chatID)
	return nil
}

type fakeMaterials struct {
	nextID int64
	byChat map[int64]*materials.Collection
}

func newFakeMaterials() *fakeMaterials {
	return &fakeMaterials{byChat: map[int64]*materials.Collection{}}
}

func (r *fakeMaterials) col(chatID int64) *materials.Collection {
	c, ok := r.byChat[chatID]
	if !ok {
		c = &materials.Collection{}
		r.byChat[chatID] = c
	}
	return c
}

func (r *fakeMaterials) Create(_ context.Context, m materials.Material) (*materials.Material, error) {
	r.nextID++
	m.ID = r.nextID
	c := r.col(m.ChatID)
	if err := c.Append(m); err != nil {
		return nil, err
	}
	saved, _ := c.Get(m.Name)
	return &saved, nil
}

func (r *fakeMaterials) List(_ context.Context, chatID int64) ([]materials.Material, error) {
	return r.col(chatID).Items(), nil
}

// Collection hands out a copy, like a fresh load from the database.
func (r *fakeMaterials) Collection(_ context.Context, chatID int64) (*materials.Collection, error) {
	return materials.NewCollection(r.col(chatID).Items()...)
}

func (r *fakeMaterials) GetByID(_ context.Context, chatID, id int64) (*materials.Material, error) {
	m, ok := r.col(chatID).ByID(id)
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *fakeMaterials) Delete(_ context.Context, chatID, id int64) error {
	r.col(chatID).RemoveID(id)
	return nil
}

func (r *fakeMaterials) DeleteAll(_ context.Context, chatID int64) error {
	r.col(chatID).Clear()
	return nil
}

func (r *fakeMaterials) Replace(ctx context.Context, chatID int64, ms []materials.Material) ([]materials.Material, error) {
	r.col(chatID).Clear()
	for _, m := range ms {
		m.ChatID = chatID
		if _, err := r.Create(ctx, m); err != nil {
			return nil, err
		}
	}
	return r.col(chatID).Items(), nil
}

type fakeCurves struct {
	err   error
	calls [][]string
}

func (c *fakeCurves) Curves(_ context.Context, ms []materials.Material) ([]curves.Curve, error) {
	var names []string
	for _, m := range ms {
		names = append(names, m.Name)
	}
	c.calls = append(c.calls, names)
	if c.err != nil {
		return nil, c.err
	}
	out := make([]curves.Curve, 0, len(ms))
	for _, m := range ms {
		attrs := materials.Defaults(m.Kind)
		for k, v := range m.Params {
			attrs[k] = v
		}
		out = append(out, curves.Curve{
			Name: m.Name, Color: m.Color,
			Strain: []float64{0, 0.002, 0.01}, Stress: []float64{0, 400, 420},
			Attributes: attrs,
		})
	}
	return out, nil
}

type harness struct {
	bot    *Bot
	api    *fakeAPI
	states *fakeStates
	mats   *fakeMaterials
	curves *fakeCurves
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		api:    &fakeAPI{files: map[string]string{}, updates: make(chan tgbotapi.Update, 8)},
		states: newFakeStates(),
		mats:   newFakeMaterials(),
		curves: &fakeCurves{},
	}
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h.bot = New(h.api, log, h.states, h.mats, h.curves, expr.New(units.Default))
	return h
}

func (h *harness) text(s string) {
	h.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: testChat},
		Text:      s,
	}})
}

func (h *harness) command(s string) {
	cmd := strings.SplitN(s, " ", 2)[0]
	h.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: testChat},
		Text:      s,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}})
}

func (h *harness) press(data string) {
	h.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: testChat}},
	}})
}

func (h *harness) state(t *testing.T) *dialog.Item {
	t.Helper()
	st, err := h.states.Get(context.Background(), testChat)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func (h *harness) stored(t *testing.T) []materials.Material {
	t.Helper()
	list, err := h.mats.List(context.Background(), testChat)
	if err != nil {
		t.Fatal(err)
	}
	return list
}
