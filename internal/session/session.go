// Package session holds per-operator working state: the articles
// currently on screen, the uploaded logo, usage counters, and a
// bounded in-memory history. Nothing here touches disk; closing the
// app forgets everything by design.
package session

import (
	"sync"
	"time"

	"aivan/internal/core"

	"github.com/google/uuid"
)

// DefaultHistoryLimit caps how many past generations a session keeps.
const DefaultHistoryLimit = 10

// DefaultIdleTimeout is how long a session may go untouched before the
// manager evicts it. Everything in a session is volatile, so eviction
// is just forgetting early.
const DefaultIdleTimeout = 2 * time.Hour

// Session is one operator's working state.
type Session struct {
	ID string

	mu            sync.Mutex
	title         string
	keywords      []string
	articles      map[core.LanguageVariant]*core.Article
	documentText  string
	logo          []byte
	history       []core.HistoryEntry
	historyLimit  int
	titleSequence int
	stats         core.SessionStats
	nextEntryID   int
}

// newSession creates an empty session with the given history limit.
func newSession(limit int) *Session {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &Session{
		ID:           uuid.NewString(),
		articles:     make(map[core.LanguageVariant]*core.Article),
		historyLimit: limit,
	}
}

// SetCurrent replaces the articles on screen and their metadata.
func (s *Session) SetCurrent(title string, articles map[core.LanguageVariant]*core.Article, keywords []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
	s.keywords = append([]string(nil), keywords...)
	s.articles = make(map[core.LanguageVariant]*core.Article, len(articles))
	for variant, article := range articles {
		s.articles[variant] = article
	}
}

// Current returns the title, articles, and keywords on screen. The
// article map is a copy; the articles themselves are shared.
func (s *Session) Current() (string, map[core.LanguageVariant]*core.Article, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	articles := make(map[core.LanguageVariant]*core.Article, len(s.articles))
	for variant, article := range s.articles {
		articles[variant] = article
	}
	return s.title, articles, append([]string(nil), s.keywords...)
}

// UpdateArticle swaps in a new body for one variant, e.g. after a
// revision.
func (s *Session) UpdateArticle(variant core.LanguageVariant, article *core.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[variant] = article
}

// Article returns the current article for a variant, or nil.
func (s *Session) Article(variant core.LanguageVariant) *core.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.articles[variant]
}

// SetDocumentText stores extracted upload text for the next prompt.
func (s *Session) SetDocumentText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentText = text
	if text != "" {
		s.stats.FilesProcessed++
	}
}

// DocumentText returns the stored upload text.
func (s *Session) DocumentText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentText
}

// SetLogo stores logo image bytes for document export.
func (s *Session) SetLogo(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logo = append([]byte(nil), data...)
}

// Logo returns the stored logo bytes, or nil.
func (s *Session) Logo() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.logo...)
}

// AddHistory records a finished generation at the head of the history
// list, evicting the oldest entry past the limit.
func (s *Session) AddHistory(title string, articles map[core.LanguageVariant]*core.Article, keywords []string) core.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := core.HistoryEntry{
		ID:         uuid.NewString(),
		SequenceID: s.nextEntryID,
		Timestamp:  time.Now(),
		Title:      title,
		Articles:   make(map[core.LanguageVariant]*core.Article, len(articles)),
		Keywords:   append([]string(nil), keywords...),
	}
	for variant, article := range articles {
		entry.Articles[variant] = article
	}
	s.nextEntryID++

	s.history = append([]core.HistoryEntry{entry}, s.history...)
	if len(s.history) > s.historyLimit {
		s.history = s.history[:s.historyLimit]
	}

	s.stats.BlogsGenerated++
	for _, article := range articles {
		s.stats.TotalWords += article.WordCount
	}

	return entry
}

// History returns the entries newest first.
func (s *Session) History() []core.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.HistoryEntry(nil), s.history...)
}

// HistoryEntry finds an entry by ID.
func (s *Session) HistoryEntry(id string) (core.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.history {
		if entry.ID == id {
			return entry, true
		}
	}
	return core.HistoryEntry{}, false
}

// NextTitleSequence returns an incrementing counter used to rotate
// headline style hints.
func (s *Session) NextTitleSequence() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.titleSequence
	s.titleSequence++
	return seq
}

// Stats returns a snapshot of the usage counters.
func (s *Session) Stats() core.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Manager tracks sessions by ID for the web server, evicting sessions
// that have sat idle past the timeout.
type Manager struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	lastAccess   map[string]time.Time
	historyLimit int
	idleTimeout  time.Duration
	now          func() time.Time
}

// NewManager creates a session manager with the given per-session
// history limit.
func NewManager(historyLimit int) *Manager {
	return &Manager{
		sessions:     make(map[string]*Session),
		lastAccess:   make(map[string]time.Time),
		historyLimit: historyLimit,
		idleTimeout:  DefaultIdleTimeout,
		now:          time.Now,
	}
}

// GetOrCreate returns the session for id, creating a fresh one when
// the id is unknown or empty. Each call sweeps out idle sessions.
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictIdle()

	if s, ok := m.sessions[id]; ok {
		m.lastAccess[id] = m.now()
		return s
	}
	s := newSession(m.historyLimit)
	m.sessions[s.ID] = s
	m.lastAccess[s.ID] = m.now()
	return s
}

// Get returns the session for id, if it exists.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		m.lastAccess[id] = m.now()
	}
	return s, ok
}

// evictIdle drops sessions untouched for longer than the idle timeout.
// Caller holds m.mu.
func (m *Manager) evictIdle() {
	if m.idleTimeout <= 0 {
		return
	}
	cutoff := m.now().Add(-m.idleTimeout)
	for id, accessed := range m.lastAccess {
		if accessed.Before(cutoff) {
			delete(m.sessions, id)
			delete(m.lastAccess, id)
		}
	}
}
