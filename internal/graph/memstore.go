package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pulsegraph/pulsegraph/internal/identity"
	"github.com/pulsegraph/pulsegraph/internal/model"
)

// MemStore is a map-backed Store with the same merge semantics as the
// Neo4j implementation. It backs unit tests and the --offline mode of the
// CLI; nothing about the orchestrator's behavior depends on which one is
// plugged in.
type MemStore struct {
	mu  sync.RWMutex
	now func() time.Time

	companies map[string]*companyRec
	events    map[string]*eventRec
	sources   map[string]*sourceRec
	claims    map[string]*claimRec
	signals   map[string]*signalRec

	companyEvents map[string]map[string]bool   // companyID -> eventID (HAS_EVENT)
	eventClaims   map[string]map[string]bool   // eventID -> claimID (HAS_CLAIM)
	companyClaims map[string]map[string]string // companyID -> claimID -> period
	claimSources  map[string]map[string]bool   // claimID -> sourceID (SUPPORTS)
	mentions      map[string]map[string]bool   // sourceID -> companyID (MENTIONS)
}

type companyRec struct {
	id, name, ticker     string
	createdAt, updatedAt time.Time
}

type eventRec struct {
	id, eventType, period string
	eventDate             *time.Time
	createdAt, updatedAt  time.Time
}

type sourceRec struct {
	id                   string
	doc                  model.SourceDoc
	createdAt, updatedAt time.Time
}

type claimRec struct {
	id                   string
	claim                model.Claim
	createdAt, updatedAt time.Time
}

type signalRec struct {
	id                   string
	signal               model.Signal
	createdAt, updatedAt time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		now:           func() time.Time { return time.Now().UTC() },
		companies:     make(map[string]*companyRec),
		events:        make(map[string]*eventRec),
		sources:       make(map[string]*sourceRec),
		claims:        make(map[string]*claimRec),
		signals:       make(map[string]*signalRec),
		companyEvents: make(map[string]map[string]bool),
		eventClaims:   make(map[string]map[string]bool),
		companyClaims: make(map[string]map[string]string),
		claimSources:  make(map[string]map[string]bool),
		mentions:      make(map[string]map[string]bool),
	}
}

// WithNow overrides the clock. Tests use this to make last_updated_at
// ordering deterministic.
func (m *MemStore) WithNow(now func() time.Time) *MemStore {
	m.now = now
	return m
}

// EntityCounts reports how many nodes of each kind the store holds. Tests
// use it to assert that re-running a refresh creates no duplicates.
type EntityCounts struct {
	Companies int
	Events    int
	Sources   int
	Claims    int
	Signals   int
}

// Counts returns the current entity counts.
func (m *MemStore) Counts() EntityCounts {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return EntityCounts{
		Companies: len(m.companies),
		Events:    len(m.events),
		Sources:   len(m.sources),
		Claims:    len(m.claims),
		Signals:   len(m.signals),
	}
}

// EdgeCount returns the total number of relationship edges.
func (m *MemStore) EdgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, set := range m.companyEvents {
		total += len(set)
	}
	for _, set := range m.eventClaims {
		total += len(set)
	}
	for _, set := range m.companyClaims {
		total += len(set)
	}
	for _, set := range m.claimSources {
		total += len(set)
	}
	for _, set := range m.mentions {
		total += len(set)
	}
	return total
}

func (m *MemStore) MergeCompany(_ context.Context, name, ticker string) (string, error) {
	id := identity.Company(name, ticker)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.companies[id]
	if !ok {
		rec = &companyRec{id: id, createdAt: now}
		m.companies[id] = rec
	}
	rec.name = name
	rec.ticker = ticker
	rec.updatedAt = now
	return id, nil
}

func (m *MemStore) MergeEvent(_ context.Context, companyID, eventType, period string, eventDate *time.Time) (string, error) {
	id := identity.Event(companyID, eventType, period)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[companyID]; !ok {
		return "", fmt.Errorf("merge event: unknown company %s", companyID)
	}
	rec, ok := m.events[id]
	if !ok {
		rec = &eventRec{id: id, createdAt: now}
		m.events[id] = rec
	}
	rec.eventType = eventType
	rec.period = period
	if eventDate != nil {
		rec.eventDate = eventDate
	}
	rec.updatedAt = now
	addEdge(m.companyEvents, companyID, id)
	return id, nil
}

func (m *MemStore) MergeSource(_ context.Context, doc model.SourceDoc) (string, error) {
	id := identity.Source(doc.URL)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sources[id]
	if !ok {
		rec = &sourceRec{id: id, createdAt: now, doc: model.SourceDoc{URL: doc.URL}}
		m.sources[id] = rec
	}
	// coalesce semantics: only overwrite with non-empty values
	if doc.Title != "" {
		rec.doc.Title = doc.Title
	}
	if doc.Category != "" {
		rec.doc.Category = doc.Category
	}
	if doc.SiteName != "" {
		rec.doc.SiteName = doc.SiteName
	}
	if doc.Author != "" {
		rec.doc.Author = doc.Author
	}
	if doc.Language != "" {
		rec.doc.Language = doc.Language
	}
	if doc.Query != "" {
		rec.doc.Query = doc.Query
	}
	if doc.PublishedAt != nil {
		rec.doc.PublishedAt = doc.PublishedAt
	}
	if !doc.FetchedAt.IsZero() {
		rec.doc.FetchedAt = doc.FetchedAt
	}
	rec.updatedAt = now
	return id, nil
}

func (m *MemStore) LinkSourceMentionsCompany(_ context.Context, sourceID, companyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[sourceID]; !ok {
		return fmt.Errorf("link mentions: unknown source %s", sourceID)
	}
	if _, ok := m.companies[companyID]; !ok {
		return fmt.Errorf("link mentions: unknown company %s", companyID)
	}
	addEdge(m.mentions, sourceID, companyID)
	return nil
}

func (m *MemStore) MergeClaim(_ context.Context, companyID, eventID, sourceID string, claim model.Claim) (string, error) {
	id := identity.Claim(claim.CompanyName, claim.Period, string(claim.Type), claim.Timeframe, claim.Text)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[companyID]; !ok {
		return "", fmt.Errorf("merge claim: unknown company %s", companyID)
	}
	if _, ok := m.events[eventID]; !ok {
		return "", fmt.Errorf("merge claim: unknown event %s", eventID)
	}
	if _, ok := m.sources[sourceID]; !ok {
		return "", fmt.Errorf("merge claim: unknown source %s", sourceID)
	}

	rec, ok := m.claims[id]
	if !ok {
		rec = &claimRec{id: id, createdAt: now}
		m.claims[id] = rec
	}
	rec.claim = claim
	rec.updatedAt = now

	addEdge(m.eventClaims, eventID, id)
	addEdge(m.claimSources, id, sourceID)
	if m.companyClaims[companyID] == nil {
		m.companyClaims[companyID] = make(map[string]string)
	}
	m.companyClaims[companyID][id] = claim.Period
	return id, nil
}

func (m *MemStore) MergeSignal(_ context.Context, signal model.Signal) (string, error) {
	id := identity.Signal(signal.CompanyID, signal.EventID, signal.Type, signal.Window)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[signal.CompanyID]; !ok {
		return "", fmt.Errorf("merge signal: unknown company %s", signal.CompanyID)
	}
	if _, ok := m.events[signal.EventID]; !ok {
		return "", fmt.Errorf("merge signal: unknown event %s", signal.EventID)
	}

	rec, ok := m.signals[id]
	if !ok {
		rec = &signalRec{id: id, createdAt: now}
		m.signals[id] = rec
	}
	if signal.ComputedAt.IsZero() {
		signal.ComputedAt = now
	}
	signal.ID = id
	rec.signal = signal
	rec.updatedAt = now
	return id, nil
}

func (m *MemStore) FindCompanyByName(_ context.Context, name string) (*model.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.companies {
		if strings.EqualFold(rec.name, name) {
			return &model.Company{
				ID:            rec.id,
				Name:          rec.name,
				Ticker:        rec.ticker,
				LastUpdatedAt: rec.updatedAt.Format(time.RFC3339Nano),
			}, nil
		}
	}
	return nil, nil
}

func (m *MemStore) LatestFetchByCategory(_ context.Context, companyID, period string) ([]model.CategoryFetch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[model.SourceCategory]time.Time)
	for eventID := range m.companyEvents[companyID] {
		event := m.events[eventID]
		if event == nil || event.period != period {
			continue
		}
		for claimID := range m.eventClaims[eventID] {
			for sourceID := range m.claimSources[claimID] {
				src := m.sources[sourceID]
				if src == nil || src.doc.FetchedAt.IsZero() {
					continue
				}
				category := src.doc.Category
				if ts, ok := latest[category]; !ok || src.doc.FetchedAt.After(ts) {
					latest[category] = src.doc.FetchedAt
				}
			}
		}
	}

	rows := make([]model.CategoryFetch, 0, len(latest))
	for category, ts := range latest {
		fetched := ts
		rows = append(rows, model.CategoryFetch{Category: category, LastFetchedAt: &fetched})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
	return rows, nil
}

func (m *MemStore) ClaimsWithSources(_ context.Context, companyID, period string, limit int) ([]model.RankedClaim, error) {
	if limit <= 0 {
		limit = 15
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type rankedRec struct {
		rec *claimRec
	}
	var matched []rankedRec
	for eventID := range m.companyEvents[companyID] {
		event := m.events[eventID]
		if event == nil || event.period != period {
			continue
		}
		for claimID := range m.eventClaims[eventID] {
			if rec := m.claims[claimID]; rec != nil {
				matched = append(matched, rankedRec{rec: rec})
			}
		}
	}

	// confidence descending, then most recently updated first. The id
	// tie-break pins a total order; matched comes from map iteration.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].rec, matched[j].rec
		if a.claim.Confidence != b.claim.Confidence {
			return a.claim.Confidence > b.claim.Confidence
		}
		if !a.updatedAt.Equal(b.updatedAt) {
			return a.updatedAt.After(b.updatedAt)
		}
		return a.id < b.id
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	rows := make([]model.RankedClaim, 0, len(matched))
	for _, mr := range matched {
		rec := mr.rec
		row := model.RankedClaim{
			ID:            rec.id,
			Text:          rec.claim.Text,
			Type:          rec.claim.Type,
			Direction:     rec.claim.Direction,
			Confidence:    rec.claim.Confidence,
			LastUpdatedAt: rec.updatedAt.Format(time.RFC3339Nano),
		}
		var sourceIDs []string
		for sourceID := range m.claimSources[rec.id] {
			sourceIDs = append(sourceIDs, sourceID)
		}
		sort.Strings(sourceIDs)
		for _, sourceID := range sourceIDs {
			src := m.sources[sourceID]
			if src == nil {
				continue
			}
			ref := model.SourceRef{
				URL:      src.doc.URL,
				Title:    src.doc.Title,
				Category: string(src.doc.Category),
			}
			if src.doc.PublishedAt != nil {
				ref.PublishedAt = src.doc.PublishedAt.Format(time.RFC3339Nano)
			}
			if !src.doc.FetchedAt.IsZero() {
				ref.FetchedAt = src.doc.FetchedAt.Format(time.RFC3339Nano)
			}
			row.Sources = append(row.Sources, ref)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *MemStore) GetSignal(_ context.Context, companyID, period, window, signalType string) (*model.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for eventID := range m.companyEvents[companyID] {
		event := m.events[eventID]
		if event == nil || event.period != period {
			continue
		}
		id := identity.Signal(companyID, eventID, signalType, window)
		if rec, ok := m.signals[id]; ok {
			sig := rec.signal
			return &sig, nil
		}
	}
	return nil, nil
}

func addEdge(edges map[string]map[string]bool, from, to string) {
	if edges[from] == nil {
		edges[from] = make(map[string]bool)
	}
	edges[from][to] = true
}
