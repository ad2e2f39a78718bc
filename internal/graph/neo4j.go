package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pulsegraph/pulsegraph/internal/identity"
	"github.com/pulsegraph/pulsegraph/internal/model"
)

// Neo4jStore implements Store against a Neo4j database. Ids are derived
// with the identity package, so MERGE by id gives idempotent writes, and
// concurrent refresh runs targeting the same company converge on
// last-writer-wins for mutable fields.
type Neo4jStore struct {
	client *Client
	now    func() time.Time
}

// NewNeo4jStore wraps a connected client.
func NewNeo4jStore(client *Client) *Neo4jStore {
	return &Neo4jStore{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Neo4jStore) timestamp() string {
	return s.now().Format(time.RFC3339Nano)
}

// write runs a single-statement write transaction and returns the value of
// the "id" column, if the statement returns one.
func (s *Neo4jStore) write(ctx context.Context, cypher string, params map[string]any, wantID bool) (string, error) {
	session := s.client.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		if !wantID {
			_, err = result.Consume(ctx)
			return "", err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		id, _ := record.Get("id")
		str, ok := id.(string)
		if !ok {
			return nil, fmt.Errorf("merge returned non-string id %T", id)
		}
		return str, nil
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (s *Neo4jStore) MergeCompany(ctx context.Context, name, ticker string) (string, error) {
	id := identity.Company(name, ticker)
	now := s.timestamp()

	cypher := `
MERGE (c:Company {id: $id})
ON CREATE SET c.created_at = $now
SET c.name = $name,
    c.ticker = $ticker,
    c.last_updated_at = $now
RETURN c.id AS id
`
	out, err := s.write(ctx, cypher, map[string]any{
		"id": id, "name": name, "ticker": ticker, "now": now,
	}, true)
	if err != nil {
		return "", fmt.Errorf("merge company: %w", err)
	}
	return out, nil
}

func (s *Neo4jStore) MergeEvent(ctx context.Context, companyID, eventType, period string, eventDate *time.Time) (string, error) {
	id := identity.Event(companyID, eventType, period)
	now := s.timestamp()

	var dateParam any
	if eventDate != nil {
		dateParam = eventDate.UTC().Format(time.RFC3339Nano)
	}

	cypher := `
MATCH (c:Company {id: $company_id})
MERGE (e:Event {id: $id})
ON CREATE SET e.created_at = $now
SET e.type = $type,
    e.period = $period,
    e.event_date = coalesce($event_date, e.event_date),
    e.last_updated_at = $now
MERGE (c)-[:HAS_EVENT]->(e)
RETURN e.id AS id
`
	out, err := s.write(ctx, cypher, map[string]any{
		"company_id": companyID, "id": id, "type": eventType,
		"period": period, "event_date": dateParam, "now": now,
	}, true)
	if err != nil {
		return "", fmt.Errorf("merge event: %w", err)
	}
	return out, nil
}

func (s *Neo4jStore) MergeSource(ctx context.Context, doc model.SourceDoc) (string, error) {
	id := identity.Source(doc.URL)
	now := s.timestamp()

	var publishedAt any
	if doc.PublishedAt != nil {
		publishedAt = doc.PublishedAt.UTC().Format(time.RFC3339Nano)
	}
	fetchedAt := doc.FetchedAt.UTC().Format(time.RFC3339Nano)

	cypher := `
MERGE (s:Source {id: $id})
ON CREATE SET s.url = $url,
              s.created_at = $now
SET s.title = coalesce($title, s.title),
    s.source_type = coalesce($source_type, s.source_type),
    s.site_name = coalesce($site_name, s.site_name),
    s.author = coalesce($author, s.author),
    s.language = coalesce($language, s.language),
    s.query = coalesce($query, s.query),
    s.published_at = coalesce($published_at, s.published_at),
    s.fetched_at = $fetched_at,
    s.last_updated_at = $now
RETURN s.id AS id
`
	out, err := s.write(ctx, cypher, map[string]any{
		"id":           id,
		"url":          doc.URL,
		"title":        nullable(doc.Title),
		"source_type":  nullable(string(doc.Category)),
		"site_name":    nullable(doc.SiteName),
		"author":       nullable(doc.Author),
		"language":     nullable(doc.Language),
		"query":        nullable(doc.Query),
		"published_at": publishedAt,
		"fetched_at":   fetchedAt,
		"now":          now,
	}, true)
	if err != nil {
		return "", fmt.Errorf("merge source: %w", err)
	}
	return out, nil
}

func (s *Neo4jStore) LinkSourceMentionsCompany(ctx context.Context, sourceID, companyID string) error {
	cypher := `
MATCH (s:Source {id: $source_id}), (c:Company {id: $company_id})
MERGE (s)-[:MENTIONS]->(c)
`
	_, err := s.write(ctx, cypher, map[string]any{
		"source_id": sourceID, "company_id": companyID,
	}, false)
	if err != nil {
		return fmt.Errorf("link mentions: %w", err)
	}
	return nil
}

func (s *Neo4jStore) MergeClaim(ctx context.Context, companyID, eventID, sourceID string, claim model.Claim) (string, error) {
	id := identity.Claim(claim.CompanyName, claim.Period, string(claim.Type), claim.Timeframe, claim.Text)
	now := s.timestamp()

	var value any
	if claim.Value != nil {
		value = *claim.Value
	}

	// The MATCH clauses make a missing company/event/source surface as a
	// "no rows" error: the orchestrator merges parents before children, so
	// hitting it indicates a sequencing bug, not a runtime condition.
	cypher := `
MATCH (c:Company {id: $company_id})
MATCH (e:Event {id: $event_id})
MATCH (s:Source {id: $source_id})
MERGE (cl:Claim {id: $id})
ON CREATE SET cl.created_at = $now
SET cl.text = $text,
    cl.claim_type = $claim_type,
    cl.direction = $direction,
    cl.timeframe = $timeframe,
    cl.value = $value,
    cl.unit = $unit,
    cl.confidence = $confidence,
    cl.evidence = $evidence,
    cl.last_updated_at = $now
MERGE (e)-[:HAS_CLAIM]->(cl)
MERGE (c)-[:HAS_CLAIM {period: $period}]->(cl)
MERGE (s)-[:SUPPORTS]->(cl)
MERGE (cl)-[:ABOUT]->(c)
RETURN cl.id AS id
`
	out, err := s.write(ctx, cypher, map[string]any{
		"company_id": companyID,
		"event_id":   eventID,
		"source_id":  sourceID,
		"id":         id,
		"text":       claim.Text,
		"claim_type": string(claim.Type),
		"direction":  string(claim.Direction),
		"timeframe":  claim.Timeframe,
		"value":      value,
		"unit":       claim.Unit,
		"confidence": claim.Confidence,
		"evidence":   claim.Evidence,
		"period":     claim.Period,
		"now":        now,
	}, true)
	if err != nil {
		return "", fmt.Errorf("merge claim: %w", err)
	}
	return out, nil
}

func (s *Neo4jStore) MergeSignal(ctx context.Context, signal model.Signal) (string, error) {
	id := identity.Signal(signal.CompanyID, signal.EventID, signal.Type, signal.Window)
	computedAt := signal.ComputedAt
	if computedAt.IsZero() {
		computedAt = s.now()
	}

	cypher := `
MATCH (c:Company {id: $company_id})
MATCH (e:Event {id: $event_id})
MERGE (sg:Signal {id: $id})
ON CREATE SET sg.signal_type = $signal_type,
              sg.window = $window
SET sg.score = $score,
    sg.volume = $volume,
    sg.computed_at = $computed_at
MERGE (sg)-[:ABOUT]->(c)
MERGE (sg)-[:IN_WINDOW]->(e)
RETURN sg.id AS id
`
	out, err := s.write(ctx, cypher, map[string]any{
		"company_id":  signal.CompanyID,
		"event_id":    signal.EventID,
		"id":          id,
		"signal_type": signal.Type,
		"score":       signal.Score,
		"volume":      int64(signal.Volume),
		"window":      signal.Window,
		"computed_at": computedAt.UTC().Format(time.RFC3339Nano),
	}, true)
	if err != nil {
		return "", fmt.Errorf("merge signal: %w", err)
	}
	return out, nil
}

// nullable maps empty strings to nil so coalesce() in the merge statements
// keeps any previously stored value.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
