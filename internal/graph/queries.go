package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

// FindCompanyByName looks a company up by case-insensitive name. Returns
// (nil, nil) when no company matches.
func (s *Neo4jStore) FindCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	session := s.client.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	cypher := `
MATCH (c:Company)
WHERE toLower(c.name) = toLower($name)
RETURN c.id AS id, c.name AS name, c.ticker AS ticker, c.last_updated_at AS last_updated_at
LIMIT 1
`
	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return (*model.Company)(nil), nil
		}
		r := records[0]
		return &model.Company{
			ID:            stringValue(r.AsMap()["id"]),
			Name:          stringValue(r.AsMap()["name"]),
			Ticker:        stringValue(r.AsMap()["ticker"]),
			LastUpdatedAt: stringValue(r.AsMap()["last_updated_at"]),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}
	return out.(*model.Company), nil
}

// LatestFetchByCategory returns, per source category, the most recent fetch
// timestamp among the sources supporting this company/period's claims. The
// freshness evaluator consumes this directly.
func (s *Neo4jStore) LatestFetchByCategory(ctx context.Context, companyID, period string) ([]model.CategoryFetch, error) {
	session := s.client.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	cypher := `
MATCH (c:Company {id: $company_id})-[:HAS_EVENT]->(e:Event {period: $period})
MATCH (e)-[:HAS_CLAIM]->(cl:Claim)<-[:SUPPORTS]-(s:Source)
WITH s.source_type AS source_type, max(datetime(s.fetched_at)) AS last_fetched
RETURN source_type, toString(last_fetched) AS last_fetched
`
	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"company_id": companyID, "period": period,
		})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]model.CategoryFetch, 0, len(records))
		for _, r := range records {
			m := r.AsMap()
			rows = append(rows, model.CategoryFetch{
				Category:      model.SourceCategory(stringValue(m["source_type"])),
				LastFetchedAt: parseTime(stringValue(m["last_fetched"])),
			})
		}
		return rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("latest fetch by category: %w", err)
	}
	return out.([]model.CategoryFetch), nil
}

// ClaimsWithSources returns claims for a company/period joined with their
// supporting sources, ordered by confidence descending and then by
// last-updated descending. The two-key ordering is the stable tie-break
// that keeps repeated queries reproducible.
func (s *Neo4jStore) ClaimsWithSources(ctx context.Context, companyID, period string, limit int) ([]model.RankedClaim, error) {
	if limit <= 0 {
		limit = 15
	}
	session := s.client.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	cypher := `
MATCH (c:Company {id: $company_id})-[:HAS_EVENT]->(e:Event {period: $period})
MATCH (e)-[:HAS_CLAIM]->(cl:Claim)
OPTIONAL MATCH (s:Source)-[:SUPPORTS]->(cl)
WITH cl, collect(DISTINCT s {.url, .title, .source_type, .published_at, .fetched_at}) AS sources
RETURN cl.id AS id, cl.text AS text, cl.claim_type AS claim_type,
       cl.direction AS direction, cl.confidence AS confidence,
       cl.last_updated_at AS last_updated_at, sources
ORDER BY cl.confidence DESC, cl.last_updated_at DESC, cl.id ASC
LIMIT $limit
`
	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"company_id": companyID, "period": period, "limit": int64(limit),
		})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]model.RankedClaim, 0, len(records))
		for _, r := range records {
			m := r.AsMap()
			row := model.RankedClaim{
				ID:            stringValue(m["id"]),
				Text:          stringValue(m["text"]),
				Type:          model.ClaimType(stringValue(m["claim_type"])),
				Direction:     model.Direction(stringValue(m["direction"])),
				Confidence:    floatValue(m["confidence"]),
				LastUpdatedAt: stringValue(m["last_updated_at"]),
			}
			if sources, ok := m["sources"].([]any); ok {
				for _, raw := range sources {
					sm, ok := raw.(map[string]any)
					if !ok || len(sm) == 0 {
						continue
					}
					row.Sources = append(row.Sources, model.SourceRef{
						URL:         stringValue(sm["url"]),
						Title:       stringValue(sm["title"]),
						Category:    stringValue(sm["source_type"]),
						PublishedAt: stringValue(sm["published_at"]),
						FetchedAt:   stringValue(sm["fetched_at"]),
					})
				}
			}
			rows = append(rows, row)
		}
		return rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("claims with sources: %w", err)
	}
	return out.([]model.RankedClaim), nil
}

// GetSignal returns the signal for (company, period, window, type), or
// (nil, nil) if none has been computed yet.
func (s *Neo4jStore) GetSignal(ctx context.Context, companyID, period, window, signalType string) (*model.Signal, error) {
	session := s.client.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	cypher := `
MATCH (c:Company {id: $company_id})-[:HAS_EVENT]->(e:Event {period: $period})
MATCH (sg:Signal)-[:ABOUT]->(c)
MATCH (sg)-[:IN_WINDOW]->(e)
WHERE sg.signal_type = $signal_type AND sg.window = $window
RETURN sg.id AS id, sg.signal_type AS signal_type, sg.score AS score,
       sg.volume AS volume, sg.window AS window, sg.computed_at AS computed_at
LIMIT 1
`
	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"company_id": companyID, "period": period,
			"window": window, "signal_type": signalType,
		})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return (*model.Signal)(nil), nil
		}
		m := records[0].AsMap()
		sig := &model.Signal{
			ID:     stringValue(m["id"]),
			Type:   stringValue(m["signal_type"]),
			Score:  floatValue(m["score"]),
			Volume: int(intValue(m["volume"])),
			Window: stringValue(m["window"]),
		}
		if ts := parseTime(stringValue(m["computed_at"])); ts != nil {
			sig.ComputedAt = *ts
		}
		return sig, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get signal: %w", err)
	}
	return out.(*model.Signal), nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func intValue(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	ts = ts.UTC()
	return &ts
}
