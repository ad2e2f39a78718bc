package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// schemaStatements create uniqueness constraints and lookup indexes. All
// statements are IF NOT EXISTS, so bootstrap is safe to run on every start.
var schemaStatements = []string{
	"CREATE CONSTRAINT company_id IF NOT EXISTS FOR (c:Company) REQUIRE c.id IS UNIQUE",
	"CREATE CONSTRAINT event_id IF NOT EXISTS FOR (e:Event) REQUIRE e.id IS UNIQUE",
	"CREATE CONSTRAINT source_id IF NOT EXISTS FOR (s:Source) REQUIRE s.id IS UNIQUE",
	"CREATE CONSTRAINT claim_id IF NOT EXISTS FOR (cl:Claim) REQUIRE cl.id IS UNIQUE",
	"CREATE CONSTRAINT signal_id IF NOT EXISTS FOR (sg:Signal) REQUIRE sg.id IS UNIQUE",

	"CREATE INDEX company_name IF NOT EXISTS FOR (c:Company) ON (c.name)",
	"CREATE INDEX event_period IF NOT EXISTS FOR (e:Event) ON (e.period)",
	"CREATE INDEX source_type IF NOT EXISTS FOR (s:Source) ON (s.source_type)",
	"CREATE INDEX claim_type IF NOT EXISTS FOR (cl:Claim) ON (cl.claim_type)",
}

// EnsureSchema creates constraints and indexes. Idempotent.
func (c *Client) EnsureSchema(ctx context.Context) error {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		result, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("graph: ensure schema: %w", err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return fmt.Errorf("graph: ensure schema: %w", err)
		}
	}
	c.log.Debug("schema ensured", "statements", len(schemaStatements))
	return nil
}
