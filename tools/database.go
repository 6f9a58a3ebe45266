package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"gorm.io/gorm"

	"github.com/agentdesk/agentdesk/log"
)

// PingInput is the (empty) input for the ping tool
type PingInput struct{}

// QueryInput defines the input for the query tool
type QueryInput struct {
	Query string `json:"query" description:"SQL query to run against the database"`
	Limit int    `json:"limit,omitempty" description:"Optional maximum number of rows to return"`
}

// DatabaseTools wraps the database binding behind the ping and query tools
type DatabaseTools struct {
	DB *gorm.DB
}

// NewDatabaseTools creates the database tools and registers them
func NewDatabaseTools(gk *genkit.Genkit, registry *Registry, db *gorm.DB) *DatabaseTools {
	t := &DatabaseTools{DB: db}
	if gk == nil || registry == nil {
		return t
	}

	registry.Register(genkit.DefineTool[*PingInput, map[string]interface{}](
		gk,
		"pingDatabase",
		"Checks database connectivity by running a trivial query and returning its single result row.",
		func(ctx *ai.ToolContext, input *PingInput) (map[string]interface{}, error) {
			res, err := t.Ping(ctx, nil)
			if err != nil {
				return nil, err
			}
			return res.(map[string]interface{}), nil
		},
	), t.Ping)

	registry.Register(genkit.DefineTool[*QueryInput, []map[string]interface{}](
		gk,
		"queryDatabase",
		"Runs a SQL query against the database and returns the result rows. Arguments: query (SQL string), limit (optional row cap).",
		func(ctx *ai.ToolContext, input *QueryInput) ([]map[string]interface{}, error) {
			if input == nil {
				return nil, fmt.Errorf("input is required")
			}
			res, err := t.Query(ctx, map[string]interface{}{
				"query": input.Query,
				"limit": input.Limit,
			})
			if err != nil {
				return nil, err
			}
			return res.([]map[string]interface{}), nil
		},
	), t.Query)

	return t
}

// Ping issues SELECT 1 and returns the single result row.
// A missing database binding is a real error, propagated to the host.
func (t *DatabaseTools) Ping(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if t.DB == nil {
		return nil, fmt.Errorf("database binding is not available")
	}

	row := map[string]interface{}{}
	if err := t.DB.WithContext(ctx).Raw("SELECT 1 AS ok").Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("ping query failed: %w", err)
	}
	return row, nil
}

// Query forwards the caller's SQL verbatim and returns the result rows.
// Empty results yield an empty slice, not an error.
func (t *DatabaseTools) Query(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if t.DB == nil {
		return nil, fmt.Errorf("database binding is not available")
	}

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("argument 'query' is required and must be a string")
	}

	if limit, ok := intArg(args["limit"]); ok && limit > 0 && !hasLimitClause(query) {
		// Model input arrives as a separate limit field, not inline SQL.
		// A query that already ends in LIMIT keeps its own clause.
		query = fmt.Sprintf("%s LIMIT %d", strings.TrimRight(strings.TrimSpace(query), ";"), limit)
	}

	log.Debugf(ctx, "Running query: %s", query)

	rows := make([]map[string]interface{}, 0)
	if err := t.DB.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

// limitClauseRe matches a trailing LIMIT [OFFSET] clause
var limitClauseRe = regexp.MustCompile(`(?i)\blimit\s+\d+(\s+offset\s+\d+)?\s*;?\s*$`)

func hasLimitClause(query string) bool {
	return limitClauseRe.MatchString(query)
}

// intArg normalizes the numeric types JSON decoding may hand us
func intArg(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
