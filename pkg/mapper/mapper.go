// Package mapper converts schema-less backend records into the fixed catalog
// entity shapes. Every function is a pure derivation from one record; records
// with missing, renamed, or oddly encoded fields degrade to sensible defaults
// instead of failing.
package mapper

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/jsonutil"
	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
	"github.com/georgeGeorgakakos/optimusddc/pkg/optimusdb"
	"github.com/georgeGeorgakakos/optimusddc/pkg/uri"
)

const (
	defaultDescription    = "No description available"
	emptyTableDescription = "No data available for this table"
	backendSourceName     = "optimusdb"
	ownerEmailDomain      = "company.com"
	sentinelNA            = "N/A"
	maxHighlightFields    = 5
	sampleValueLimit      = 100
)

// Field-name heuristics, in priority order.
var (
	ownerFields     = []string{"created_by", "owner", "owners", "author", "ownership_details", "created_user", "user"}
	tagFields       = []string{"tags", "tag", "labels"}
	timestampFields = []string{"updated_at", "created_at", "timestamp", "last_modified"}
	highlightFields = []string{"author", "component", "behaviour", "status", "priority", "type", "category", "environment", "version", "owner"}
)

// programmaticFields pairs record fields with their display titles.
var programmaticFields = []struct {
	field string
	title string
}{
	{"metadata_type", "Type"},
	{"relationships", "Relationships"},
	{"associated_id", "Associated ID"},
	{"related_ids", "Related IDs"},
	{"scheduling_info", "Scheduling"},
	{"sla_constraints", "SLA"},
	{"behaviour", "Behavior"},
	{"component", "Component"},
	{"environment", "Environment"},
	{"version", "Version"},
}

// SchemaHint maps column names to raw backend types discovered out of band.
// A nil hint is valid; types are then inferred from sample values.
type SchemaHint map[string]string

// SchemaHintFromRecords builds a hint from schema-probe records. The probe
// dialects disagree on field names, so several are tried per record.
func SchemaHintFromRecords(records optimusdb.RecordSet) SchemaHint {
	hint := SchemaHint{}
	for _, rec := range records {
		name := rec.FirstString("name", "column_name", "field")
		if name == "" {
			continue
		}
		hint[name] = rec.FirstString("type", "data_type")
	}
	return hint
}

// Mapper derives catalog entities from normalized records.
type Mapper struct {
	logger *zap.Logger
	now    func() time.Time
}

func New(logger *zap.Logger) *Mapper {
	return &Mapper{logger: logger, now: time.Now}
}

// Table assembles the full table view from one record.
func (m *Mapper) Table(key string, id uri.ResourceID, rec optimusdb.Record, hint SchemaHint) models.Table {
	name := rec.String("name")
	if name == "" {
		name = id.Name
	}
	base := rec.FirstString("description", "desc")
	if base == "" {
		base = defaultDescription
	}

	return models.Table{
		Database:                 id.Database,
		Cluster:                  backendSourceName,
		Schema:                   id.Schema,
		Name:                     name,
		Key:                      key,
		Description:              m.EnhancedDescription(rec, base),
		Tags:                     m.Tags(rec),
		Badges:                   m.Badges(rec),
		Columns:                  m.Columns(rec, hint),
		Owners:                   m.Owners(rec),
		IsView:                   false,
		LastUpdatedTimestamp:     m.Timestamp(rec),
		ProgrammaticDescriptions: m.ProgrammaticDescriptions(rec),
	}
}

// EmptyTable is the placeholder returned when the backend has no record for
// the requested key.
func (m *Mapper) EmptyTable(key string) models.Table {
	id := uri.Decode(key)
	return models.Table{
		Database:                 id.Database,
		Cluster:                  backendSourceName,
		Schema:                   id.Schema,
		Name:                     id.Name,
		Key:                      key,
		Description:              emptyTableDescription,
		Tags:                     []models.Tag{},
		Badges:                   []models.Badge{},
		Columns:                  []models.Column{},
		Owners:                   []models.User{systemOwner()},
		LastUpdatedTimestamp:     m.now().Unix(),
		ProgrammaticDescriptions: []models.ProgrammaticDescription{},
	}
}

// Tags parses the first populated tag field. Three encodings occur in the
// wild: a JSON array, a comma-joined string, and a bare single tag.
func (m *Mapper) Tags(rec optimusdb.Record) []models.Tag {
	raw := rec.FirstString(tagFields...)
	if raw == "" {
		return []models.Tag{}
	}

	var names []string
	switch {
	case strings.HasPrefix(raw, "["):
		var parsed []any
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			m.logger.Warn("unparseable tag array", zap.String("value", raw))
			return []models.Tag{}
		}
		for _, v := range parsed {
			names = append(names, jsonutil.FlexibleString(v))
		}
	case strings.Contains(raw, ","):
		names = splitTrimmed(raw)
	default:
		names = []string{raw}
	}

	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		tags = append(tags, models.Tag{TagName: name, TagType: "default"})
	}
	return tags
}

// Owners scans the owner field candidates in priority order, deduplicating by
// exact name. Emails are synthesized since the backend stores bare names.
// A record without any owner field yields the system owner.
func (m *Mapper) Owners(rec optimusdb.Record) []models.User {
	var owners []models.User
	seen := map[string]bool{}

	for _, field := range ownerFields {
		value := rec.String(field)
		if value == "" {
			continue
		}
		for _, name := range splitTrimmed(value) {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			owners = append(owners, models.User{
				Email:       syntheticEmail(name),
				DisplayName: name,
				FullName:    name,
				IsActive:    true,
			})
		}
	}

	if len(owners) == 0 {
		owners = append(owners, systemOwner())
	}
	return owners
}

// Badges derives status and priority badges. Active status renders as
// success; critical or high priority renders as danger via the category.
func (m *Mapper) Badges(rec optimusdb.Record) []models.Badge {
	var badges []models.Badge
	if status := rec.String("status"); status != "" {
		badges = append(badges, models.Badge{BadgeName: status, Category: models.BadgeCategoryStatus})
	}
	if priority := rec.String("priority"); priority != "" {
		badges = append(badges, models.Badge{BadgeName: priority, Category: models.BadgeCategoryPriority})
	}
	if badges == nil {
		return []models.Badge{}
	}
	return badges
}

// EnhancedDescription appends up to five highlight fields after the base
// description. Fields holding the literal "N/A" are skipped.
func (m *Mapper) EnhancedDescription(rec optimusdb.Record, base string) string {
	var parts []string
	for _, field := range highlightFields {
		value := rec.String(field)
		if value == "" || value == sentinelNA {
			continue
		}
		parts = append(parts, fmt.Sprintf("**%s:** %s", titleCase(field), value))
		if len(parts) == maxHighlightFields {
			break
		}
	}
	if len(parts) == 0 {
		return base
	}
	return base + "\n\n" + strings.Join(parts, " | ")
}

// ProgrammaticDescriptions emits one line per populated metadata field.
func (m *Mapper) ProgrammaticDescriptions(rec optimusdb.Record) []models.ProgrammaticDescription {
	descriptions := []models.ProgrammaticDescription{}
	for _, pd := range programmaticFields {
		value := rec.String(pd.field)
		if value == "" || value == sentinelNA {
			continue
		}
		descriptions = append(descriptions, models.ProgrammaticDescription{
			Source: pd.field,
			Text:   pd.title + ": " + value,
		})
	}
	return descriptions
}

// Columns turns every non-internal record field into a column. Field order
// is the record's sorted field order, so sort_order is dense and stable for
// a given record shape. Sample values are truncated for display.
func (m *Mapper) Columns(rec optimusdb.Record, hint SchemaHint) []models.Column {
	columns := []models.Column{}
	sortOrder := 0

	for _, field := range rec.FieldNames() {
		if strings.HasPrefix(field, "_internal_") || strings.HasPrefix(field, "__") {
			continue
		}

		var colType string
		if raw, ok := hint[field]; ok && raw != "" {
			colType = NormalizeColumnType(raw)
		} else {
			colType = InferColumnType(rec[field])
		}

		display := "NULL"
		if rec[field] != nil {
			display = jsonutil.Truncate(jsonutil.FlexibleString(rec[field]), sampleValueLimit)
		}

		columns = append(columns, models.Column{
			Name:        field,
			Description: titleCase(field),
			ColType:     colType,
			SortOrder:   sortOrder,
			Stats: []models.ColumnStat{{
				StatType:   "sample_value",
				StatVal:    display,
				StartEpoch: 0,
				EndEpoch:   m.now().Unix(),
			}},
			Badges: []models.Badge{},
		})
		sortOrder++
	}
	return columns
}

// Timestamp extracts the record's freshness from known timestamp fields,
// accepting epoch numbers and ISO-8601 strings. Falls back to now.
func (m *Mapper) Timestamp(rec optimusdb.Record) int64 {
	for _, field := range timestampFields {
		value, ok := rec[field]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case float64:
			return int64(v)
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return n
			}
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t.Unix()
			}
			if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
				return t.Unix()
			}
		}
	}
	return m.now().Unix()
}

// LineageItems decodes one direction's lineage field: a JSON array of bare
// key strings or {key, level} objects.
func (m *Mapper) LineageItems(raw string) ([]models.LineageItem, error) {
	if raw == "" {
		return []models.LineageItem{}, nil
	}
	var parsed []any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return []models.LineageItem{}, fmt.Errorf("decode lineage field: %w", err)
	}

	items := make([]models.LineageItem, 0, len(parsed))
	for _, entry := range parsed {
		item := models.LineageItem{Level: 1, Source: backendSourceName, Badges: []models.Badge{}}
		switch v := entry.(type) {
		case string:
			item.Key = v
		case map[string]any:
			if key, ok := v["key"].(string); ok {
				item.Key = key
			}
			if level, ok := v["level"].(float64); ok {
				item.Level = int(level)
			}
		default:
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// ParseStatistics decodes the statistics JSON field, defaulting to zeroed
// row and column counts when the field is empty or unparseable.
func (m *Mapper) ParseStatistics(raw string) []models.ColumnStat {
	if raw != "" {
		var stats []models.ColumnStat
		if err := json.Unmarshal([]byte(raw), &stats); err == nil {
			return stats
		}
		m.logger.Warn("unparseable statistics field", zap.String("value", jsonutil.Truncate(raw, 200)))
	}
	now := m.now().Unix()
	return []models.ColumnStat{
		{StatType: "row_count", StatVal: "0", StartEpoch: 0, EndEpoch: now},
		{StatType: "col_count", StatVal: "0", StartEpoch: 0, EndEpoch: now},
	}
}

// SearchDocument flattens a table into the shape the external search service
// indexes. Underscore-prefixed columns are omitted.
func (m *Mapper) SearchDocument(t models.Table) models.SearchDocument {
	columnNames := []string{}
	for _, col := range t.Columns {
		if strings.HasPrefix(col.Name, "_") {
			continue
		}
		columnNames = append(columnNames, col.Name)
	}
	tags := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		tags = append(tags, tag.TagName)
	}
	badges := make([]string, 0, len(t.Badges))
	for _, badge := range t.Badges {
		badges = append(badges, badge.BadgeName)
	}

	return models.SearchDocument{
		Name:                 t.Name,
		Schema:               t.Schema,
		Database:             t.Database,
		Cluster:              t.Cluster,
		Description:          t.Description,
		ColumnNames:          columnNames,
		Tags:                 tags,
		Badges:               badges,
		Key:                  t.Key,
		LastUpdatedTimestamp: t.LastUpdatedTimestamp,
		ResourceType:         "table",
	}
}

// NormalizeColumnType folds raw backend type names into the fixed display
// set. Matching is by substring, checked from most to least specific class.
func NormalizeColumnType(raw string) string {
	if raw == "" {
		return "varchar"
	}
	upper := strings.ToUpper(raw)

	switch {
	case containsAny(upper, "TEXT", "VARCHAR", "STRING", "CHAR", "CLOB"):
		return "varchar"
	case containsAny(upper, "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT"):
		return "int"
	case containsAny(upper, "FLOAT", "DOUBLE", "DECIMAL", "NUMERIC", "REAL"):
		return "float"
	case containsAny(upper, "TIMESTAMP", "DATETIME", "DATE", "TIME"):
		return "timestamp"
	case containsAny(upper, "BOOLEAN", "BOOL", "BIT"):
		return "boolean"
	case strings.Contains(upper, "JSON"):
		return "json"
	case containsAny(upper, "BLOB", "BINARY", "BYTEA"):
		return "binary"
	default:
		return "varchar"
	}
}

// InferColumnType guesses a display type from a sample value. JSON decoding
// gives us float64 for all numbers, so integral floats count as int. Strings
// shaped like ISO timestamps count as timestamp.
func InferColumnType(value any) string {
	switch v := value.(type) {
	case bool:
		return "boolean"
	case float64:
		if math.Trunc(v) == v {
			return "int"
		}
		return "float"
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return "int"
		}
		return "float"
	case string:
		if strings.Contains(v, "T") && (strings.Contains(v, "-") || strings.Contains(v, ":")) {
			return "timestamp"
		}
		return "varchar"
	default:
		return "varchar"
	}
}

func splitTrimmed(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func syntheticEmail(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", ".") + "@" + ownerEmailDomain
}

func systemOwner() models.User {
	return models.User{
		Email:       "system@" + ownerEmailDomain,
		DisplayName: "system",
		FullName:    "system",
		IsActive:    true,
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func titleCase(field string) string {
	words := strings.Fields(strings.ReplaceAll(field, "_", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
