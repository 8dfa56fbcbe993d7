package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/mapper"
	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
	"github.com/georgeGeorgakakos/optimusddc/pkg/sqlutil"
	"github.com/georgeGeorgakakos/optimusddc/pkg/uri"
)

// CatalogService is the public catalog operation surface. Read operations
// degrade to empty or placeholder results when the backend misbehaves;
// errors surface only for caller-contract violations such as unsafe
// arguments.
type CatalogService interface {
	GetTable(ctx context.Context, key string) (models.Table, error)
	GetTableDescription(ctx context.Context, key string) (string, error)
	PutTableDescription(ctx context.Context, key, description string) error
	GetColumnDescription(ctx context.Context, key, columnName string) (string, error)
	PutColumnDescription(ctx context.Context, key, columnName, description string) error

	GetTags(ctx context.Context) []models.TagUsage
	AddTag(ctx context.Context, key, tag string) error
	DeleteTag(ctx context.Context, key, tag string) error
	GetBadges(ctx context.Context) []models.Badge
	AddBadge(ctx context.Context, key, badgeName string) error
	DeleteBadge(ctx context.Context, key, badgeName string) error
	AddOwner(ctx context.Context, key, owner string) error
	DeleteOwner(ctx context.Context, key, owner string) error

	GetLineage(ctx context.Context, key, direction string, depth int) models.Lineage
	SetLineage(ctx context.Context, key string, upstream, downstream []string) error

	GetStatistics(ctx context.Context, key string) []models.ColumnStat
	GetCatalogStatistics(ctx context.Context) models.CatalogStatistics
	GetGenerationCode(ctx context.Context, key string) string

	PopularTables(ctx context.Context, limit int) []models.DiscoveredDataset
	LatestUpdatedTimestamp() int64
}

type catalogService struct {
	executor  CommandExecutor
	schemas   SchemaDiscovery
	discovery DiscoveryService
	mapper    *mapper.Mapper
	logger    *zap.Logger
}

func NewCatalogService(executor CommandExecutor, schemas SchemaDiscovery, discovery DiscoveryService, m *mapper.Mapper, logger *zap.Logger) CatalogService {
	return &catalogService{
		executor:  executor,
		schemas:   schemas,
		discovery: discovery,
		mapper:    m,
		logger:    logger,
	}
}

// tableFilter builds the WHERE clause locating one table row. The catalog
// table keys rows by metadata_type and name rather than schema and table.
func tableFilter(id uri.ResourceID) (string, error) {
	if err := sqlutil.GuardArguments(map[string]string{
		"schema": id.Schema,
		"name":   id.Name,
	}); err != nil {
		return "", err
	}
	return fmt.Sprintf("metadata_type='%s' and name='%s'",
		sqlutil.Escape(id.Schema), sqlutil.Escape(id.Name)), nil
}

func (s *catalogService) GetTable(ctx context.Context, key string) (models.Table, error) {
	id := uri.Decode(key)
	if id == uri.Sentinel() {
		s.logger.Warn("unresolvable table key", zap.String("key", key))
		return s.mapper.EmptyTable(key), nil
	}

	filter, err := tableFilter(id)
	if err != nil {
		return models.Table{}, err
	}

	hint := s.schemas.TableSchema(ctx, id.Schema)

	query := fmt.Sprintf("select * from %s where name='%s' limit 1;",
		sqlutil.Escape(id.Schema), sqlutil.Escape(id.Name))
	records, execErr := s.executor.Execute(ctx, query)
	if execErr != nil || len(records) == 0 {
		// The generic schema may not exist as its own table; the shared
		// catalog table is the authoritative fallback.
		records, execErr = s.executor.Execute(ctx,
			"select * from datacatalog where "+filter+" limit 1;")
	}
	if execErr != nil || len(records) == 0 {
		s.logger.Warn("table not found", zap.String("key", key), zap.Error(execErr))
		return s.mapper.EmptyTable(key), nil
	}

	return s.mapper.Table(key, id, records[0], hint), nil
}

func (s *catalogService) GetTableDescription(ctx context.Context, key string) (string, error) {
	id := uri.Decode(key)
	filter, err := tableFilter(id)
	if err != nil {
		return "", err
	}
	records, err := s.executor.Execute(ctx, "select description from datacatalog where "+filter+";")
	if err != nil || len(records) == 0 {
		return "", nil
	}
	return records[0].String("description"), nil
}

func (s *catalogService) PutTableDescription(ctx context.Context, key, description string) error {
	id := uri.Decode(key)
	filter, err := tableFilter(id)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("update datacatalog set description='%s' where %s;",
		sqlutil.Escape(description), filter)
	if _, err := s.executor.Execute(ctx, query); err != nil {
		return err
	}
	s.logger.Info("table description updated", zap.String("key", key))
	return nil
}

func (s *catalogService) GetColumnDescription(ctx context.Context, key, columnName string) (string, error) {
	descriptions, _, err := s.columnDescriptions(ctx, key)
	if err != nil {
		return "", err
	}
	return descriptions[columnName], nil
}

func (s *catalogService) PutColumnDescription(ctx context.Context, key, columnName, description string) error {
	descriptions, filter, err := s.columnDescriptions(ctx, key)
	if err != nil {
		return err
	}
	descriptions[columnName] = description

	encoded, err := json.Marshal(descriptions)
	if err != nil {
		return fmt.Errorf("encode column descriptions: %w", err)
	}
	query := fmt.Sprintf("update datacatalog set column_descriptions='%s' where %s;",
		sqlutil.Escape(string(encoded)), filter)
	if _, err := s.executor.Execute(ctx, query); err != nil {
		return err
	}
	s.logger.Info("column description updated",
		zap.String("key", key),
		zap.String("column", columnName))
	return nil
}

// columnDescriptions reads the per-column description map stored as one JSON
// field. A missing or unparseable field decodes to an empty map.
func (s *catalogService) columnDescriptions(ctx context.Context, key string) (map[string]string, string, error) {
	id := uri.Decode(key)
	filter, err := tableFilter(id)
	if err != nil {
		return nil, "", err
	}

	descriptions := map[string]string{}
	records, err := s.executor.Execute(ctx, "select column_descriptions from datacatalog where "+filter+";")
	if err == nil && len(records) > 0 {
		if raw := records[0].String("column_descriptions"); raw != "" {
			if jsonErr := json.Unmarshal([]byte(raw), &descriptions); jsonErr != nil {
				s.logger.Warn("unparseable column descriptions",
					zap.String("key", key))
				descriptions = map[string]string{}
			}
		}
	}
	return descriptions, filter, nil
}

func (s *catalogService) GetTags(ctx context.Context) []models.TagUsage {
	records, err := s.executor.Execute(ctx,
		"select tags from datacatalog where tags is not null and tags != '';")
	if err != nil {
		return []models.TagUsage{}
	}

	counts := map[string]int{}
	for _, rec := range records {
		for _, tag := range splitCommaList(rec.String("tags")) {
			counts[tag]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	usages := make([]models.TagUsage, 0, len(names))
	for _, name := range names {
		usages = append(usages, models.TagUsage{TagName: name, TagCount: counts[name]})
	}
	return usages
}

func (s *catalogService) AddTag(ctx context.Context, key, tag string) error {
	return s.mutateListField(ctx, key, "tags", tag, true)
}

func (s *catalogService) DeleteTag(ctx context.Context, key, tag string) error {
	return s.mutateListField(ctx, key, "tags", tag, false)
}

func (s *catalogService) GetBadges(ctx context.Context) []models.Badge {
	records, err := s.executor.Execute(ctx, "SELECT DISTINCT badge FROM badges;")
	if err != nil {
		return []models.Badge{}
	}
	badges := []models.Badge{}
	for _, rec := range records {
		if name := rec.String("badge"); name != "" {
			badges = append(badges, models.Badge{BadgeName: name, Category: models.BadgeCategoryDefault})
		}
	}
	return badges
}

func (s *catalogService) AddBadge(ctx context.Context, key, badgeName string) error {
	return s.mutateListField(ctx, key, "badges", badgeName, true)
}

func (s *catalogService) DeleteBadge(ctx context.Context, key, badgeName string) error {
	return s.mutateListField(ctx, key, "badges", badgeName, false)
}

func (s *catalogService) AddOwner(ctx context.Context, key, owner string) error {
	return s.mutateListField(ctx, key, "owners", owner, true)
}

func (s *catalogService) DeleteOwner(ctx context.Context, key, owner string) error {
	return s.mutateListField(ctx, key, "owners", owner, false)
}

// mutateListField implements the read-modify-write cycle shared by tag,
// badge, and owner mutations. The whole comma-joined field is replaced on
// every write; concurrent writers can lose updates since the backend offers
// no compare-and-swap.
func (s *catalogService) mutateListField(ctx context.Context, key, field, value string, add bool) error {
	id := uri.Decode(key)
	filter, err := tableFilter(id)
	if err != nil {
		return err
	}
	if err := sqlutil.GuardArguments(map[string]string{field: value}); err != nil {
		return err
	}

	records, err := s.executor.Execute(ctx,
		fmt.Sprintf("select %s from datacatalog where %s;", field, filter))
	if err != nil {
		return err
	}
	if !add && len(records) == 0 {
		return nil
	}

	var current []string
	if len(records) > 0 {
		raw := records[0].String(field)
		if raw == "" && field == "owners" {
			raw = records[0].String("created_by")
		}
		current = splitCommaList(raw)
	}

	if add {
		found := false
		for _, existing := range current {
			if existing == value {
				found = true
				break
			}
		}
		if !found {
			current = append(current, value)
		}
	} else {
		kept := current[:0]
		for _, existing := range current {
			if existing != value {
				kept = append(kept, existing)
			}
		}
		current = kept
	}

	query := fmt.Sprintf("update datacatalog set %s='%s' where %s;",
		field, sqlutil.Escape(strings.Join(current, ",")), filter)
	if _, err := s.executor.Execute(ctx, query); err != nil {
		return err
	}
	s.logger.Info("list field updated",
		zap.String("key", key),
		zap.String("field", field),
		zap.String("value", value),
		zap.Bool("add", add))
	return nil
}

func (s *catalogService) GetLineage(ctx context.Context, key, direction string, depth int) models.Lineage {
	lineage := models.Lineage{
		Key:                key,
		Direction:          direction,
		Depth:              depth,
		UpstreamEntities:   []models.LineageItem{},
		DownstreamEntities: []models.LineageItem{},
	}

	id := uri.Decode(key)
	filter, err := tableFilter(id)
	if err != nil {
		s.logger.Warn("lineage lookup rejected", zap.String("key", key), zap.Error(err))
		return lineage
	}

	records, err := s.executor.Execute(ctx,
		"SELECT lineage_upstream, lineage_downstream FROM datacatalog WHERE "+filter+";")
	if err != nil || len(records) == 0 {
		return lineage
	}

	// The two directions parse independently; a bad field on one side must
	// not blank the other.
	if direction == models.LineageDirectionUpstream || direction == models.LineageDirectionBoth {
		items, err := s.mapper.LineageItems(records[0].String("lineage_upstream"))
		if err != nil {
			s.logger.Warn("bad upstream lineage", zap.String("key", key), zap.Error(err))
		}
		lineage.UpstreamEntities = items
	}
	if direction == models.LineageDirectionDownstream || direction == models.LineageDirectionBoth {
		items, err := s.mapper.LineageItems(records[0].String("lineage_downstream"))
		if err != nil {
			s.logger.Warn("bad downstream lineage", zap.String("key", key), zap.Error(err))
		}
		lineage.DownstreamEntities = items
	}
	return lineage
}

func (s *catalogService) SetLineage(ctx context.Context, key string, upstream, downstream []string) error {
	id := uri.Decode(key)
	filter, err := tableFilter(id)
	if err != nil {
		return err
	}

	if upstream == nil {
		upstream = []string{}
	}
	if downstream == nil {
		downstream = []string{}
	}
	upstreamJSON, err := json.Marshal(upstream)
	if err != nil {
		return fmt.Errorf("encode upstream lineage: %w", err)
	}
	downstreamJSON, err := json.Marshal(downstream)
	if err != nil {
		return fmt.Errorf("encode downstream lineage: %w", err)
	}

	query := fmt.Sprintf("UPDATE datacatalog SET lineage_upstream='%s', lineage_downstream='%s' WHERE %s;",
		sqlutil.Escape(string(upstreamJSON)), sqlutil.Escape(string(downstreamJSON)), filter)
	if _, err := s.executor.Execute(ctx, query); err != nil {
		return err
	}
	s.logger.Info("lineage updated", zap.String("key", key))
	return nil
}

func (s *catalogService) GetStatistics(ctx context.Context, key string) []models.ColumnStat {
	id := uri.Decode(key)
	filter, err := tableFilter(id)
	if err != nil {
		s.logger.Warn("statistics lookup rejected", zap.String("key", key), zap.Error(err))
		return []models.ColumnStat{}
	}

	records, err := s.executor.Execute(ctx,
		"select statistics from datacatalog where "+filter+";")
	if err != nil {
		return []models.ColumnStat{}
	}
	raw := ""
	if len(records) > 0 {
		raw = records[0].String("statistics")
	}
	return s.mapper.ParseStatistics(raw)
}

func (s *catalogService) GetCatalogStatistics(ctx context.Context) models.CatalogStatistics {
	stats := models.CatalogStatistics{LastUpdated: time.Now().Unix()}

	if records, err := s.executor.Execute(ctx,
		"SELECT COUNT(*) as total FROM datacatalog;"); err == nil && len(records) > 0 {
		if total, ok := records[0].Int("total"); ok {
			stats.TotalDatasets = int(total)
		}
	}
	if records, err := s.executor.Execute(ctx,
		"SELECT COUNT(DISTINCT metadata_type) as total FROM datacatalog;"); err == nil && len(records) > 0 {
		if total, ok := records[0].Int("total"); ok {
			stats.TotalSchemas = int(total)
		}
	}

	// No cheap way to count columns across schema-less records; estimate
	// from the dataset count.
	stats.TotalColumns = stats.TotalDatasets * 10
	return stats
}

func (s *catalogService) GetGenerationCode(ctx context.Context, key string) string {
	id := uri.Decode(key)
	filter, err := tableFilter(id)
	if err != nil {
		return ""
	}
	records, err := s.executor.Execute(ctx,
		"select generation_code from datacatalog where "+filter+";")
	if err != nil || len(records) == 0 {
		return ""
	}
	return records[0].String("generation_code")
}

func (s *catalogService) PopularTables(ctx context.Context, limit int) []models.DiscoveredDataset {
	unique := DeduplicateDatasets(s.discovery.DiscoverDatasets(ctx))
	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

func (s *catalogService) LatestUpdatedTimestamp() int64 {
	return time.Now().Unix()
}
