package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/mapper"
	"github.com/georgeGeorgakakos/optimusddc/pkg/sqlutil"
)

// SchemaDiscovery resolves column names and types for a backend table. The
// backend's SQL dialect is unknown, so dialect-specific probes are tried in
// order before falling back to sample-row inference.
type SchemaDiscovery interface {
	TableSchema(ctx context.Context, schemaName string) mapper.SchemaHint
}

type schemaDiscovery struct {
	executor CommandExecutor
	logger   *zap.Logger
}

func NewSchemaDiscovery(executor CommandExecutor, logger *zap.Logger) SchemaDiscovery {
	return &schemaDiscovery{executor: executor, logger: logger}
}

func (s *schemaDiscovery) TableSchema(ctx context.Context, schemaName string) mapper.SchemaHint {
	if err := sqlutil.GuardArguments(map[string]string{"schema": schemaName}); err != nil {
		s.logger.Warn("schema probe rejected", zap.Error(err))
		return nil
	}
	escaped := sqlutil.Escape(schemaName)

	probes := []string{
		fmt.Sprintf("PRAGMA table_info(%s);", escaped),
		fmt.Sprintf("DESCRIBE %s;", escaped),
		fmt.Sprintf("SELECT column_name, data_type FROM information_schema.columns WHERE table_name='%s';", escaped),
	}

	for _, probe := range probes {
		records, err := s.executor.Execute(ctx, probe)
		if err != nil || len(records) == 0 {
			continue
		}
		hint := mapper.SchemaHintFromRecords(records)
		if len(hint) > 0 {
			s.logger.Debug("schema resolved by probe",
				zap.String("schema", schemaName),
				zap.Int("columns", len(hint)))
			return hint
		}
	}

	// None of the dialect probes worked; infer from one sample row.
	sample, err := s.executor.Execute(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 1;", escaped))
	if err != nil || len(sample) == 0 {
		s.logger.Warn("schema unresolved", zap.String("schema", schemaName))
		return nil
	}

	hint := mapper.SchemaHint{}
	for _, field := range sample[0].FieldNames() {
		hint[field] = mapper.InferColumnType(sample[0][field])
	}
	s.logger.Debug("schema inferred from sample",
		zap.String("schema", schemaName),
		zap.Int("columns", len(hint)))
	return hint
}
