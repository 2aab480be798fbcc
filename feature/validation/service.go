package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"lake-validator/core/config"
	"lake-validator/core/logger"
	"lake-validator/core/reconcile"
	"lake-validator/core/schema"
	"lake-validator/core/storage"
	"lake-validator/core/warehouse"
	"lake-validator/feature/dicom"
	"lake-validator/feature/fhir"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoResourceTypes is returned when a run would reconcile nothing.
var ErrNoResourceTypes = errors.New("no resource types selected")

// Service wires schemas, sources and the warehouse into validation runs.
type Service struct {
	cfg    *config.Config
	logger *zap.Logger

	newStorage   func(storage.Config) (storage.Client, error)
	newWarehouse func(warehouse.Config, *zap.Logger) (reconcile.MaterializedCounter, error)
	newFhir      func(fhir.Config, *zap.Logger) (reconcile.ExpectedCounter, error)
	newDicom     func(dicom.Config, *zap.Logger) (reconcile.ExpectedCounter, error)
}

// NewService creates a new validation service.
func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		cfg:        cfg,
		logger:     logger,
		newStorage: storage.NewClient,
		newWarehouse: func(c warehouse.Config, l *zap.Logger) (reconcile.MaterializedCounter, error) {
			return warehouse.NewClient(c, l)
		},
		newFhir: func(c fhir.Config, l *zap.Logger) (reconcile.ExpectedCounter, error) {
			return fhir.New(c, l)
		},
		newDicom: func(c dicom.Config, l *zap.Logger) (reconcile.ExpectedCounter, error) {
			return dicom.New(c, l)
		},
	}
}

// LoadSchemas loads the schema index from the configured source.
func (s *Service) LoadSchemas(ctx context.Context) (schema.Index, error) {
	switch s.cfg.Schema.Source {
	case schema.SourceStorage:
		client, err := s.newStorage(s.cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		s.logger.Info("Loading schemas from storage",
			zap.String("bucket", s.cfg.Storage.Bucket),
			zap.String("prefix", s.cfg.Schema.Prefix))
		return schema.LoadFromStorage(ctx, client, s.cfg.Storage.Bucket, s.cfg.Schema.Prefix)
	case schema.SourceDirectory, "":
		s.logger.Info("Loading schemas from directory", zap.String("directory", s.cfg.Schema.Directory))
		return schema.Load(s.cfg.Schema.Directory)
	default:
		return nil, fmt.Errorf("unknown schema source: %s", s.cfg.Schema.Source)
	}
}

// ValidateFhir reconciles every FHIR resource type, or the configured subset.
func (s *Service) ValidateFhir(ctx context.Context) (*reconcile.Verdict, error) {
	index, err := s.LoadSchemas(ctx)
	if err != nil {
		return nil, err
	}

	types, err := SelectResourceTypes(index, s.cfg.Validation.ResourceTypes)
	if err != nil {
		return nil, err
	}

	source, err := s.newFhir(s.cfg.Fhir, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create fhir client: %w", err)
	}

	sink, err := s.newWarehouse(s.cfg.Warehouse, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse client: %w", err)
	}

	s.logger.Info("Validating FHIR data",
		zap.String("fhir_server", s.cfg.Fhir.ServerURL),
		zap.String("warehouse", s.cfg.Warehouse.Host()),
		zap.String("database", s.cfg.Warehouse.Database),
		zap.Int("resource_types", len(types)),
		zap.Bool("customized_schema", s.cfg.Validation.CustomizedSchema))

	unit := reconcile.NewUnit(source, sink, schema.FlattenAll(index), s.logger).
		WithCustomized(s.cfg.Validation.CustomizedSchema)

	return s.run(ctx, unit, types), nil
}

// ValidateDicom reconciles the DICOM metadata table against the changefeed.
func (s *Service) ValidateDicom(ctx context.Context) (*reconcile.Verdict, error) {
	source, err := s.newDicom(s.cfg.Dicom, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create dicom client: %w", err)
	}

	whCfg := s.cfg.Warehouse
	whCfg.Namespace = s.cfg.Dicom.Namespace
	whCfg.Database = s.cfg.Dicom.Database

	sink, err := s.newWarehouse(whCfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse client: %w", err)
	}

	table := s.cfg.Dicom.Table
	s.logger.Info("Validating DICOM data",
		zap.String("dicom_server", s.cfg.Dicom.ServerURL),
		zap.String("warehouse", whCfg.Host()),
		zap.String("database", whCfg.Database),
		zap.String("table", table))

	unit := reconcile.NewUnit(source, sink, nil, s.logger).
		WithColumnCount(table, s.cfg.Dicom.ExpectedColumns)

	return s.run(ctx, unit, []string{table}), nil
}

func (s *Service) run(ctx context.Context, unit reconcile.Reconciler, types []string) *reconcile.Verdict {
	runID := uuid.NewString()
	log := logger.WithRunID(s.logger, runID)

	if timeout := s.cfg.Validation.TimeoutSeconds; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	verdict := reconcile.NewRunner(unit, s.cfg.Validation, log).Run(ctx, types)
	verdict.RunID = runID

	log.Info("Validation run finished",
		zap.Bool("passed", verdict.Passed()),
		zap.Int("resource_types", len(types)),
		zap.Int("failures", len(verdict.Failures)),
		zap.Int("skipped", len(verdict.Skipped)),
		zap.Duration("execution_time", verdict.Duration))

	return verdict
}

// SelectResourceTypes returns the requested comma separated subset of the index,
// or every resource type when subset is empty. An empty selection is an error.
func SelectResourceTypes(index schema.Index, subset string) ([]string, error) {
	if strings.TrimSpace(subset) == "" {
		types := index.ResourceTypes()
		if len(types) == 0 {
			return nil, fmt.Errorf("%w: schema index is empty", ErrNoResourceTypes)
		}
		return types, nil
	}

	var types, unknown []string
	for _, rt := range strings.Split(subset, ",") {
		rt = strings.TrimSpace(rt)
		if rt == "" {
			continue
		}
		if _, ok := index[rt]; !ok {
			unknown = append(unknown, rt)
			continue
		}
		types = append(types, rt)
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("no schema for resource types: %s", strings.Join(unknown, ", "))
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: %q names no resource type", ErrNoResourceTypes, subset)
	}
	return types, nil
}
