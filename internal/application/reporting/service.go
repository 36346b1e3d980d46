// Package reporting renders the billing CSV exports and archives them in
// object storage.
package reporting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/domain/client"
	"github.com/turtacn/MRM-Billing/internal/domain/settings"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/storage/minio"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

const (
	ContentTypeCSV = "text/csv"

	// masterFolder holds the client master, which is not tied to a month.
	masterFolder = "all"

	publishTimeout = 2 * time.Minute
)

// Export is a rendered CSV file.
type Export struct {
	Kind     Kind   `json:"kind"`
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
}

// PublishResult locates an archived export.
type PublishResult struct {
	Kind      Kind      `json:"kind"`
	Filename  string    `json:"filename"`
	Bucket    string    `json:"bucket"`
	ObjectKey string    `json:"object_key"`
	Size      int64     `json:"size"`
	ETag      string    `json:"etag,omitempty"`
	Published time.Time `json:"published_at"`
}

// ObjectStore is the slice of the object store exports need.
type ObjectStore interface {
	Upload(ctx context.Context, req *minio.UploadRequest) (*minio.UploadResult, error)
}

// Lock serialises export regeneration across processes.
type Lock interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}

// LockProvider returns the lock guarding name.
type LockProvider func(name string) Lock

type ExportService interface {
	Render(ctx context.Context, kind Kind, month domainbilling.Month, fyStart int) (*Export, error)
	Publish(ctx context.Context, kind Kind, month domainbilling.Month, fyStart int) (*PublishResult, error)
	PublishMonth(ctx context.Context, month domainbilling.Month, fyStart int, kinds ...Kind) ([]*PublishResult, error)
}

type ExportDependencies struct {
	Entries  domainbilling.EntryRepository
	Clients  client.Directory
	Settings settings.Provider
	Store    ObjectStore
	Locks    LockProvider
	Metrics  *prometheus.AppMetrics
	Logger   logging.Logger
	Clock    func() time.Time
}

type exportServiceImpl struct {
	exporter Exporter
	entries  domainbilling.EntryRepository
	clients  client.Directory
	settings settings.Provider
	store    ObjectStore
	locks    LockProvider
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
	now      func() time.Time
}

// NewExportService wires the export service. Store may be nil, in which case
// only Render is usable.
func NewExportService(deps ExportDependencies) (ExportService, error) {
	if deps.Entries == nil || deps.Clients == nil || deps.Settings == nil {
		return nil, errors.New(errors.ErrCodeInternal, "export service requires entries, clients and settings")
	}
	s := &exportServiceImpl{
		exporter: NewExporter(),
		entries:  deps.Entries,
		clients:  deps.Clients,
		settings: deps.Settings,
		store:    deps.Store,
		locks:    deps.Locks,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		now:      deps.Clock,
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// ObjectKey is the archive path of an export: fy=<start>/<month>/<file>.
func ObjectKey(kind Kind, month domainbilling.Month, fyStart int) string {
	folder := string(month)
	if !kind.Monthly() {
		folder = masterFolder
	}
	return fmt.Sprintf("fy=%d/%s/%s", fyStart, folder, Filename(kind, month))
}

func (s *exportServiceImpl) Render(ctx context.Context, kind Kind, month domainbilling.Month, fyStart int) (*Export, error) {
	if _, ok := headers[kind]; !ok {
		return nil, errors.Newf(errors.ErrCodeExportKindUnsupported, "unsupported export kind %q", kind)
	}
	if kind.Monthly() && !month.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidMonth, "unrecognised month code %q", month)
	}
	fyStart, err := s.resolveFY(ctx, fyStart)
	if err != nil {
		return nil, err
	}

	var data Data
	if kind.Monthly() {
		data.Entries, err = s.entries.ListByMonth(ctx, month, fyStart)
	} else {
		data.Clients, err = s.clients.List(ctx, false)
	}
	if err != nil {
		return nil, err
	}

	out, err := s.exporter.Render(kind, data)
	if err != nil {
		return nil, err
	}
	return &Export{Kind: kind, Filename: Filename(kind, month), Data: out}, nil
}

func (s *exportServiceImpl) Publish(ctx context.Context, kind Kind, month domainbilling.Month, fyStart int) (*PublishResult, error) {
	if s.store == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "export storage is not configured")
	}
	fyStart, err := s.resolveFY(ctx, fyStart)
	if err != nil {
		return nil, err
	}

	exp, err := s.Render(ctx, kind, month, fyStart)
	if err != nil {
		s.metrics.RecordExport(string(kind), 0, err)
		return nil, err
	}

	key := ObjectKey(kind, month, fyStart)
	up, err := s.store.Upload(ctx, &minio.UploadRequest{
		ObjectKey:   key,
		Data:        exp.Data,
		ContentType: ContentTypeCSV,
		Metadata: map[string]string{
			"kind":           string(kind),
			"month":          string(month),
			"financial-year": domainbilling.NewFinancialYear(fyStart).Short(),
		},
	})
	s.metrics.RecordExport(string(kind), len(exp.Data), err)
	if err != nil {
		s.logger.Error("failed to publish export",
			logging.String("kind", string(kind)), logging.String("object_key", key), logging.Err(err))
		return nil, err
	}

	s.logger.Info("export published",
		logging.String("kind", string(kind)),
		logging.String("object_key", key),
		logging.Int64("size", up.Size))
	return &PublishResult{
		Kind:      kind,
		Filename:  exp.Filename,
		Bucket:    up.Bucket,
		ObjectKey: key,
		Size:      up.Size,
		ETag:      up.ETag,
		Published: s.now(),
	}, nil
}

// PublishMonth regenerates several exports of one month concurrently under
// the month's lock. No kinds means MonthlyKinds. Results keep the order of
// kinds.
func (s *exportServiceImpl) PublishMonth(ctx context.Context, month domainbilling.Month, fyStart int, kinds ...Kind) ([]*PublishResult, error) {
	if !month.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidMonth, "unrecognised month code %q", month)
	}
	if len(kinds) == 0 {
		kinds = MonthlyKinds
	}
	fyStart, err := s.resolveFY(ctx, fyStart)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if s.locks != nil {
		lock := s.locks(fmt.Sprintf("exports:%d:%s", fyStart, month))
		if err := lock.Lock(ctx); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to acquire export lock")
		}
		defer func() {
			if err := lock.Unlock(context.Background()); err != nil {
				s.logger.Warn("failed to release export lock", logging.Month(string(month)), logging.Err(err))
			}
		}()
	}

	results := make([]*PublishResult, len(kinds))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			res, err := s.Publish(gctx, kind, month, fyStart)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *exportServiceImpl) resolveFY(ctx context.Context, fyStart int) (int, error) {
	if fyStart != 0 {
		return fyStart, nil
	}
	cur, err := s.settings.Current(ctx)
	if err != nil {
		return 0, err
	}
	return cur.FinancialYear.StartYear, nil
}

//Personal.AI order the ending
