package catalog

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"causelist/internal/causelist/backend"
	backendmocks "causelist/internal/causelist/backend/mocks"
	"causelist/internal/causelist/catalog/mocks"
	"causelist/internal/causelist/catalog/store"
	"causelist/internal/causelist/models"
	"causelist/internal/platform/metrics"
	"causelist/pkg/platform/sentinel"
)

// Catalog tests cover the cache-then-backend path, cache failure
// fallthrough and request collapsing.

type CatalogSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	client    *backendmocks.MockClient
	cache     *mocks.MockCache
	metrics   *metrics.Metrics
	service   *Service
	delhi     models.Selection
	districts models.OptionList
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.client = backendmocks.NewMockClient(s.ctrl)
	s.cache = mocks.NewMockCache(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var err error
	s.service, err = NewService(s.client, s.cache, WithMetrics(s.metrics), WithLogger(logger))
	s.Require().NoError(err)

	s.delhi = models.Selection{State: "Delhi"}
	s.districts = models.NewOptionList(models.LevelDistrict, []string{"North", "South"})
}

func (s *CatalogSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CatalogSuite) TestNewService() {
	s.Run("nil client returns error", func() {
		_, err := NewService(nil, s.cache)
		s.Error(err)
	})

	s.Run("nil cache is allowed", func() {
		svc, err := NewService(s.client, nil)
		s.NoError(err)
		s.Nil(svc.cache)
	})
}

func (s *CatalogSuite) TestOptions() {
	ctx := context.Background()
	path := []string{"Delhi"}

	s.Run("cache hit skips the backend", func() {
		s.cache.EXPECT().Find(gomock.Any(), models.LevelDistrict, path).Return(s.districts, nil)

		got, err := s.service.Options(ctx, models.LevelDistrict, s.delhi)
		s.Require().NoError(err)
		s.Equal(s.districts.Labels, got.Labels)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("district", "hit")))
	})

	s.Run("cache miss fetches and saves", func() {
		gomock.InOrder(
			s.cache.EXPECT().Find(gomock.Any(), models.LevelDistrict, path).Return(models.OptionList{}, sentinel.ErrNotFound),
			s.client.EXPECT().Options(gomock.Any(), models.LevelDistrict, s.delhi).Return(s.districts, nil),
			s.cache.EXPECT().Save(gomock.Any(), path, s.districts).Return(nil),
		)

		got, err := s.service.Options(ctx, models.LevelDistrict, s.delhi)
		s.Require().NoError(err)
		s.Equal(s.districts.Labels, got.Labels)
	})

	s.Run("cache failures fall through to the backend", func() {
		s.cache.EXPECT().Find(gomock.Any(), models.LevelDistrict, path).Return(models.OptionList{}, errors.New("redis down"))
		s.client.EXPECT().Options(gomock.Any(), models.LevelDistrict, s.delhi).Return(s.districts, nil)
		s.cache.EXPECT().Save(gomock.Any(), path, s.districts).Return(errors.New("redis down"))

		got, err := s.service.Options(ctx, models.LevelDistrict, s.delhi)
		s.Require().NoError(err)
		s.Equal(s.districts.Labels, got.Labels)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("district", "error")))
	})

	s.Run("backend errors are returned and not cached", func() {
		outage := &backend.TransportError{Category: backend.ErrorProviderOutage, Endpoint: "get-districts"}
		s.cache.EXPECT().Find(gomock.Any(), models.LevelDistrict, path).Return(models.OptionList{}, sentinel.ErrNotFound)
		s.client.EXPECT().Options(gomock.Any(), models.LevelDistrict, s.delhi).Return(models.OptionList{}, outage)

		_, err := s.service.Options(ctx, models.LevelDistrict, s.delhi)
		s.ErrorIs(err, outage)
	})

	s.Run("incomplete ancestors never reach cache or backend", func() {
		_, err := s.service.Options(ctx, models.LevelCourt, s.delhi)
		s.ErrorIs(err, backend.ErrIncompletePath)
	})
}

func (s *CatalogSuite) TestOptions_CollapsesConcurrentLookups() {
	svc, err := NewService(s.client, nil)
	s.Require().NoError(err)

	release := make(chan struct{})
	s.client.EXPECT().
		Options(gomock.Any(), models.LevelDistrict, s.delhi).
		DoAndReturn(func(context.Context, models.Level, models.Selection) (models.OptionList, error) {
			<-release
			return s.districts, nil
		}).
		Times(1)

	const callers = 5
	var wg sync.WaitGroup
	results := make(chan models.OptionList, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := svc.Options(context.Background(), models.LevelDistrict, s.delhi)
			if err == nil {
				results <- list
			}
		}()
	}
	// Let every caller join the flight before it completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	n := 0
	for list := range results {
		s.Equal(s.districts.Labels, list.Labels)
		n++
	}
	s.Equal(callers, n)
}

func (s *CatalogSuite) TestOptions_CallerCancelLeavesFlight() {
	cache := store.NewInMemoryCache(4, time.Minute)
	svc, err := NewService(s.client, cache)
	s.Require().NoError(err)

	release := make(chan struct{})
	done := make(chan struct{})
	s.client.EXPECT().
		Options(gomock.Any(), models.LevelDistrict, s.delhi).
		DoAndReturn(func(ctx context.Context, _ models.Level, _ models.Selection) (models.OptionList, error) {
			defer close(done)
			<-release
			s.NoError(ctx.Err())
			return s.districts, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Options(ctx, models.LevelDistrict, s.delhi)
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	s.ErrorIs(<-errCh, context.Canceled)

	close(release)
	<-done

	s.Eventually(func() bool {
		list, err := cache.Find(context.Background(), models.LevelDistrict, []string{"Delhi"})
		return err == nil && len(list.Labels) == 2
	}, time.Second, 10*time.Millisecond)
}

func (s *CatalogSuite) TestSubmit_PassesThrough() {
	sel := models.Selection{State: "Delhi", District: "North", Complex: "ComplexA", Court: "Court1", Date: "2024-01-15"}
	date, err := models.ParseInputDate(sel.Date)
	s.Require().NoError(err)
	want := &models.SubmitResult{Status: "ok"}
	s.client.EXPECT().Submit(gomock.Any(), models.KindCriminal, sel, date).Return(want, nil).Times(2)

	for range 2 {
		got, err := s.service.Submit(context.Background(), models.KindCriminal, sel, date)
		s.Require().NoError(err)
		s.Same(want, got)
	}
}
