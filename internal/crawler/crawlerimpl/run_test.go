package crawlerimpl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/insta-story-capture/internal/browser"
	mock_browser "github.com/orgball2608/insta-story-capture/internal/browser/mocks"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/internal/metrics"
	mock_processor "github.com/orgball2608/insta-story-capture/internal/processor/mocks"
	"github.com/orgball2608/insta-story-capture/internal/ratelimit"
	mock_telegram "github.com/orgball2608/insta-story-capture/internal/telegram/mocks"
	"github.com/orgball2608/insta-story-capture/pkg/config"
	apperrors "github.com/orgball2608/insta-story-capture/pkg/errors"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	aliceURL = "https://instagram.com/stories/alice/123456789/"
	bobURL   = "https://instagram.com/stories/bob/42/"
)

type fixture struct {
	ctrl      *gomock.Controller
	driver    *mock_browser.MockDriver
	processor *mock_processor.MockClient
	telegram  *mock_telegram.MockClient
	metrics   *metrics.Metrics
	impl      *CrawlerImpl
}

func newFixture(t *testing.T, urls ...string) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Input.StoryURLs = urls
	cfg.Crawler.Concurrency = 2
	cfg.Crawler.MaxRetries = 2

	f := &fixture{
		ctrl:      ctrl,
		driver:    mock_browser.NewMockDriver(ctrl),
		processor: mock_processor.NewMockClient(ctrl),
		telegram:  mock_telegram.NewMockClient(ctrl),
		metrics:   metrics.New(prometheus.NewRegistry()),
	}
	f.driver.EXPECT().Name().Return("mock").AnyTimes()

	f.impl = New(Opts{
		Config:    cfg,
		Logger:    logger.NewNop(),
		Driver:    f.driver,
		Processor: f.processor,
		Metrics:   f.metrics,
		Limiter:   ratelimit.NewInMemoryLimiter(0, time.Minute, 1),
		Telegram:  f.telegram,
	})
	f.impl.retry.InitialInterval = time.Millisecond
	f.impl.retry.MaxInterval = 2 * time.Millisecond

	return f
}

// expectPages hands out n fresh pages, each of which must be closed.
func (f *fixture) expectPages(n int) {
	f.driver.EXPECT().NewPage(gomock.Any()).DoAndReturn(func(context.Context) (browser.Page, error) {
		page := mock_browser.NewMockPage(f.ctrl)
		page.EXPECT().Close().Return(nil)
		return page, nil
	}).Times(n)
}

func TestRunCapturesEveryStoryOnce(t *testing.T) {
	f := newFixture(t, aliceURL, "https://Instagram.com/stories/alice/123456789", bobURL)
	f.expectPages(2)
	f.processor.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ browser.Page, req domain.StoryRequest) (*domain.StoryRecord, error) {
			rec := domain.NewStoryRecord()
			rec.StoryID = req.StoryID()
			return &rec, nil
		}).Times(2)

	summary, err := f.impl.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Zero(t, summary.Failed)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues(metrics.OutcomeSucceeded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RunsTotal))
}

func TestRunRetriesOnFreshPage(t *testing.T) {
	f := newFixture(t, aliceURL)
	f.expectPages(2)
	gomock.InOrder(
		f.processor.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, apperrors.RevealTimeout(context.DeadlineExceeded)),
		f.processor.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&domain.StoryRecord{StoryID: "123456789"}, nil),
	)

	summary, err := f.impl.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RequestRetries))
}

func TestRunReportsExhaustedRequest(t *testing.T) {
	f := newFixture(t, aliceURL, bobURL)
	f.expectPages(4)
	f.processor.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ browser.Page, req domain.StoryRequest) (*domain.StoryRecord, error) {
			if req.URL == aliceURL {
				return nil, apperrors.RevealNotFound("View story", 2)
			}
			return &domain.StoryRecord{StoryID: req.StoryID()}, nil
		}).Times(4)

	f.telegram.EXPECT().Enabled().Return(true)
	f.telegram.EXPECT().SendMessageToChannel(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, text string) error {
			assert.Contains(t, text, "1 of 2 captured, 1 failed")
			assert.Contains(t, text, aliceURL+` (reveal_not_found): no "View story" control among 2 candidates`)
			return nil
		})

	summary, err := f.impl.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, aliceURL, summary.Failures[0].URL)
	assert.Equal(t, apperrors.CodeRevealNotFound, summary.Failures[0].Code)
	assert.True(t, apperrors.IsRevealNotFound(summary.Failures[0].Err))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FailuresTotal.WithLabelValues(apperrors.CodeRevealNotFound)))
}

func TestRunDoesNotRetryConfigurationErrors(t *testing.T) {
	f := newFixture(t, aliceURL)
	f.expectPages(1)
	f.processor.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperrors.Configuration("cookies must be provided"))
	f.telegram.EXPECT().Enabled().Return(false)

	summary, err := f.impl.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Failures, 1)
	assert.Equal(t, apperrors.CodeConfiguration, summary.Failures[0].Code)
	assert.Zero(t, testutil.ToFloat64(f.metrics.RequestRetries))
}

func TestRunPageOpenFailure(t *testing.T) {
	f := newFixture(t, aliceURL)
	f.impl.Telegram = nil

	f.driver.EXPECT().NewPage(gomock.Any()).Return(nil, errors.New("browser gone")).Times(3)

	summary, err := f.impl.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.ErrorContains(t, summary.Failures[0].Err, "browser gone")
	assert.Equal(t, "failed to open page", apperrors.GetMessage(summary.Failures[0].Err))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FailuresTotal.WithLabelValues("unknown")))
}

func TestRunSkipsInvalidURLs(t *testing.T) {
	f := newFixture(t, "not a url")
	f.telegram.EXPECT().Enabled().Return(false)

	summary, err := f.impl.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, apperrors.CodeConfiguration, summary.Failures[0].Code)
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t, aliceURL, bobURL)
	f.impl.Telegram = nil

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := f.impl.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, summary.Failed)
	assert.Zero(t, summary.Succeeded)
}

func TestScheduleRejectsZeroInterval(t *testing.T) {
	f := newFixture(t, aliceURL)
	assert.Error(t, f.impl.Schedule(context.Background(), 0))
}

func TestScheduleRunsImmediately(t *testing.T) {
	f := newFixture(t, aliceURL)
	f.impl.Telegram = nil

	done := make(chan struct{})
	f.driver.EXPECT().NewPage(gomock.Any()).DoAndReturn(func(context.Context) (browser.Page, error) {
		page := mock_browser.NewMockPage(f.ctrl)
		page.EXPECT().Close().DoAndReturn(func() error {
			close(done)
			return nil
		})
		return page, nil
	})
	f.processor.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.StoryRecord{StoryID: "123456789"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.impl.Schedule(ctx, time.Hour))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled crawl did not start")
	}
}
