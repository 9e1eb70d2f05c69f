package reveal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/insta-story-capture/internal/browser"
	mock_browser "github.com/orgball2608/insta-story-capture/internal/browser/mocks"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/internal/selectors"
	"github.com/orgball2608/insta-story-capture/internal/settle"
	apperrors "github.com/orgball2608/insta-story-capture/pkg/errors"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	storyURL   = "https://instagram.com/stories/alice/123456789/"
	candidates = `div[role="button"][tabindex="0"]`
)

func testConfig() Config {
	return Config{
		NavigationTimeout: 60 * time.Second,
		ViewportWidth:     600,
		ViewportHeight:    1000,
		RevealTimeout:     5 * time.Second,
		Settle:            settle.DefaultConfig(settle.ModeFixed).WithBudget(time.Millisecond),
	}
}

func setup(t *testing.T) (*Driver, *mock_browser.MockPage, *gomock.Controller, domain.StoryRequest) {
	t.Helper()
	ctrl := gomock.NewController(t)
	page := mock_browser.NewMockPage(ctrl)
	req, err := domain.NewStoryRequest(storyURL)
	require.NoError(t, err)
	return New(selectors.Default(), testConfig(), logger.NewNop()), page, ctrl, req
}

func expectLoaded(page *mock_browser.MockPage) {
	page.EXPECT().Navigate(gomock.Any(), storyURL, 60*time.Second).Return(nil)
	page.EXPECT().URL().Return(storyURL).AnyTimes()
	page.EXPECT().SetViewport(gomock.Any(), 600, 1000).Return(nil)
}

func element(ctrl *gomock.Controller, text string) *mock_browser.MockElement {
	el := mock_browser.NewMockElement(ctrl)
	el.EXPECT().Text(gomock.Any()).Return(text, nil).AnyTimes()
	return el
}

func TestRevealClicksViewStory(t *testing.T) {
	d, page, ctrl, req := setup(t)
	expectLoaded(page)

	other := element(ctrl, "Close")
	target := element(ctrl, "alice's story\nView story")
	target.EXPECT().Click(gomock.Any()).Return(nil)
	later := element(ctrl, "View story")

	page.EXPECT().WaitForSelector(gomock.Any(), candidates, 5*time.Second).Return(nil)
	page.EXPECT().Elements(gomock.Any(), candidates).Return([]browser.Element{other, target, later}, nil)

	state, err := d.Reveal(context.Background(), page, req)
	require.NoError(t, err)
	assert.Equal(t, StateRevealed, state)
}

func TestRevealTimeout(t *testing.T) {
	d, page, _, req := setup(t)
	expectLoaded(page)

	page.EXPECT().WaitForSelector(gomock.Any(), candidates, 5*time.Second).Return(context.DeadlineExceeded)

	state, err := d.Reveal(context.Background(), page, req)
	assert.Equal(t, StateFailed, state)
	assert.True(t, apperrors.IsRevealTimeout(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRevealNotFound(t *testing.T) {
	d, page, ctrl, req := setup(t)
	expectLoaded(page)

	broken := mock_browser.NewMockElement(ctrl)
	broken.EXPECT().Text(gomock.Any()).Return("", errors.New("detached"))

	page.EXPECT().WaitForSelector(gomock.Any(), candidates, 5*time.Second).Return(nil)
	page.EXPECT().Elements(gomock.Any(), candidates).Return([]browser.Element{
		element(ctrl, "Mute"),
		broken,
		element(ctrl, "Pause"),
	}, nil)

	state, err := d.Reveal(context.Background(), page, req)
	assert.Equal(t, StateFailed, state)
	assert.True(t, apperrors.IsRevealNotFound(err))
	assert.Equal(t, apperrors.CodeRevealNotFound, apperrors.GetCode(err))
}

func TestRevealNavigationFailure(t *testing.T) {
	d, page, _, req := setup(t)

	page.EXPECT().Navigate(gomock.Any(), storyURL, 60*time.Second).Return(errors.New("net::ERR_TUNNEL_CONNECTION_FAILED"))

	state, err := d.Reveal(context.Background(), page, req)
	assert.Equal(t, StateFailed, state)
	assert.True(t, apperrors.IsNavigation(err))
}

func TestRevealWaitsForStableDOM(t *testing.T) {
	d, page, ctrl, req := setup(t)
	d.cfg.Settle = settle.DefaultConfig(settle.ModePoll).WithBudget(5 * time.Second)
	expectLoaded(page)

	target := element(ctrl, "View story")
	target.EXPECT().Click(gomock.Any()).Return(nil)
	page.EXPECT().WaitForSelector(gomock.Any(), candidates, 5*time.Second).Return(nil)
	page.EXPECT().Elements(gomock.Any(), candidates).Return([]browser.Element{target}, nil)
	page.EXPECT().WaitStable(gomock.Any(), 5*time.Second).Return(nil)

	start := time.Now()
	state, err := d.Reveal(context.Background(), page, req)
	require.NoError(t, err)
	assert.Equal(t, StateRevealed, state)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRevealStableWaitFailureSleepsBudget(t *testing.T) {
	d, page, ctrl, req := setup(t)
	budget := 30 * time.Millisecond
	d.cfg.Settle = settle.DefaultConfig(settle.ModePoll).WithBudget(budget)
	expectLoaded(page)

	target := element(ctrl, "View story")
	target.EXPECT().Click(gomock.Any()).Return(nil)
	page.EXPECT().WaitForSelector(gomock.Any(), candidates, 5*time.Second).Return(nil)
	page.EXPECT().Elements(gomock.Any(), candidates).Return([]browser.Element{target}, nil)
	page.EXPECT().WaitStable(gomock.Any(), budget).Return(errors.New("snapshot failed"))

	start := time.Now()
	state, err := d.Reveal(context.Background(), page, req)
	require.NoError(t, err)
	assert.Equal(t, StateRevealed, state)
	assert.GreaterOrEqual(t, time.Since(start), budget)
}
