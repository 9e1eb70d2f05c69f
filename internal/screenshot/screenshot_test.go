package screenshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
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

const container = `div[role="dialog"]`

var png = []byte("\x89PNG\r\n\x1a\n")

func setup(t *testing.T) (*Resolver, *mock_browser.MockPage, *gomock.Controller, domain.StoryRequest) {
	t.Helper()
	ctrl := gomock.NewController(t)
	req, err := domain.NewStoryRequest("https://instagram.com/stories/alice/123456789/")
	require.NoError(t, err)

	r := New(selectors.Default(), settle.DefaultConfig(settle.ModeFixed).WithBudget(time.Millisecond), logger.NewNop())
	return r, mock_browser.NewMockPage(ctrl), ctrl, req
}

func TestResolveClipsToContainer(t *testing.T) {
	r, page, ctrl, req := setup(t)

	box := &browser.Rect{X: 10, Y: 20, Width: 400, Height: 700}
	el := mock_browser.NewMockElement(ctrl)
	el.EXPECT().BoundingBox(gomock.Any()).Return(box, nil)
	page.EXPECT().Element(gomock.Any(), container).Return(el, nil)
	page.EXPECT().Screenshot(gomock.Any(), box).Return(png, nil)

	art, err := r.Resolve(context.Background(), page, req)
	require.NoError(t, err)
	assert.Equal(t, "screenshot-123456789.png", art.FileName)
	assert.Equal(t, "image/png", art.ContentType)
	assert.Equal(t, png, art.Data)
	assert.True(t, art.Clipped)
}

func TestResolveFallsBackToViewport(t *testing.T) {
	tests := []struct {
		name  string
		setup func(ctrl *gomock.Controller, page *mock_browser.MockPage)
	}{
		{
			name: "no container",
			setup: func(_ *gomock.Controller, page *mock_browser.MockPage) {
				page.EXPECT().Element(gomock.Any(), container).Return(nil, browser.ErrElementNotFound)
			},
		},
		{
			name: "no box",
			setup: func(ctrl *gomock.Controller, page *mock_browser.MockPage) {
				el := mock_browser.NewMockElement(ctrl)
				el.EXPECT().BoundingBox(gomock.Any()).Return(nil, nil)
				page.EXPECT().Element(gomock.Any(), container).Return(el, nil)
			},
		},
		{
			name: "zero size box",
			setup: func(ctrl *gomock.Controller, page *mock_browser.MockPage) {
				el := mock_browser.NewMockElement(ctrl)
				el.EXPECT().BoundingBox(gomock.Any()).Return(&browser.Rect{X: 5}, nil)
				page.EXPECT().Element(gomock.Any(), container).Return(el, nil)
			},
		},
		{
			name: "box error",
			setup: func(ctrl *gomock.Controller, page *mock_browser.MockPage) {
				el := mock_browser.NewMockElement(ctrl)
				el.EXPECT().BoundingBox(gomock.Any()).Return(nil, errors.New("node detached"))
				page.EXPECT().Element(gomock.Any(), container).Return(el, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, page, ctrl, req := setup(t)
			tt.setup(ctrl, page)
			page.EXPECT().Screenshot(gomock.Any(), (*browser.Rect)(nil)).Return(png, nil)

			art, err := r.Resolve(context.Background(), page, req)
			require.NoError(t, err)
			assert.False(t, art.Clipped)
			assert.Equal(t, "screenshot-123456789.png", art.FileName)
		})
	}
}

func TestResolveCaptureFailure(t *testing.T) {
	r, page, _, req := setup(t)

	page.EXPECT().Element(gomock.Any(), container).Return(nil, browser.ErrElementNotFound)
	page.EXPECT().Screenshot(gomock.Any(), gomock.Nil()).Return(nil, errors.New("target closed")).Times(1)

	art, err := r.Resolve(context.Background(), page, req)
	assert.Nil(t, art)
	assert.True(t, apperrors.IsCapture(err))
}

func TestScratchLifecycle(t *testing.T) {
	dir := t.TempDir()
	s := NewScratch(filepath.Join(dir, "nested"), "screenshot-1.png")
	assert.Equal(t, filepath.Join(dir, "nested", "screenshot-1.png"), s.Path())

	require.NoError(t, s.Write(png))
	data, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, png, data)

	require.NoError(t, s.Close())
	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Close())
}

func TestScratchPathsAreDisjointPerStory(t *testing.T) {
	dir := t.TempDir()
	a := NewScratch(dir, domain.ScreenshotFileName("1"))
	b := NewScratch(dir, domain.ScreenshotFileName("2"))
	assert.NotEqual(t, a.Path(), b.Path())
}
