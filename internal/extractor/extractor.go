package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/internal/selectors"
)

const (
	FieldUsername       = "username"
	FieldProfilePicture = "profilePicture"
	FieldIsVerified     = "isVerified"
	FieldTimestamp      = "timestamp"
	FieldSongData       = "songData"
	FieldMediaData      = "mediaData"
)

// FieldError records a rule that fell back to its default.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// rule computes one field and writes it only on success.
type rule struct {
	field string
	apply func(doc *Document, rec *domain.StoryRecord) error
}

type matchers struct {
	username       cascadia.Selector
	profilePicture cascadia.Selector
	timestamp      cascadia.Selector
	songData       cascadia.Selector
	images         cascadia.Selector
	videos         cascadia.Selector
	icons          cascadia.Selector
	paths          cascadia.Selector
}

type Extractor struct {
	m             matchers
	songSeparator string
	signatures    []string
	rules         []rule
}

// New compiles every selector of the table; an invalid one is an error.
func New(table *selectors.Table) (*Extractor, error) {
	var (
		m    matchers
		errs []string
	)
	compile := func(name, sel string, dst *cascadia.Selector) {
		if sel == "" {
			return
		}
		s, err := cascadia.Compile(sel)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			return
		}
		*dst = s
	}

	compile("fields.username", table.Fields.Username, &m.username)
	compile("fields.profilePicture", table.Fields.ProfilePicture, &m.profilePicture)
	compile("fields.timestamp", table.Fields.Timestamp, &m.timestamp)
	compile("fields.songData", table.Fields.SongData, &m.songData)
	compile("media.images", table.Media.Images, &m.images)
	compile("media.videos", table.Media.Videos, &m.videos)
	compile("verified.icons", table.Verified.Icons, &m.icons)
	compile("verified.paths", table.Verified.Paths, &m.paths)

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid selector table %q: %s", table.Version, strings.Join(errs, "; "))
	}

	e := &Extractor{
		m:             m,
		songSeparator: table.Fields.SongSeparator,
		signatures:    table.Prefixes(),
	}
	e.rules = []rule{
		{FieldUsername, e.username},
		{FieldProfilePicture, e.profilePicture},
		{FieldIsVerified, e.isVerified},
		{FieldTimestamp, e.timestamp},
		{FieldSongData, e.songData},
		{FieldMediaData, e.mediaData},
	}
	return e, nil
}

// Extract runs every rule against doc. A rule that errors or panics leaves
// its field at the default; the others are unaffected.
func (e *Extractor) Extract(doc *Document) (domain.StoryRecord, []FieldError) {
	rec := domain.NewStoryRecord()
	if doc == nil {
		return rec, nil
	}

	var failures []FieldError
	for _, r := range e.rules {
		if err := runIsolated(r, doc, &rec); err != nil {
			failures = append(failures, FieldError{Field: r.field, Err: err})
		}
	}
	return rec, failures
}

func runIsolated(r rule, doc *Document, rec *domain.StoryRecord) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	// A rule that fails half way must leave nothing behind.
	scratch := *rec
	if err := r.apply(doc, &scratch); err != nil {
		return err
	}
	*rec = scratch
	return nil
}

func first(doc *Document, sel cascadia.Selector) *goquery.Selection {
	if sel == nil {
		return nil
	}
	s := doc.doc.FindMatcher(sel).First()
	if s.Length() == 0 {
		return nil
	}
	return s
}

func (e *Extractor) username(doc *Document, rec *domain.StoryRecord) error {
	s := first(doc, e.m.username)
	if s == nil {
		return nil
	}
	href, _ := s.Attr("href")
	rec.Username = domain.StringPtr(strings.ReplaceAll(href, "/", ""))
	return nil
}

func (e *Extractor) profilePicture(doc *Document, rec *domain.StoryRecord) error {
	s := first(doc, e.m.profilePicture)
	if s == nil {
		return nil
	}
	src, _ := s.Attr("src")
	rec.ProfilePicture = domain.StringPtr(doc.resolve(src))
	return nil
}

func (e *Extractor) isVerified(doc *Document, rec *domain.StoryRecord) error {
	if e.m.icons == nil || e.m.paths == nil {
		return nil
	}
	verified := false
	doc.doc.FindMatcher(e.m.icons).FindMatcher(e.m.paths).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		d, _ := s.Attr("d")
		for _, prefix := range e.signatures {
			if strings.HasPrefix(d, prefix) {
				verified = true
				return false
			}
		}
		return true
	})
	rec.IsVerified = verified
	return nil
}

func (e *Extractor) timestamp(doc *Document, rec *domain.StoryRecord) error {
	s := first(doc, e.m.timestamp)
	if s == nil {
		return nil
	}
	datetime, _ := s.Attr("datetime")
	rec.Timestamp = domain.StringPtr(datetime)
	return nil
}

func (e *Extractor) songData(doc *Document, rec *domain.StoryRecord) error {
	s := first(doc, e.m.songData)
	if s == nil {
		return nil
	}
	text := strings.TrimSpace(s.Text())
	if e.songSeparator != "" {
		text = strings.Replace(text, e.songSeparator, "", 1)
	}
	rec.SongData = domain.StringPtr(text)
	return nil
}

// mediaData lists images, then videos, each in document order.
func (e *Extractor) mediaData(doc *Document, rec *domain.StoryRecord) error {
	items := []domain.MediaItem{}

	if e.m.images != nil {
		doc.doc.FindMatcher(e.m.images).Each(func(_ int, s *goquery.Selection) {
			src, _ := s.Attr("src")
			alt, _ := s.Attr("alt")
			items = append(items, domain.MediaItem{
				Type:     domain.MediaImage,
				MediaURL: domain.StringPtr(src),
				AltText:  domain.StringPtr(alt),
			})
		})
	}
	if e.m.videos != nil {
		doc.doc.FindMatcher(e.m.videos).Each(func(_ int, s *goquery.Selection) {
			src, _ := s.Attr("src")
			items = append(items, domain.MediaItem{
				Type:     domain.MediaVideo,
				MediaURL: domain.StringPtr(src),
			})
		})
	}

	rec.MediaData = items
	return nil
}
