package cookie

import (
	"strings"

	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/pkg/errors"
)

const DefaultDomain = ".instagram.com"

// Parse turns "a=1; b=2=3" into cookies scoped to domain. Each piece is
// split on its first "=" only, so values may contain "=".
func Parse(raw, domainName string) ([]domain.Cookie, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.Configuration("cookies must be provided")
	}
	if domainName == "" {
		domainName = DefaultDomain
	}

	pieces := strings.Split(raw, ";")
	cookies := make([]domain.Cookie, 0, len(pieces))
	for _, piece := range pieces {
		name, value, _ := strings.Cut(piece, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cookies = append(cookies, domain.Cookie{
			Name:   name,
			Value:  strings.TrimSpace(value),
			Domain: domainName,
			Path:   "/",
		})
	}

	if len(cookies) == 0 {
		return nil, errors.Configuration("cookie string contains no name=value pairs")
	}
	return cookies, nil
}
