package dispatch

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DeepLink builds the URI handed to the opener. Base is returned unchanged
// unless NoteName is set.
type DeepLink struct {
	Base     string
	NoteName string // supports {date}, {time} and {app}
}

// Build renders the deep link for a dispatch at now for app
func (l DeepLink) Build(now time.Time, app string) (string, error) {
	if l.NoteName == "" {
		return l.Base, nil
	}

	u, err := url.Parse(l.Base)
	if err != nil {
		return "", fmt.Errorf("invalid deep link %q: %w", l.Base, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("invalid deep link %q: missing scheme", l.Base)
	}

	name := strings.NewReplacer(
		"{date}", now.Format("2006-01-02"),
		"{time}", now.Format("15.04"),
		"{app}", app,
	).Replace(l.NoteName)

	query := u.Query()
	query.Set("name", name)
	query.Set("time", now.Format(time.RFC3339))
	u.RawQuery = query.Encode()

	return u.String(), nil
}
