// Package dates turns user input into a round date. Clients usually send YYYY-MM-DD, but
// quick entry from a phone is often "yesterday" or "last saturday".
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
)

var (
	ErrEmpty        = errors.New("date is required")
	ErrUnrecognized = errors.New("date not recognized")
)

// Parser resolves ISO dates and English date phrases relative to a reference time.
type Parser struct {
	w *when.Parser
}

func NewParser() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w}
}

// Parse returns the calendar date named by s. Relative phrases resolve against now in now's
// location, so "yesterday" means the player's yesterday when now carries their zone.
func (p *Parser) Parse(s string, now time.Time) (models.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Date{}, ErrEmpty
	}
	if d, err := models.ParseDate(s); err == nil {
		return d, nil
	}

	r, err := p.w.Parse(strings.ToLower(s), now)
	if err != nil {
		return models.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	if r == nil {
		return models.Date{}, fmt.Errorf("%w: %q", ErrUnrecognized, s)
	}
	return models.NewDate(r.Time), nil
}
