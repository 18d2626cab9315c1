package services

import (
	"time"

	"github.com/dialectdeck/ledger/internal/model"
)

// Clock returns the current time. Services take one so tests can pin dates.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

func (c Clock) today() model.Date { return model.DateOf(c.now()) }
