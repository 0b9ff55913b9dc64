package model

import (
	"fmt"
	"math"
	"time"
)

var shortMonths = [...]string{"sty", "lut", "mar", "kwi", "maj", "cze", "lip", "sie", "wrz", "paź", "lis", "gru"}

// DaysUntilExpiry rounds the remaining time up to whole days. ok is false
// for surveys without an expiry date.
func (s Survey) DaysUntilExpiry(now time.Time) (days int, ok bool) {
	if s.ExpiresAt == nil || s.ExpiresAt.IsZero() {
		return 0, false
	}
	d := s.ExpiresAt.Sub(now).Hours() / 24
	return int(math.Ceil(d)), true
}

func (s Survey) IsExpiringSoon(now time.Time) bool {
	if s.Status == StatusExpired {
		return false
	}
	days, ok := s.DaysUntilExpiry(now)
	return ok && days > 0 && days <= 7
}

func (s Survey) ExpiryText(now time.Time) string {
	days, ok := s.DaysUntilExpiry(now)
	switch {
	case !ok:
		return "Bez terminu"
	case s.Status == StatusExpired, days < 0:
		return "Wygasła"
	case days == 0:
		return "Wygasa dziś"
	case days == 1:
		return "Wygasa jutro"
	case days <= 7:
		return fmt.Sprintf("Wygasa za %d dni", days)
	}
	exp := s.ExpiresAt.Local()
	return fmt.Sprintf("Wygasa %d %s", exp.Day(), shortMonths[exp.Month()-1])
}

// ToggledStatus returns the status a public/private toggle switches to.
// Expired surveys cannot be toggled.
func (s Survey) ToggledStatus() (SurveyStatus, bool) {
	switch s.Status {
	case StatusPublic:
		return StatusPrivate, true
	case StatusPrivate:
		return StatusPublic, true
	}
	return s.Status, false
}

// Question returns the survey's question with the given id.
func (s Survey) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

type SurveyCounts struct {
	All, Public, Private, Expired int
}

func CountSurveys(surveys []Survey) (c SurveyCounts) {
	c.All = len(surveys)
	for _, s := range surveys {
		switch s.Status {
		case StatusPublic:
			c.Public++
		case StatusPrivate:
			c.Private++
		case StatusExpired:
			c.Expired++
		}
	}
	return
}
