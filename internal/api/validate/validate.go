package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dialectdeck/ledger/internal/model"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserID accepts auth subject ids: letters, digits, underscore and hyphen, 1-64 chars.
var userIdRx = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func Email(v string) error {
	if v == "" {
		return nil
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return model.NewValidationError("email", "invalid email")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return model.NewValidationError(field, "required")
	}
	return nil
}

func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return model.NewValidationError(field, fmt.Sprintf("exceeds %d characters", limit))
	}
	return nil
}

func UserID(v string) error {
	if v == "" {
		return model.NewValidationError("userId", "required")
	}
	if !userIdRx.MatchString(v) {
		return model.NewValidationError("userId", "must match "+userIdRx.String())
	}
	return nil
}

// Date parses an optional YYYY-MM-DD value; empty yields the zero Date.
func Date(field, v string) (model.Date, error) {
	if v == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return model.Date{}, model.NewValidationError(field, "expected YYYY-MM-DD")
	}
	return d, nil
}

// -------- Request specific helpers ----------

func CreateProfile(userID, email, displayName string) error {
	if err := UserID(userID); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	return MaxLen("displayName", &displayName, 100)
}

func CreateEntry(createdBy, word, meaningEN string, example *string) error {
	if err := UserID(createdBy); err != nil {
		return err
	}
	if err := NonEmpty("word", word); err != nil {
		return err
	}
	if err := MaxLen("word", &word, 100); err != nil {
		return err
	}
	if err := NonEmpty("meaningEn", meaningEN); err != nil {
		return err
	}
	return MaxLen("exampleSentence", example, 500)
}

func DailyLabel(userID, labelText string) error {
	if err := UserID(userID); err != nil {
		return err
	}
	if err := NonEmpty("labelText", labelText); err != nil {
		return err
	}
	return MaxLen("labelText", &labelText, 100)
}
