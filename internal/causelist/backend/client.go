// Package backend is the client for the cause-list backend:
//
//	GET /get-states                                   -> {"states": [...]}
//	GET /get-districts/{state}                        -> {"districts": [...]}
//	GET /get-complexes/{state}/{district}             -> {"complexes": [...]}
//	GET /get-courts/{state}/{district}/{complex}      -> {"courts": [...]}
//	GET /submit-{kind}/{state}/{district}/{complex}/{court}/{DD-MM-YYYY} -> {"status": "..."}
//
// Every failure surfaces as a *TransportError. There are no retries.
package backend

import (
	"context"

	"causelist/internal/causelist/models"
)

// Client is the backend port used by the catalog and the selector.
type Client interface {
	// Options fetches the option list for level scoped by the ancestors in sel.
	Options(ctx context.Context, level models.Level, sel models.Selection) (models.OptionList, error)
	// Submit requests the cause list for a fully selected court and date.
	Submit(ctx context.Context, kind models.Kind, sel models.Selection, date models.CauseDate) (*models.SubmitResult, error)
}

// OptionsEndpoint names the backend route serving level.
func OptionsEndpoint(level models.Level) string {
	switch level {
	case models.LevelState:
		return "get-states"
	case models.LevelDistrict:
		return "get-districts"
	case models.LevelComplex:
		return "get-complexes"
	case models.LevelCourt:
		return "get-courts"
	}
	return ""
}

// SubmitEndpoint names the backend route for kind.
func SubmitEndpoint(kind models.Kind) string {
	return "submit-" + kind.String()
}
