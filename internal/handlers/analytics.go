package handlers

import "manaklaltailor.in/web/internal/config"

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	Debug            bool
}

// Enabled reports whether the analytics snippet should be emitted.
func (a Analytics) Enabled() bool { return a.GA4MeasurementID != "" }

// AnalyticsFromConfig copies the analytics settings into the view model.
func AnalyticsFromConfig(cfg config.AnalyticsConfig) Analytics {
	return Analytics{GA4MeasurementID: cfg.GA4MeasurementID, Debug: cfg.Debug}
}
