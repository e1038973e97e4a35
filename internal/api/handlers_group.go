package api

import "trackforge/internal/api/handler"

// HandlersGroup bundles every initialized Handler the router wires up.
type HandlersGroup struct {
	ProfileHandler *handler.ProfileHandler
	QueueHandler   *handler.QueueHandler
	CronHandler    *handler.CronHandler
}
