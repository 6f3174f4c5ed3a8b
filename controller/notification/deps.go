package notification

import (
	"plannerjobs/services"
	"plannerjobs/store"

	"go.uber.org/zap"
)

// Deps bundles the external collaborators of the notification job.
type Deps struct {
	Store store.Store
	Push  services.PushSender
	Mail  services.DigestMailer
	Log   *zap.SugaredLogger
}

func (d Deps) logger() *zap.SugaredLogger {
	if d.Log != nil {
		return d.Log
	}
	return zap.NewNop().Sugar()
}
