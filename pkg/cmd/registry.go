package cmd

import (
	"log/slog"

	"github.com/kodisha/flowd/pkg/actions/data"
	"github.com/kodisha/flowd/pkg/actions/email"
	"github.com/kodisha/flowd/pkg/actions/httprequest"
	logaction "github.com/kodisha/flowd/pkg/actions/log"
	"github.com/kodisha/flowd/pkg/actions/notify"
	"github.com/kodisha/flowd/pkg/actions/outbox"
	"github.com/kodisha/flowd/pkg/actions/sms"
	"github.com/kodisha/flowd/pkg/actions/task"
	"github.com/kodisha/flowd/pkg/entities"
	"github.com/kodisha/flowd/pkg/registry"
)

// NewRegistry wires the native action handlers against the given outbox
// sender and entity store.
func NewRegistry(logger *slog.Logger, sender outbox.Sender, store *entities.Store) *registry.ActionRegistry {
	reg := registry.NewActionRegistry(logger)

	reg.Register(email.NewHandler(sender))
	reg.Register(sms.NewHandler(sender))
	reg.Register(notify.NewHandler(sender))
	reg.Register(task.NewHandler(store))
	reg.Register(data.NewHandler(store))
	reg.Register(logaction.NewHandler(logger))
	reg.Register(httprequest.NewHandler(logger))

	return reg
}
