package desktop

import (
	"context"
	"errors"

	domainBridge "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bridge"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/upload"
	"github.com/ncruces/zenity"
	"github.com/sirupsen/logrus"
)

type Dialogs struct {
	appName string
}

// NewDialogs returns the host's native file picker and notifier.
func NewDialogs(appName string) *Dialogs {
	return &Dialogs{appName: appName}
}

var (
	_ domainBridge.FilePicker = (*Dialogs)(nil)
	_ domainBridge.Notifier   = (*Dialogs)(nil)
)

// FileFilters converts extension lists to zenity's glob patterns.
func FileFilters(filters []upload.Filter) zenity.FileFilters {
	out := make(zenity.FileFilters, 0, len(filters))
	for _, f := range filters {
		patterns := make([]string, 0, len(f.Extensions))
		for _, ext := range f.Extensions {
			patterns = append(patterns, "*."+ext)
		}
		out = append(out, zenity.FileFilter{Name: f.Name, Patterns: patterns, CaseFold: true})
	}
	return out
}

func (d *Dialogs) PickFile(ctx context.Context, title string, filters []upload.Filter) (string, error) {
	path, err := zenity.SelectFile(
		zenity.Context(ctx),
		zenity.Title(title),
		FileFilters(filters),
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func (d *Dialogs) Notify(ctx context.Context, title, body string) error {
	if title == "" {
		title = d.appName
	}
	if err := zenity.Notify(body, zenity.Title(title)); err != nil {
		logrus.WithError(err).Warn("[DESKTOP] notification failed")
		return err
	}
	return nil
}
