package validations

import (
	"context"
	"errors"
	"strings"
	"time"

	domainBridge "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bridge"
	domainPost "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/post"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/upload"
	pkgError "github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/error"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/timeutils"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var notBlank = validation.By(func(value interface{}) error {
	v, _ := validation.Indirect(value)
	s, _ := v.(string)
	if s != "" && strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "cannot be blank")
	}
	return nil
})

var mediaFile = validation.By(func(value interface{}) error {
	staged, _ := value.(*upload.Staged)
	if staged == nil {
		return nil
	}
	if !upload.IsMedia(staged.Name) {
		return validation.NewError("validation_media_type", "must be an image or a video")
	}
	return nil
})

// ValidateSchedulePost checks a post before it is submitted. Every violation
// is reported in one error. The backend still has the final word.
func ValidateSchedulePost(ctx context.Context, request domainPost.ScheduleRequest, now time.Time) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Platform, validation.Required, validation.In(
			domainPost.PlatformFacebook, domainPost.PlatformInstagram, domainPost.PlatformLinkedIn,
		).Error("must be one of Facebook, Instagram, LinkedIn")),
		validation.Field(&request.Caption, validation.Required, notBlank),
		validation.Field(&request.ScheduleDate, validation.Required, validation.Date(timeutils.DateLayout)),
		validation.Field(&request.ScheduleTime, validation.Required, validation.Date(timeutils.ClockLayout)),
		validation.Field(&request.Media,
			validation.When(request.Platform.RequiresMedia(), validation.Required.Error("is required for Instagram posts")),
			mediaFile,
		),
	)

	errs := validation.Errors{}
	if err != nil {
		if !errors.As(err, &errs) {
			return pkgError.ValidationError(err.Error())
		}
	}

	_, badDate := errs["scheduleDate"]
	_, badTime := errs["scheduleTime"]
	if !badDate && !badTime {
		at, parseErr := request.ScheduledAt(now.Location())
		switch {
		case parseErr != nil:
			errs["scheduleDate"] = parseErr
		case at.Before(now.Truncate(time.Minute)):
			errs["scheduleDate"] = validation.NewError("validation_in_past", "must not be in the past")
		}
	}

	if len(errs) > 0 {
		return pkgError.ValidationError(errs.Error())
	}
	return nil
}

func ValidateUpdatePost(ctx context.Context, request domainPost.UpdateRequest) error {
	if request.Empty() {
		return pkgError.ValidationError("at least one field must be provided")
	}

	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Caption, validation.NilOrNotEmpty, notBlank),
		validation.Field(&request.ScheduleDate, validation.NilOrNotEmpty, validation.Date(timeutils.DateLayout)),
		validation.Field(&request.ScheduleTime, validation.NilOrNotEmpty, validation.Date(timeutils.ClockLayout)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateNotify(ctx context.Context, request domainBridge.NotifyRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Title, validation.Required, notBlank, validation.Length(1, 120)),
		validation.Field(&request.Body, validation.Length(0, 1000)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateDeletePost(ctx context.Context, request domainBridge.DeletePostRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ID, validation.Required, notBlank),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}
