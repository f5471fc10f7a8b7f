package handlers

import (
	"context"
	"fmt"
	"slices"

	"github.com/gabriel-vasile/mimetype"

	"github.com/edgard/recapbot/internal/ai"
	"github.com/edgard/recapbot/internal/errs"
	"github.com/edgard/recapbot/internal/platform"
	"github.com/edgard/recapbot/internal/resilience"
)

// supportedImageTypes are the formats the generative backends accept.
var supportedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/heic",
	"image/heif",
}

// fetchImage downloads media with the configured number of attempts. Each
// attempt asks the platform for a fresh file reference.
func fetchImage(ctx context.Context, deps HandlerDeps, media *platform.Media) (*ai.Image, error) {
	if !media.IsImage() {
		return nil, errs.NewMediaError(fmt.Sprintf("unsupported media kind %q", media.Kind), nil)
	}

	cfg := deps.Config.Media
	log := deps.Logger.With("file_id", media.FileID)

	img, err := resilience.Retry(ctx, resilience.RetryConfig{
		Attempts: uint(cfg.MaxAttempts),
		OnRetry: func(attempt uint, err error) {
			log.WarnContext(ctx, "Media download failed, retrying", "attempt", attempt+1, "error", err)
		},
	}, func(ctx context.Context) (*ai.Image, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.DownloadTimeout)
		defer cancel()

		data, err := deps.Messenger.DownloadFile(attemptCtx, media.FileID)
		if errs.Code(err) == errs.CodeMedia {
			return nil, resilience.Permanent(err)
		}
		if err != nil {
			return nil, err
		}
		mime := mimetype.Detect(data)
		if !slices.ContainsFunc(supportedImageTypes, mime.Is) {
			return nil, resilience.Permanent(errs.NewMediaError(fmt.Sprintf("unsupported image type %s", mime.String()), nil))
		}
		return &ai.Image{Data: data, MimeType: mime.String()}, nil
	})
	if err != nil {
		if errs.Code(err) == errs.CodeMedia {
			return nil, err
		}
		return nil, errs.NewMediaError("media download failed", err)
	}
	return img, nil
}
