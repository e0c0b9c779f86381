package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/auralex/pkg/logging"
	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/observe"
	"github.com/Nephrolytics-ai/auralex/pkg/utils"
)

const defaultDisplayName = "Audio Upload"

// Uploader sends large payloads out of band and waits for the remote asset to
// leave the processing state. Waiting is bounded by pollTimeout and by ctx.
type Uploader struct {
	assets       model.AssetService
	pollInterval time.Duration
	pollTimeout  time.Duration
	metrics      *observe.Metrics
}

func NewUploader(assets model.AssetService, cfg model.GeneratorConfig, metrics *observe.Metrics) *Uploader {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = model.DefaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = model.DefaultPollTimeout
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Uploader{
		assets:       assets,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		metrics:      metrics,
	}
}

func (u *Uploader) Upload(ctx context.Context, payload model.AudioPayload) (model.RemoteReference, error) {
	start := time.Now()
	defer func() { u.metrics.RecordStage(ctx, observe.StageUpload, time.Since(start)) }()

	log := logging.NewLogger(ctx)
	mimeType := resolveMIMEType(payload)
	displayName := strings.TrimSpace(payload.Name)
	if displayName == "" {
		displayName = defaultDisplayName
	}

	asset, err := u.assets.UploadAsset(ctx, payload.Data, mimeType, displayName)
	if err != nil {
		log.Errorf("error: %v", err)
		return model.RemoteReference{}, utils.WrapIfNotNil(err)
	}
	if strings.TrimSpace(asset.URI) == "" {
		err = model.NewFailure(model.FailureUploadStructure, errors.New("upload response has no uri"))
		log.Errorf("error: %v", err)
		return model.RemoteReference{}, err
	}
	log.Infof("asset uploaded name=%q uri=%q state=%s", asset.Name, asset.URI, asset.State)

	asset, err = u.awaitReady(ctx, asset)
	if err != nil {
		log.Errorf("error: %v", err)
		return model.RemoteReference{}, utils.WrapIfNotNil(err)
	}

	if strings.TrimSpace(asset.MIMEType) != "" {
		mimeType = asset.MIMEType
	}
	return model.RemoteReference{MIMEType: mimeType, URI: asset.URI}, nil
}

// awaitReady drives Processing -> Processing | Ready | Failed.
func (u *Uploader) awaitReady(ctx context.Context, asset model.RemoteAsset) (model.RemoteAsset, error) {
	pollCtx, cancel := context.WithTimeout(ctx, u.pollTimeout)
	defer cancel()

	timer := time.NewTimer(u.pollInterval)
	defer timer.Stop()

	log := logging.NewLogger(ctx)
	for {
		switch asset.State {
		case model.AssetStateReady:
			return asset, nil
		case model.AssetStateFailed:
			return asset, model.NewFailure(
				model.FailureRemoteProcessing,
				fmt.Errorf("asset %q failed remote processing", asset.Name),
			)
		case model.AssetStateProcessing:
		default:
			return asset, model.NewFailure(
				model.FailureRemoteProcessing,
				fmt.Errorf("asset %q reported unknown state %q", asset.Name, asset.State),
			)
		}

		if strings.TrimSpace(asset.Name) == "" {
			return asset, model.NewFailure(
				model.FailureUploadStructure,
				errors.New("processing asset has no name to poll"),
			)
		}

		select {
		case <-pollCtx.Done():
			return asset, u.pollAbort(ctx, asset)
		case <-timer.C:
		}

		next, err := u.assets.GetAsset(pollCtx, asset.Name)
		if err != nil {
			if pollCtx.Err() != nil {
				return asset, u.pollAbort(ctx, asset)
			}
			return asset, utils.WrapIfNotNil(err)
		}
		u.metrics.RecordPoll(ctx)
		asset = mergeAsset(asset, next)
		log.Debugf("asset poll name=%q state=%s", asset.Name, asset.State)
		timer.Reset(u.pollInterval)
	}
}

// pollAbort distinguishes the caller giving up from the poll deadline expiring.
func (u *Uploader) pollAbort(ctx context.Context, asset model.RemoteAsset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return model.NewFailure(
		model.FailureProcessingTimeout,
		fmt.Errorf("asset %q still processing after %s", asset.Name, u.pollTimeout),
	)
}

func mergeAsset(prev, next model.RemoteAsset) model.RemoteAsset {
	if strings.TrimSpace(next.Name) == "" {
		next.Name = prev.Name
	}
	if strings.TrimSpace(next.URI) == "" {
		next.URI = prev.URI
	}
	if strings.TrimSpace(next.MIMEType) == "" {
		next.MIMEType = prev.MIMEType
	}
	return next
}
