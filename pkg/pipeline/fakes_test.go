package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/Nephrolytics-ai/auralex/pkg/model"
)

type fakeAssets struct {
	mu sync.Mutex

	uploadAsset model.RemoteAsset
	uploadErr   error
	// polled is returned in order by GetAsset; the last entry repeats.
	polled []model.RemoteAsset
	getErr error

	uploadCalls   int
	getCalls      int
	uploadedMIME  string
	uploadedName  string
	uploadedBytes int
}

func (f *fakeAssets) UploadAsset(ctx context.Context, data []byte, mimeType string, displayName string) (model.RemoteAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadCalls++
	f.uploadedMIME = mimeType
	f.uploadedName = displayName
	f.uploadedBytes = len(data)
	return f.uploadAsset, f.uploadErr
}

func (f *fakeAssets) GetAsset(ctx context.Context, name string) (model.RemoteAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return model.RemoteAsset{}, f.getErr
	}
	if len(f.polled) == 0 {
		return model.RemoteAsset{}, errors.New("no polled states configured")
	}
	next := f.polled[0]
	if len(f.polled) > 1 {
		f.polled = f.polled[1:]
	}
	return next, nil
}

type fakeGenerator struct {
	text  string
	err   error
	panic bool

	calls   int
	lastReq model.GenerationRequest
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, req model.GenerationRequest) (string, model.GenerationMetadata, error) {
	f.calls++
	f.lastReq = req
	if f.panic {
		panic("generator exploded")
	}
	return f.text, model.GenerationMetadata{model.MetadataKeyProvider: "fake"}, f.err
}

func readyAsset(name, uri, mimeType string) model.RemoteAsset {
	return model.RemoteAsset{Name: name, URI: uri, MIMEType: mimeType, State: model.AssetStateReady}
}

func processingAsset(name, uri string) model.RemoteAsset {
	return model.RemoteAsset{Name: name, URI: uri, State: model.AssetStateProcessing}
}

const validResponse = `{
	"title": "Intro to Entropy",
	"confidenceScore": 87,
	"accuracyNote": "Clear audio.",
	"summary": ["Entropy measures disorder"],
	"theses": ["Isolated systems tend toward equilibrium"],
	"examples": ["Ice melting in a warm room"],
	"runningNotes": "## Entropy\n- **Definition**",
	"quiz": [{"question": "What is entropy?", "options": ["Order", "Disorder"], "correctAnswer": 1, "explanation": "It measures disorder."}]
}`
