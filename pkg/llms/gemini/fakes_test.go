package gemini

import (
	"context"
	"io"

	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"google.golang.org/genai"
)

type fakeFiles struct {
	uploadFile *genai.File
	uploadErr  error
	getFile    *genai.File
	getErr     error

	uploadedBytes  []byte
	uploadedConfig *genai.UploadFileConfig
	requestedName  string
}

func (f *fakeFiles) Upload(ctx context.Context, r io.Reader, config *genai.UploadFileConfig) (*genai.File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.uploadedBytes = data
	f.uploadedConfig = config
	return f.uploadFile, f.uploadErr
}

func (f *fakeFiles) Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error) {
	f.requestedName = name
	return f.getFile, f.getErr
}

type fakeModels struct {
	response *genai.GenerateContentResponse
	err      error

	calls    int
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(
	ctx context.Context,
	modelName string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = modelName
	f.contents = contents
	f.config = config
	return f.response, f.err
}

func newTestService(files *fakeFiles, models *fakeModels, opts ...model.GeneratorOption) *Service {
	return &Service{
		cfg:    model.ResolveGeneratorOpts(opts...),
		files:  files,
		models: models,
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		ResponseID: "resp-1",
		Candidates: []*genai.Candidate{
			{
				Content:      genai.NewContentFromText(text, genai.RoleModel),
				FinishReason: genai.FinishReasonStop,
			},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 40,
			TotalTokenCount:      160,
		},
	}
}
