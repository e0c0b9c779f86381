package model

// TransmissionUnit is how audio travels in a generation request. The only
// implementations are Embedded and RemoteReference.
type TransmissionUnit interface {
	MediaType() string
	isTransmissionUnit()
}

// Embedded carries the audio inline as base64 text.
type Embedded struct {
	MIMEType   string
	Base64Data string
}

func (e Embedded) MediaType() string { return e.MIMEType }

func (Embedded) isTransmissionUnit() {}

// RemoteReference points at audio already uploaded to the remote service.
type RemoteReference struct {
	MIMEType string
	URI      string
}

func (r RemoteReference) MediaType() string { return r.MIMEType }

func (RemoteReference) isTransmissionUnit() {}

type AssetState string

const (
	AssetStateProcessing AssetState = "processing"
	AssetStateReady      AssetState = "ready"
	AssetStateFailed     AssetState = "failed"
)

// RemoteAsset is an uploaded resource. Its state is polled, never pushed.
type RemoteAsset struct {
	Name     string
	URI      string
	MIMEType string
	State    AssetState
}
