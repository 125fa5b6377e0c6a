package dashboard

import "errors"

// Sentinel errors for the dashboard service layer.
var (
	ErrNoDataset          = errors.New("no dataset loaded")
	ErrClubNotFound       = errors.New("club not found")
	ErrEmptyUpload        = errors.New("uploaded file is empty")
	ErrInvalidQuery       = errors.New("invalid insights query")
	ErrPublishInProgress  = errors.New("a publication for this session is already running")
	ErrPublishingDisabled = errors.New("export publication is not configured")
)
