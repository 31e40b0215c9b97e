package culling

import "errors"

// ErrFrustumConstructionFailed is returned when a camera cannot produce a
// frustum hull: singular view-projection matrix, corners at infinity, or a
// degenerate hull. The query for that camera must be skipped for the frame.
var ErrFrustumConstructionFailed = errors.New("frustum construction failed")
