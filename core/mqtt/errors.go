package mqtt

import "errors"

// ErrPublishFailed is returned once every publish attempt for a message failed.
var ErrPublishFailed = errors.New("mqtt publish failed")
